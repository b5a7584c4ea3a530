package staffcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/phillip-england/staffdesk/internal/clientapp"
	"github.com/phillip-england/staffdesk/internal/config"
	"github.com/phillip-england/staffdesk/internal/employees"
	"github.com/phillip-england/staffdesk/internal/roster"
	"github.com/phillip-england/staffdesk/internal/security"
	"github.com/phillip-england/staffdesk/internal/supabase"
)

func setupCmd(opts *rootOptions) *cobra.Command {
	var projectURL, key string
	var force bool

	c := &cobra.Command{
		Use:   "setup",
		Short: "Write a .env file pointing at a Supabase project",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if projectURL == "" || key == "" {
				return fmt.Errorf("%w: --url and --key are required", ErrUsage)
			}
			if _, err := supabase.New(supabase.Config{URL: projectURL, APIKey: key}); err != nil {
				return err
			}
			if _, err := security.InspectAPIKey(key, time.Now()); err != nil {
				return fmt.Errorf("invalid api key: %w", err)
			}

			values := map[string]string{
				config.EnvSupabaseURL: projectURL,
				config.EnvSupabaseKey: key,
				config.EnvAddr:        ":3000",
				config.EnvTable:       employees.DefaultTable,
			}
			if err := config.WriteDotEnv(opts.envFile, values, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.envFile)
			return nil
		},
	}
	c.Flags().StringVar(&projectURL, "url", "", "Supabase project URL")
	c.Flags().StringVar(&key, "key", "", "Supabase anon key")
	c.Flags().BoolVar(&force, "force", false, "overwrite existing env file")
	return c
}

func runCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Serve the web front-end",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			handler := clientapp.NewHandler(a.employees, a.logger)
			err = clientapp.Run(ctx, clientapp.Config{
				Addr:         a.cfg.Addr,
				ReadTimeout:  a.cfg.ReadTimeout,
				WriteTimeout: a.cfg.WriteTimeout,
			}, handler, a.logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func importCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Insert employees from an .xlsx or .xls roster",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := roster.ReadRows(f, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			parsed, err := roster.ParseEmployees(rows)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.employees.Import(cmd.Context(), parsed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d employees (%d skipped)\n", result.Inserted, result.Skipped)
			return nil
		},
	}
}

func exportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write every employee to an .xlsx roster",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			list, err := a.employees.ListByName(cmd.Context())
			if err != nil {
				return err
			}

			path := args[0]
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := roster.WriteRoster(f, list); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d employees to %s\n", len(list), path)
			return nil
		},
	}
}
