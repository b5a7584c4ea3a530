package staffcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var ErrUsage = errors.New("usage")

// Version is stamped at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	envFile string
	debug   bool
}

// Execute runs the staffdesk command line with a context cancelled on
// SIGINT or SIGTERM.
func Execute(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if args == nil {
		args = []string{}
	}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// PrintUsage writes the top level help.
func PrintUsage(w io.Writer) {
	root := newRootCmd()
	root.SetOut(w)
	_ = root.Usage()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "staffdesk",
		Short:         "Employee directory web front-end for a Supabase table",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
			}
			return fmt.Errorf("%w: staffdesk <setup|run|import|export> [...]", ErrUsage)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to .env file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		setupCmd(opts),
		runCmd(opts),
		importCmd(opts),
		exportCmd(opts),
	)
	return root
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s", ErrUsage, cmd.UseLine())
		}
		return nil
	}
}
