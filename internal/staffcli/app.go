package staffcli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/phillip-england/staffdesk/internal/config"
	"github.com/phillip-england/staffdesk/internal/employees"
	"github.com/phillip-england/staffdesk/internal/logging"
	"github.com/phillip-england/staffdesk/internal/security"
	"github.com/phillip-england/staffdesk/internal/supabase"
	"github.com/phillip-england/staffdesk/internal/telemetry"
)

const telemetryFlushTimeout = 5 * time.Second

type app struct {
	cfg       config.Config
	logger    *zap.Logger
	employees *employees.Service
	shutdown  func(context.Context) error
}

// loadApp reads configuration and wires the backend client, tracing and the
// employee service. Callers must call close.
func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, err
	}

	info, err := security.InspectAPIKey(cfg.SupabaseKey, time.Now())
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("%s: %w", config.EnvSupabaseKey, err)
	}
	if info.JWT {
		logger.Info("supabase key loaded", zap.String("role", info.Role), zap.String("project_ref", info.ProjectRef))
		if info.ServiceRole() {
			logger.Warn("supabase key carries the service role; row level security is bypassed")
		}
	}

	endpoint := ""
	if cfg.TracingEnabled() {
		endpoint = cfg.OTelEndpoint
	}
	shutdown, err := telemetry.Setup(ctx, endpoint, Version)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	client, err := supabase.New(supabase.Config{
		URL:     cfg.SupabaseURL,
		APIKey:  cfg.SupabaseKey,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		_ = shutdown(ctx)
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		employees: employees.NewService(employees.NewSupabaseStore(client, cfg.Table), logger),
		shutdown:  shutdown,
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("flush traces failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}
