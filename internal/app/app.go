// Package app assembles the application's services in a samber/do container.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ibcoder/portfolio/internal/accounts"
	"github.com/ibcoder/portfolio/internal/apiclient"
	"github.com/ibcoder/portfolio/internal/auth"
	"github.com/ibcoder/portfolio/internal/config"
	"github.com/ibcoder/portfolio/internal/database"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/ibcoder/portfolio/internal/email"
	"github.com/ibcoder/portfolio/internal/form"
	"github.com/ibcoder/portfolio/internal/handlers"
	"github.com/ibcoder/portfolio/internal/notify"
	"github.com/ibcoder/portfolio/internal/pubsub"
	"github.com/ibcoder/portfolio/internal/rendering"
	"github.com/ibcoder/portfolio/internal/server"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// App owns the dependency container and the cleanup of whatever it built.
type App struct {
	injector *do.RootScope
	cfg      config.Provider
	logger   *slog.Logger

	mu      sync.Mutex
	closers []func() error
}

// Option replaces a default collaborator, mostly for tests.
type Option func(*options)

type options struct {
	fs     afero.Fs
	sender domain.EmailSender
}

// WithFs stores the contact archive on fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithEmailSender replaces the sender chosen by EMAIL_PROVIDER.
func WithEmailSender(s domain.EmailSender) Option {
	return func(o *options) { o.sender = s }
}

// New registers every service provider. Nothing is built until first use.
func New(cfg config.Provider, logger *slog.Logger, opts ...Option) *App {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{injector: do.New(), cfg: cfg, logger: logger}
	i := a.injector

	do.ProvideValue[config.Provider](i, cfg)
	do.ProvideValue(i, logger)
	do.ProvideValue(i, o.fs)
	do.ProvideValue(i, form.NewValidator())
	do.ProvideValue(i, &singleflight.Group{})

	do.Provide(i, a.provideTracer)
	do.Provide(i, a.provideEventBus)
	do.Provide(i, a.provideStore)
	do.Provide(i, func(i do.Injector) (domain.EmailSender, error) {
		if o.sender != nil {
			return o.sender, nil
		}
		return email.NewEmailService(cfg)
	})
	do.Provide(i, provideNotifier)
	do.Provide(i, provideAccounts)
	do.Provide(i, provideGateway)
	do.Provide(i, provideCredentialsBridge)
	do.Provide(i, func(do.Injector) (*rendering.UniversalRenderer, error) {
		return rendering.NewUniversalRenderer(), nil
	})
	do.Provide(i, provideHandlers)
	do.Provide(i, a.provideServer)

	return a
}

// Store returns the configured user store, opening it on first use.
func (a *App) Store() (domain.Store, error) {
	return do.Invoke[domain.Store](a.injector)
}

// Accounts returns the accounts service.
func (a *App) Accounts() (*accounts.Service, error) {
	return do.Invoke[*accounts.Service](a.injector)
}

// Server builds the HTTP server with its routes and starts the event
// subscribers, which live until ctx is cancelled.
func (a *App) Server(ctx context.Context) (*server.Server, error) {
	srv, err := do.Invoke[*server.Server](a.injector)
	if err != nil {
		return nil, err
	}
	notifier, err := do.Invoke[*notify.Notifier](a.injector)
	if err != nil {
		return nil, err
	}
	bus, err := do.Invoke[*pubsub.WatermillBridge](a.injector)
	if err != nil {
		return nil, err
	}
	if err := notifier.Start(ctx, bus); err != nil {
		return nil, fmt.Errorf("failed to start notifier: %w", err)
	}
	return srv, nil
}

// Close releases everything the container opened, newest first.
func (a *App) Close() error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

func (a *App) provideTracer(i do.Injector) (trace.Tracer, error) {
	cfg := do.MustInvoke[config.Provider](i)
	tracer, cleanup, err := pubsub.SetupTracing(context.Background(), pubsub.TracingConfig{
		Enabled:     cfg.GetTracingEnabled(),
		ServiceName: "portfolio",
		ZipkinURL:   cfg.GetZipkinURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	a.onClose(func() error {
		cleanup()
		return nil
	})
	return tracer, nil
}

func (a *App) provideEventBus(i do.Injector) (*pubsub.WatermillBridge, error) {
	tracer, err := do.Invoke[trace.Tracer](i)
	if err != nil {
		return nil, err
	}
	bus := pubsub.NewWatermillBridge(tracer)
	a.onClose(bus.Close)
	return bus, nil
}

func (a *App) provideStore(i do.Injector) (domain.Store, error) {
	store, err := database.Open(context.Background(), do.MustInvoke[config.Provider](i))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.onClose(func() error { return store.Close(context.Background()) })
	return store, nil
}

func provideNotifier(i do.Injector) (*notify.Notifier, error) {
	cfg := do.MustInvoke[config.Provider](i)
	sender, err := do.Invoke[domain.EmailSender](i)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email service: %w", err)
	}
	return notify.New(sender, do.MustInvoke[afero.Fs](i), notify.Config{
		BaseURL:    cfg.GetAppBaseURL(),
		Inbox:      cfg.GetContactInbox(),
		ArchiveDir: cfg.GetContactArchiveDir(),
	}), nil
}

func provideAccounts(i do.Injector) (*accounts.Service, error) {
	store, err := do.Invoke[domain.Store](i)
	if err != nil {
		return nil, err
	}
	bus, err := do.Invoke[*pubsub.WatermillBridge](i)
	if err != nil {
		return nil, err
	}
	return accounts.NewService(store, bus, do.MustInvoke[*validator.Validate](i)), nil
}

// provideGateway picks where form submissions go: straight to the accounts
// service, or through the REST endpoints of the server at APP_BASE_URL.
func provideGateway(i do.Injector) (form.Gateway, error) {
	cfg := do.MustInvoke[config.Provider](i)
	switch cfg.GetFormGateway() {
	case "http":
		return apiclient.New(cfg.GetAppBaseURL(), apiclient.WithToken(cfg.GetAdminAPIToken())), nil
	case "local", "":
		svc, err := do.Invoke[*accounts.Service](i)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown form gateway: %s", cfg.GetFormGateway())
	}
}

func provideCredentialsBridge(i do.Injector) (*auth.CredentialsBridge, error) {
	svc, err := do.Invoke[*accounts.Service](i)
	if err != nil {
		return nil, err
	}
	return auth.NewCredentialsBridge(svc, do.MustInvoke[config.Provider](i).GetAuthCallbackURL()), nil
}

func provideHandlers(i do.Injector) (server.Handlers, error) {
	cfg := do.MustInvoke[config.Provider](i)
	v := do.MustInvoke[*validator.Validate](i)
	renderer := do.MustInvoke[*rendering.UniversalRenderer](i)

	svc, err := do.Invoke[*accounts.Service](i)
	if err != nil {
		return server.Handlers{}, err
	}
	gateway, err := do.Invoke[form.Gateway](i)
	if err != nil {
		return server.Handlers{}, err
	}
	bridge, err := do.Invoke[*auth.CredentialsBridge](i)
	if err != nil {
		return server.Handlers{}, err
	}

	forms := handlers.NewFormHandler(form.Deps{
		Gateway:        gateway,
		Bridge:         bridge,
		Validator:      v,
		Timeout:        cfg.GetSubmitTimeout(),
		CallbackURL:    cfg.GetAuthCallbackURL(),
		VerifyRedirect: cfg.GetVerifyRedirectURL(),
		Flight:         do.MustInvoke[*singleflight.Group](i),
	}, cfg.GetSocialAuthURL(), renderer)

	return server.Handlers{
		Forms:    forms,
		Account:  handlers.NewAccountHandler(svc, v, renderer),
		UsersAPI: handlers.NewUsersAPI(svc, bridge, cfg.IsDebug()),
	}, nil
}

func (a *App) provideServer(i do.Injector) (*server.Server, error) {
	h, err := do.Invoke[server.Handlers](i)
	if err != nil {
		return nil, err
	}
	srv := server.New(
		do.MustInvoke[config.Provider](i),
		a.logger,
		do.MustInvoke[*rendering.UniversalRenderer](i),
		handlers.NewValidator(do.MustInvoke[*validator.Validate](i)),
		h,
	)
	srv.RegisterRoutes()
	srv.OnShutdown(a.Close)
	return srv, nil
}
