package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/ai"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/clock"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/config"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/db"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/extract"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/handlers"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/logger"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/media"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/resolve"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/router"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/server"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/store"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa/waba"
	"github.com/eduardossimas/conectfin-whatsapp-bot/internal/wa/waha"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideClock,
			provideDBConn,
			provideStore,
			provideRunner,
			provideAIService,
			provideExtractor,
			provideResolver,
			provideMediaService,
			provideWABAClient,
			provideWAHAClient,
			provideSender,
			provideRouter,
			provideServerHandler(provideStatusHandler),
			provideServerHandler(provideWhatsAppHandler),
			provideServerHandler(handlers.NewMediaHandler),
			provideServer,
		),
		fx.Invoke(
			runMigrations,
			startServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideClock(cfg config.Config) (clock.Clock, error) {
	return clock.NewSystem(cfg.WhatsApp.Timezone)
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideStore(log *slog.Logger, conn *pgxpool.Pool) *store.Service {
	return store.NewService(log, conn)
}

// provideRunner builds the provider chain: Gemini first, OpenAI as fallback
// when a key is configured.
func provideRunner(log *slog.Logger, cfg config.Config) (*ai.Runner, error) {
	gemini, err := ai.NewGemini(context.Background(), log, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	providers := []ai.Provider{gemini}
	if cfg.AI.OpenAIAPIKey != "" {
		providers = append(providers, ai.NewOpenAI(log, cfg.AI))
	}
	return ai.NewRunner(log, providers...), nil
}

func provideAIService(log *slog.Logger, runner *ai.Runner) *ai.Service {
	return ai.NewService(log, runner)
}

func provideExtractor(log *slog.Logger, aiService *ai.Service, clk clock.Clock) *extract.Extractor {
	return extract.NewExtractor(log, aiService, clk)
}

func provideResolver(log *slog.Logger, st *store.Service, aiService *ai.Service) *resolve.Service {
	return resolve.NewService(log, st, aiService)
}

func provideMediaService(log *slog.Logger, cfg config.Config, clk clock.Clock) (*media.Service, error) {
	return media.NewService(log, cfg.Media, clk)
}

func provideWABAClient(log *slog.Logger, cfg config.Config) *waba.Client {
	return waba.NewClient(log, cfg.WhatsApp.WABA)
}

func provideWAHAClient(log *slog.Logger, cfg config.Config) *waha.Client {
	return waha.NewClient(log, cfg.WhatsApp.WAHA)
}

// provideSender orders the outbound transports by the configured mode; the
// other one stays as fallback.
func provideSender(log *slog.Logger, cfg config.Config, wabaClient *waba.Client, wahaClient *waha.Client) wa.Transport {
	if cfg.WhatsApp.Mode == "waha" {
		return wa.NewChain(log, wahaClient, wabaClient)
	}
	return wa.NewChain(log, wabaClient, wahaClient)
}

func provideRouter(
	log *slog.Logger,
	cfg config.Config,
	st *store.Service,
	aiService *ai.Service,
	extractor *extract.Extractor,
	resolver *resolve.Service,
	sender wa.Transport,
	clk clock.Clock,
) *router.Router {
	return router.New(log, cfg.WhatsApp, st, aiService, extractor, resolver, sender, clk)
}

func provideStatusHandler(log *slog.Logger, cfg config.Config) *handlers.StatusHandler {
	return handlers.NewStatusHandler(log, cfg.WhatsApp.Mode)
}

func provideWhatsAppHandler(log *slog.Logger, cfg config.Config, wabaClient *waba.Client, wahaClient *waha.Client, r *router.Router) *handlers.WhatsAppHandler {
	var source handlers.WebhookSource = wabaClient
	if cfg.WhatsApp.Mode == "waha" {
		source = wahaClient
	}
	return handlers.NewWhatsAppHandler(log, source, r, cfg.WhatsApp.WABA.VerifyToken)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers)
}

func runMigrations(log *slog.Logger, cfg config.Config) error {
	if err := db.Migrate(cfg.Database.DSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("database schema up to date")
	return nil
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
