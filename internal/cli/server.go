package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizduel-service/internal/app"
	"quizduel-service/internal/config"
	"quizduel-service/internal/infra/memory"
	"quizduel-service/internal/infra/postgres"
	redisinfra "quizduel-service/internal/infra/redis"
	"quizduel-service/internal/logging"
	"quizduel-service/internal/metrics"
	transport "quizduel-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz duel server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(memory.SeedQuestions())
	if pool != nil {
		loader = postgres.NewQuestionStore(pool)
	}

	cacheTTL := config.TTLDuration(cfg.Questions.CacheTTL, 10*time.Minute)
	var questions app.QuestionProvider
	if redisClient != nil {
		questions = redisinfra.NewQuestionCache(redisClient, loader, cacheTTL)
	} else {
		questions = memory.NewQuestionCache(loader, cacheTTL)
	}

	var rooms app.RoomRepository
	if redisClient != nil {
		rooms = redisinfra.NewRoomStore(redisClient)
	} else {
		rooms = memory.NewRoomStore()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("quizduel", registry)

	hub := transport.NewHub(64, logger.Named("hub"))
	opts := app.DefaultOptions()
	opts.QuestionsPerGame = cfg.Game.QuestionsPerGame
	opts.TimePerQuestion = cfg.Game.TimePerQuestion
	opts.MaxNameLength = cfg.Game.MaxNameLength
	opts.StartGrace = config.TTLDuration(cfg.Game.StartGrace, opts.StartGrace)
	opts.QuestionDelay = config.TTLDuration(cfg.Game.QuestionDelay, opts.QuestionDelay)
	opts.RevealDelay = config.TTLDuration(cfg.Game.RevealDelay, opts.RevealDelay)
	engine := app.NewEngine(rooms, questions, hub, opts, logger.Named("engine"), m)
	defer engine.Shutdown()

	purger := app.NewPurger(rooms,
		config.TTLDuration(cfg.Housekeeping.Retention, time.Hour),
		config.TTLDuration(cfg.Housekeeping.Interval, time.Hour),
		logger.Named("purger"), m)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", transport.NewWSHandler(engine, hub, logger.Named("ws"), m).ServeWS)
	transport.NewAPI(questions, rooms, logger.Named("api")).Register(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting quiz duel service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return purger.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
