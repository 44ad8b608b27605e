package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/config"
	"quiz-trainer/internal/domain"
	"quiz-trainer/internal/generator"
	"quiz-trainer/internal/infra/memory"
	pgloader "quiz-trainer/internal/infra/postgres"
	redisstore "quiz-trainer/internal/infra/redis"
	"quiz-trainer/internal/logger"
	"quiz-trainer/internal/metrics"
	transport "quiz-trainer/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	log := logger.New(cfg.Log)
	defer log.Sync()
	metrics.Init()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	sessionOpts := []app.Option{
		app.WithTickInterval(config.TTLDuration(cfg.Session.Tick, time.Second)),
	}
	if cfg.Generator.BaseURL != "" {
		sessionOpts = append(sessionOpts, app.WithGenerator(generator.NewClient(cfg.Generator, log)))
	} else {
		log.Info("generator not configured, quiz generation disabled")
	}

	service := app.NewQuizService(store, quizRepo, log, sessionOpts...)
	wsHandler := transport.NewWSHandler(service, log, cfg.Session.TimeLimit)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// sampleQuizzes seeds the library when no database is configured.
func sampleQuizzes() map[string]domain.QuizDocument {
	return map[string]domain.QuizDocument{
		"quiz-1": {
			Title: "Warm-up",
			Questions: []domain.Question{
				{
					ID:             "q1",
					QuestionText:   "What is 2 + 2?",
					Options:        []string{"3", "4", "5"},
					CorrectAnswers: []int{1},
					Explanation:    "Two pairs make four.",
				},
				{
					ID:               "q2",
					QuestionText:     "Which of these are prime?",
					Options:          []string{"2", "4", "5", "9"},
					CorrectAnswers:   []int{0, 2},
					IsMultipleChoice: true,
				},
			},
		},
	}
}
