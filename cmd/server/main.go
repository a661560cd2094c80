package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/roster/internal/api"
	grpcapi "github.com/St1cky1/roster/internal/api/grpc"
	"github.com/St1cky1/roster/internal/api/handlers"
	"github.com/St1cky1/roster/internal/config"
	"github.com/St1cky1/roster/internal/infrastructure/client"
	"github.com/St1cky1/roster/internal/logger"
	"github.com/St1cky1/roster/internal/migrations"
	"github.com/St1cky1/roster/internal/repository"
	"github.com/St1cky1/roster/internal/usecase"
	"github.com/St1cky1/roster/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Запуск веб-интерфейса",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root := &cobra.Command{
		Use:          "roster",
		Short:        "Список студентов и задач",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Управление схемой базы данных",
	}

	withConfig := func(fn func(cfg *config.Config, log *logrus.Entry) error) func(*cobra.Command, []string) error {
		return func(*cobra.Command, []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return fn(cfg, logger.Init("roster-migrate", cfg.LogLevel, cfg.LogFormat))
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Применить все миграции",
			RunE: withConfig(func(cfg *config.Config, log *logrus.Entry) error {
				if err := migrations.Up(cfg.DB.DSN()); err != nil {
					return err
				}
				log.Info("migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Откатить последнюю миграцию",
			RunE: withConfig(func(cfg *config.Config, log *logrus.Entry) error {
				if err := migrations.Down(cfg.DB.DSN()); err != nil {
					return err
				}
				log.Info("last migration rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Показать текущую версию схемы",
			RunE: withConfig(func(cfg *config.Config, _ *logrus.Entry) error {
				version, dirty, err := migrations.Version(cfg.DB.DSN())
				if err != nil {
					return err
				}
				fmt.Printf("version=%d dirty=%t\n", version, dirty)
				return nil
			}),
		},
	)
	return cmd
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init("roster", cfg.LogLevel, cfg.LogFormat)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Миграции
	if cfg.MigrateOnStart {
		if err := migrations.Up(cfg.DB.DSN()); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	// База данных
	db, err := client.NewPostgresClient(ctx, client.Config{DSN: cfg.DB.DSN(), MaxConns: cfg.DB.MaxConns})
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to postgres")

	txManager := repository.NewTxManager(db.Pool)
	personRepo := repository.NewPersonRepository()
	taskRepo := repository.NewTaskRepository()

	var wg sync.WaitGroup
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Аудит через RabbitMQ, если настроен
	var publisher usecase.AuditPublisher = usecase.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQURL, cfg.AuditQueue)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		log.WithField("queue", rabbitMQ.QueueName()).Info("connected to rabbitmq")
		publisher = rabbitMQ

		auditWorker := worker.NewAuditWorker(rabbitMQ, txManager, repository.NewAuditRepository(), log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWorker.Start(workerCtx)
		}()
	} else {
		log.Warn("RABBITMQ_URL is empty, audit messages are discarded")
	}

	clock := usecase.SystemClock{Location: cfg.Location}
	personService := usecase.NewPersonService(txManager, personRepo, publisher, clock, log)
	taskService := usecase.NewTaskService(txManager, taskRepo, publisher, clock, log)

	views, err := handlers.NewViews(personService, taskService, log, handlers.Options{
		PageSize: cfg.PageSize,
		Location: cfg.Location,
		Now:      clock.Now,
	})
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterDeps{
		Views:      views,
		Health:     handlers.NewHealthHandler(db),
		Log:        log,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 2)
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// gRPC health, если указан порт
	var grpcServer *grpcapi.GRPCServer
	if cfg.GRPCPort != "" {
		grpcServer = grpcapi.NewGRPCServer(db, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			grpcServer.WatchDatabase(workerCtx, 15*time.Second)
		}()
		go func() {
			if err := grpcServer.Start(cfg.GRPCPort); err != nil {
				serveErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err = <-serveErr:
		log.WithError(err).Error("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}

	// Дожидаемся отложенных публикаций аудита, затем останавливаем воркер
	personService.Wait()
	taskService.Wait()
	workerCancel()
	wg.Wait()

	log.Info("stopped")
	return err
}
