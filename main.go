package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"medslot/config"
	_ "medslot/docs"
	"medslot/internal/domain"
	"medslot/internal/repository"
	"medslot/internal/service"
	"medslot/internal/storage"
	"medslot/internal/transport/rest"
	"medslot/pkg/database"
	"medslot/pkg/logger"
)

// @title MedSlot API
// @version 1.0
// @description API доступности врачей, бронирования приемов и учета дохода больниц

// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:          "medslot",
		Short:        "Сервис доступности и бронирования приемов",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	log, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать логгер: %w", err)
	}

	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			return serve(cmd.Context(), cfg, log)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Применить SQL миграции к PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			db, err := database.NewPostgresDB(cmd.Context(), cfg.Postgres, log)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.RunMigrations(cmd.Context(), db, dir, log)
			if err != nil {
				return err
			}

			log.Info("миграции выполнены", zap.Int("applied", applied))
			return nil
		},
	}

	cmd.Flags().String("dir", "", "Путь к директории миграций")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить access token для пользователя (для разработки)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			userID, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")

			tokens, err := service.NewAuthService(cfg.JWT, log).IssueAccessToken(userID, domain.UserRole(role))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tokens.AccessToken)
			return nil
		},
	}

	cmd.Flags().String("user", "", "ID пользователя")
	cmd.Flags().String("role", string(domain.UserRolePatient), "Роль: patient, doctor, hospital_admin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	repos, closeStore, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var fileStorage storage.FileStorage
	if cfg.S3.Endpoint != "" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			return fmt.Errorf("не удалось инициализировать S3 хранилище: %w", err)
		}
		fileStorage = s3Storage
		log.Info("S3 хранилище успешно инициализировано", zap.String("endpoint", cfg.S3.Endpoint))
	} else {
		log.Warn("S3 хранилище не настроено, документы будут отдаваться напрямую")
	}

	services := service.NewServices(service.Deps{
		Repos:       repos,
		Logger:      log,
		Config:      cfg,
		FileStorage: fileStorage,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	handler := rest.NewHandler(services, log, cfg)
	handler.InitRoutes(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderMB << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	log.Info("Сервер запущен", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	case <-quit:
	}

	log.Info("Выключение сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при остановке сервера: %w", err)
	}

	log.Info("Сервер успешно остановлен")
	return nil
}

// openRepositories picks the store by driver and puts the Redis cache in
// front of the directory when Redis is configured.
func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Repositories, func(), error) {
	var (
		repos   *repository.Repositories
		closers []func()
	)

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgresDB(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)

		log.Info("Запуск миграций базы данных")
		if _, err := database.RunMigrations(ctx, db, cfg.MigrationsDir, log); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("ошибка при выполнении миграций: %w", err)
		}

		repos = repository.NewRepositories(db)

	case config.StoreDriverMongo:
		client, db, err := database.NewMongoDB(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })

		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			closeAll()
			return nil, nil, err
		}

		repos = repository.NewMongoRepositories(db)

	case config.StoreDriverMemory:
		log.Warn("используется хранилище в памяти, данные не сохраняются между перезапусками")
		repos = repository.NewMemoryRepositories()
	}

	if cfg.Redis.Addr != "" {
		client, err := database.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })

		repos.Directory = repository.NewCachedDirectory(repos.Directory, client, cfg.Redis.CacheTTL, log)
	}

	return repos, closeAll, nil
}
