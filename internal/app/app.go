package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	cfgman "OrderNotifier/internal/config"
	"OrderNotifier/internal/delivery/handlers"
	"OrderNotifier/internal/delivery/middleware"
	"OrderNotifier/internal/dispatch"
	"OrderNotifier/internal/domain"
	"OrderNotifier/internal/migrator"
	"OrderNotifier/internal/repository/cache"
	"OrderNotifier/internal/repository/pg"
	"OrderNotifier/internal/repository/rabbit"
	"OrderNotifier/internal/sender"
	"OrderNotifier/internal/sender/sms"
	"OrderNotifier/internal/service"
	"OrderNotifier/internal/supervisor"
	"OrderNotifier/internal/worker"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"
)

// Application основная структура приложения.
type Application struct {
	config     *cfgman.Config
	server     *ginext.Engine
	httpServer *http.Server
	db         *dbpg.DB
	redis      *redis.Client
	rabbit     *rabbit.Client
	pubChannel *amqp091.Channel
	publisher  *rabbit.Publisher
	consumer   *worker.Consumer
	service    *service.NotificationService
	settings   *cache.SettingsStore
	dispatcher *dispatch.Dispatcher
	tasks      *supervisor.Supervisor
}

// New создает новое приложение.
func New() (*Application, error) {
	// Загружаем конфигурацию
	cfg, err := cfgman.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализируем логгер
	if err := initLogger(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	app := &Application{
		config: cfg,
	}

	return app, nil
}

// Run запускает приложение в зависимости от команды.
func (a *Application) Run() error {
	if len(os.Args) < 2 {
		a.printUsage()
		return fmt.Errorf("no command specified")
	}

	command := os.Args[1]

	switch command {
	case "runserver":
		return a.runServer()
	case "migrate":
		return a.runMigrate()
	case "health":
		return a.runHealthCheck()
	default:
		a.printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// printUsage печатает инструкции по использованию.
func (a *Application) printUsage() {
	fmt.Println("OrderNotifier - уведомления магазинов о новых заказах")
	fmt.Println()
	fmt.Println("Доступные команды:")
	fmt.Println("  runserver    - запуск HTTP сервера и обработчика очереди заказов")
	fmt.Println("  migrate up   - накат миграций")
	fmt.Println("  migrate down - откат миграций")
	fmt.Println("  migrate goto N - переход к версии схемы N")
	fmt.Println("  health       - проверка состояния сервисов")
	fmt.Println()
	fmt.Println("Примеры:")
	fmt.Println("  <appname> runserver")
	fmt.Println("  <appname> migrate up")
	fmt.Println("  <appname> health")
}

// runHealthCheck проверяет состояние всех подключений.
func (a *Application) runHealthCheck() error {
	fmt.Println("Running health check...")

	if err := a.checkDatabase(); err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}
	fmt.Println("✅ Database connection: OK")

	if err := a.checkRedis(); err != nil {
		return fmt.Errorf("redis check failed: %w", err)
	}
	fmt.Println("✅ Redis connection: OK")

	if a.config.RabbitMQ.URL == "" {
		fmt.Println("➖ RabbitMQ: disabled")
	} else {
		if err := a.checkRabbitMQ(); err != nil {
			return fmt.Errorf("rabbitmq check failed: %w", err)
		}
		fmt.Println("✅ RabbitMQ connection: OK")
	}

	fmt.Println("🎉 All health checks passed!")
	return nil
}

// checkDatabase проверяет подключение к базе данных.
func (a *Application) checkDatabase() error {
	db, err := dbpg.New(a.config.Database.DSN, nil, &dbpg.Options{
		MaxOpenConns: a.config.Database.MaxOpenConns,
		MaxIdleConns: a.config.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer func(Master *sql.DB) {
		_ = Master.Close()
	}(db.Master)

	return db.Master.Ping()
}

// checkRedis проверяет подключение к Redis.
func (a *Application) checkRedis() error {
	client := redis.New(a.config.Redis.Addr, a.config.Redis.Password, a.config.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return client.Ping(ctx).Err()
}

// checkRabbitMQ проверяет подключение к RabbitMQ.
func (a *Application) checkRabbitMQ() error {
	client, err := rabbit.NewClient(rabbit.ClientConfig{
		URL:            a.config.RabbitMQ.URL,
		ConnectionName: a.config.RabbitMQ.ConnectionName + "-health",
		ConnectTimeout: 5 * time.Second,
		Heartbeat:      5 * time.Second,
	})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return client.Ping()
}

// initLogger инициализирует логгер.
func initLogger(level string) error {
	zlog.Init()

	zerologLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	return zlog.SetLevel(zerologLevel.String())
}

// runServer запускает приложение в режиме сервера.
func (a *Application) runServer() error {
	zlog.Logger.Info().Msg("Starting OrderNotifier server...")

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := a.initConnections(); err != nil {
		return fmt.Errorf("failed to init connections: %w", err)
	}
	defer a.cleanup()
	if err := a.setupHTTPServer(); err != nil {
		return fmt.Errorf("failed to setup HTTP server: %w", err)
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	consumerErr, consumerDone := a.startWorkers(workerCtx)

	a.httpServer = &http.Server{
		Addr:              a.config.HTTP.GetConnectionString(),
		Handler:           a.server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	zlog.Logger.Info().Str("address", a.httpServer.Addr).Msg("HTTP server starting")
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.httpServer.ListenAndServe()
	}()
	zlog.Logger.Info().Msg("HTTP server started, waiting for shutdown signal...")

	var runErr error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("HTTP server error: %w", err)
		}
	case err := <-consumerErr:
		runErr = fmt.Errorf("order consumer error: %w", err)
	case <-ctx.Done():
		zlog.Logger.Info().Msg("Received shutdown signal")
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), a.config.Supervisor.ShutdownTimeout)
	defer drainCancel()
	drain(drainCtx, a.httpServer, stopWorkers, consumerDone, a.tasks)

	return runErr
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type taskWaiter interface {
	Wait(ctx context.Context) error
}

// drain останавливает прием заказов по HTTP и из очереди и только потом
// ждет фоновые задачи, пока не истечет ctx.
func drain(ctx context.Context, server shutdowner, stopWorkers context.CancelFunc,
	consumerDone <-chan struct{}, tasks taskWaiter) {
	if err := server.Shutdown(ctx); err != nil {
		zlog.Logger.Warn().Err(err).Msg("HTTP server shutdown failed")
	}

	stopWorkers()
	if consumerDone != nil {
		select {
		case <-consumerDone:
		case <-ctx.Done():
			zlog.Logger.Warn().Msg("order consumer did not stop before shutdown")
		}
	}

	if err := tasks.Wait(ctx); err != nil {
		zlog.Logger.Warn().Err(err).Msg("background tasks did not finish before shutdown")
	}
}

// runMigrate запускает приложение в режиме миграций.
func (a *Application) runMigrate() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("migrate command requires direction (up/down/goto <version>)")
	}

	direction := os.Args[2]
	var target uint64
	switch direction {
	case "up", "down":
	case "goto":
		if len(os.Args) < 4 {
			return fmt.Errorf("migrate goto requires version")
		}
		v, err := strconv.ParseUint(os.Args[3], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid migration version %q: %w", os.Args[3], err)
		}
		target = v
	default:
		return fmt.Errorf("unknown migrate direction: %s (use up/down/goto)", direction)
	}

	zlog.Logger.Info().Str("direction", direction).Msg("Running migrations...")
	db, err := initDatabase(a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer func(Master *sql.DB) {
		_ = Master.Close()
	}(db.Master)

	m, err := migrator.NewMigrator(db.Master, a.config.Migrations.Path)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to close migrator")
		}
	}()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		err = m.MigrateTo(uint(target))
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	version, err := m.Version()
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to read migration version")
	}
	zlog.Logger.Info().Uint("version", version).Msg("Migrations applied successfully")
	return nil
}

// initConnections инициализирует все подключения.
func (a *Application) initConnections() error {
	var err error

	a.db, err = initDatabase(a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}

	a.redis, err = initRedis(a.config.Redis)
	if err != nil {
		return fmt.Errorf("failed to init redis: %w", err)
	}

	if a.config.RabbitMQ.URL != "" {
		a.rabbit, err = initRabbitMQ(a.config.RabbitMQ)
		if err != nil {
			return fmt.Errorf("failed to init rabbitmq: %w", err)
		}
	} else {
		zlog.Logger.Warn().Msg("RabbitMQ url is empty, orders will be dispatched inline")
	}

	if err := a.initServices(); err != nil {
		return fmt.Errorf("failed to init services: %w", err)
	}

	return nil
}

// initDatabase инициализирует подключение к базе данных.
func initDatabase(cfg cfgman.DatabaseConfig) (*dbpg.DB, error) {
	opts := &dbpg.Options{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	}

	db, err := dbpg.New(cfg.DSN, nil, opts)
	if err != nil {
		return nil, err
	}

	if err := db.Master.Ping(); err != nil {
		return nil, err
	}

	zlog.Logger.Info().Msg("Database connection established")
	return db, nil
}

// initRedis инициализирует подключение к Redis.
func initRedis(cfg cfgman.RedisConfig) (*redis.Client, error) {
	client := redis.New(cfg.Addr, cfg.Password, cfg.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	zlog.Logger.Info().Msg("Redis connection established")
	return client, nil
}

// initRabbitMQ подключается к RabbitMQ и объявляет очередь заказов.
func initRabbitMQ(cfg cfgman.RabbitMQConfig) (*rabbit.Client, error) {
	client, err := rabbit.NewClient(rabbit.ClientConfig{
		URL:            cfg.URL,
		ConnectionName: cfg.ConnectionName,
		ConnectTimeout: cfg.ConnectTimeout,
		Heartbeat:      cfg.Heartbeat,
	})
	if err != nil {
		return nil, err
	}
	err = client.DeclareQueue(cfg.QueueName, cfg.ExchangeName, cfg.RoutingKey, nil)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to declare queue")
		_ = client.Close()
		return nil, err
	}
	zlog.Logger.Info().Msg("RabbitMQ connection established")
	return client, nil
}

// initServices инициализирует сервисы приложения.
func (a *Application) initServices() error {
	notificationRepo := pg.NewPostgresRepo(a.db)
	settingsRepo := pg.NewSettingsRepo(a.db)

	a.settings = cache.NewSettingsStore(settingsRepo, settingsRepo, a.redis, a.config.Cache.Expiration)
	a.service = service.NewNotificationService(notificationRepo, a.redis, a.config.Cache.Expiration)
	a.tasks = supervisor.New()

	smsSender := sms.NewGatewaySender(sms.Config{
		Endpoint: a.config.SMS.Endpoint,
		Username: a.config.SMS.Username,
		Password: a.config.SMS.Password,
		Tag:      a.config.SMS.Tag,
		Timeout:  a.config.SMS.Timeout,
	}, nil)

	a.dispatcher = dispatch.NewDispatcher(
		a.settings,
		a.settings,
		sender.NewChannelSender(smsSender),
		service.NewRecorder(a.service),
		a.tasks,
	)

	if a.rabbit != nil {
		ch, err := a.rabbit.Channel()
		if err != nil {
			return fmt.Errorf("failed to open publish channel: %w", err)
		}
		a.pubChannel = ch
		a.publisher = rabbit.NewPublisher(ch,
			a.config.RabbitMQ.ExchangeName,
			a.config.RabbitMQ.RoutingKey,
			"application/json")
		a.consumer = worker.NewConsumer(a.dispatcher, a.rabbit)
	}

	return nil
}

// setupHTTPServer настраивает HTTP сервер.
func (a *Application) setupHTTPServer() error {
	a.server = ginext.New(gin.ReleaseMode)
	a.server.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
	}))

	a.server.Use(middleware.RequestIDMiddleware())
	a.server.Use(middleware.LoggingMiddleware())
	a.server.Use(middleware.MetricsMiddleware())

	var publisher domain.OrderEventPublisher
	if a.publisher != nil {
		publisher = a.publisher
	}
	h := handlers.NewHandlersSet(a.service, a.settings, a.dispatcher, publisher)

	a.server.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tasks": a.tasks.Counters()})
	})
	a.server.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server.POST("/orders/created", h.OrderCreatedHandler)

	notifications := a.server.RouterGroup.Group("notifications")
	notifications.POST("", h.CreateNotificationHandler)
	notifications.GET("/:id", h.GetNotificationHandler)

	a.server.GET("/accounts/:accountId/notifications", h.ListNotificationsHandler)

	settings := a.server.RouterGroup.Group("shops/:shopId/settings")
	settings.GET("/notifications", h.GetRulesHandler)
	settings.PUT("/notifications", h.UpdateRulesHandler)

	return nil
}

// startWorkers запускает чтение очереди заказов. Ошибка consumer приходит
// в первый канал, второй закрывается после его остановки.
func (a *Application) startWorkers(ctx context.Context) (<-chan error, <-chan struct{}) {
	if a.consumer == nil {
		return nil, nil
	}
	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := a.consumer.Start(ctx, a.config.RabbitMQ.QueueName,
			a.config.RabbitMQ.Workers, a.config.RabbitMQ.Prefetch)
		if err != nil {
			zlog.Logger.Error().Err(err).Msg("order consumer stopped with error")
			errCh <- err
		}
	}()

	zlog.Logger.Info().Msg("Workers started successfully")
	return errCh, done
}

// cleanup освобождает ресурсы.
func (a *Application) cleanup() {
	zlog.Logger.Info().Msg("Cleaning up resources...")

	if a.pubChannel != nil {
		_ = a.pubChannel.Close()
	}

	if a.rabbit != nil {
		_ = a.rabbit.Close()
	}

	if a.db != nil {
		_ = a.db.Master.Close()
	}

	zlog.Logger.Info().Msg("Cleanup completed")
}
