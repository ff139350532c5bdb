package app

import (
	"context"
	"fmt"
	"net/http"

	server "github.com/admin/tg-bots/veo-bot/internal/adapters/primary/http"
	adminController "github.com/admin/tg-bots/veo-bot/internal/adapters/primary/http/controllers/admin"
	healthcheckController "github.com/admin/tg-bots/veo-bot/internal/adapters/primary/http/controllers/healthcheck"
	veoController "github.com/admin/tg-bots/veo-bot/internal/adapters/primary/http/controllers/veo"
	yookassaController "github.com/admin/tg-bots/veo-bot/internal/adapters/primary/http/controllers/yookassa"
	kafkaConsumerAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/primary/kafka"
	kafkaHandlers "github.com/admin/tg-bots/veo-bot/internal/adapters/primary/kafka/handlers"
	alerterAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/storage/s3"
	tgAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/telegram"
	veoAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/veo"
	yookassaAdapter "github.com/admin/tg-bots/veo-bot/internal/adapters/secondary/yookassa"
	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/cache"
	paymentPorts "github.com/admin/tg-bots/veo-bot/internal/ports/payment"
	"github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/veo-bot/internal/ports/service"
	"github.com/admin/tg-bots/veo-bot/internal/ports/storage"
	adminLogRepo "github.com/admin/tg-bots/veo-bot/internal/repository/adminlog"
	generationRepo "github.com/admin/tg-bots/veo-bot/internal/repository/generation"
	ledgerRepo "github.com/admin/tg-bots/veo-bot/internal/repository/ledger"
	paymentRepo "github.com/admin/tg-bots/veo-bot/internal/repository/payment"
	userRepo "github.com/admin/tg-bots/veo-bot/internal/repository/user"
	alerterService "github.com/admin/tg-bots/veo-bot/internal/services/alerter"
	jobScheduler "github.com/admin/tg-bots/veo-bot/internal/services/jobs"
	"github.com/admin/tg-bots/veo-bot/internal/services/notify"
	telegramService "github.com/admin/tg-bots/veo-bot/internal/services/telegram"
	adminUsecase "github.com/admin/tg-bots/veo-bot/internal/usecases/admin"
	billingUsecase "github.com/admin/tg-bots/veo-bot/internal/usecases/billing"
	generationUsecase "github.com/admin/tg-bots/veo-bot/internal/usecases/generation"
	"github.com/jmoiron/sqlx"
)

type Dependencies struct {
	DB              *sqlx.DB
	HTTPServer      *http.Server
	TelegramService *telegramService.Service
	TelegramPoller  *tgAdapter.Poller
	KafkaProducer   *kafkaAdapter.Producer
	KafkaConsumer   *kafkaConsumerAdapter.Consumer
	Cache           cache.Cache
	JobScheduler    *jobScheduler.Scheduler
	Generation      *generationUsecase.UseCase
}

// initDependencies инициализирует все зависимости приложения
func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	db, err := a.initPostgres()
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	repos := a.initRepositories(db)

	if a.Cfg.Telegram == nil || a.Cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	tgClient := tgAdapter.NewClient(a.Cfg.Telegram.BotToken, a.Log)

	external := a.initExternalServices()

	// Очередь уведомлений: Kafka если сконфигурирована, иначе прямая отправка
	var notifier service.INotifier
	var kafkaProducer *kafkaAdapter.Producer
	var kafkaConsumer *kafkaConsumerAdapter.Consumer
	if a.Cfg.Kafka != nil && a.Cfg.Kafka.Brokers != "" && a.Cfg.Kafka.Topic != "" {
		kafkaProducer, err = kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to init kafka producer: %w", err)
		}
		notifier = notify.NewKafkaDispatcher(kafkaProducer, a.Log)

		notificationHandler := kafkaHandlers.NewNotificationHandler(tgClient, a.Log)
		kafkaConsumer, err = kafkaConsumerAdapter.NewConsumer(a.Cfg.Kafka, notificationHandler, a.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to init kafka consumer: %w", err)
		}
	} else {
		a.Log.Warn("kafka is not configured, sending notifications directly")
		notifier = notify.NewDirectDispatcher(tgClient, a.Log)
	}

	catalog, err := billingUsecase.LoadCatalog(a.Cfg.PackagesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages catalog: %w", err)
	}

	billing := billingUsecase.New(
		repos.Ledger,
		repos.Payment,
		external.CardProvider,
		tgClient,
		notifier,
		catalog,
		a.Log,
	)

	generation := generationUsecase.New(
		repos.Ledger,
		repos.Generation,
		external.VideoAPI,
		tgClient,
		external.FileStorage,
		notifier,
		a.Log,
	)

	admin := adminUsecase.New(
		repos.User,
		repos.Ledger,
		repos.Generation,
		repos.AdminLog,
		a.Cfg.Environment,
		a.Log,
	)

	if err := a.bootstrapAdmin(ctx, repos.User); err != nil {
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	tgService := telegramService.New(
		tgClient,
		repos.User,
		billing,
		generation,
		admin,
		external.Cache,
		a.Log,
	)

	poller := tgAdapter.NewPoller(tgClient, a.Cfg.Telegram, tgService.HandleUpdate, a.Log)

	httpServer := server.NewHTTPServer(a.Cfg.Server, a.Log,
		healthcheckController.New(db, a.Log),
		yookassaController.New(repos.Payment, billing, a.Log),
		veoController.New(generation, a.Log),
		adminController.New(admin, a.Log),
	)

	scheduler := a.initJobScheduler(external.Alerter, repos.Payment, billing, generation)

	return &Dependencies{
		DB:              db,
		HTTPServer:      httpServer,
		TelegramService: tgService,
		TelegramPoller:  poller,
		KafkaProducer:   kafkaProducer,
		KafkaConsumer:   kafkaConsumer,
		Cache:           external.Cache,
		JobScheduler:    scheduler,
		Generation:      generation,
	}, nil
}

// repositories содержит инициализированные репозитории
type repositories struct {
	User       repository.IUserRepo
	Ledger     repository.ILedgerRepo
	Payment    repository.IPaymentRepo
	Generation repository.IGenerationRepo
	AdminLog   repository.IAdminLogRepo
}

// initRepositories инициализирует репозитории для работы с БД
func (a *App) initRepositories(db *sqlx.DB) *repositories {
	persistenceLayer := pg.NewDB(db)
	return &repositories{
		User:       userRepo.New(persistenceLayer, a.Log),
		Ledger:     ledgerRepo.New(persistenceLayer, a.Log),
		Payment:    paymentRepo.New(persistenceLayer, a.Log),
		Generation: generationRepo.New(persistenceLayer, a.Log),
		AdminLog:   adminLogRepo.New(persistenceLayer, a.Log),
	}
}

// externalServices содержит внешние сервисы (часть опциональна)
type externalServices struct {
	VideoAPI     service.IVideoAPI
	CardProvider paymentPorts.ICardPaymentProvider
	FileStorage  storage.IFileStorage
	Alerter      service.IAlerterService
	Cache        cache.Cache
}

// initExternalServices инициализирует внешние сервисы (Veo, YooKassa, S3, Alerter, Cache)
func (a *App) initExternalServices() *externalServices {
	services := &externalServices{}

	// Veo API - обязательный
	if a.Cfg.Veo == nil {
		a.Cfg.Veo = &veoAdapter.Config{}
	}
	if a.Cfg.Veo.ApiKey == "" {
		a.Log.Warn("veo API key is missing, generations will fail")
	}
	services.VideoAPI = veoAdapter.NewClient(a.Cfg.Veo, a.Log)

	// YooKassa - опциональный (без неё работает только оплата Stars)
	if a.Cfg.YooKassa != nil && a.Cfg.YooKassa.IsConfigured() {
		services.CardProvider = yookassaAdapter.NewClient(a.Cfg.YooKassa, a.Log)
	} else {
		a.Log.Warn("yookassa is not configured, card payments disabled")
	}

	// S3 - опциональный (без него недоступна image-to-video генерация)
	if a.Cfg.S3 != nil && a.Cfg.S3.IsConfigured() {
		minioClient, err := a.Cfg.S3.NewClient()
		if err != nil {
			a.Log.Warn("failed to init s3 client, image-to-video disabled", "error", err)
		} else {
			services.FileStorage = s3Adapter.NewClient(minioClient, a.Cfg.S3, a.Log)
			a.Log.Info("s3 storage connected successfully")
		}
	} else {
		a.Log.Warn("s3 is not configured, image-to-video disabled")
	}

	// Alerter - опциональный
	if a.Cfg.Alerter != nil && a.Cfg.Alerter.BotToken != "" {
		alerterClient := alerterAdapter.NewClient(a.Cfg.Alerter, a.Log)
		services.Alerter = alerterService.New(alerterClient)
	}

	// Redis Cache - опциональный, fallback на in-memory
	if a.Cfg.Redis != nil {
		redisClient, err := a.Cfg.Redis.NewConnection()
		if err != nil {
			a.Log.Warn("failed to init redis cache, using in-memory cache", "error", err)
		} else {
			services.Cache = redisAdapter.NewClient(redisClient)
			a.Log.Info("redis cache connected successfully")
		}
	}
	if services.Cache == nil {
		services.Cache = inmemory.NewCache()
	}

	return services
}

// bootstrapAdmin выдаёт роль admin пользователю из конфига.
// Работает только в production: там же, где включены админские операции
func (a *App) bootstrapAdmin(ctx context.Context, users repository.IUserRepo) error {
	if a.Cfg.AdminID == 0 || a.Cfg.Environment != "production" {
		return nil
	}

	user, err := users.GetOrCreate(ctx, &domain.User{
		TelegramID: a.Cfg.AdminID,
		Status:     domain.UserStatusRegular,
	})
	if err != nil {
		return fmt.Errorf("failed to get or create admin user: %w", err)
	}

	if user.Status == domain.UserStatusAdmin {
		return nil
	}

	if err := users.SetStatus(ctx, a.Cfg.AdminID, domain.UserStatusAdmin); err != nil {
		return fmt.Errorf("failed to set admin status: %w", err)
	}

	a.Log.Info("admin bootstrapped", "telegram_id", a.Cfg.AdminID)
	return nil
}

// initJobScheduler регистрирует фоновые джобы
func (a *App) initJobScheduler(
	alerter service.IAlerterService,
	payments repository.IPaymentRepo,
	billing *billingUsecase.UseCase,
	generation *generationUsecase.UseCase,
) *jobScheduler.Scheduler {
	scheduler := jobScheduler.NewScheduler(a.Log, alerter)

	// Сверка карточных платежей нужна только при включённой ЮКассе
	if a.Cfg.YooKassa != nil && a.Cfg.YooKassa.IsConfigured() {
		scheduler.Register(jobScheduler.NewPaymentReconciler(payments, billing, a.Log))
	}

	scheduler.Register(jobScheduler.NewGenerationRecoverer(generation, a.Log))

	return scheduler
}
