package app

import (
	"fmt"

	"github.com/VSD-Devs/sandalwood-memories/internal/config"
	"github.com/VSD-Devs/sandalwood-memories/internal/db"
	"github.com/VSD-Devs/sandalwood-memories/internal/repository"
	"github.com/VSD-Devs/sandalwood-memories/internal/service"
	"github.com/VSD-Devs/sandalwood-memories/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	Storage             storage.Storage
	SubscriptionService *service.SubscriptionService
	QuotaService        *service.QuotaService
	MemorialService     *service.MemorialService
	MediaService        *service.MediaService
	TimelineService     *service.TimelineService
}

func New(cfg *config.Config) (*App, error) {
	var database *sqlx.DB

	var memorialRepository repository.MemorialRepository
	var mediaRepository repository.MediaRepository
	var timelineRepository repository.TimelineRepository
	var usageRepository repository.UsageRepository
	var subscriptionRepository repository.SubscriptionRepository

	// Without a datastore the service still runs: quota checks fail open and
	// the content routes are not mounted.
	if cfg.HasDatastore() {
		var err error
		database, err = db.Init(cfg.DBDriver, cfg.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %v", err)
		}

		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %v", err)
		}

		memorialRepository = repository.NewMemorialRepository(database)
		mediaRepository = repository.NewMediaRepository(database)
		timelineRepository = repository.NewTimelineRepository(database)
		usageRepository = repository.NewUsageRepository(database)
		subscriptionRepository = repository.NewSubscriptionRepository(database)
	}

	var fileStorage storage.Storage
	if cfg.HasStorage() {
		var err error
		fileStorage, err = storage.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %v", err)
		}
	}

	// Services
	subscriptionService := service.NewSubscriptionService(subscriptionRepository)
	quotaService := service.NewQuotaService(
		memorialRepository,
		mediaRepository,
		timelineRepository,
		usageRepository,
		subscriptionService,
		cfg.HasDatastore(),
	)
	memorialService := service.NewMemorialService(memorialRepository, quotaService)
	mediaService := service.NewMediaService(mediaRepository, memorialRepository, quotaService, fileStorage)
	timelineService := service.NewTimelineService(timelineRepository, memorialRepository, quotaService)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		Storage:             fileStorage,
		SubscriptionService: subscriptionService,
		QuotaService:        quotaService,
		MemorialService:     memorialService,
		MediaService:        mediaService,
		TimelineService:     timelineService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
