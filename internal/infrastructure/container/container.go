package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/config"
	"github.com/gdugdh24/barter-backend/internal/delivery/http"
	"github.com/gdugdh24/barter-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/barter-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/infrastructure/cache"
	"github.com/gdugdh24/barter-backend/internal/infrastructure/database"
	"github.com/gdugdh24/barter-backend/internal/infrastructure/notifier"
	"github.com/gdugdh24/barter-backend/internal/infrastructure/server"
	"github.com/gdugdh24/barter-backend/internal/infrastructure/storage"
	"github.com/gdugdh24/barter-backend/internal/repository"
	"github.com/gdugdh24/barter-backend/internal/repository/memory"
	"github.com/gdugdh24/barter-backend/internal/repository/postgres"
	"github.com/gdugdh24/barter-backend/internal/usecase/auth"
	"github.com/gdugdh24/barter-backend/internal/usecase/candidate"
	"github.com/gdugdh24/barter-backend/internal/usecase/karma"
	"github.com/gdugdh24/barter-backend/internal/usecase/listing"
	"github.com/gdugdh24/barter-backend/internal/usecase/matchrequest"
	"github.com/gdugdh24/barter-backend/internal/usecase/profile"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server

	MatchRequests *matchrequest.MatchRequestUseCase
}

type repositories struct {
	profiles      repository.ProfileRepository
	listings      repository.ListingRepository
	matchRequests repository.MatchRequestRepository
	tx            repository.Transactor
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	repos, err := c.initRepositories(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Interface-typed so a disabled cache stays a true nil.
	var (
		candidateCache candidate.Cache
		invalidator    candidate.Invalidator
	)
	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.Redis = client
		rc := cache.NewCandidateCache(client, cfg.Redis.CandidateTTL)
		candidateCache, invalidator = rc, rc
	}

	var matchNotifier matchrequest.Notifier = notifier.NewLogNotifier(logger)
	if cfg.Mail.Enabled {
		matchNotifier = notifier.NewEmailNotifier(notifier.NewSMTPSender(cfg.Mail))
	}

	ledger := karma.NewLedger(repos.profiles, logger)
	images := storage.NewLocalImageStore(cfg.Storage.ImagePath)

	listingUseCase := listing.NewListingUseCase(repos.profiles, repos.listings, ledger, images, invalidator, logger)
	profileUseCase := profile.NewProfileUseCase(repos.profiles, repos.listings, listingUseCase, invalidator, logger)
	candidateUseCase := candidate.NewCandidateUseCase(
		repos.profiles,
		repos.listings,
		repos.matchRequests,
		candidateCache,
		candidate.Settings{
			ProximityLevel: cfg.Matching.ProximityLevel,
			MaxCandidates:  cfg.Matching.MaxCandidates,
		},
		logger,
	)
	matchRequestUseCase := matchrequest.NewMatchRequestUseCase(
		repos.profiles,
		repos.listings,
		repos.matchRequests,
		repos.tx,
		ledger,
		matchNotifier,
		invalidator,
		matchrequest.Settings{
			DailyCap:      cfg.Matching.DailyCap,
			NotifyTimeout: cfg.Mail.SendTimeout,
		},
		logger,
	)
	tokenUseCase := auth.NewTokenUseCase(cfg.JWT.AccessSecret)

	if err := handler.RegisterValidators(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := http.NewRouter(
		handler.NewProfileHandler(profileUseCase),
		handler.NewListingHandler(domain.KindOffer, listingUseCase),
		handler.NewListingHandler(domain.KindRequest, listingUseCase),
		handler.NewCandidateHandler(candidateUseCase),
		handler.NewMatchRequestHandler(matchRequestUseCase),
		middleware.NewAuthMiddleware(tokenUseCase),
		logger,
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup(), logger)
	c.MatchRequests = matchRequestUseCase
	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) (*repositories, error) {
	switch c.Config.Storage.Type {
	case config.StoragePostgres:
		db, err := database.NewPostgresDB(ctx, &c.Config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return &repositories{
			profiles:      postgres.NewProfileRepository(db),
			listings:      postgres.NewListingRepository(db),
			matchRequests: postgres.NewMatchRequestRepository(db),
			tx:            postgres.NewTransactor(db),
		}, nil
	case config.StorageMemory:
		c.Logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			profiles:      store.Profiles(),
			listings:      store.Listings(),
			matchRequests: store.MatchRequests(),
			tx:            store.Transactor(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", c.Config.Storage.Type)
	}
}

// Close waits for pending notifications and closes all connections
func (c *Container) Close() error {
	if c.MatchRequests != nil {
		c.MatchRequests.Wait()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing redis", zap.Error(err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
