package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/config"
	httpx "github.com/you/staysvc/internal/http"
	"github.com/you/staysvc/internal/http/handlers"
	"github.com/you/staysvc/internal/http/middleware"
	"github.com/you/staysvc/internal/infrastructure/auth"
	"github.com/you/staysvc/internal/infrastructure/cache"
	"github.com/you/staysvc/internal/infrastructure/database"
	"github.com/you/staysvc/internal/infrastructure/export"
	"github.com/you/staysvc/internal/infrastructure/messaging"
	"github.com/you/staysvc/internal/infrastructure/mongorepo"
	"github.com/you/staysvc/internal/infrastructure/repositories"
	"github.com/you/staysvc/internal/infrastructure/storage"
	"github.com/you/staysvc/internal/metrics"
	"github.com/you/staysvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	Mongo       *mongo.Database
	RedisClient *redis.Client
	Metrics     *metrics.Metrics

	// Repositories
	AccountRepo  domain.AccountRepository
	ListingRepo  domain.ListingRepository
	BookingRepo  domain.BookingRepository
	listingCache *cache.ListingCache

	// Collaborators
	PasswordSvc domain.PasswordService
	TokenSvc    domain.TokenService
	Policy      domain.OwnershipPolicy
	Events      domain.EventPublisher
	Images      domain.ImageStore
	Exporter    domain.BookingExporter
	rabbit      *messaging.RabbitMQPublisher

	// Services
	IdentitySvc    domain.IdentityService
	CatalogSvc     domain.CatalogService
	ReservationSvc domain.ReservationService

	Router *gin.Engine
}

// NewContainer creates and initializes all dependencies.
// On error every resource opened so far is released.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg, Metrics: metrics.New()}

	steps := []func(context.Context) error{c.initStorage, c.initCache, c.initCollaborators}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.initServices()
	c.initRouter()
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	cfg := c.Config
	if cfg.DBDriver == config.DriverMongo {
		db, err := database.ConnectMongo(ctx, cfg.DSN, cfg.MongoDB)
		if err != nil {
			return err
		}
		c.Mongo = db
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		c.AccountRepo = mongorepo.NewAccountRepository(db)
		c.ListingRepo = mongorepo.NewListingRepository(db)
		c.BookingRepo = mongorepo.NewBookingRepository(db)
		return nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DSN, cfg.GinMode == gin.DebugMode)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	c.DB = db
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.AccountRepo = repositories.NewAccountRepository(db)
	c.ListingRepo = repositories.NewListingRepository(db)
	c.BookingRepo = repositories.NewBookingRepository(db)
	return nil
}

// initCache puts the two tier search cache in front of the listing repository
func (c *Container) initCache(ctx context.Context) error {
	cfg := c.Config

	var remote cache.Remote
	switch cfg.CacheBackend {
	case config.CacheNone:
		log.Printf("CACHE_DISABLED: listing searches go straight to storage")
		return nil
	case config.CacheMemcached:
		remote = cache.NewMemcacheRemote(cfg.MemcachedServers...)
	default:
		rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		c.RedisClient = rdb.Client
		if err := rdb.Ping(ctx); err != nil {
			return fmt.Errorf("failed to initialize search cache: %w", err)
		}
		remote = cache.NewRedisRemote(rdb.Client)
	}

	c.listingCache = cache.NewListingCache(c.ListingRepo, remote, cache.Options{
		LocalSize: cfg.CacheLocalSize,
		LocalTTL:  cfg.CacheLocalTTL,
		RemoteTTL: cfg.CacheRemoteTTL,
		Observe:   c.Metrics.ObserveCacheLookup,
	})
	c.ListingRepo = c.listingCache
	return nil
}

func (c *Container) initCollaborators(ctx context.Context) error {
	cfg := c.Config

	c.PasswordSvc = auth.NewPasswordService(cfg.BcryptCost)
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)

	var policyDB *gorm.DB
	if cfg.CasbinPersist {
		policyDB = c.DB
	}
	policy, err := auth.NewOwnershipPolicy(policyDB)
	if err != nil {
		return fmt.Errorf("failed to initialize ownership policy: %w", err)
	}
	c.Policy = policy

	var events domain.EventPublisher = messaging.NewLogPublisher()
	if cfg.RabbitMQURL != "" {
		rabbit, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Printf("EVENTS_FALLBACK: rabbitmq unavailable, logging events instead: %v", err)
		} else {
			c.rabbit = rabbit
			events = rabbit
		}
	}
	c.Events = c.Metrics.InstrumentPublisher(events)

	if s := cfg.Storage; s.Endpoint != "" {
		store, err := storage.NewMinioStore(ctx, s.Endpoint, s.AccessKey, s.SecretKey, s.Bucket, s.UseSSL, s.PublicURL)
		if err != nil {
			return fmt.Errorf("failed to initialize image storage: %w", err)
		}
		c.Images = store
	}

	c.Exporter = export.NewXLSXExporter()
	return nil
}

func (c *Container) initServices() {
	c.IdentitySvc = services.NewIdentityService(c.AccountRepo, c.PasswordSvc, c.TokenSvc, c.Events)
	c.CatalogSvc = services.NewCatalogService(c.ListingRepo, c.AccountRepo, c.Policy, c.Images, c.Events)
	c.ReservationSvc = services.NewReservationService(c.BookingRepo, c.ListingRepo, c.Exporter, c.Events)
}

func (c *Container) initRouter() {
	c.Router = httpx.BuildRouter(
		httpx.RouterInfo{
			Name:       c.Config.AppName,
			Version:    c.Config.AppVersion,
			LogRequest: c.Config.GinMode == gin.DebugMode,
		},
		handlers.NewAuthHandlers(c.IdentitySvc),
		handlers.NewListingHandlers(c.CatalogSvc, c.ReservationSvc),
		handlers.NewBookingHandlers(c.ReservationSvc, c.Exporter),
		middleware.NewSessionGate(c.TokenSvc),
		c.Metrics,
	)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.listingCache != nil {
		c.listingCache.Close()
	}
	if c.rabbit != nil {
		if err := c.rabbit.Close(); err != nil {
			log.Printf("rabbitmq close: %v", err)
		}
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.Mongo != nil {
		if err := c.Mongo.Client().Disconnect(context.Background()); err != nil {
			log.Printf("mongo disconnect: %v", err)
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
