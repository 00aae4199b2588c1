package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/api"
	"github.com/nekogravitycat/court-reservation/internal/auth"
	"github.com/nekogravitycat/court-reservation/internal/availability"
	"github.com/nekogravitycat/court-reservation/internal/booking"
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/pricing"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger
	Zone         *interval.Zone

	// DBPool selects the postgres backend. When it is nil the catalog and
	// the ledger are kept in memory, seeded from Catalog.
	DBPool  *pgxpool.Pool
	Catalog catalog.Snapshot

	// Redis enables the availability grid cache when set.
	Redis    *redis.Client
	CacheTTL time.Duration

	JWTSecret string
	JWTTTL    time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router       *gin.Engine
	JWTManager   *auth.JWTManager
	Catalog      catalog.Service
	Availability availability.Service
	Booking      booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Storage
	var (
		catalogRepo catalog.Repository
		bookingRepo booking.Repository
	)
	if cfg.DBPool != nil {
		catalogRepo = catalog.NewPgxRepository(cfg.DBPool)
		bookingRepo = booking.NewPgxRepository(cfg.DBPool)
	} else {
		catalogRepo = catalog.NewMemoryRepository(cfg.Catalog)
		bookingRepo = booking.NewMemoryRepository()
	}

	var cache availability.GridCache
	if cfg.Redis != nil {
		cache = availability.NewRedisGridCache(cfg.Redis, cfg.Zone.String(), cfg.CacheTTL)
	}

	// Catalog Module
	catalogService := catalog.NewService(catalogRepo)

	// Availability Module
	availService := availability.NewService(catalogService, booking.LedgerView(bookingRepo), cfg.Zone, cache, log)

	// Pricing Module
	pricingService := pricing.NewService(catalogService, cfg.Zone)

	// Booking Module
	bookingService := booking.NewService(bookingRepo, catalogService, availService, pricingService, cfg.Zone, log)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              log,
		CatalogService:      catalogService,
		AvailabilityService: availService,
		BookingService:      bookingService,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:       router,
		JWTManager:   jwtManager,
		Catalog:      catalogService,
		Availability: availService,
		Booking:      bookingService,
	}
}
