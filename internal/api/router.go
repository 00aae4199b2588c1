package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/auth"
	"github.com/nekogravitycat/court-reservation/internal/availability"
	availHttp "github.com/nekogravitycat/court-reservation/internal/availability/http"
	"github.com/nekogravitycat/court-reservation/internal/booking"
	bookingHttp "github.com/nekogravitycat/court-reservation/internal/booking/http"
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	catalogHttp "github.com/nekogravitycat/court-reservation/internal/catalog/http"
)

// Config holds what the router needs to assemble the HTTP surface.
type Config struct {
	IsProduction        bool
	ProdOrigins         string
	Logger              *zap.Logger
	CatalogService      catalog.Service
	AvailabilityService availability.Service
	BookingService      booking.Service
	JWTManager          *auth.JWTManager
}

func init() {
	// Register custom binding validators once for gin's default engine.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("equipment", bookingHttp.ValidateEquipment)
	}
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: Logs request information through zap.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(log), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:3000", // Frontend dev server
		"http://localhost:8081", // Swagger
	}
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user has admin privileges.
	adminMiddleware := RequireAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	catalogHandler := catalogHttp.NewHandler(cfg.CatalogService)
	availHandler := availHttp.NewHandler(cfg.AvailabilityService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		catalogHttp.RegisterRoutes(v1, catalogHandler)
		availHttp.RegisterRoutes(v1, availHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
