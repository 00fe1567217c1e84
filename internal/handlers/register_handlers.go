package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/taxdesk/vat_recon_app/cmd/docs"
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	portssvc "github.com/taxdesk/vat_recon_app/internal/core/ports/services"
	"github.com/taxdesk/vat_recon_app/internal/dto"
	"github.com/taxdesk/vat_recon_app/internal/middleware"
	"github.com/taxdesk/vat_recon_app/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerRequestValidations()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	registerClientRoutes(v1, services.Client)
	registerPeriodRoutes(v1, services.Period, services.Client)
}

// registerRequestValidations adds cross-field checks gin's tag validation
// cannot express: a quarterly period tops out at 4, not 12.
func registerRequestValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(dto.CalculatePeriodRequest)
		maxPeriod := domain.PeriodType(req.PeriodType).MaxPeriod()
		if req.Period > maxPeriod {
			sl.ReportError(req.Period, "Period", "period", "ltePeriodTypeMax", "")
		}
	}, dto.CalculatePeriodRequest{})
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
