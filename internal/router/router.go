package router

import (
	"time"

	"carbonledger/internal/config"
	"carbonledger/internal/handler"
	"carbonledger/internal/infra"
	"carbonledger/internal/middleware"
	"carbonledger/internal/repository"
	"carbonledger/internal/service"
	"carbonledger/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, factorCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	factorSource := infra.NewCSVFactorSource(cfg.FactorSourceURL)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	contractRepo := repository.NewContractRepository(db)
	productRepo := repository.NewProductRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	factorRepo := repository.NewFactorRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	contractSvc := service.NewContractService(contractRepo)
	productSvc := service.NewProductService(productRepo, contractRepo)
	entrySvc := service.NewEntryService(entryRepo, productRepo)
	factorSvc := service.NewFactorService(factorRepo, factorSource, factorCB, rdb)
	footprintSvc := service.NewFootprintService(productRepo, contractRepo, factorSvc)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	reportSvc := service.NewReportService(reportRepo, contractRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	contractsH := handler.NewContractsHandler(contractSvc, footprintSvc, reportSvc)
	productsH := handler.NewProductsHandler(productSvc, footprintSvc)
	entriesH := handler.NewEntriesHandler(entrySvc)
	factorsH := handler.NewFactorsHandler(factorSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, factorCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", middleware.LoginRateLimiter(), authH.Refresh)
	}

	// Factor catalog reads — no auth required, the tables are public reference data
	r.GET("/v1/factors/materials", factorsH.ListMaterials)
	r.GET("/v1/factors/transports", factorsH.ListTransports)
	r.GET("/v1/factors/electricity", factorsH.ListElectricity)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: viewer, analyst, admin — declared per-endpoint

		// Contracts — all authenticated roles can read and compute
		v1.GET("/contracts", middleware.RequireRole("viewer", "analyst", "admin"), contractsH.List)
		v1.GET("/contracts/:id", middleware.RequireRole("viewer", "analyst", "admin"), contractsH.Get)
		v1.GET("/contracts/:id/footprint", middleware.RequireRole("viewer", "analyst", "admin"), contractsH.Footprint)
		v1.GET("/contracts/:id/export", middleware.RequireRole("viewer", "analyst", "admin"), contractsH.Export)
		v1.GET("/contracts/:id/products", middleware.RequireRole("viewer", "analyst", "admin"), productsH.ListByContract)
		v1.GET("/contracts/:id/reports", middleware.RequireRole("viewer", "analyst", "admin"), contractsH.ListReports)
		// Write operations — analyst or admin
		v1.POST("/contracts", middleware.RequireRole("analyst", "admin"), contractsH.Create)
		v1.PUT("/contracts/:id", middleware.RequireRole("analyst", "admin"), contractsH.Update)
		v1.DELETE("/contracts/:id", middleware.RequireRole("analyst", "admin"), contractsH.Deactivate)
		v1.POST("/contracts/:id/reactivate", middleware.RequireRole("analyst", "admin"), contractsH.Reactivate)
		v1.POST("/contracts/:id/products", middleware.RequireRole("analyst", "admin"), productsH.Create)
		v1.POST("/contracts/:id/report", middleware.RequireRole("analyst", "admin"), contractsH.CreateReport)

		// Products
		v1.GET("/products/:id", middleware.RequireRole("viewer", "analyst", "admin"), productsH.Get)
		v1.GET("/products/:id/footprint", middleware.RequireRole("viewer", "analyst", "admin"), productsH.Footprint)
		v1.PUT("/products/:id", middleware.RequireRole("analyst", "admin"), productsH.Update)
		v1.DELETE("/products/:id", middleware.RequireRole("analyst", "admin"), productsH.Delete)

		// Material and transport entries — analyst or admin
		entries := v1.Group("/products/:id", middleware.RequireRole("analyst", "admin"))
		{
			entries.POST("/materials", entriesH.CreateMaterial)
			entries.PUT("/materials/:entryID", entriesH.UpdateMaterial)
			entries.DELETE("/materials/:entryID", entriesH.DeleteMaterial)
			entries.POST("/transports", entriesH.CreateTransport)
			entries.PUT("/transports/:entryID", entriesH.UpdateTransport)
			entries.DELETE("/transports/:entryID", entriesH.DeleteTransport)
		}

		// Factor refresh — administrator only (audit trail included)
		factors := v1.Group("/factors", middleware.RequireRole("admin"))
		{
			factors.POST("/refresh", factorsH.Refresh)
			factors.GET("/refresh-logs", factorsH.RefreshLogs)
		}

		// Reports — any authenticated role can fetch status and the PDF
		v1.GET("/reports/:id", middleware.RequireRole("viewer", "analyst", "admin"), reportsH.Get)
		v1.GET("/reports/:id/pdf", middleware.RequireRole("viewer", "analyst", "admin"), reportsH.DownloadPDF)

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.POST("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
