package router

import (
	"context"
	"time"

	"storevision/internal/config"
	"storevision/internal/handler"
	"storevision/internal/middleware"
	"storevision/internal/repository"
	"storevision/internal/service"
	"storevision/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	rolAdmin  = "administradora"
	rolCajero = "cajero"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb and dispatcher may be nil; the price cache and stock alerts are then off.
// ctx bounds the background purge of the rate limiters.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, sucursalID uuid.UUID) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	globalLimiter := middleware.NewRateLimiter(1000, time.Minute)
	loginLimiter := middleware.NewRateLimiter(5, time.Minute)
	globalLimiter.StartPurge(ctx, 5*time.Minute)
	loginLimiter.StartPurge(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS(cfg.IsProduction()))
	r.Use(globalLimiter.Middleware("Demasiadas solicitudes, intente más tarde"))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	uow := service.NewUnitOfWork(db)
	auditoriaSvc := service.NewAuditoriaService(auditoriaRepo)
	precioSvc := service.NewPrecioService(productoRepo, rdb)
	notifier := service.NewStockNotifier(precioSvc, dispatcher, cfg.AlertasEmail)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoRepo, auditoriaSvc, uow, notifier)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, reporteRepo, inventarioSvc, auditoriaSvc, uow, notifier, sucursalID)
	productoSvc := service.NewProductoService(productoRepo, inventarioSvc, auditoriaSvc, uow, precioSvc)
	authSvc := service.NewAuthService(usuarioRepo, auditoriaSvc, uow, cfg)
	reporteSvc := service.NewReporteService(reporteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	auditoriaH := handler.NewAuditoriaHandler(auditoriaSvc)
	consultaH := handler.NewConsultaPreciosHandler(precioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware("Demasiados intentos de login, intente en un minuto"), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	r.GET("/v1/precio/:codigo", consultaH.GetPrecio)

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	todos := middleware.RequireRole(rolCajero, rolAdmin)
	soloAdmin := middleware.RequireRole(rolAdmin)
	{
		ventas := v1.Group("/ventas")
		{
			ventas.POST("", todos, ventasH.RegistrarVenta)
			ventas.GET("", todos, ventasH.ListarVentas)
			ventas.GET("/consolidado", todos, ventasH.Consolidado)
			ventas.GET("/:id", todos, ventasH.ObtenerVenta)
			ventas.GET("/:id/ticket", todos, ventasH.Ticket)
			ventas.POST("/:id/anular", soloAdmin, ventasH.AnularVenta)
		}

		prods := v1.Group("/productos")
		{
			prods.GET("", todos, productosH.Listar)
			prods.GET("/:id", todos, productosH.ObtenerPorID)
			prods.POST("", soloAdmin, productosH.Crear)
			prods.DELETE("/:id", soloAdmin, productosH.Desactivar)
		}

		inv := v1.Group("/inventario")
		{
			inv.POST("/movimientos", todos, inventarioH.RegistrarMovimiento)
			inv.GET("/movimientos", todos, inventarioH.ListarMovimientos)
			inv.GET("/alertas", todos, inventarioH.ObtenerAlertas)
			inv.GET("/reconciliacion", soloAdmin, inventarioH.Reconciliacion)
		}

		rep := v1.Group("/reportes", soloAdmin)
		{
			rep.GET("/balance", reportesH.Balance)
			rep.GET("/indicadores-ventas", reportesH.IndicadoresVentas)
			rep.GET("/productos-mas-vendidos", reportesH.ProductosMasVendidos)
		}

		usuarios := v1.Group("/usuarios", soloAdmin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
		}

		v1.GET("/auditoria", soloAdmin, auditoriaH.Listar)
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
