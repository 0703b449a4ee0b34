package router

import (
	"fincontrol/internal/config"
	"fincontrol/internal/handler"
	"fincontrol/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine with all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	jwtSecret := cfg.JWT.Secret

	// public routes
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	r.POST("/usuarios/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	// authenticated routes
	protected := r.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)

	categoriaHandler := handler.NewCategoriaHandler(db)
	protected.GET("/categorias/all", categoriaHandler.ListCategorias)
	protected.POST("/categorias", categoriaHandler.CreateCategoria)
	protected.PUT("/categorias/:id", categoriaHandler.UpdateCategoria)
	protected.DELETE("/categorias/:id", categoriaHandler.DeleteCategoria)

	transacaoHandler := handler.NewTransacaoHandler(db)
	protected.GET("/transacoes/all", transacaoHandler.ListTransacoes)
	protected.POST("/transacoes", transacaoHandler.CreateTransacao)
	protected.PUT("/transacoes/:id", transacaoHandler.UpdateTransacao)
	protected.DELETE("/transacoes/:id", transacaoHandler.DeleteTransacao)

	// dashboard aggregations; registered before /transacoes/:id so the
	// literal paths win
	protected.GET("/transacoes/relacao-receitas-despesas-mensal", transacaoHandler.MonthlyIncomeExpense)
	protected.GET("/transacoes/valor-total-transacoes-categoria", transacaoHandler.CategoryTotals)
	protected.GET("/transacoes/saldo-diario", transacaoHandler.DailyBalance)
	protected.GET("/transacoes/:id", transacaoHandler.GetTransacao)

	relatorioHandler := handler.NewRelatorioHandler(db)
	protected.POST("/relatorio", relatorioHandler.Generate)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/exportar/csv", exportHandler.ExportCSV)
	protected.GET("/exportar/xlsx", exportHandler.ExportXLSX)

	// admin listings
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminMiddleware())

	adminHandler := handler.NewAdminHandler(db)
	admin.GET("/usuarios", adminHandler.ListUsuarios)
	admin.GET("/categorias", adminHandler.ListCategorias)
	admin.GET("/transacoes", adminHandler.ListTransacoes)
	admin.GET("/categoria-transacoes", adminHandler.ListCategoriaTransacoes)
	admin.GET("/logs", adminHandler.ListLogs)

	return r
}
