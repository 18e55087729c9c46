package router

import (
	"net/http"

	"finance-dashboard/internal/app"
	"finance-dashboard/internal/handler"
	"finance-dashboard/internal/middleware"
	"finance-dashboard/internal/util"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin engine for the wired application.
func SetupRouter(a *app.App) *gin.Engine {
	if a.Config.Server.Mode != "" {
		gin.SetMode(a.Config.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(a.Logger), gin.Recovery())

	// 本地存储的头像由本进程提供
	if a.AvatarDir != "" && a.Config.Storage.BaseURL != "" {
		r.Static(a.Config.Storage.BaseURL, a.AvatarDir)
	}

	r.GET("/healthz", func(c *gin.Context) {
		util.Success(c, util.Response{
			"source":  a.Source.Name(),
			"theme":   a.Theme.Name(),
			"loading": a.Session.Loading(),
		})
	})

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(a.Session)
	api.GET("/auth/session", authHandler.State)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/demo", authHandler.Demo)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/reset", authHandler.RequestReset)
	api.POST("/auth/reset/confirm", authHandler.ConfirmReset)

	// 行情和新闻不需要登录
	marketHandler := handler.NewMarketHandler()
	api.GET("/market/quotes", marketHandler.Quotes)
	api.GET("/market/quotes/:ticker", marketHandler.Quote)
	api.GET("/market/news", marketHandler.News)

	exportHandler := handler.NewExportHandler(a.Ledger)
	api.GET("/export/templates", exportHandler.Templates)
	api.GET("/export/templates/:name", exportHandler.Template)

	eventsHandler := handler.NewEventsHandler(a.Session, a.Ledger, a.Logger)
	api.GET("/events", eventsHandler.Stream)

	// 需要会话才能访问的接口
	protected := api.Group("")
	protected.Use(middleware.RequireSession(a.Session))

	profileHandler := handler.NewProfileHandler(a.Session)
	protected.GET("/profile", profileHandler.Get)
	protected.PATCH("/profile", profileHandler.Update)
	protected.POST("/profile/email", profileHandler.UpdateEmail)
	protected.POST("/profile/password", profileHandler.ChangePassword)
	protected.POST("/profile/avatar", profileHandler.UploadAvatar)

	txHandler := handler.NewTransactionHandler(a.Ledger, a.Session)
	protected.GET("/transactions", txHandler.List)
	protected.POST("/transactions", txHandler.Create)
	protected.PUT("/transactions/:id", txHandler.Update)
	protected.DELETE("/transactions/:id", txHandler.Delete)
	protected.GET("/transactions/summary", txHandler.Summary)

	invHandler := handler.NewInvestmentHandler(a.Portfolio, a.Prices)
	protected.GET("/investments", invHandler.List)
	protected.POST("/investments", invHandler.Create)
	protected.DELETE("/investments/:id", invHandler.Delete)

	budgetHandler := handler.NewBudgetHandler(a.Budgets, a.Ledger)
	protected.GET("/budget", budgetHandler.Allocation)
	protected.GET("/budget/models", budgetHandler.ListModels)
	protected.POST("/budget/models", budgetHandler.SaveModel)

	protected.GET("/export/transactions", exportHandler.Transactions)

	r.NoRoute(func(c *gin.Context) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Rota não encontrada")
	})

	return r
}
