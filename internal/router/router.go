package router

import (
	"net/http"
	"time"

	"grabwallet/config"
	"grabwallet/internal/handler"
	"grabwallet/internal/middleware"
	"grabwallet/internal/repository"
	"grabwallet/internal/service"
	"grabwallet/pkg/lock"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, locker lock.Locker, log *logrus.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	// request logging stays off; Recovery only
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	loc := cfg.Ledger.Location()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	shareRepo := repository.NewShareCountRepository(db)
	planRepo := repository.NewPlanRepository(db)
	productRepo := repository.NewProductRepository(db)
	reportRepo := repository.NewReportRepository(db)
	levelRepo := repository.NewLevelRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	ledger := service.NewLedgerService(walletRepo, locker, cfg.Ledger, log)
	referrals := service.NewReferralService(userRepo, cfg.Referral.MaxDownline)
	plans := service.NewPlanService(planRepo, ledger, userRepo, cfg.Referral.ShareBalanceThreshold)
	authSvc := service.NewAuthService(cfg, userRepo, shareRepo, ledger, referrals, plans, log)
	grabSvc := service.NewGrabService(ledger, plans, referrals, shareRepo, productRepo, reportRepo, levelRepo, cfg, log)
	withdrawalSvc := service.NewWithdrawalService(ledger, withdrawalRepo, userRepo, settingRepo, cfg.Withdrawal, log)
	addressSvc := service.NewAddressService(addressRepo, userRepo)
	depositSvc := service.NewDepositService(ledger, userRepo, settingRepo, cfg.Deposit, log)
	teamSvc := service.NewTeamService(referrals, teamRepo, cfg.Referral.MaxDepth, loc)
	catalogSvc := service.NewCatalogService(planRepo, productRepo, levelRepo, cfg.Referral.DefaultLevelRates)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, log)
	walletHandler := handler.NewWalletHandler(ledger, depositSvc, log)
	grabHandler := handler.NewGrabHandler(grabSvc, reportRepo, log)
	referralHandler := handler.NewReferralHandler(teamSvc, loc, log)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc, addressSvc, log)
	catalogHandler := handler.NewCatalogHandler(catalogSvc, log)
	adminHandler := handler.NewAdminHandler(adminRepo, userRepo, settingRepo, auditRepo, catalogSvc, withdrawalSvc, depositSvc, ledger, log)

	authMw := middleware.AuthRequired(&cfg.JWT)
	grabLimit := middleware.RateLimitByUser(middleware.NewInMemoryRateLimiter(30, 60*time.Second))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("", authHandler.Me)
			me.GET("/wallet", walletHandler.GetBalance)
			me.GET("/wallet/transactions", walletHandler.ListTransactions)
			me.POST("/wallet/deposit", walletHandler.Deposit)
			me.GET("/level", grabHandler.Level)
			me.POST("/grab", grabLimit, grabHandler.Grab)
			me.GET("/grab/history", grabHandler.History)
			me.GET("/share-code", referralHandler.GetMyShareCode)
			me.GET("/team", referralHandler.TeamStats)
			me.GET("/team/members", referralHandler.TeamMembers)
			me.POST("/withdrawals", withdrawalHandler.Create)
			me.GET("/withdrawals", withdrawalHandler.ListMine)
			me.POST("/withdrawal-addresses", withdrawalHandler.SaveAddress)
			me.GET("/withdrawal-addresses", withdrawalHandler.ListAddresses)
		}

		api.GET("/plans", authMw, catalogHandler.ListPlans)
		api.GET("/products", authMw, catalogHandler.ListProducts)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:user_id/wallet", adminHandler.GetUserWallet)
			admin.POST("/wallet/deposit", adminHandler.DepositToUser)
			admin.POST("/wallet/credit", adminHandler.CreditUser)
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.PATCH("/withdrawals/:request_id", adminHandler.ResolveWithdrawal)
			admin.GET("/plans", adminHandler.ListPlans)
			admin.POST("/plans", adminHandler.CreatePlan)
			admin.PUT("/plans/:id", adminHandler.UpdatePlan)
			admin.DELETE("/plans/:id", adminHandler.DeletePlan)
			admin.GET("/products", adminHandler.ListProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)
			admin.GET("/levels", adminHandler.GetLevels)
			admin.PUT("/levels", adminHandler.UpdateLevels)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		MaxAge:        24 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
