package handler

import (
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/middleware"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service     *service.Service
	corsOrigins []string
}

func NewHandler(service *service.Service, corsOrigins []string) *Handler {
	return &Handler{
		service:     service,
		corsOrigins: corsOrigins,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if len(h.corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     h.corsOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", middleware.PrincipalHeader},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}

	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/me", h.GetMe)
	}

	api := router.Group("/api", middleware.AuthMiddleware())
	{
		wallet := api.Group("/wallet")
		{
			wallet.GET("/", h.GetAccount)
			wallet.GET("/balance", h.GetBalance)
			wallet.POST("/refresh", h.Refresh)
			wallet.GET("/portfolio", h.GetPortfolio)
			wallet.POST("/tokens", h.TrackToken)
			wallet.POST("/quote", h.Quote)
			wallet.POST("/pay", h.Pay)
			wallet.GET("/payments", h.GetPayments)
			wallet.GET("/payments/:id", h.GetPayment)
		}

		claims := api.Group("/claims")
		{
			claims.POST("/", h.SubmitClaim)
			claims.GET("/", h.GetClaims)
			claims.GET("/:id", h.GetClaim)
			claims.POST("/:id/check", h.CheckClaim)
		}
	}
	return router
}
