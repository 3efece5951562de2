package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartwallet-core/internal/handler"
	"smartwallet-core/pkg/monitor"
)

// NewHTTPRouter builds the gin engine with all wallet routes.
func NewHTTPRouter(walletHandler *handler.WalletHandler) *gin.Engine {
	monitor.Init()

	r := gin.Default()
	r.Use(monitor.PrometheusMiddleware())

	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		wallet := api.Group("/wallet")
		{
			wallet.POST("/accounts/import", walletHandler.ImportAccounts)
			wallet.GET("/account", walletHandler.ActiveAccount)

			wallet.GET("/balances", walletHandler.Balances)
			wallet.POST("/balances/refresh", walletHandler.RefreshBalances)

			wallet.GET("/history", walletHandler.History)

			wallet.GET("/estimate", walletHandler.Estimate)
			wallet.POST("/send", walletHandler.SendBatch)
			wallet.POST("/send-payment", walletHandler.SendPayment)

			wallet.POST("/ens", walletHandler.ReserveENS)

			wallet.GET("/payment-network", walletHandler.PaymentNetwork)
			wallet.POST("/payment-network/sync", walletHandler.SyncChannels)
		}
	}

	return r
}
