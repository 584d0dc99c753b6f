package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/rishi7822/Finalproject/internal/handler/response"
)

// HealthCheck godoc
// @Summary Check system health
// @Description Get the current health status of the server
// @Tags system
// @Produce  json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func HealthCheck(svc SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := svc.View()
		response.Success(c, gin.H{
			"status":             "UP",
			"service":            "wallet-server",
			"provider_available": v.ProviderAvailable,
			"wallet_connected":   v.Connected,
		})
	}
}
