package handler

import (
	"github.com/gin-gonic/gin"

	"smartwallet-core/internal/handler/response"
)

// HealthCheck reports process liveness.
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
