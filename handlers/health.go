package handlers

import (
	"net/http"

	"busreserve/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last backend probe. Backends that are not configured read false.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "Hi, I'm busreserve",
		"backends": utils.GetHealthStatus(),
	})
}
