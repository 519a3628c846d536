package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitbuds/utils"
)

// HealthHandler returns the latest service health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, utils.GetHealthStatus())
}
