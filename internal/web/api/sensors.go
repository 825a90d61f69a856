package api

import (
	"net/http"

	"smarthome-sim/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterSensorRoutes(r *gin.RouterGroup) {
	r.GET("/sensors", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.Engine(c).Sensors())
	})

	// oldest first
	r.GET("/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.Engine(c).History())
	})
}
