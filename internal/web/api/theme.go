package api

import (
	"net/http"

	"smarthome-sim/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterThemeRoutes(r *gin.RouterGroup) {
	r.GET("/theme", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"theme": middleware.Engine(c).Theme()})
	})

	r.POST("/theme/toggle", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"theme": middleware.Engine(c).ToggleTheme()})
	})

	r.GET("/activity", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.Engine(c).Activity())
	})
}
