package api

import (
	"net/http"

	"smarthome-sim/internal/web/middleware"
	webModels "smarthome-sim/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterDeviceRoutes(r *gin.RouterGroup) {
	devices := r.Group("/devices")
	{
		devices.GET("", func(c *gin.Context) {
			list := middleware.Engine(c).Devices()
			views := make([]webModels.DeviceView, 0, len(list))
			for _, d := range list {
				views = append(views, webModels.NewDeviceView(d))
			}
			c.JSON(http.StatusOK, views)
		})

		devices.POST("/:id/toggle", func(c *gin.Context) {
			eng := middleware.Engine(c)
			id := c.Param("id")
			if !eng.ToggleDevice(id) {
				c.JSON(http.StatusNotFound, webModels.ErrorResponse{Error: "device not found"})
				return
			}
			d, _ := eng.Device(id)
			c.JSON(http.StatusOK, webModels.NewDeviceView(d))
		})

		devices.PUT("/:id/value", func(c *gin.Context) {
			var req webModels.SetValueRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, webModels.ErrorResponse{Error: "invalid request: " + err.Error()})
				return
			}
			eng := middleware.Engine(c)
			id := c.Param("id")
			if !eng.SetDeviceValue(id, *req.Value) {
				c.JSON(http.StatusNotFound, webModels.ErrorResponse{Error: "device not found"})
				return
			}
			d, _ := eng.Device(id)
			c.JSON(http.StatusOK, webModels.NewDeviceView(d))
		})
	}
}
