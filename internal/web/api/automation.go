package api

import (
	"errors"
	"net/http"

	"smarthome-sim/internal/models"
	"smarthome-sim/internal/web/middleware"
	webModels "smarthome-sim/internal/web/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterAutomationRoutes(r *gin.RouterGroup, logger *zap.Logger) {
	automations := r.Group("/automations")
	{
		automations.GET("", func(c *gin.Context) {
			snap := middleware.Engine(c).Snapshot()
			views := make([]webModels.RuleView, 0, len(snap.Rules))
			for _, rule := range snap.Rules {
				views = append(views, webModels.RuleView{
					AutomationRule: rule,
					Description:    models.Describe(rule, snap.Sensors, snap.Devices),
				})
			}
			c.JSON(http.StatusOK, views)
		})

		automations.POST("", func(c *gin.Context) {
			var req webModels.AddRuleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, webModels.ErrorResponse{Error: "invalid request: " + err.Error()})
				return
			}
			eng := middleware.Engine(c)
			rule, err := eng.AddRule(req.ToRule())
			if errors.Is(err, models.ErrInvalidRule) {
				logger.Debug("rule rejected", zap.Error(err))
				c.JSON(http.StatusUnprocessableEntity, webModels.ErrorResponse{Error: err.Error()})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, webModels.ErrorResponse{Error: "failed to add rule"})
				return
			}
			snap := eng.Snapshot()
			c.JSON(http.StatusCreated, webModels.RuleView{
				AutomationRule: rule,
				Description:    models.Describe(rule, snap.Sensors, snap.Devices),
			})
		})

		automations.DELETE("/:id", func(c *gin.Context) {
			if !middleware.Engine(c).DeleteRule(c.Param("id")) {
				c.JSON(http.StatusNotFound, webModels.ErrorResponse{Error: "rule not found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "Rule deleted successfully"})
		})

		automations.POST("/:id/toggle", func(c *gin.Context) {
			eng := middleware.Engine(c)
			id := c.Param("id")
			if !eng.ToggleRuleActive(id) {
				c.JSON(http.StatusNotFound, webModels.ErrorResponse{Error: "rule not found"})
				return
			}
			for _, rule := range eng.Rules() {
				if rule.ID == id {
					c.JSON(http.StatusOK, rule)
					return
				}
			}
			// deleted between toggle and read
			c.JSON(http.StatusNotFound, webModels.ErrorResponse{Error: "rule not found"})
		})
	}
}
