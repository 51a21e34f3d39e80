package controller

import (
	"net/http"

	"github.com/M1HNE41/Solar-Sense-App/model"
	"github.com/M1HNE41/Solar-Sense-App/utility/constant"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ApiController serves the dashboard and analytics views as JSON.
type ApiController struct {
	logger    *zap.Logger
	live      *LiveController
	analytics *AnalyticsController
}

type analyticsResponse struct {
	model.AggregateResult
	Loading bool   `json:"loading"`
	Message string `json:"message,omitempty"`
}

func CreateApiController(l *zap.Logger, live *LiveController, analytics *AnalyticsController) *ApiController {
	return &ApiController{
		logger:    l,
		live:      live,
		analytics: analytics,
	}
}

func (controller *ApiController) RegistRoutes(engine *gin.Engine) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "ok")
	})
	engine.GET("/readiness", controller.Readiness)
	engine.GET("/api/live", controller.Live)
	engine.GET("/api/analytics", controller.Analytics)
}

func (controller *ApiController) Readiness(c *gin.Context) {
	if controller.live.Readiness() && controller.analytics.Readiness() {
		c.JSON(http.StatusOK, "ok")
	} else {
		c.JSON(http.StatusNotFound, "ng")
	}
}

func (controller *ApiController) Live(c *gin.Context) {
	c.JSON(http.StatusOK, controller.live.Snapshot())
}

func (controller *ApiController) Analytics(c *gin.Context) {
	tw, err := model.ParseTimeWindow(c.DefaultQuery("range", string(model.Daily)))
	if err != nil {
		controller.logger.Debug("bad range", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := analyticsResponse{
		AggregateResult: controller.analytics.Result(tw),
		Loading:         controller.analytics.Loading(),
	}
	if !res.HasData && !res.Loading {
		res.Message = constant.NoDataMessage
	}
	c.JSON(http.StatusOK, res)
}
