package services

import (
	"net/http"
	"strings"

	"github.com/SaiNageswarS/booking-agent/agentboot"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type turnRequestBody struct {
	Text string `json:"text"`
}

type HttpApi struct {
	agent TurnRunner
}

// NewRouter serves the chat API:
//
//	POST /v1/sessions/:id/turns         JSON reply
//	POST /v1/sessions/:id/turns/stream  server-sent events
//	GET  /healthz
func NewRouter(agent TurnRunner, ratePerMinute int) *gin.Engine {
	h := &HttpApi{agent: agent}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/v1/sessions")
	api.Use(newIPLimiter(ratePerMinute).middleware())
	api.POST("/:id/turns", h.turn)
	api.POST("/:id/turns/stream", h.streamTurn)
	return r
}

func (h *HttpApi) turn(c *gin.Context) {
	var body turnRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a JSON body with text"})
		return
	}

	result, err := h.agent.Turn(c.Request.Context(), nil, c.Param("id"), body.Text)
	if err != nil {
		code, msg := httpError(err)
		c.JSON(code, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HttpApi) streamTurn(c *gin.Context) {
	var body turnRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a JSON body with text"})
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	reporter := agentboot.FuncProgressReporter(func(event *agentboot.StreamChunk) error {
		c.SSEvent(string(event.Type), event)
		c.Writer.Flush()
		return c.Request.Context().Err()
	})

	if _, err := h.agent.Turn(c.Request.Context(), reporter, c.Param("id"), body.Text); err != nil {
		logger.Error("Streamed turn failed", zap.String("session", c.Param("id")), zap.Error(err))
	}
}
