package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/zone-analytics-proxy/internal/analytics"
	"github.com/nulzo/zone-analytics-proxy/pkg/api"
)

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

// FromBody reads the request from a JSON body. An empty body is treated as a request
// with no fields, which the service then rejects.
//
// POST /api/cloudflare-analytics
func (h *AnalyticsHandler) FromBody(c *gin.Context) {
	var req api.AnalyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(fmt.Errorf("invalid request body: %w", err))
		return
	}
	h.fetch(c, req)
}

// FromQuery reads the request from query parameters.
//
// GET /cfa
func (h *AnalyticsHandler) FromQuery(c *gin.Context) {
	var req api.AnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(fmt.Errorf("invalid query parameters: %w", err))
		return
	}
	h.fetch(c, req)
}

func (h *AnalyticsHandler) fetch(c *gin.Context, req api.AnalyticsRequest) {
	result, err := h.service.Fetch(c.Request.Context(), analytics.RequestFrom(req))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
