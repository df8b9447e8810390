package server

import (
	"github.com/nulzo/zone-analytics-proxy/internal/server/middleware"
	v1 "github.com/nulzo/zone-analytics-proxy/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	analyticsHandler := v1.NewAnalyticsHandler(s.service)
	s.router.POST("/api/cloudflare-analytics", analyticsHandler.FromBody)
	s.router.GET("/cfa", analyticsHandler.FromQuery)
}
