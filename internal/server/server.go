// Package server exposes the console HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/config"
	"github.com/railzwaylabs/billinghub/internal/connection"
	"github.com/railzwaylabs/billinghub/internal/dispatcher"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg            config.Config
	Dispatcher     *dispatcher.Dispatcher
	Connections    *connection.Service
	AuditSvc       auditdomain.Service
	AuditExportSvc auditdomain.ExportService
	DB             *gorm.DB
	Gatherer       prometheus.Gatherer
	Log            *zap.Logger
}

type Server struct {
	engine         *gin.Engine
	dispatcher     *dispatcher.Dispatcher
	connectionSvc  *connection.Service
	auditSvc       auditdomain.Service
	auditExportSvc auditdomain.ExportService
	db             *gorm.DB
	gatherer       prometheus.Gatherer
	log            *zap.Logger
}

func New(p Params) *Server {
	if p.Cfg.Server.Mode != "" {
		gin.SetMode(p.Cfg.Server.Mode)
	}

	s := &Server{
		engine:         gin.New(),
		dispatcher:     p.Dispatcher,
		connectionSvc:  p.Connections,
		auditSvc:       p.AuditSvc,
		auditExportSvc: p.AuditExportSvc,
		db:             p.DB,
		gatherer:       p.Gatherer,
		log:            p.Log.Named("server"),
	}
	s.engine.Use(requestID(), requestLogger(s.log), gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	r := s.engine

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api/console")

	api.GET("/tree", s.GetTree)
	api.POST("/nodes/expand", s.ExpandNode)
	api.POST("/nodes/refresh", s.RefreshNode)
	api.POST("/nodes/collapse", s.CollapseNode)
	api.POST("/nodes/actions", s.NodeActions)

	api.GET("/connections", s.ListConnections)
	api.POST("/connections", s.CreateConnection)
	api.GET("/connections/:id", s.GetConnection)
	api.POST("/connections/:id/test", s.TestConnection)
	api.DELETE("/connections/:id", s.DeleteConnection)

	entities := api.Group("/platforms/:platform/connections/:connectionId/:collection")
	entities.POST("", s.CreateEntity)
	entities.PUT("/:id", s.UpdateEntity)
	entities.DELETE("/:id", s.DeleteEntity)

	api.GET("/audit", s.ListAuditLogs)
	api.GET("/audit/export", s.ExportAuditLogs)
}
