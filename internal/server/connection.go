package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/billinghub/internal/domain"
)

func (s *Server) ListConnections(c *gin.Context) {
	conns, err := s.connectionSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, conns)
}

func (s *Server) GetConnection(c *gin.Context) {
	conn, err := s.connectionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, conn)
}

// CreateConnection answers 201 even when the follow-up connection test
// fails; the returned connection then carries status "error".
func (s *Server) CreateConnection(c *gin.Context) {
	var req domain.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	conn, err := s.connectionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, conn)
}

func (s *Server) TestConnection(c *gin.Context) {
	conn, err := s.connectionSvc.Test(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, conn)
}

func (s *Server) DeleteConnection(c *gin.Context) {
	if err := s.connectionSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
