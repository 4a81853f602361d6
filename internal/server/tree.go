package server

import (
	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/railzwaylabs/billinghub/internal/nodetype"
)

func (s *Server) GetTree(c *gin.Context) {
	roots, err := s.dispatcher.Tree(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, roots)
}

func bindNode(c *gin.Context) (domain.TreeNode, bool) {
	var node domain.TreeNode
	if err := c.ShouldBindJSON(&node); err != nil || node.ID == "" || node.Type == "" {
		AbortWithError(c, ErrInvalidRequest)
		return domain.TreeNode{}, false
	}
	return node, true
}

// ExpandNode handles POST /api/console/nodes/expand. A failed load is not an
// HTTP error; it comes back as an errored node with an inline error child.
func (s *Server) ExpandNode(c *gin.Context) {
	node, ok := bindNode(c)
	if !ok {
		return
	}
	exp, err := s.dispatcher.Expand(c.Request.Context(), node)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, exp)
}

func (s *Server) RefreshNode(c *gin.Context) {
	node, ok := bindNode(c)
	if !ok {
		return
	}
	exp, err := s.dispatcher.Refresh(c.Request.Context(), node)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, exp)
}

func (s *Server) CollapseNode(c *gin.Context) {
	node, ok := bindNode(c)
	if !ok {
		return
	}
	s.dispatcher.Collapse(node)
	respondData(c, gin.H{"node_id": node.ID, "state": s.dispatcher.State(node)})
}

func (s *Server) NodeActions(c *gin.Context) {
	node, ok := bindNode(c)
	if !ok {
		return
	}
	respondData(c, nodetype.Menu(node))
}
