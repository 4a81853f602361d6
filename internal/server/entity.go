package server

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/billinghub/internal/dispatcher"
	"github.com/railzwaylabs/billinghub/internal/domain"
)

// entityRoute is the parsed path of an entity mutation.
type entityRoute struct {
	scope    dispatcher.Scope
	kind     domain.EntityKind
	id       string
	familyID string
}

func parseEntityRoute(c *gin.Context) (entityRoute, error) {
	platform, ok := domain.ParsePlatform(c.Param("platform"))
	if !ok {
		return entityRoute{}, domain.ErrInvalidPlatform
	}
	kind, ok := domain.KindFromCollection(c.Param("collection"))
	if !ok {
		return entityRoute{}, ErrInvalidRequest
	}
	return entityRoute{
		scope: dispatcher.Scope{
			Platform:     platform,
			ConnectionID: strings.TrimSpace(c.Param("connectionId")),
		},
		kind:     kind,
		id:       strings.TrimSpace(c.Param("id")),
		familyID: strings.TrimSpace(c.Query("family_id")),
	}, nil
}

// bind decodes the request body into a T and then runs fn with it.
func bind[T any](c *gin.Context, fn func(T) (dispatcher.Result, error)) (dispatcher.Result, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return dispatcher.Result{}, ErrInvalidRequest
	}
	return fn(req)
}

// CreateEntity handles POST /api/console/platforms/:platform/connections/:connectionId/:collection.
// Products take their family from the family_id query parameter.
func (s *Server) CreateEntity(c *gin.Context) {
	route, err := parseEntityRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := domain.Require(route.scope.Platform, route.kind, domain.OpCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	d := s.dispatcher
	var res dispatcher.Result
	switch route.kind {
	case domain.KindCustomer:
		res, err = bind(c, func(req domain.CustomerRequest) (dispatcher.Result, error) {
			return d.CreateCustomer(ctx, route.scope, req)
		})
	case domain.KindSubscription:
		res, err = bind(c, func(req domain.SubscriptionRequest) (dispatcher.Result, error) {
			return d.CreateSubscription(ctx, route.scope, req)
		})
	case domain.KindProductFamily:
		res, err = bind(c, func(req domain.ProductFamilyRequest) (dispatcher.Result, error) {
			return d.CreateProductFamily(ctx, route.scope, req)
		})
	case domain.KindProduct:
		res, err = bind(c, func(req domain.ProductRequest) (dispatcher.Result, error) {
			return d.CreateProduct(ctx, route.scope, route.familyID, req)
		})
	case domain.KindCoupon:
		res, err = bind(c, func(req domain.CouponRequest) (dispatcher.Result, error) {
			return d.CreateCoupon(ctx, route.scope, req)
		})
	default:
		err = &domain.CapabilityUnsupportedError{Kind: route.kind, Platform: route.scope.Platform, Op: domain.OpCreate}
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, res)
}

func (s *Server) UpdateEntity(c *gin.Context) {
	route, err := parseEntityRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := domain.Require(route.scope.Platform, route.kind, domain.OpUpdate); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	d := s.dispatcher
	var res dispatcher.Result
	switch route.kind {
	case domain.KindCustomer:
		res, err = bind(c, func(req domain.CustomerRequest) (dispatcher.Result, error) {
			return d.UpdateCustomer(ctx, route.scope, route.id, req)
		})
	case domain.KindSubscription:
		res, err = bind(c, func(req domain.SubscriptionUpdateRequest) (dispatcher.Result, error) {
			return d.UpdateSubscription(ctx, route.scope, route.id, req)
		})
	case domain.KindProductFamily:
		res, err = bind(c, func(req domain.ProductFamilyRequest) (dispatcher.Result, error) {
			return d.UpdateProductFamily(ctx, route.scope, route.id, req)
		})
	case domain.KindProduct:
		res, err = bind(c, func(req domain.ProductRequest) (dispatcher.Result, error) {
			return d.UpdateProduct(ctx, route.scope, route.familyID, route.id, req)
		})
	case domain.KindCoupon:
		res, err = bind(c, func(req domain.CouponUpdateRequest) (dispatcher.Result, error) {
			return d.UpdateCoupon(ctx, route.scope, route.id, req)
		})
	default:
		err = &domain.CapabilityUnsupportedError{Kind: route.kind, Platform: route.scope.Platform, Op: domain.OpUpdate}
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, res)
}

func (s *Server) DeleteEntity(c *gin.Context) {
	route, err := parseEntityRoute(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.deleteEntity(c.Request.Context(), route)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, res)
}

func (s *Server) deleteEntity(ctx context.Context, route entityRoute) (dispatcher.Result, error) {
	d := s.dispatcher
	switch route.kind {
	case domain.KindCustomer:
		return d.DeleteCustomer(ctx, route.scope, route.id)
	case domain.KindSubscription:
		return d.CancelSubscription(ctx, route.scope, route.id)
	case domain.KindProductFamily:
		return d.DeleteProductFamily(ctx, route.scope, route.id)
	case domain.KindProduct:
		return d.DeleteProduct(ctx, route.scope, route.familyID, route.id)
	case domain.KindCoupon:
		return d.DeleteCoupon(ctx, route.scope, route.id)
	default:
		return dispatcher.Result{}, &domain.CapabilityUnsupportedError{Kind: route.kind, Platform: route.scope.Platform, Op: domain.OpDelete}
	}
}

