package dispatcher

import (
	"context"
	"strings"

	"github.com/railzwaylabs/billinghub/internal/adapters"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/cache"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"go.uber.org/zap"
)

// Scope names the connection a mutation targets.
type Scope struct {
	Platform     domain.Platform
	ConnectionID string
}

// Result is a completed mutation. Item is nil for deletes.
type Result struct {
	Item        *domain.EntityItem `json:"item,omitempty"`
	Invalidated []cache.Key        `json:"invalidated"`
}

// mutation is one capability-checked write against an adapter.
type mutation struct {
	scope    Scope
	kind     domain.EntityKind
	op       domain.Operation
	id       string
	familyID string
	req      any
}

func (m mutation) keys() []cache.Key {
	keys := []cache.Key{cache.NewKey(m.scope.Platform, m.kind, m.scope.ConnectionID)}
	if m.kind == domain.KindProduct && m.familyID != "" {
		keys = append(keys, cache.FamilyProductsKey(m.scope.Platform, m.familyID, m.scope.ConnectionID))
	}
	return keys
}

func (m mutation) check() error {
	if !m.scope.Platform.Valid() {
		return domain.ErrInvalidPlatform
	}
	if strings.TrimSpace(m.scope.ConnectionID) == "" {
		return domain.ErrInvalidConnection
	}
	if err := domain.Require(m.scope.Platform, m.kind, m.op); err != nil {
		return err
	}
	if m.op != domain.OpCreate && strings.TrimSpace(m.id) == "" {
		return domain.ErrInvalidID
	}
	if m.kind == domain.KindProduct && m.op == domain.OpCreate && strings.TrimSpace(m.familyID) == "" {
		return domain.NewValidationError("product_family_id", "required", "is required")
	}
	if m.req != nil {
		return domain.Validate(m.req)
	}
	return nil
}

// run checks capability and input before any network call, performs call
// and invalidates exactly the lists the write can have changed.
func (d *Dispatcher) run(ctx context.Context, m mutation, call func(adapters.Adapter) (*domain.EntityItem, error)) (Result, error) {
	if err := m.check(); err != nil {
		return Result{}, err
	}
	a, err := d.registry.Get(m.scope.Platform)
	if err != nil {
		return Result{}, err
	}
	item, err := call(a)
	if err != nil {
		d.log.Info("mutation failed",
			zap.String("platform", string(m.scope.Platform)),
			zap.String("kind", string(m.kind)),
			zap.Stringer("op", m.op),
			zap.String("id", m.id),
			zap.Error(err),
		)
		return Result{}, err
	}

	keys := m.keys()
	if err := d.cache.Invalidate(ctx, keys...); err != nil {
		d.log.Warn("cache invalidation failed", zap.Error(err))
	}
	d.record(ctx, m, item)
	d.log.Debug("mutation applied",
		zap.String("platform", string(m.scope.Platform)),
		zap.String("kind", string(m.kind)),
		zap.Stringer("op", m.op),
		zap.Int("invalidated", len(keys)),
	)
	return Result{Item: item, Invalidated: keys}, nil
}

var auditActions = map[domain.Operation]string{
	domain.OpCreate: auditdomain.ActionEntityCreated,
	domain.OpUpdate: auditdomain.ActionEntityUpdated,
	domain.OpDelete: auditdomain.ActionEntityDeleted,
}

func (d *Dispatcher) record(ctx context.Context, m mutation, item *domain.EntityItem) {
	if d.audit == nil {
		return
	}
	entry := auditdomain.Entry{
		Action:       auditActions[m.op],
		Platform:     string(m.scope.Platform),
		ConnectionID: m.scope.ConnectionID,
		TargetType:   string(m.kind),
		TargetID:     m.id,
	}
	if item != nil {
		entry.TargetID = item.ID()
	}
	if m.familyID != "" {
		entry.Metadata = map[string]any{"product_family_id": m.familyID}
	}
	if err := d.audit.Record(ctx, entry); err != nil {
		d.log.Warn("audit record failed", zap.String("action", entry.Action), zap.Error(err))
	}
}

// tagged adapts a typed adapter result into an entity item.
func tagged[T any](wrap func(T) domain.EntityItem) func(T, error) (*domain.EntityItem, error) {
	return func(v T, err error) (*domain.EntityItem, error) {
		if err != nil {
			return nil, err
		}
		item := wrap(v)
		return &item, nil
	}
}

func (d *Dispatcher) CreateCustomer(ctx context.Context, s Scope, req domain.CustomerRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindCustomer, op: domain.OpCreate, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.CustomerItem)(a.CreateCustomer(ctx, s.ConnectionID, req))
	})
}

func (d *Dispatcher) UpdateCustomer(ctx context.Context, s Scope, id string, req domain.CustomerRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindCustomer, op: domain.OpUpdate, id: id, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.CustomerItem)(a.UpdateCustomer(ctx, s.ConnectionID, id, req))
	})
}

func (d *Dispatcher) DeleteCustomer(ctx context.Context, s Scope, id string) (Result, error) {
	m := mutation{scope: s, kind: domain.KindCustomer, op: domain.OpDelete, id: id}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return nil, a.DeleteCustomer(ctx, s.ConnectionID, id)
	})
}

func (d *Dispatcher) CreateSubscription(ctx context.Context, s Scope, req domain.SubscriptionRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindSubscription, op: domain.OpCreate, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.SubscriptionItem)(a.CreateSubscription(ctx, s.ConnectionID, req))
	})
}

func (d *Dispatcher) UpdateSubscription(ctx context.Context, s Scope, id string, req domain.SubscriptionUpdateRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindSubscription, op: domain.OpUpdate, id: id, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.SubscriptionItem)(a.UpdateSubscription(ctx, s.ConnectionID, id, req))
	})
}

func (d *Dispatcher) CancelSubscription(ctx context.Context, s Scope, id string) (Result, error) {
	m := mutation{scope: s, kind: domain.KindSubscription, op: domain.OpDelete, id: id}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return nil, a.CancelSubscription(ctx, s.ConnectionID, id)
	})
}

func (d *Dispatcher) CreateProductFamily(ctx context.Context, s Scope, req domain.ProductFamilyRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindProductFamily, op: domain.OpCreate, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.ProductFamilyItem)(a.CreateProductFamily(ctx, s.ConnectionID, req))
	})
}

func (d *Dispatcher) UpdateProductFamily(ctx context.Context, s Scope, id string, req domain.ProductFamilyRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindProductFamily, op: domain.OpUpdate, id: id, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.ProductFamilyItem)(a.UpdateProductFamily(ctx, s.ConnectionID, id, req))
	})
}

func (d *Dispatcher) DeleteProductFamily(ctx context.Context, s Scope, id string) (Result, error) {
	m := mutation{scope: s, kind: domain.KindProductFamily, op: domain.OpDelete, id: id}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return nil, a.DeleteProductFamily(ctx, s.ConnectionID, id)
	})
}

// CreateProduct adds a product under familyID. Both the connection-wide
// products list and the family's list are invalidated.
func (d *Dispatcher) CreateProduct(ctx context.Context, s Scope, familyID string, req domain.ProductRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindProduct, op: domain.OpCreate, familyID: familyID, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.ProductItem)(a.CreateProduct(ctx, s.ConnectionID, familyID, req))
	})
}

func (d *Dispatcher) UpdateProduct(ctx context.Context, s Scope, familyID, id string, req domain.ProductRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindProduct, op: domain.OpUpdate, id: id, familyID: familyID, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.ProductItem)(a.UpdateProduct(ctx, s.ConnectionID, familyID, id, req))
	})
}

func (d *Dispatcher) DeleteProduct(ctx context.Context, s Scope, familyID, id string) (Result, error) {
	m := mutation{scope: s, kind: domain.KindProduct, op: domain.OpDelete, id: id, familyID: familyID}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return nil, a.DeleteProduct(ctx, s.ConnectionID, familyID, id)
	})
}

func (d *Dispatcher) CreateCoupon(ctx context.Context, s Scope, req domain.CouponRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindCoupon, op: domain.OpCreate, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.CouponItem)(a.CreateCoupon(ctx, s.ConnectionID, req))
	})
}

func (d *Dispatcher) UpdateCoupon(ctx context.Context, s Scope, id string, req domain.CouponUpdateRequest) (Result, error) {
	m := mutation{scope: s, kind: domain.KindCoupon, op: domain.OpUpdate, id: id, req: req}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return tagged(domain.CouponItem)(a.UpdateCoupon(ctx, s.ConnectionID, id, req))
	})
}

func (d *Dispatcher) DeleteCoupon(ctx context.Context, s Scope, id string) (Result, error) {
	m := mutation{scope: s, kind: domain.KindCoupon, op: domain.OpDelete, id: id}
	return d.run(ctx, m, func(a adapters.Adapter) (*domain.EntityItem, error) {
		return nil, a.DeleteCoupon(ctx, s.ConnectionID, id)
	})
}
