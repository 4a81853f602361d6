package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/railzwaylabs/billinghub/internal/domain"
)

var ErrUnknownPlatform = errors.New("unknown_platform")

// Registry resolves the adapter for a platform.
type Registry struct {
	adapters map[domain.Platform]Adapter
}

func NewRegistry(backend Backend, factories ...Factory) *Registry {
	r := &Registry{adapters: make(map[domain.Platform]Adapter, len(factories))}
	for _, f := range factories {
		r.adapters[f.Platform()] = f.NewAdapter(backend)
	}
	return r
}

func (r *Registry) Get(platform domain.Platform) (Adapter, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return a, nil
}

// ListItems lists one collection and tags every result with its kind.
// familyID narrows products to a single family when set.
func ListItems(ctx context.Context, a Adapter, kind domain.EntityKind, connectionID, familyID string) ([]domain.EntityItem, error) {
	switch kind {
	case domain.KindCustomer:
		v, err := a.ListCustomers(ctx, connectionID)
		return wrap(v, err, domain.CustomerItem)
	case domain.KindSubscription:
		v, err := a.ListSubscriptions(ctx, connectionID)
		return wrap(v, err, domain.SubscriptionItem)
	case domain.KindProductFamily:
		v, err := a.ListProductFamilies(ctx, connectionID)
		return wrap(v, err, domain.ProductFamilyItem)
	case domain.KindProduct:
		if familyID != "" {
			v, err := a.ListFamilyProducts(ctx, connectionID, familyID)
			return wrap(v, err, domain.ProductItem)
		}
		v, err := a.ListProducts(ctx, connectionID)
		return wrap(v, err, domain.ProductItem)
	case domain.KindInvoice:
		v, err := a.ListInvoices(ctx, connectionID)
		return wrap(v, err, domain.InvoiceItem)
	case domain.KindCoupon:
		v, err := a.ListCoupons(ctx, connectionID)
		return wrap(v, err, domain.CouponItem)
	case domain.KindPayment:
		v, err := a.ListPayments(ctx, connectionID)
		return wrap(v, err, domain.PaymentItem)
	default:
		return nil, &domain.CapabilityUnsupportedError{Kind: kind, Platform: a.Platform(), Op: domain.OpList}
	}
}

func wrap[T any](values []T, err error, fn func(T) domain.EntityItem) ([]domain.EntityItem, error) {
	if err != nil {
		return nil, err
	}
	return domain.Items(values, fn), nil
}
