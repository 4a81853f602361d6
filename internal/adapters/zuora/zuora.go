// Package zuora maps the domain model onto Zuora accounts and the product
// catalog. Catalog products are product families and rate plans are
// products. Amounts arrive in major units.
package zuora

import (
	"context"

	"github.com/railzwaylabs/billinghub/internal/adapters"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/railzwaylabs/billinghub/internal/transport"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Platform() domain.Platform {
	return domain.PlatformZuora
}

func (f *Factory) NewAdapter(backend adapters.Backend) adapters.Adapter {
	return &Adapter{
		Unsupported: adapters.Unsupported{P: domain.PlatformZuora},
		backend:     backend,
	}
}

// Adapter leaves subscription creation to the embedded Unsupported: Zuora
// orders are not modelled, so the call fails before reaching the network.
type Adapter struct {
	adapters.Unsupported
	backend adapters.Backend
}

func path(connectionID string, segments ...string) string {
	return transport.Path(append([]string{"api", string(domain.PlatformZuora), connectionID}, segments...)...)
}

func list[T any, D any](ctx context.Context, a *Adapter, p string, mapFn func(T) D) ([]D, error) {
	var raw []T
	if err := a.backend.Get(ctx, p, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]D, 0, len(raw))
	for _, v := range raw {
		out = append(out, mapFn(v))
	}
	return out, nil
}

func (a *Adapter) TestConnection(ctx context.Context, connectionID string) error {
	return adapters.TestConnection(ctx, a.backend, connectionID)
}

func (a *Adapter) ListCustomers(ctx context.Context, connectionID string) ([]domain.Customer, error) {
	return list(ctx, a, path(connectionID, "accounts"), toCustomer)
}

func (a *Adapter) CreateCustomer(ctx context.Context, connectionID string, req domain.CustomerRequest) (domain.Customer, error) {
	var out account
	if err := a.backend.Post(ctx, path(connectionID, "accounts"), fromCustomerRequest(req), &out); err != nil {
		return domain.Customer{}, err
	}
	return toCustomer(out), nil
}

func (a *Adapter) ListSubscriptions(ctx context.Context, connectionID string) ([]domain.Subscription, error) {
	return list(ctx, a, path(connectionID, "subscriptions"), toSubscription)
}

func (a *Adapter) ListProductFamilies(ctx context.Context, connectionID string) ([]domain.ProductFamily, error) {
	return list(ctx, a, path(connectionID, "products"), toProductFamily)
}

// ListProducts flattens the rate plans of every catalog product.
func (a *Adapter) ListProducts(ctx context.Context, connectionID string) ([]domain.Product, error) {
	var catalog []catalogProduct
	if err := a.backend.Get(ctx, path(connectionID, "products"), nil, &catalog); err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range catalog {
		for _, rp := range p.ProductRatePlans {
			out = append(out, toProduct(p.ID, rp))
		}
	}
	return out, nil
}

func (a *Adapter) ListFamilyProducts(ctx context.Context, connectionID, familyID string) ([]domain.Product, error) {
	return list(ctx, a, path(connectionID, "products", familyID, "rate-plans"), func(rp ratePlan) domain.Product {
		return toProduct(familyID, rp)
	})
}

func (a *Adapter) ListInvoices(ctx context.Context, connectionID string) ([]domain.Invoice, error) {
	return list(ctx, a, path(connectionID, "invoices"), toInvoice)
}

func (a *Adapter) ListPayments(ctx context.Context, connectionID string) ([]domain.Payment, error) {
	return list(ctx, a, path(connectionID, "payments"), toPayment)
}

var _ adapters.Adapter = (*Adapter)(nil)
