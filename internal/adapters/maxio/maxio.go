// Package maxio talks to the Maxio (Chargify) routes of the backend. Maxio's
// object model is the domain model, so bodies travel unchanged.
package maxio

import (
	"context"
	"strings"

	"github.com/railzwaylabs/billinghub/internal/adapters"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/railzwaylabs/billinghub/internal/transport"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Platform() domain.Platform {
	return domain.PlatformMaxio
}

func (f *Factory) NewAdapter(backend adapters.Backend) adapters.Adapter {
	return &Adapter{
		Unsupported: adapters.Unsupported{P: domain.PlatformMaxio},
		backend:     backend,
	}
}

type Adapter struct {
	adapters.Unsupported
	backend adapters.Backend
}

func path(connectionID string, segments ...string) string {
	return transport.Path(append([]string{"api", string(domain.PlatformMaxio), connectionID}, segments...)...)
}

func (a *Adapter) TestConnection(ctx context.Context, connectionID string) error {
	return adapters.TestConnection(ctx, a.backend, connectionID)
}

func (a *Adapter) ListCustomers(ctx context.Context, connectionID string) ([]domain.Customer, error) {
	var out []domain.Customer
	if err := a.backend.Get(ctx, path(connectionID, "customers"), nil, &out); err != nil {
		return nil, err
	}
	return adapters.NonNil(out), nil
}

func (a *Adapter) CreateCustomer(ctx context.Context, connectionID string, req domain.CustomerRequest) (domain.Customer, error) {
	var out domain.Customer
	err := a.backend.Post(ctx, path(connectionID, "customers"), req, &out)
	return out, err
}

func (a *Adapter) UpdateCustomer(ctx context.Context, connectionID, id string, req domain.CustomerRequest) (domain.Customer, error) {
	var out domain.Customer
	err := a.backend.Put(ctx, path(connectionID, "customers", id), req, &out)
	return out, err
}

func (a *Adapter) DeleteCustomer(ctx context.Context, connectionID, id string) error {
	return a.backend.Delete(ctx, path(connectionID, "customers", id), nil)
}

func (a *Adapter) ListSubscriptions(ctx context.Context, connectionID string) ([]domain.Subscription, error) {
	var out []domain.Subscription
	if err := a.backend.Get(ctx, path(connectionID, "subscriptions"), nil, &out); err != nil {
		return nil, err
	}
	return adapters.NonNil(out), nil
}

func (a *Adapter) CreateSubscription(ctx context.Context, connectionID string, req domain.SubscriptionRequest) (domain.Subscription, error) {
	var out domain.Subscription
	err := a.backend.Post(ctx, path(connectionID, "subscriptions"), req, &out)
	return out, err
}

func (a *Adapter) UpdateSubscription(ctx context.Context, connectionID, id string, req domain.SubscriptionUpdateRequest) (domain.Subscription, error) {
	var out domain.Subscription
	err := a.backend.Put(ctx, path(connectionID, "subscriptions", id), req, &out)
	return out, err
}

// CancelSubscription cancels immediately; Maxio keeps the record.
func (a *Adapter) CancelSubscription(ctx context.Context, connectionID, id string) error {
	return a.backend.Delete(ctx, path(connectionID, "subscriptions", id), nil)
}

func (a *Adapter) ListProductFamilies(ctx context.Context, connectionID string) ([]domain.ProductFamily, error) {
	var out []domain.ProductFamily
	if err := a.backend.Get(ctx, path(connectionID, "product-families"), nil, &out); err != nil {
		return nil, err
	}
	return adapters.NonNil(out), nil
}

func (a *Adapter) CreateProductFamily(ctx context.Context, connectionID string, req domain.ProductFamilyRequest) (domain.ProductFamily, error) {
	var out domain.ProductFamily
	err := a.backend.Post(ctx, path(connectionID, "product-families"), req, &out)
	return out, err
}

func (a *Adapter) UpdateProductFamily(ctx context.Context, connectionID, id string, req domain.ProductFamilyRequest) (domain.ProductFamily, error) {
	var out domain.ProductFamily
	err := a.backend.Put(ctx, path(connectionID, "product-families", id), req, &out)
	return out, err
}

func (a *Adapter) ListProducts(ctx context.Context, connectionID string) ([]domain.Product, error) {
	var out []domain.Product
	if err := a.backend.Get(ctx, path(connectionID, "products"), nil, &out); err != nil {
		return nil, err
	}
	return normalizeProducts(out, ""), nil
}

func (a *Adapter) ListFamilyProducts(ctx context.Context, connectionID, familyID string) ([]domain.Product, error) {
	var out []domain.Product
	if err := a.backend.Get(ctx, path(connectionID, "product-families", familyID, "products"), nil, &out); err != nil {
		return nil, err
	}
	return normalizeProducts(out, familyID), nil
}

type productBody struct {
	domain.ProductRequest
	ProductFamilyID string `json:"product_family_id,omitempty"`
}

func (a *Adapter) CreateProduct(ctx context.Context, connectionID, familyID string, req domain.ProductRequest) (domain.Product, error) {
	var out domain.Product
	body := productBody{ProductRequest: req, ProductFamilyID: familyID}
	if err := a.backend.Post(ctx, path(connectionID, "product-families", familyID, "products"), body, &out); err != nil {
		return domain.Product{}, err
	}
	return normalizeProduct(out, familyID), nil
}

func (a *Adapter) UpdateProduct(ctx context.Context, connectionID, familyID, id string, req domain.ProductRequest) (domain.Product, error) {
	var out domain.Product
	body := productBody{ProductRequest: req, ProductFamilyID: familyID}
	if err := a.backend.Put(ctx, path(connectionID, "products", id), body, &out); err != nil {
		return domain.Product{}, err
	}
	return normalizeProduct(out, familyID), nil
}

// DeleteProduct archives the product. Maxio never hard deletes catalog items.
func (a *Adapter) DeleteProduct(ctx context.Context, connectionID, _, id string) error {
	return a.backend.Delete(ctx, path(connectionID, "products", id), nil)
}

func (a *Adapter) ListInvoices(ctx context.Context, connectionID string) ([]domain.Invoice, error) {
	var out []domain.Invoice
	if err := a.backend.Get(ctx, path(connectionID, "invoices"), nil, &out); err != nil {
		return nil, err
	}
	return adapters.NonNil(out), nil
}

func normalizeProducts(in []domain.Product, familyID string) []domain.Product {
	out := make([]domain.Product, 0, len(in))
	for _, p := range in {
		out = append(out, normalizeProduct(p, familyID))
	}
	return out
}

func normalizeProduct(p domain.Product, familyID string) domain.Product {
	if p.ProductFamilyID == "" {
		p.ProductFamilyID = familyID
	}
	p.Currency = strings.ToUpper(p.Currency)
	return p
}

var _ adapters.Adapter = (*Adapter)(nil)
