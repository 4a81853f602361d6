// Package stripe maps the domain model onto Stripe objects. Stripe products
// are product families and Stripe prices are products.
package stripe

import (
	"context"
	"net/url"
	"reflect"

	"github.com/railzwaylabs/billinghub/internal/adapters"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/railzwaylabs/billinghub/internal/transport"
	stripego "github.com/stripe/stripe-go/v83"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Platform() domain.Platform {
	return domain.PlatformStripe
}

func (f *Factory) NewAdapter(backend adapters.Backend) adapters.Adapter {
	return &Adapter{
		Unsupported: adapters.Unsupported{P: domain.PlatformStripe},
		backend:     backend,
	}
}

type Adapter struct {
	adapters.Unsupported
	backend adapters.Backend
}

func path(connectionID string, segments ...string) string {
	return transport.Path(append([]string{"api", string(domain.PlatformStripe), connectionID}, segments...)...)
}

func listAll[T any, D any](ctx context.Context, a *Adapter, p string, query url.Values, mapFn func(T) D) ([]D, error) {
	var env list[T]
	if err := a.backend.Get(ctx, p, query, &env); err != nil {
		return nil, err
	}
	out := make([]D, 0, len(env.Data))
	for _, v := range env.Data {
		// Null entries are dropped rather than mapped to empty items.
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			continue
		}
		out = append(out, mapFn(v))
	}
	return out, nil
}

func (a *Adapter) TestConnection(ctx context.Context, connectionID string) error {
	return adapters.TestConnection(ctx, a.backend, connectionID)
}

func (a *Adapter) ListCustomers(ctx context.Context, connectionID string) ([]domain.Customer, error) {
	return listAll(ctx, a, path(connectionID, "customers"), nil, toCustomer)
}

func (a *Adapter) CreateCustomer(ctx context.Context, connectionID string, req domain.CustomerRequest) (domain.Customer, error) {
	var out stripego.Customer
	if err := a.backend.Post(ctx, path(connectionID, "customers"), fromCustomerRequest(req), &out); err != nil {
		return domain.Customer{}, err
	}
	return toCustomer(&out), nil
}

func (a *Adapter) UpdateCustomer(ctx context.Context, connectionID, id string, req domain.CustomerRequest) (domain.Customer, error) {
	var out stripego.Customer
	if err := a.backend.Put(ctx, path(connectionID, "customers", id), fromCustomerRequest(req), &out); err != nil {
		return domain.Customer{}, err
	}
	return toCustomer(&out), nil
}

func (a *Adapter) DeleteCustomer(ctx context.Context, connectionID, id string) error {
	return a.backend.Delete(ctx, path(connectionID, "customers", id), nil)
}

func (a *Adapter) ListSubscriptions(ctx context.Context, connectionID string) ([]domain.Subscription, error) {
	return listAll(ctx, a, path(connectionID, "subscriptions"), nil, toSubscription)
}

func (a *Adapter) CreateSubscription(ctx context.Context, connectionID string, req domain.SubscriptionRequest) (domain.Subscription, error) {
	body := subscriptionBody{
		Customer: req.CustomerID,
		Items:    []subscriptionItemBody{{Price: req.ProductID}},
	}
	if req.CouponCode != nil && *req.CouponCode != "" {
		body.Discounts = []discountBody{{Coupon: *req.CouponCode}}
	}
	var out subscription
	if err := a.backend.Post(ctx, path(connectionID, "subscriptions"), body, &out); err != nil {
		return domain.Subscription{}, err
	}
	return toSubscription(out), nil
}

// UpdateSubscription swaps the price of the subscription's first item.
func (a *Adapter) UpdateSubscription(ctx context.Context, connectionID, id string, req domain.SubscriptionUpdateRequest) (domain.Subscription, error) {
	body := subscriptionBody{Items: []subscriptionItemBody{{Price: req.ProductID}}}
	var out subscription
	if err := a.backend.Put(ctx, path(connectionID, "subscriptions", id), body, &out); err != nil {
		return domain.Subscription{}, err
	}
	return toSubscription(out), nil
}

func (a *Adapter) CancelSubscription(ctx context.Context, connectionID, id string) error {
	return a.backend.Delete(ctx, path(connectionID, "subscriptions", id), nil)
}

func (a *Adapter) ListProductFamilies(ctx context.Context, connectionID string) ([]domain.ProductFamily, error) {
	return listAll(ctx, a, path(connectionID, "products"), nil, toProductFamily)
}

func (a *Adapter) CreateProductFamily(ctx context.Context, connectionID string, req domain.ProductFamilyRequest) (domain.ProductFamily, error) {
	var out stripego.Product
	if err := a.backend.Post(ctx, path(connectionID, "products"), fromProductFamilyRequest(req), &out); err != nil {
		return domain.ProductFamily{}, err
	}
	return toProductFamily(&out), nil
}

func (a *Adapter) UpdateProductFamily(ctx context.Context, connectionID, id string, req domain.ProductFamilyRequest) (domain.ProductFamily, error) {
	var out stripego.Product
	if err := a.backend.Put(ctx, path(connectionID, "products", id), fromProductFamilyRequest(req), &out); err != nil {
		return domain.ProductFamily{}, err
	}
	return toProductFamily(&out), nil
}

func (a *Adapter) DeleteProductFamily(ctx context.Context, connectionID, id string) error {
	return a.backend.Delete(ctx, path(connectionID, "products", id), nil)
}

func (a *Adapter) ListProducts(ctx context.Context, connectionID string) ([]domain.Product, error) {
	return listAll(ctx, a, path(connectionID, "prices"), nil, toProduct)
}

func (a *Adapter) ListFamilyProducts(ctx context.Context, connectionID, familyID string) ([]domain.Product, error) {
	products, err := listAll(ctx, a, path(connectionID, "prices"), url.Values{"product": {familyID}}, toProduct)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ProductFamilyID == "" {
			products[i].ProductFamilyID = familyID
		}
	}
	return products, nil
}

func (a *Adapter) CreateProduct(ctx context.Context, connectionID, familyID string, req domain.ProductRequest) (domain.Product, error) {
	var out stripego.Price
	if err := a.backend.Post(ctx, path(connectionID, "prices"), fromProductRequest(familyID, req), &out); err != nil {
		return domain.Product{}, err
	}
	p := toProduct(&out)
	if p.ProductFamilyID == "" {
		p.ProductFamilyID = familyID
	}
	return p, nil
}

func (a *Adapter) UpdateProduct(ctx context.Context, connectionID, familyID, id string, req domain.ProductRequest) (domain.Product, error) {
	var out stripego.Price
	if err := a.backend.Put(ctx, path(connectionID, "prices", id), fromProductUpdate(req), &out); err != nil {
		return domain.Product{}, err
	}
	p := toProduct(&out)
	if p.ProductFamilyID == "" {
		p.ProductFamilyID = familyID
	}
	return p, nil
}

func (a *Adapter) ListInvoices(ctx context.Context, connectionID string) ([]domain.Invoice, error) {
	return listAll(ctx, a, path(connectionID, "invoices"), nil, toInvoice)
}

func (a *Adapter) ListCoupons(ctx context.Context, connectionID string) ([]domain.Coupon, error) {
	return listAll(ctx, a, path(connectionID, "coupons"), nil, toCoupon)
}

func (a *Adapter) CreateCoupon(ctx context.Context, connectionID string, req domain.CouponRequest) (domain.Coupon, error) {
	body, err := fromCouponRequest(req)
	if err != nil {
		return domain.Coupon{}, err
	}
	var out stripego.Coupon
	if err := a.backend.Post(ctx, path(connectionID, "coupons"), body, &out); err != nil {
		return domain.Coupon{}, err
	}
	return toCoupon(&out), nil
}

func (a *Adapter) UpdateCoupon(ctx context.Context, connectionID, id string, req domain.CouponUpdateRequest) (domain.Coupon, error) {
	var out stripego.Coupon
	if err := a.backend.Put(ctx, path(connectionID, "coupons", id), couponBody{Name: req.Name}, &out); err != nil {
		return domain.Coupon{}, err
	}
	return toCoupon(&out), nil
}

func (a *Adapter) DeleteCoupon(ctx context.Context, connectionID, id string) error {
	return a.backend.Delete(ctx, path(connectionID, "coupons", id), nil)
}

func (a *Adapter) ListPayments(ctx context.Context, connectionID string) ([]domain.Payment, error) {
	return listAll(ctx, a, path(connectionID, "payments"), nil, toPayment)
}

var _ adapters.Adapter = (*Adapter)(nil)
