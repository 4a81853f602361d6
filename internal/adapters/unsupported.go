package adapters

import (
	"context"

	"github.com/railzwaylabs/billinghub/internal/domain"
)

// Unsupported answers every Adapter method with a CapabilityUnsupportedError.
// Platform adapters embed it and override what the vendor can do, so a
// missing capability fails before any request is built.
type Unsupported struct {
	P domain.Platform
}

func (u Unsupported) Platform() domain.Platform { return u.P }

func (u Unsupported) deny(kind domain.EntityKind, op domain.Operation) error {
	return &domain.CapabilityUnsupportedError{Kind: kind, Platform: u.P, Op: op}
}

func (u Unsupported) TestConnection(context.Context, string) error {
	return u.deny(domain.KindConnection, domain.OpRead)
}

func (u Unsupported) ListCustomers(context.Context, string) ([]domain.Customer, error) {
	return nil, u.deny(domain.KindCustomer, domain.OpList)
}

func (u Unsupported) CreateCustomer(context.Context, string, domain.CustomerRequest) (domain.Customer, error) {
	return domain.Customer{}, u.deny(domain.KindCustomer, domain.OpCreate)
}

func (u Unsupported) UpdateCustomer(context.Context, string, string, domain.CustomerRequest) (domain.Customer, error) {
	return domain.Customer{}, u.deny(domain.KindCustomer, domain.OpUpdate)
}

func (u Unsupported) DeleteCustomer(context.Context, string, string) error {
	return u.deny(domain.KindCustomer, domain.OpDelete)
}

func (u Unsupported) ListSubscriptions(context.Context, string) ([]domain.Subscription, error) {
	return nil, u.deny(domain.KindSubscription, domain.OpList)
}

func (u Unsupported) CreateSubscription(context.Context, string, domain.SubscriptionRequest) (domain.Subscription, error) {
	return domain.Subscription{}, u.deny(domain.KindSubscription, domain.OpCreate)
}

func (u Unsupported) UpdateSubscription(context.Context, string, string, domain.SubscriptionUpdateRequest) (domain.Subscription, error) {
	return domain.Subscription{}, u.deny(domain.KindSubscription, domain.OpUpdate)
}

func (u Unsupported) CancelSubscription(context.Context, string, string) error {
	return u.deny(domain.KindSubscription, domain.OpDelete)
}

func (u Unsupported) ListProductFamilies(context.Context, string) ([]domain.ProductFamily, error) {
	return nil, u.deny(domain.KindProductFamily, domain.OpList)
}

func (u Unsupported) CreateProductFamily(context.Context, string, domain.ProductFamilyRequest) (domain.ProductFamily, error) {
	return domain.ProductFamily{}, u.deny(domain.KindProductFamily, domain.OpCreate)
}

func (u Unsupported) UpdateProductFamily(context.Context, string, string, domain.ProductFamilyRequest) (domain.ProductFamily, error) {
	return domain.ProductFamily{}, u.deny(domain.KindProductFamily, domain.OpUpdate)
}

func (u Unsupported) DeleteProductFamily(context.Context, string, string) error {
	return u.deny(domain.KindProductFamily, domain.OpDelete)
}

func (u Unsupported) ListProducts(context.Context, string) ([]domain.Product, error) {
	return nil, u.deny(domain.KindProduct, domain.OpList)
}

func (u Unsupported) ListFamilyProducts(context.Context, string, string) ([]domain.Product, error) {
	return nil, u.deny(domain.KindProduct, domain.OpList)
}

func (u Unsupported) CreateProduct(context.Context, string, string, domain.ProductRequest) (domain.Product, error) {
	return domain.Product{}, u.deny(domain.KindProduct, domain.OpCreate)
}

func (u Unsupported) UpdateProduct(context.Context, string, string, string, domain.ProductRequest) (domain.Product, error) {
	return domain.Product{}, u.deny(domain.KindProduct, domain.OpUpdate)
}

func (u Unsupported) DeleteProduct(context.Context, string, string, string) error {
	return u.deny(domain.KindProduct, domain.OpDelete)
}

func (u Unsupported) ListInvoices(context.Context, string) ([]domain.Invoice, error) {
	return nil, u.deny(domain.KindInvoice, domain.OpList)
}

func (u Unsupported) ListCoupons(context.Context, string) ([]domain.Coupon, error) {
	return nil, u.deny(domain.KindCoupon, domain.OpList)
}

func (u Unsupported) CreateCoupon(context.Context, string, domain.CouponRequest) (domain.Coupon, error) {
	return domain.Coupon{}, u.deny(domain.KindCoupon, domain.OpCreate)
}

func (u Unsupported) UpdateCoupon(context.Context, string, string, domain.CouponUpdateRequest) (domain.Coupon, error) {
	return domain.Coupon{}, u.deny(domain.KindCoupon, domain.OpUpdate)
}

func (u Unsupported) DeleteCoupon(context.Context, string, string) error {
	return u.deny(domain.KindCoupon, domain.OpDelete)
}

func (u Unsupported) ListPayments(context.Context, string) ([]domain.Payment, error) {
	return nil, u.deny(domain.KindPayment, domain.OpList)
}

var _ Adapter = Unsupported{}
