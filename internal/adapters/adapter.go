// Package adapters defines the per-platform translation contract between the
// generic domain model and each vendor's wire shapes.
package adapters

import (
	"context"
	"net/url"

	"github.com/railzwaylabs/billinghub/internal/domain"
)

// Backend is the slice of the transport client adapters rely on.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Adapter translates generic requests into one vendor's REST shapes and maps
// responses back into the domain model. Every list returns a non-nil slice.
type Adapter interface {
	Platform() domain.Platform

	TestConnection(ctx context.Context, connectionID string) error

	ListCustomers(ctx context.Context, connectionID string) ([]domain.Customer, error)
	CreateCustomer(ctx context.Context, connectionID string, req domain.CustomerRequest) (domain.Customer, error)
	UpdateCustomer(ctx context.Context, connectionID, id string, req domain.CustomerRequest) (domain.Customer, error)
	DeleteCustomer(ctx context.Context, connectionID, id string) error

	ListSubscriptions(ctx context.Context, connectionID string) ([]domain.Subscription, error)
	CreateSubscription(ctx context.Context, connectionID string, req domain.SubscriptionRequest) (domain.Subscription, error)
	UpdateSubscription(ctx context.Context, connectionID, id string, req domain.SubscriptionUpdateRequest) (domain.Subscription, error)
	CancelSubscription(ctx context.Context, connectionID, id string) error

	ListProductFamilies(ctx context.Context, connectionID string) ([]domain.ProductFamily, error)
	CreateProductFamily(ctx context.Context, connectionID string, req domain.ProductFamilyRequest) (domain.ProductFamily, error)
	UpdateProductFamily(ctx context.Context, connectionID, id string, req domain.ProductFamilyRequest) (domain.ProductFamily, error)
	DeleteProductFamily(ctx context.Context, connectionID, id string) error

	ListProducts(ctx context.Context, connectionID string) ([]domain.Product, error)
	ListFamilyProducts(ctx context.Context, connectionID, familyID string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, connectionID, familyID string, req domain.ProductRequest) (domain.Product, error)
	UpdateProduct(ctx context.Context, connectionID, familyID, id string, req domain.ProductRequest) (domain.Product, error)
	DeleteProduct(ctx context.Context, connectionID, familyID, id string) error

	ListInvoices(ctx context.Context, connectionID string) ([]domain.Invoice, error)

	ListCoupons(ctx context.Context, connectionID string) ([]domain.Coupon, error)
	CreateCoupon(ctx context.Context, connectionID string, req domain.CouponRequest) (domain.Coupon, error)
	UpdateCoupon(ctx context.Context, connectionID, id string, req domain.CouponUpdateRequest) (domain.Coupon, error)
	DeleteCoupon(ctx context.Context, connectionID, id string) error

	ListPayments(ctx context.Context, connectionID string) ([]domain.Payment, error)
}

type Factory interface {
	Platform() domain.Platform
	NewAdapter(backend Backend) Adapter
}
