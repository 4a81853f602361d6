package domain

import "strings"

// Platform identifies an external billing vendor.
type Platform string

const (
	PlatformMaxio  Platform = "maxio"
	PlatformStripe Platform = "stripe"
	PlatformZuora  Platform = "zuora"
)

// Platforms lists every supported vendor in display order.
var Platforms = []Platform{PlatformMaxio, PlatformStripe, PlatformZuora}

func ParsePlatform(raw string) (Platform, bool) {
	switch Platform(strings.ToLower(strings.TrimSpace(raw))) {
	case PlatformMaxio:
		return PlatformMaxio, true
	case PlatformStripe:
		return PlatformStripe, true
	case PlatformZuora:
		return PlatformZuora, true
	default:
		return "", false
	}
}

func (p Platform) Valid() bool {
	_, ok := ParsePlatform(string(p))
	return ok
}

// DisplayName is the vendor label shown on root nodes.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformMaxio:
		return "Maxio"
	case PlatformStripe:
		return "Stripe"
	case PlatformZuora:
		return "Zuora"
	default:
		return string(p)
	}
}

// EntityKind tags every platform-neutral entity.
type EntityKind string

const (
	KindConnection    EntityKind = "connection"
	KindCustomer      EntityKind = "customer"
	KindSubscription  EntityKind = "subscription"
	KindProductFamily EntityKind = "product_family"
	KindProduct       EntityKind = "product"
	KindInvoice       EntityKind = "invoice"
	KindCoupon        EntityKind = "coupon"
	KindPayment       EntityKind = "payment"
)

// EntityKinds lists the kinds covered by the capability matrix.
var EntityKinds = []EntityKind{
	KindCustomer,
	KindSubscription,
	KindProductFamily,
	KindProduct,
	KindInvoice,
	KindCoupon,
	KindPayment,
}

// Collection returns the list name used for containers and cache keys.
func (k EntityKind) Collection() string {
	switch k {
	case KindCustomer:
		return "customers"
	case KindSubscription:
		return "subscriptions"
	case KindProductFamily:
		return "product-families"
	case KindProduct:
		return "products"
	case KindInvoice:
		return "invoices"
	case KindCoupon:
		return "coupons"
	case KindPayment:
		return "payments"
	case KindConnection:
		return "connections"
	default:
		return string(k)
	}
}

// KindFromCollection is the inverse of Collection.
func KindFromCollection(collection string) (EntityKind, bool) {
	for _, k := range EntityKinds {
		if k.Collection() == collection {
			return k, true
		}
	}
	return "", false
}
