// Package nodetype decides how each kind of tree node looks and behaves:
// icon, display name, whether it has children and which actions it offers.
package nodetype

import "github.com/railzwaylabs/billinghub/internal/domain"

// Kind is the closed set of node types the tree understands.
type Kind int

const (
	Unknown Kind = iota
	Platform
	Connection

	Customers
	Subscriptions
	ProductFamilies
	Products
	Invoices
	Coupons
	Payments

	Customer
	Subscription
	Product
	Invoice
	Coupon
	Payment

	ProductFamily
	Error

	kindCount
)

var kindNames = [...]string{
	Unknown:         "unknown",
	Platform:        "platform",
	Connection:      "connection",
	Customers:       "customers",
	Subscriptions:   "subscriptions",
	ProductFamilies: "product-families",
	Products:        "products",
	Invoices:        "invoices",
	Coupons:         "coupons",
	Payments:        "payments",
	Customer:        "customer",
	Subscription:    "subscription",
	Product:         "product",
	Invoice:         "invoice",
	Coupon:          "coupon",
	Payment:         "payment",
	ProductFamily:   "product-family",
	Error:           "error",
}

var (
	_ [len(kindNames) - int(kindCount)]struct{}
	_ [int(kindCount) - len(kindNames)]struct{}
)

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

// Parse maps a node type string onto its Kind. Anything unrecognised is
// Unknown rather than an error.
func Parse(nodeType string) Kind {
	for k := Unknown + 1; k < kindCount; k++ {
		if kindNames[k] == nodeType {
			return k
		}
	}
	return Unknown
}

// ContainerFor returns the container kind listing entities of the given kind.
func ContainerFor(kind domain.EntityKind) (Kind, bool) {
	switch kind {
	case domain.KindCustomer:
		return Customers, true
	case domain.KindSubscription:
		return Subscriptions, true
	case domain.KindProductFamily:
		return ProductFamilies, true
	case domain.KindProduct:
		return Products, true
	case domain.KindInvoice:
		return Invoices, true
	case domain.KindCoupon:
		return Coupons, true
	case domain.KindPayment:
		return Payments, true
	default:
		return Unknown, false
	}
}

// ItemKind returns the node kind used to render one entity.
func ItemKind(kind domain.EntityKind) Kind {
	switch kind {
	case domain.KindConnection:
		return Connection
	case domain.KindCustomer:
		return Customer
	case domain.KindSubscription:
		return Subscription
	case domain.KindProductFamily:
		return ProductFamily
	case domain.KindProduct:
		return Product
	case domain.KindInvoice:
		return Invoice
	case domain.KindCoupon:
		return Coupon
	case domain.KindPayment:
		return Payment
	default:
		return Unknown
	}
}

// Entity returns the entity kind a container lists, or an entity node holds.
func (k Kind) Entity() (domain.EntityKind, bool) {
	switch k {
	case Connection:
		return domain.KindConnection, true
	case Customers, Customer:
		return domain.KindCustomer, true
	case Subscriptions, Subscription:
		return domain.KindSubscription, true
	case ProductFamilies, ProductFamily:
		return domain.KindProductFamily, true
	case Products, Product:
		return domain.KindProduct, true
	case Invoices, Invoice:
		return domain.KindInvoice, true
	case Coupons, Coupon:
		return domain.KindCoupon, true
	case Payments, Payment:
		return domain.KindPayment, true
	default:
		return "", false
	}
}

// IsContainer reports whether k is one of the per-connection folders.
func (k Kind) IsContainer() bool {
	return k >= Customers && k <= Payments
}
