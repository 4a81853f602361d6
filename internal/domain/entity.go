package domain

// EntityItem is a tagged union over every entity the tree can display.
// Kind is set by whoever constructs the item and exactly the matching
// field is populated; consumers switch on Kind, never on field presence.
type EntityItem struct {
	Kind          EntityKind     `json:"kind"`
	Connection    *Connection    `json:"connection,omitempty"`
	Customer      *Customer      `json:"customer,omitempty"`
	Subscription  *Subscription  `json:"subscription,omitempty"`
	ProductFamily *ProductFamily `json:"product_family,omitempty"`
	Product       *Product       `json:"product,omitempty"`
	Invoice       *Invoice       `json:"invoice,omitempty"`
	Coupon        *Coupon        `json:"coupon,omitempty"`
	Payment       *Payment       `json:"payment,omitempty"`
}

func ConnectionItem(c Connection) EntityItem {
	return EntityItem{Kind: KindConnection, Connection: &c}
}

func CustomerItem(c Customer) EntityItem {
	return EntityItem{Kind: KindCustomer, Customer: &c}
}

func SubscriptionItem(s Subscription) EntityItem {
	return EntityItem{Kind: KindSubscription, Subscription: &s}
}

func ProductFamilyItem(f ProductFamily) EntityItem {
	return EntityItem{Kind: KindProductFamily, ProductFamily: &f}
}

func ProductItem(p Product) EntityItem {
	return EntityItem{Kind: KindProduct, Product: &p}
}

func InvoiceItem(i Invoice) EntityItem {
	return EntityItem{Kind: KindInvoice, Invoice: &i}
}

func CouponItem(c Coupon) EntityItem {
	return EntityItem{Kind: KindCoupon, Coupon: &c}
}

func PaymentItem(p Payment) EntityItem {
	return EntityItem{Kind: KindPayment, Payment: &p}
}

// ID returns the identifier of the wrapped entity, or "" when the
// variant named by Kind is missing.
func (e EntityItem) ID() string {
	switch e.Kind {
	case KindConnection:
		if e.Connection != nil {
			return e.Connection.ID
		}
	case KindCustomer:
		if e.Customer != nil {
			return e.Customer.ID
		}
	case KindSubscription:
		if e.Subscription != nil {
			return e.Subscription.ID
		}
	case KindProductFamily:
		if e.ProductFamily != nil {
			return e.ProductFamily.ID
		}
	case KindProduct:
		if e.Product != nil {
			return e.Product.ID
		}
	case KindInvoice:
		if e.Invoice != nil {
			return e.Invoice.UID
		}
	case KindCoupon:
		if e.Coupon != nil {
			return e.Coupon.ID
		}
	case KindPayment:
		if e.Payment != nil {
			return e.Payment.ID
		}
	}
	return ""
}

// Items wraps a typed slice into tagged items. The result is never nil.
func Items[T any](values []T, wrap func(T) EntityItem) []EntityItem {
	out := make([]EntityItem, 0, len(values))
	for _, v := range values {
		out = append(out, wrap(v))
	}
	return out
}
