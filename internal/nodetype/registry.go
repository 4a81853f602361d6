package nodetype

import "github.com/railzwaylabs/billinghub/internal/domain"

var handlers = [...]Handler{
	Unknown:    base{},
	Platform:   platformHandler{base{icon: "cloud"}},
	Connection: connectionHandler{},

	Customers:       container{base{icon: "folder-users"}, domain.KindCustomer, "Customers"},
	Subscriptions:   container{base{icon: "folder-repeat"}, domain.KindSubscription, "Subscriptions"},
	ProductFamilies: container{base{icon: "folder-boxes"}, domain.KindProductFamily, "Product Families"},
	Products:        container{base{icon: "folder-box"}, domain.KindProduct, "Products"},
	Invoices:        container{base{icon: "folder-receipt"}, domain.KindInvoice, "Invoices"},
	Coupons:         container{base{icon: "folder-ticket"}, domain.KindCoupon, "Coupons"},
	Payments:        container{base{icon: "folder-card"}, domain.KindPayment, "Payments"},

	Customer:     leaf{base{icon: "user"}, domain.KindCustomer, customerName},
	Subscription: leaf{base{icon: "repeat"}, domain.KindSubscription, subscriptionName},
	Product:      leaf{base{icon: "box"}, domain.KindProduct, productName},
	Invoice:      leaf{base{icon: "receipt"}, domain.KindInvoice, invoiceName},
	Coupon:       leaf{base{icon: "ticket"}, domain.KindCoupon, couponName},
	Payment:      leaf{base{icon: "card"}, domain.KindPayment, paymentName},

	ProductFamily: expandable{leaf{base{icon: "boxes"}, domain.KindProductFamily, productFamilyName}, domain.KindProduct},
	Error:         errorHandler{base{icon: "alert"}},
}

// Adding a Kind without a handler, or the reverse, fails to compile.
var (
	_ [len(handlers) - int(kindCount)]struct{}
	_ [int(kindCount) - len(handlers)]struct{}
)

// For returns the handler of a kind. Out-of-range kinds get the default.
func For(k Kind) Handler {
	if k <= Unknown || k >= kindCount || handlers[k] == nil {
		return handlers[Unknown]
	}
	return handlers[k]
}

// Lookup never fails: unknown node types get the default handler, which is
// not expandable, has no actions and shows the raw name.
func Lookup(nodeType string) Handler {
	return For(Parse(nodeType))
}

// Normalize fills the derived fields of a node from its handler: display
// name, icon and expandability. Children are normalized recursively.
func Normalize(n domain.TreeNode) domain.TreeNode {
	h := Lookup(n.Type)
	n.Name = h.DisplayName(n)
	n.Icon = h.Icon(n)
	n.IsExpandable = h.HasChildren(n)
	if n.Children != nil {
		children := make([]domain.TreeNode, 0, len(n.Children))
		for _, c := range n.Children {
			if c.ConnectionID == "" {
				c.ConnectionID = n.ConnectionID
			}
			if c.PlatformType == "" {
				c.PlatformType = n.PlatformType
			}
			children = append(children, Normalize(c))
		}
		n.Children = children
	}
	return n
}

// Menu returns the actions offered for a node.
func Menu(n domain.TreeNode) []Action {
	actions := Lookup(n.Type).Actions(ActionContext{Node: n, Platform: n.PlatformType})
	if actions == nil {
		return []Action{}
	}
	return actions
}
