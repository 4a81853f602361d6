package nodetype

import (
	"fmt"
	"strings"

	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/railzwaylabs/billinghub/internal/money"
)

// Action is one context-menu entry for a node.
type Action struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Destructive bool   `json:"destructive,omitempty"`
}

const (
	ActionCreate        = "create"
	ActionEdit          = "edit"
	ActionDelete        = "delete"
	ActionRefresh       = "refresh"
	ActionTest          = "test"
	ActionRetry         = "retry"
	ActionAddConnection = "add-connection"
	ActionCreateProduct = "create-product"
)

// ActionContext is what a handler sees when building a menu.
type ActionContext struct {
	Node     domain.TreeNode
	Platform domain.Platform
}

// Handler is the per-kind behaviour of a tree node.
type Handler interface {
	Icon(n domain.TreeNode) string
	Actions(ctx ActionContext) []Action
	HasChildren(n domain.TreeNode) bool
	IsLazyLoaded(n domain.TreeNode) bool
	DisplayName(n domain.TreeNode) string
}

type base struct {
	icon string
}

func (b base) Icon(domain.TreeNode) string { return b.icon }

func (b base) Actions(ActionContext) []Action { return nil }

func (b base) HasChildren(domain.TreeNode) bool { return false }

func (b base) IsLazyLoaded(domain.TreeNode) bool { return false }

func (b base) DisplayName(n domain.TreeNode) string { return n.Name }

// container is a per-connection folder listing one entity kind.
type container struct {
	base
	entity domain.EntityKind
	label  string
}

func (c container) HasChildren(domain.TreeNode) bool { return true }

func (c container) IsLazyLoaded(domain.TreeNode) bool { return true }

func (c container) DisplayName(n domain.TreeNode) string {
	if n.Name != "" {
		return n.Name
	}
	return c.label
}

func (c container) Actions(ctx ActionContext) []Action {
	var out []Action
	if domain.Capabilities(ctx.Platform, c.entity).Has(domain.OpCreate) {
		out = append(out, Action{ID: ActionCreate, Label: "New " + singular(c.entity)})
	}
	return append(out, Action{ID: ActionRefresh, Label: "Refresh"})
}

// leaf is a single entity without children.
type leaf struct {
	base
	entity domain.EntityKind
	name   func(domain.EntityItem) string
}

func (l leaf) DisplayName(n domain.TreeNode) string {
	if n.Data != nil && n.Data.Kind == l.entity {
		if name := l.name(*n.Data); name != "" {
			return name
		}
	}
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

func (l leaf) Actions(ctx ActionContext) []Action {
	ops := domain.Capabilities(ctx.Platform, l.entity)
	var out []Action
	if ops.Has(domain.OpUpdate) {
		out = append(out, Action{ID: ActionEdit, Label: "Edit"})
	}
	if ops.Has(domain.OpDelete) {
		out = append(out, Action{ID: ActionDelete, Label: deleteLabel(l.entity), Destructive: true})
	}
	return out
}

// expandable is an entity that also lists children of another kind.
type expandable struct {
	leaf
	child domain.EntityKind
}

func (e expandable) HasChildren(domain.TreeNode) bool { return true }

func (e expandable) IsLazyLoaded(domain.TreeNode) bool { return true }

func (e expandable) Actions(ctx ActionContext) []Action {
	out := e.leaf.Actions(ctx)
	if domain.Capabilities(ctx.Platform, e.child).Has(domain.OpCreate) {
		out = append(out, Action{ID: ActionCreateProduct, Label: "New " + singular(e.child)})
	}
	return append(out, Action{ID: ActionRefresh, Label: "Refresh"})
}

type platformHandler struct{ base }

func (platformHandler) HasChildren(domain.TreeNode) bool { return true }

func (platformHandler) DisplayName(n domain.TreeNode) string {
	if n.Name != "" {
		return n.Name
	}
	return n.PlatformType.DisplayName()
}

func (platformHandler) Actions(ActionContext) []Action {
	return []Action{{ID: ActionAddConnection, Label: "Add connection"}}
}

type connectionHandler struct{ base }

func (connectionHandler) HasChildren(domain.TreeNode) bool { return true }

func (connectionHandler) Icon(n domain.TreeNode) string {
	if c := connectionOf(n); c != nil {
		switch c.Status {
		case domain.ConnectionStatusConnected:
			return "plug-connected"
		case domain.ConnectionStatusError:
			return "plug-error"
		}
	}
	return "plug-pending"
}

func (connectionHandler) DisplayName(n domain.TreeNode) string {
	name := n.Name
	sandbox := false
	if c := connectionOf(n); c != nil {
		if c.Name != "" {
			name = c.Name
		}
		sandbox = c.IsSandbox
	}
	if name == "" {
		name = n.ID
	}
	if sandbox {
		name += " (sandbox)"
	}
	return name
}

func (connectionHandler) Actions(ActionContext) []Action {
	return []Action{
		{ID: ActionTest, Label: "Test connection"},
		{ID: ActionRefresh, Label: "Refresh"},
		{ID: ActionDelete, Label: "Remove connection", Destructive: true},
	}
}

func connectionOf(n domain.TreeNode) *domain.Connection {
	if n.Data != nil && n.Data.Kind == domain.KindConnection {
		return n.Data.Connection
	}
	return nil
}

type errorHandler struct{ base }

func (errorHandler) Actions(ActionContext) []Action {
	return []Action{{ID: ActionRetry, Label: "Retry"}}
}

func singular(kind domain.EntityKind) string {
	switch kind {
	case domain.KindProductFamily:
		return "product family"
	default:
		return string(kind)
	}
}

func deleteLabel(kind domain.EntityKind) string {
	switch kind {
	case domain.KindSubscription:
		return "Cancel subscription"
	default:
		return "Delete"
	}
}

func customerName(e domain.EntityItem) string {
	c := e.Customer
	if c == nil {
		return ""
	}
	if c.Organization != nil && strings.TrimSpace(*c.Organization) != "" {
		return *c.Organization
	}
	if c.Email != "" {
		return c.Email
	}
	if full := strings.TrimSpace(c.FirstName + " " + c.LastName); full != "" {
		return full
	}
	return c.ID
}

func productFamilyName(e domain.EntityItem) string {
	f := e.ProductFamily
	if f == nil {
		return ""
	}
	if f.Name != "" {
		return f.Name
	}
	if f.Handle != nil && *f.Handle != "" {
		return *f.Handle
	}
	return f.ID
}

func productName(e domain.EntityItem) string {
	p := e.Product
	if p == nil {
		return ""
	}
	label := PriceLabel(*p)
	switch {
	case p.Name != "" && label != "":
		return p.Name + " (" + label + ")"
	case p.Name != "":
		return p.Name
	case label != "":
		return label
	}
	return p.ID
}

// PriceLabel renders "USD 19.99 / month" style labels. Products with no
// currency have no label.
func PriceLabel(p domain.Product) string {
	if p.Currency == "" {
		return ""
	}
	label := money.Format(p.PriceInCents, p.Currency)
	switch {
	case p.IntervalUnit == "" || p.Interval <= 0:
		return label
	case p.Interval == 1:
		return label + " / " + p.IntervalUnit
	default:
		return fmt.Sprintf("%s / %d %ss", label, p.Interval, p.IntervalUnit)
	}
}

func subscriptionName(e domain.EntityItem) string {
	s := e.Subscription
	if s == nil {
		return ""
	}
	subject := s.ID
	if s.Product != nil {
		if name := productName(domain.ProductItem(*s.Product)); name != "" {
			subject = name
		}
	}
	if s.State == "" {
		return subject
	}
	return fmt.Sprintf("%s (%s)", subject, s.State)
}

func invoiceName(e domain.EntityItem) string {
	i := e.Invoice
	if i == nil {
		return ""
	}
	if i.Number != "" {
		return i.Number
	}
	return i.UID
}

func couponName(e domain.EntityItem) string {
	c := e.Coupon
	if c == nil {
		return ""
	}
	if c.Name != nil && *c.Name != "" {
		return *c.Name
	}
	return c.ID
}

func paymentName(e domain.EntityItem) string {
	p := e.Payment
	if p == nil {
		return ""
	}
	amount := money.Format(p.AmountInCents, p.Currency)
	if p.Status == "" {
		return amount
	}
	return amount + " " + p.Status
}
