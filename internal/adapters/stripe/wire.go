package stripe

import (
	"strings"

	"github.com/railzwaylabs/billinghub/internal/domain"
	stripego "github.com/stripe/stripe-go/v83"
)

// list is the Stripe list envelope.
type list[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	HasMore bool   `json:"has_more"`
}

// subscription is decoded locally because the period fields moved from the
// subscription to its items across API versions.
type subscription struct {
	ID               string             `json:"id"`
	Status           string             `json:"status"`
	Customer         *stripego.Customer `json:"customer"`
	CurrentPeriodEnd int64              `json:"current_period_end"`
	StartDate        int64              `json:"start_date"`
	Created          int64              `json:"created"`
	Items            struct {
		Data []subscriptionItem `json:"data"`
	} `json:"items"`
}

type subscriptionItem struct {
	ID               string          `json:"id"`
	Price            *stripego.Price `json:"price"`
	CurrentPeriodEnd int64           `json:"current_period_end"`
}

type customerBody struct {
	Name     string            `json:"name,omitempty"`
	Email    string            `json:"email,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type productBody struct {
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type recurringBody struct {
	Interval      string `json:"interval"`
	IntervalCount int64  `json:"interval_count,omitempty"`
}

type priceBody struct {
	Product    string         `json:"product,omitempty"`
	UnitAmount *int64         `json:"unit_amount,omitempty"`
	Currency   string         `json:"currency,omitempty"`
	Recurring  *recurringBody `json:"recurring,omitempty"`
	Nickname   string         `json:"nickname,omitempty"`
	LookupKey  string         `json:"lookup_key,omitempty"`
	Active     *bool          `json:"active,omitempty"`
}

type subscriptionItemBody struct {
	ID    string `json:"id,omitempty"`
	Price string `json:"price"`
}

type discountBody struct {
	Coupon string `json:"coupon"`
}

type subscriptionBody struct {
	Customer  string                 `json:"customer,omitempty"`
	Items     []subscriptionItemBody `json:"items"`
	Discounts []discountBody         `json:"discounts,omitempty"`
}

type couponBody struct {
	ID               string   `json:"id,omitempty"`
	Name             *string  `json:"name,omitempty"`
	PercentOff       *float64 `json:"percent_off,omitempty"`
	AmountOff        *int64   `json:"amount_off,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	Duration         string   `json:"duration,omitempty"`
	DurationInMonths *int64   `json:"duration_in_months,omitempty"`
	MaxRedemptions   *int64   `json:"max_redemptions,omitempty"`
	RedeemBy         *int64   `json:"redeem_by,omitempty"`
}

// SplitName breaks a Stripe name on its first whitespace run. It is lossy
// for multi-word first names: "Mary Jane Watson" reads back as
// first "Mary", last "Jane Watson".
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	idx := strings.IndexFunc(name, isSpace)
	if idx < 0 {
		return name, ""
	}
	return name[:idx], strings.TrimLeftFunc(name[idx:], isSpace)
}

// JoinName is the inverse used on write: a single space between the parts.
func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func upper(c stripego.Currency) string {
	return strings.ToUpper(string(c))
}

func toCustomer(c *stripego.Customer) domain.Customer {
	if c == nil {
		return domain.Customer{}
	}
	first, last := SplitName(c.Name)
	return domain.Customer{
		ID:           c.ID,
		FirstName:    first,
		LastName:     last,
		Email:        c.Email,
		Organization: optional(c.Metadata["organization"]),
		Reference:    optional(c.Metadata["reference"]),
		CreatedAt:    domain.EpochToISO(c.Created),
	}
}

func fromCustomerRequest(req domain.CustomerRequest) customerBody {
	body := customerBody{
		Name:  JoinName(req.FirstName, req.LastName),
		Email: req.Email,
	}
	meta := map[string]string{}
	if req.Organization != nil {
		meta["organization"] = *req.Organization
	}
	if req.Reference != nil {
		meta["reference"] = *req.Reference
	}
	if len(meta) > 0 {
		body.Metadata = meta
	}
	return body
}

func toProductFamily(p *stripego.Product) domain.ProductFamily {
	if p == nil {
		return domain.ProductFamily{}
	}
	return domain.ProductFamily{
		ID:          p.ID,
		Name:        p.Name,
		Handle:      optional(p.Metadata["handle"]),
		Description: optional(p.Description),
		CreatedAt:   domain.EpochToISO(p.Created),
	}
}

func fromProductFamilyRequest(req domain.ProductFamilyRequest) productBody {
	body := productBody{Name: req.Name}
	if req.Description != nil {
		body.Description = *req.Description
	}
	if req.Handle != nil && *req.Handle != "" {
		body.Metadata = map[string]string{"handle": *req.Handle}
	}
	return body
}

func toProduct(p *stripego.Price) domain.Product {
	if p == nil {
		return domain.Product{}
	}
	out := domain.Product{
		ID:           p.ID,
		Name:         p.Nickname,
		Handle:       optional(p.LookupKey),
		PriceInCents: p.UnitAmount,
		Currency:     upper(p.Currency),
		Active:       p.Active,
		CreatedAt:    domain.EpochToISO(p.Created),
	}
	if p.Product != nil {
		out.ProductFamilyID = p.Product.ID
	}
	if p.Recurring != nil {
		out.IntervalUnit = string(p.Recurring.Interval)
		out.Interval = p.Recurring.IntervalCount
		if out.Interval == 0 {
			out.Interval = 1
		}
	}
	return out
}

func fromProductRequest(familyID string, req domain.ProductRequest) priceBody {
	amount := req.PriceInCents
	body := priceBody{
		Product:    familyID,
		UnitAmount: &amount,
		Currency:   strings.ToLower(req.Currency),
		Nickname:   req.Name,
		Active:     req.Active,
	}
	if req.Handle != nil {
		body.LookupKey = *req.Handle
	}
	if req.Interval > 0 {
		body.Recurring = &recurringBody{Interval: req.IntervalUnit, IntervalCount: req.Interval}
	}
	return body
}

// Prices are immutable apart from their labels and active flag.
func fromProductUpdate(req domain.ProductRequest) priceBody {
	body := priceBody{Nickname: req.Name, Active: req.Active}
	if req.Handle != nil {
		body.LookupKey = *req.Handle
	}
	return body
}

func toSubscription(s subscription) domain.Subscription {
	out := domain.Subscription{
		ID:          s.ID,
		State:       s.Status,
		ActivatedAt: domain.EpochToISO(s.StartDate),
		CreatedAt:   domain.EpochToISO(s.Created),
	}
	if s.Customer != nil {
		c := toCustomer(s.Customer)
		out.Customer = &c
	}
	periodEnd := s.CurrentPeriodEnd
	if len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		if item.Price != nil {
			p := toProduct(item.Price)
			out.Product = &p
		}
		if periodEnd == 0 {
			periodEnd = item.CurrentPeriodEnd
		}
	}
	out.CurrentPeriodEndsAt = domain.EpochToISO(periodEnd)
	return out
}

func toInvoice(i *stripego.Invoice) domain.Invoice {
	if i == nil {
		return domain.Invoice{}
	}
	total := i.Total
	out := domain.Invoice{
		UID:         i.ID,
		Number:      i.Number,
		Status:      string(i.Status),
		TotalAmount: &total,
		Currency:    upper(i.Currency),
		DueDate:     domain.EpochToISO(i.DueDate),
		CreatedAt:   domain.EpochToISO(i.Created),
	}
	if i.Customer != nil {
		out.CustomerID = i.Customer.ID
	}
	return out
}

func toCoupon(c *stripego.Coupon) domain.Coupon {
	if c == nil {
		return domain.Coupon{}
	}
	out := domain.Coupon{
		ID:            c.ID,
		Name:          optional(c.Name),
		Duration:      string(c.Duration),
		TimesRedeemed: c.TimesRedeemed,
		Valid:         c.Valid,
		RedeemBy:      domain.EpochToISO(c.RedeemBy),
	}
	if c.PercentOff > 0 {
		pct := c.PercentOff
		out.PercentOff = &pct
	}
	if c.AmountOff > 0 {
		amt := c.AmountOff
		out.AmountOff = &amt
		cur := upper(c.Currency)
		out.Currency = &cur
	}
	if c.DurationInMonths > 0 {
		months := c.DurationInMonths
		out.DurationInMonths = &months
	}
	if c.MaxRedemptions > 0 {
		limit := c.MaxRedemptions
		out.MaxRedemptions = &limit
	}
	return out
}

func fromCouponRequest(req domain.CouponRequest) (couponBody, error) {
	body := couponBody{
		ID:               req.ID,
		Name:             req.Name,
		PercentOff:       req.PercentOff,
		AmountOff:        req.AmountOff,
		Duration:         req.Duration,
		DurationInMonths: req.DurationInMonths,
		MaxRedemptions:   req.MaxRedemptions,
	}
	if req.Currency != nil {
		body.Currency = strings.ToLower(*req.Currency)
	}
	if req.RedeemBy != nil && *req.RedeemBy != "" {
		epoch, err := domain.ISOToEpoch(*req.RedeemBy)
		if err != nil {
			return couponBody{}, domain.NewValidationError("redeem_by", "datetime", "must be an RFC 3339 timestamp")
		}
		body.RedeemBy = &epoch
	}
	return body, nil
}

func toPayment(p *stripego.PaymentIntent) domain.Payment {
	if p == nil {
		return domain.Payment{}
	}
	out := domain.Payment{
		ID:            p.ID,
		AmountInCents: p.Amount,
		Currency:      upper(p.Currency),
		Status:        string(p.Status),
		CreatedAt:     domain.EpochToISO(p.Created),
	}
	if p.Customer != nil {
		out.CustomerID = optional(p.Customer.ID)
	}
	return out
}
