package zuora

import (
	"strings"
	"time"

	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/railzwaylabs/billinghub/internal/money"
	"github.com/shopspring/decimal"
)

type contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	WorkEmail string `json:"workEmail"`
}

type account struct {
	ID            string   `json:"id"`
	AccountNumber string   `json:"accountNumber"`
	Name          string   `json:"name"`
	BillToContact *contact `json:"billToContact"`
	CreatedDate   string   `json:"createdDate"`
}

type accountBody struct {
	Name          string  `json:"name"`
	AccountNumber string  `json:"accountNumber,omitempty"`
	BillToContact contact `json:"billToContact"`
}

type ratePlanRef struct {
	ID                string `json:"id"`
	ProductID         string `json:"productId"`
	ProductRatePlanID string `json:"productRatePlanId"`
	RatePlanName      string `json:"ratePlanName"`
	ProductName       string `json:"productName"`
}

type subscription struct {
	ID                    string        `json:"id"`
	SubscriptionNumber    string        `json:"subscriptionNumber"`
	Status                string        `json:"status"`
	AccountID             string        `json:"accountId"`
	AccountName           string        `json:"accountName"`
	TermEndDate           string        `json:"termEndDate"`
	SubscriptionStartDate string        `json:"subscriptionStartDate"`
	CreatedDate           string        `json:"createdDate"`
	RatePlans             []ratePlanRef `json:"ratePlans"`
}

type pricing struct {
	Currency string          `json:"currency"`
	Price    decimal.Decimal `json:"price"`
}

type ratePlanCharge struct {
	ID            string    `json:"id"`
	BillingPeriod string    `json:"billingPeriod"`
	Pricing       []pricing `json:"pricing"`
}

type ratePlan struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Description            string           `json:"description"`
	Status                 string           `json:"status"`
	ProductRatePlanCharges []ratePlanCharge `json:"productRatePlanCharges"`
}

type catalogProduct struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SKU              string     `json:"sku"`
	Description      string     `json:"description"`
	CreatedDate      string     `json:"createdDate"`
	ProductRatePlans []ratePlan `json:"productRatePlans"`
}

type invoice struct {
	ID            string           `json:"id"`
	InvoiceNumber string           `json:"invoiceNumber"`
	AccountID     string           `json:"accountId"`
	Status        string           `json:"status"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      string           `json:"currency"`
	DueDate       string           `json:"dueDate"`
	InvoiceDate   string           `json:"invoiceDate"`
	CreatedDate   string           `json:"createdDate"`
}

type payment struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	AccountID     string          `json:"accountId"`
	EffectiveDate string          `json:"effectiveDate"`
	CreatedDate   string          `json:"createdDate"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeDate turns Zuora dates and datetimes into RFC 3339 UTC strings.
// Unparseable values are dropped.
func normalizeDate(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			s := domain.FormatTime(t)
			return &s
		}
	}
	return nil
}

func firstDate(values ...string) *string {
	for _, v := range values {
		if d := normalizeDate(v); d != nil {
			return d
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// billingPeriod maps Zuora billing periods onto interval and unit.
func billingPeriod(period string) (int64, string) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "month":
		return 1, "month"
	case "quarter":
		return 3, "month"
	case "semi-annual":
		return 6, "month"
	case "annual":
		return 1, "year"
	case "eighteen months":
		return 18, "month"
	case "two years":
		return 2, "year"
	case "three years":
		return 3, "year"
	case "five years":
		return 5, "year"
	case "week":
		return 1, "week"
	default:
		return 0, ""
	}
}

func toCustomer(a account) domain.Customer {
	c := domain.Customer{
		ID:        a.ID,
		Reference: optional(a.AccountNumber),
		CreatedAt: normalizeDate(a.CreatedDate),
	}
	if a.BillToContact != nil {
		c.FirstName = a.BillToContact.FirstName
		c.LastName = a.BillToContact.LastName
		c.Email = a.BillToContact.WorkEmail
	}
	// Accounts created without an organization are named after the contact.
	if a.Name != strings.TrimSpace(c.FirstName+" "+c.LastName) {
		c.Organization = optional(a.Name)
	}
	return c
}

func fromCustomerRequest(req domain.CustomerRequest) accountBody {
	name := strings.TrimSpace(req.FirstName + " " + req.LastName)
	if req.Organization != nil && *req.Organization != "" {
		name = *req.Organization
	}
	body := accountBody{
		Name: name,
		BillToContact: contact{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			WorkEmail: req.Email,
		},
	}
	if req.Reference != nil {
		body.AccountNumber = *req.Reference
	}
	return body
}

func toSubscription(s subscription) domain.Subscription {
	out := domain.Subscription{
		ID:                  s.ID,
		State:               s.Status,
		CurrentPeriodEndsAt: normalizeDate(s.TermEndDate),
		ActivatedAt:         normalizeDate(s.SubscriptionStartDate),
		CreatedAt:           normalizeDate(s.CreatedDate),
	}
	if s.AccountID != "" {
		out.Customer = &domain.Customer{ID: s.AccountID, Organization: optional(s.AccountName)}
	}
	if len(s.RatePlans) > 0 {
		rp := s.RatePlans[0]
		name := rp.RatePlanName
		if name == "" {
			name = rp.ProductName
		}
		out.Product = &domain.Product{
			ID:              rp.ProductRatePlanID,
			ProductFamilyID: rp.ProductID,
			Name:            name,
		}
	}
	return out
}

func toProductFamily(p catalogProduct) domain.ProductFamily {
	return domain.ProductFamily{
		ID:          p.ID,
		Name:        p.Name,
		Handle:      optional(p.SKU),
		Description: optional(p.Description),
		CreatedAt:   normalizeDate(p.CreatedDate),
	}
}

// toProduct prices a rate plan from its first charge's first pricing entry.
func toProduct(productID string, rp ratePlan) domain.Product {
	out := domain.Product{
		ID:              rp.ID,
		ProductFamilyID: productID,
		Name:            rp.Name,
		Description:     optional(rp.Description),
		Active:          rp.Status == "" || strings.EqualFold(rp.Status, "Active"),
	}
	if len(rp.ProductRatePlanCharges) == 0 {
		return out
	}
	charge := rp.ProductRatePlanCharges[0]
	out.Interval, out.IntervalUnit = billingPeriod(charge.BillingPeriod)
	if len(charge.Pricing) > 0 {
		price := charge.Pricing[0]
		out.Currency = strings.ToUpper(price.Currency)
		out.PriceInCents = money.FromMajor(price.Price, out.Currency)
	}
	return out
}

func toInvoice(i invoice) domain.Invoice {
	out := domain.Invoice{
		UID:        i.ID,
		Number:     i.InvoiceNumber,
		CustomerID: i.AccountID,
		Status:     i.Status,
		Currency:   strings.ToUpper(i.Currency),
		DueDate:    normalizeDate(i.DueDate),
		CreatedAt:  firstDate(i.CreatedDate, i.InvoiceDate),
	}
	if i.Amount != nil {
		total := money.FromMajor(*i.Amount, out.Currency)
		out.TotalAmount = &total
	}
	return out
}

func toPayment(p payment) domain.Payment {
	currency := strings.ToUpper(p.Currency)
	return domain.Payment{
		ID:            p.ID,
		AmountInCents: money.FromMajor(p.Amount, currency),
		Currency:      currency,
		Status:        p.Status,
		CustomerID:    optional(p.AccountID),
		CreatedAt:     firstDate(p.CreatedDate, p.EffectiveDate),
	}
}
