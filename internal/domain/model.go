package domain

import "time"

type ConnectionStatus string

const (
	ConnectionStatusPending   ConnectionStatus = "pending"
	ConnectionStatusConnected ConnectionStatus = "connected"
	ConnectionStatusError     ConnectionStatus = "error"
)

// Connection is one authenticated link to a vendor account.
type Connection struct {
	ID           string           `json:"id"`
	PlatformType Platform         `json:"platform_type"`
	Name         string           `json:"name"`
	Subdomain    *string          `json:"subdomain,omitempty"`
	IsSandbox    bool             `json:"is_sandbox"`
	Status       ConnectionStatus `json:"status"`
	ErrorMessage *string          `json:"error_message,omitempty"`
	LastSyncAt   *string          `json:"last_sync_at,omitempty"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

// TreeNode is a generic, possibly lazy node of the navigation tree.
// Children == nil means the node has not been resolved yet; a non-nil
// slice (even empty) is pre-resolved and must not be fetched again.
type TreeNode struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Name         string      `json:"name"`
	Icon         string      `json:"icon,omitempty"`
	ConnectionID string      `json:"connection_id,omitempty"`
	PlatformType Platform    `json:"platform_type,omitempty"`
	Children     []TreeNode  `json:"children"`
	IsExpandable bool        `json:"is_expandable"`
	Data         *EntityItem `json:"data,omitempty"`
}

func (n TreeNode) Resolved() bool {
	return n.Children != nil
}

type Customer struct {
	ID           string  `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	Organization *string `json:"organization,omitempty"`
	Reference    *string `json:"reference,omitempty"`
	CreatedAt    *string `json:"created_at,omitempty"`
}

// Subscription carries the raw platform state string; no unification is done.
type Subscription struct {
	ID                  string    `json:"id"`
	State               string    `json:"state"`
	Customer            *Customer `json:"customer,omitempty"`
	Product             *Product  `json:"product,omitempty"`
	CurrentPeriodEndsAt *string   `json:"current_period_ends_at,omitempty"`
	ActivatedAt         *string   `json:"activated_at,omitempty"`
	CreatedAt           *string   `json:"created_at,omitempty"`
}

type ProductFamily struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Handle      *string `json:"handle,omitempty"`
	Description *string `json:"description,omitempty"`
	CreatedAt   *string `json:"created_at,omitempty"`
}

// Product is a priced item inside a ProductFamily. Stripe prices and Zuora
// rate plans are mapped onto it.
type Product struct {
	ID              string  `json:"id"`
	ProductFamilyID string  `json:"product_family_id"`
	Name            string  `json:"name"`
	Handle          *string `json:"handle,omitempty"`
	Description     *string `json:"description,omitempty"`
	PriceInCents    int64   `json:"price_in_cents"`
	Currency        string  `json:"currency"`
	Interval        int64   `json:"interval"`
	IntervalUnit    string  `json:"interval_unit,omitempty"`
	Active          bool    `json:"active"`
	CreatedAt       *string `json:"created_at,omitempty"`
}

type Invoice struct {
	UID         string  `json:"uid"`
	Number      string  `json:"number"`
	CustomerID  string  `json:"customer_id"`
	Status      string  `json:"status"`
	TotalAmount *int64  `json:"total_amount,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	CreatedAt   *string `json:"created_at,omitempty"`
}

// Coupon exists only on Stripe.
type Coupon struct {
	ID               string   `json:"id"`
	Name             *string  `json:"name,omitempty"`
	PercentOff       *float64 `json:"percent_off,omitempty"`
	AmountOff        *int64   `json:"amount_off,omitempty"`
	Currency         *string  `json:"currency,omitempty"`
	Duration         string   `json:"duration"`
	DurationInMonths *int64   `json:"duration_in_months,omitempty"`
	MaxRedemptions   *int64   `json:"max_redemptions,omitempty"`
	TimesRedeemed    int64    `json:"times_redeemed"`
	Valid            bool     `json:"valid"`
	RedeemBy         *string  `json:"redeem_by,omitempty"`
}

type Payment struct {
	ID            string  `json:"id"`
	AmountInCents int64   `json:"amount_in_cents"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	CustomerID    *string `json:"customer_id,omitempty"`
	CreatedAt     *string `json:"created_at,omitempty"`
}

// FormatTime renders t the way every domain timestamp is carried.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// EpochToISO converts vendor epoch seconds. Zero means "not set".
func EpochToISO(sec int64) *string {
	if sec == 0 {
		return nil
	}
	s := FormatTime(time.Unix(sec, 0))
	return &s
}

// ISOToEpoch parses a domain timestamp back into epoch seconds.
func ISOToEpoch(value string) (int64, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
