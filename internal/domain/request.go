package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CreateConnectionRequest struct {
	PlatformType Platform          `json:"platform_type" validate:"required,oneof=maxio stripe zuora"`
	Name         string            `json:"name" validate:"required,max=255"`
	Subdomain    *string           `json:"subdomain,omitempty" validate:"omitempty,max=255"`
	IsSandbox    bool              `json:"is_sandbox"`
	Credentials  map[string]string `json:"credentials,omitempty"`
}

type CustomerRequest struct {
	FirstName    string  `json:"first_name" validate:"required,max=255"`
	LastName     string  `json:"last_name" validate:"max=255"`
	Email        string  `json:"email" validate:"required,email"`
	Organization *string `json:"organization,omitempty" validate:"omitempty,max=255"`
	Reference    *string `json:"reference,omitempty" validate:"omitempty,max=255"`
}

type SubscriptionRequest struct {
	CustomerID string  `json:"customer_id" validate:"required"`
	ProductID  string  `json:"product_id" validate:"required"`
	CouponCode *string `json:"coupon_code,omitempty" validate:"omitempty,max=255"`
}

// SubscriptionUpdateRequest moves a subscription to another product.
type SubscriptionUpdateRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type ProductFamilyRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Handle      *string `json:"handle,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
}

type ProductRequest struct {
	Name         string  `json:"name" validate:"max=255"`
	Handle       *string `json:"handle,omitempty" validate:"omitempty,max=255"`
	Description  *string `json:"description,omitempty"`
	PriceInCents int64   `json:"price_in_cents" validate:"gte=0"`
	Currency     string  `json:"currency" validate:"omitempty,len=3,alpha"`
	Interval     int64   `json:"interval" validate:"gte=0"`
	IntervalUnit string  `json:"interval_unit,omitempty" validate:"omitempty,oneof=day week month year"`
	Active       *bool   `json:"active,omitempty"`
}

func (r ProductRequest) rules() []FieldError {
	if r.Interval > 0 && r.IntervalUnit == "" {
		return []FieldError{{Field: "interval_unit", Code: "required_with", Message: "is required when interval is set"}}
	}
	return nil
}

type CouponRequest struct {
	ID               string   `json:"id,omitempty" validate:"omitempty,max=255"`
	Name             *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	PercentOff       *float64 `json:"percent_off,omitempty" validate:"omitempty,gt=0,lte=100"`
	AmountOff        *int64   `json:"amount_off,omitempty" validate:"omitempty,gt=0"`
	Currency         *string  `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Duration         string   `json:"duration" validate:"required,oneof=once repeating forever"`
	DurationInMonths *int64   `json:"duration_in_months,omitempty" validate:"omitempty,gt=0"`
	MaxRedemptions   *int64   `json:"max_redemptions,omitempty" validate:"omitempty,gt=0"`
	RedeemBy         *string  `json:"redeem_by,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (r CouponRequest) rules() []FieldError {
	var out []FieldError
	switch {
	case r.PercentOff == nil && r.AmountOff == nil:
		out = append(out, FieldError{Field: "percent_off", Code: "required_without", Message: "one of percent_off or amount_off is required"})
	case r.PercentOff != nil && r.AmountOff != nil:
		out = append(out, FieldError{Field: "amount_off", Code: "excluded_with", Message: "cannot be combined with percent_off"})
	}
	if r.AmountOff != nil && (r.Currency == nil || *r.Currency == "") {
		out = append(out, FieldError{Field: "currency", Code: "required_with", Message: "is required with amount_off"})
	}
	if r.Duration == "repeating" && r.DurationInMonths == nil {
		out = append(out, FieldError{Field: "duration_in_months", Code: "required_if", Message: "is required for repeating coupons"})
	}
	return out
}

// CouponUpdateRequest holds the only coupon fields a vendor lets change.
type CouponUpdateRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=255"`
}

type crossFieldRules interface {
	rules() []FieldError
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks a request struct and returns a *ValidationError listing
// every rejected field.
func Validate(req any) error {
	var fields []FieldError
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Code:    fe.Tag(),
				Message: validationMessage(fe),
			})
		}
	}
	if r, ok := req.(crossFieldRules); ok {
		fields = append(fields, r.rules()...)
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gt", "gte", "lte":
		return fmt.Sprintf("must be %s %s", fe.Tag(), fe.Param())
	case "datetime":
		return "must be an RFC 3339 timestamp"
	default:
		return "is invalid"
	}
}
