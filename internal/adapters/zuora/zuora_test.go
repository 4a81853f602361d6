package zuora

import (
	"context"
	"net/http"
	"testing"

	"github.com/railzwaylabs/billinghub/internal/adapters/adapterstest"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(backend *adapterstest.Backend) *Adapter {
	return NewFactory().NewAdapter(backend).(*Adapter)
}

func TestCreateSubscriptionIsUnsupported(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `{}`)

	_, err := newAdapter(backend).CreateSubscription(context.Background(), "conn_1", domain.SubscriptionRequest{CustomerID: "a", ProductID: "p"})
	require.ErrorIs(t, err, domain.ErrCapabilityUnsupported)
	assert.Empty(t, backend.Requests())
}

func TestRatePlansConvertMajorUnits(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `[{
		"id": "rp_1",
		"name": "Gold Quarterly",
		"status": "Active",
		"productRatePlanCharges": [{
			"id": "rpc_1",
			"billingPeriod": "Quarter",
			"pricing": [{"currency": "usd", "price": 19.99}]
		}]
	}, {
		"id": "rp_2",
		"name": "Setup",
		"status": "Expired",
		"productRatePlanCharges": [{"id": "rpc_2", "pricing": [{"currency": "JPY", "price": 1500}]}]
	}]`)

	products, err := newAdapter(backend).ListFamilyProducts(context.Background(), "conn_1", "zprod_1")
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "/api/zuora/conn_1/products/zprod_1/rate-plans", backend.Last().Path)

	gold := products[0]
	assert.Equal(t, "zprod_1", gold.ProductFamilyID)
	assert.Equal(t, int64(1999), gold.PriceInCents)
	assert.Equal(t, "USD", gold.Currency)
	assert.Equal(t, int64(3), gold.Interval)
	assert.Equal(t, "month", gold.IntervalUnit)
	assert.True(t, gold.Active)

	setup := products[1]
	assert.Equal(t, int64(1500), setup.PriceInCents)
	assert.Equal(t, int64(0), setup.Interval)
	assert.False(t, setup.Active)
}

func TestListProductsFlattensCatalog(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `[
		{"id": "zp_1", "name": "Gold", "sku": "SKU-1", "productRatePlans": [{"id": "rp_1", "name": "Monthly"}, {"id": "rp_2", "name": "Annual"}]},
		{"id": "zp_2", "name": "Silver", "productRatePlans": []}
	]`)
	a := newAdapter(backend)

	products, err := a.ListProducts(context.Background(), "conn_1")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "zp_1", products[0].ProductFamilyID)
	assert.Equal(t, "rp_2", products[1].ID)

	families, err := a.ListProductFamilies(context.Background(), "conn_1")
	require.NoError(t, err)
	require.Len(t, families, 2)
	require.NotNil(t, families[0].Handle)
	assert.Equal(t, "SKU-1", *families[0].Handle)
	assert.Nil(t, families[1].Handle)
}

func TestAccountsMapToCustomers(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `[{
		"id": "acc_1",
		"accountNumber": "A00000001",
		"name": "Acme",
		"createdDate": "2024-01-15T10:00:00.000+02:00",
		"billToContact": {"firstName": "Wile", "lastName": "Coyote", "workEmail": "wile@acme.test"}
	}]`)

	customers, err := newAdapter(backend).ListCustomers(context.Background(), "conn_1")
	require.NoError(t, err)
	require.Len(t, customers, 1)

	c := customers[0]
	assert.Equal(t, "/api/zuora/conn_1/accounts", backend.Last().Path)
	assert.Equal(t, "Wile", c.FirstName)
	assert.Equal(t, "wile@acme.test", c.Email)
	require.NotNil(t, c.Organization)
	assert.Equal(t, "Acme", *c.Organization)
	require.NotNil(t, c.CreatedAt)
	assert.Equal(t, "2024-01-15T08:00:00Z", *c.CreatedAt)
}

func TestAccountNamedAfterContactHasNoOrganization(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `[
		{"id": "acc_1", "name": "Road Runner", "billToContact": {"firstName": "Road", "lastName": "Runner"}},
		{"id": "acc_2", "name": "Acme", "billToContact": {"firstName": "Road", "lastName": "Runner"}},
		{"id": "acc_3", "name": "Solo"}
	]`)

	customers, err := newAdapter(backend).ListCustomers(context.Background(), "conn_1")
	require.NoError(t, err)
	require.Len(t, customers, 3)

	assert.Nil(t, customers[0].Organization)
	require.NotNil(t, customers[1].Organization)
	assert.Equal(t, "Acme", *customers[1].Organization)
	require.NotNil(t, customers[2].Organization)
	assert.Equal(t, "Solo", *customers[2].Organization)
}

func TestCreateCustomerBody(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `{"id":"acc_2","name":"Road Runner","billToContact":{"firstName":"Road","lastName":"Runner","workEmail":"rr@acme.test"}}`)

	c, err := newAdapter(backend).CreateCustomer(context.Background(), "conn_1", domain.CustomerRequest{
		FirstName: "Road",
		LastName:  "Runner",
		Email:     "rr@acme.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "acc_2", c.ID)

	assert.Nil(t, c.Organization)

	body := backend.Last().Body
	assert.Equal(t, "Road Runner", body["name"])
	assert.Equal(t, map[string]any{"firstName": "Road", "lastName": "Runner", "workEmail": "rr@acme.test"}, body["billToContact"])
	assert.NotContains(t, body, "accountNumber")
}

func TestInvoicesAndPayments(t *testing.T) {
	backend := adapterstest.New(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/zuora/conn_1/invoices" {
			_, _ = w.Write([]byte(`[{"id":"inv_1","invoiceNumber":"INV0001","accountId":"acc_1","status":"Posted","amount":10.005,"currency":"USD","dueDate":"2024-02-01"}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"pay_1","amount":42.5,"currency":"EUR","status":"Processed","accountId":"acc_1","effectiveDate":"2024-02-03"}]`))
	})
	a := newAdapter(backend)

	invoices, err := a.ListInvoices(context.Background(), "conn_1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.NotNil(t, invoices[0].TotalAmount)
	assert.Equal(t, int64(1000), *invoices[0].TotalAmount)
	require.NotNil(t, invoices[0].DueDate)
	assert.Equal(t, "2024-02-01T00:00:00Z", *invoices[0].DueDate)

	payments, err := a.ListPayments(context.Background(), "conn_1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(4250), payments[0].AmountInCents)
	require.NotNil(t, payments[0].CreatedAt)
	assert.Equal(t, "2024-02-03T00:00:00Z", *payments[0].CreatedAt)
}

func TestSubscriptionMapping(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `[{
		"id": "sub_1",
		"status": "Active",
		"accountId": "acc_1",
		"termEndDate": "2025-01-31",
		"ratePlans": [{"productRatePlanId": "rp_1", "productId": "zp_1", "ratePlanName": "Gold Monthly"}]
	}]`)

	subs, err := newAdapter(backend).ListSubscriptions(context.Background(), "conn_1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Active", subs[0].State)
	require.NotNil(t, subs[0].Product)
	assert.Equal(t, "Gold Monthly", subs[0].Product.Name)
	require.NotNil(t, subs[0].CurrentPeriodEndsAt)
	assert.Equal(t, "2025-01-31T00:00:00Z", *subs[0].CurrentPeriodEndsAt)
}

func TestBillingPeriod(t *testing.T) {
	tests := []struct {
		period   string
		interval int64
		unit     string
	}{
		{"Month", 1, "month"},
		{"Quarter", 3, "month"},
		{"Semi-Annual", 6, "month"},
		{"Annual", 1, "year"},
		{"Two Years", 2, "year"},
		{"Week", 1, "week"},
		{"Specific Months", 0, ""},
		{"", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			interval, unit := billingPeriod(tt.period)
			assert.Equal(t, tt.interval, interval)
			assert.Equal(t, tt.unit, unit)
		})
	}
}
