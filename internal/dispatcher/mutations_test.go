package dispatcher

import (
	"context"
	"net/http"
	"testing"

	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	"github.com/railzwaylabs/billinghub/internal/cache"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stripeScope = Scope{Platform: domain.PlatformStripe, ConnectionID: "conn_1"}

func seed(t *testing.T, store cache.Store, keys ...cache.Key) {
	t.Helper()
	ctx := context.Background()
	for _, k := range keys {
		gen, err := store.Generation(ctx, k)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, k, []domain.EntityItem{}, gen))
	}
}

func cached(t *testing.T, store cache.Store, k cache.Key) bool {
	t.Helper()
	_, ok, err := store.Get(context.Background(), k)
	require.NoError(t, err)
	return ok
}

func TestDeleteCouponInvalidatesOnlyCoupons(t *testing.T) {
	d, backend, store, rec := newAuditedDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	coupons := cache.NewKey(domain.PlatformStripe, domain.KindCoupon, "conn_1")
	customers := cache.NewKey(domain.PlatformStripe, domain.KindCustomer, "conn_1")
	otherConn := cache.NewKey(domain.PlatformStripe, domain.KindCoupon, "conn_2")
	seed(t, store, coupons, customers, otherConn)

	res, err := d.DeleteCoupon(context.Background(), stripeScope, "SUMMER20")
	require.NoError(t, err)
	assert.Nil(t, res.Item)
	assert.Equal(t, []cache.Key{coupons}, res.Invalidated)

	assert.Equal(t, "/api/stripe/conn_1/coupons/SUMMER20", backend.Last().Path)
	assert.Equal(t, http.MethodDelete, backend.Last().Method)

	assert.False(t, cached(t, store, coupons))
	assert.True(t, cached(t, store, customers))
	assert.True(t, cached(t, store, otherConn))

	require.Len(t, rec.entries, 1)
	assert.Equal(t, auditdomain.ActionEntityDeleted, rec.entries[0].Action)
	assert.Equal(t, "coupon", rec.entries[0].TargetType)
	assert.Equal(t, "SUMMER20", rec.entries[0].TargetID)
}

func TestCreateProductInvalidatesBothLists(t *testing.T) {
	d, _, store := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"price_2","object":"price","product":"prod_123","unit_amount":500,"currency":"usd","active":true}`))
	})

	all := cache.NewKey(domain.PlatformStripe, domain.KindProduct, "conn_1")
	family := cache.FamilyProductsKey(domain.PlatformStripe, "prod_123", "conn_1")
	families := cache.NewKey(domain.PlatformStripe, domain.KindProductFamily, "conn_1")
	seed(t, store, all, family, families)

	res, err := d.CreateProduct(context.Background(), stripeScope, "prod_123", domain.ProductRequest{
		Name: "Basic", PriceInCents: 500, Currency: "USD",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Item)
	assert.Equal(t, domain.KindProduct, res.Item.Kind)
	assert.Equal(t, "price_2", res.Item.ID())
	assert.ElementsMatch(t, []cache.Key{all, family}, res.Invalidated)

	assert.False(t, cached(t, store, all))
	assert.False(t, cached(t, store, family))
	assert.True(t, cached(t, store, families))
}

func TestUnsupportedMutationMakesNoRequest(t *testing.T) {
	d, backend, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	ctx := context.Background()
	zuoraScope := Scope{Platform: domain.PlatformZuora, ConnectionID: "conn_1"}

	_, err := d.CreateSubscription(ctx, zuoraScope, domain.SubscriptionRequest{CustomerID: "a", ProductID: "p"})
	assert.ErrorIs(t, err, domain.ErrCapabilityUnsupported)

	_, err = d.CreateCoupon(ctx, Scope{Platform: domain.PlatformMaxio, ConnectionID: "conn_1"}, domain.CouponRequest{})
	assert.ErrorIs(t, err, domain.ErrCapabilityUnsupported)

	_, err = d.CreateProduct(ctx, zuoraScope, "", domain.ProductRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrCapabilityUnsupported)
	assert.NotErrorIs(t, err, domain.ErrValidation)

	_, err = d.DeleteProductFamily(ctx, Scope{Platform: domain.PlatformMaxio, ConnectionID: "conn_1"}, "fam_1")
	assert.ErrorIs(t, err, domain.ErrCapabilityUnsupported)

	assert.Empty(t, backend.Requests())
}

func TestInvalidInputMakesNoRequest(t *testing.T) {
	d, backend, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	ctx := context.Background()

	_, err := d.CreateCustomer(ctx, stripeScope, domain.CustomerRequest{FirstName: "A", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = d.CreateCoupon(ctx, stripeScope, domain.CouponRequest{Duration: "once"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = d.CreateProduct(ctx, stripeScope, "", domain.ProductRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = d.DeleteCustomer(ctx, stripeScope, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = d.DeleteCustomer(ctx, Scope{Platform: domain.PlatformStripe}, "cus_1")
	assert.ErrorIs(t, err, domain.ErrInvalidConnection)

	_, err = d.DeleteCustomer(ctx, Scope{Platform: "chargebee", ConnectionID: "conn_1"}, "cus_1")
	assert.ErrorIs(t, err, domain.ErrInvalidPlatform)

	assert.Empty(t, backend.Requests())
}

func TestFailedMutationKeepsCache(t *testing.T) {
	d, _, store, rec := newAuditedDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":["Email: has already been taken"]}`))
	})
	customers := cache.NewKey(domain.PlatformMaxio, domain.KindCustomer, "conn_1")
	seed(t, store, customers)

	_, err := d.CreateCustomer(context.Background(), Scope{Platform: domain.PlatformMaxio, ConnectionID: "conn_1"},
		domain.CustomerRequest{FirstName: "A", Email: "a@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, "Email: has already been taken", Message(err))
	assert.True(t, cached(t, store, customers))
	assert.Empty(t, rec.entries)
}
