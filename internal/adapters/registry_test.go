package adapters_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/railzwaylabs/billinghub/internal/adapters"
	"github.com/railzwaylabs/billinghub/internal/adapters/adapterstest"
	"github.com/railzwaylabs/billinghub/internal/adapters/maxio"
	"github.com/railzwaylabs/billinghub/internal/adapters/stripe"
	"github.com/railzwaylabs/billinghub/internal/adapters/zuora"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyBackend(t *testing.T) *adapterstest.Backend {
	return adapterstest.New(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if strings.HasPrefix(r.URL.Path, "/api/stripe/") {
				_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	})
}

func newRegistry(backend adapters.Backend) *adapters.Registry {
	return adapters.NewRegistry(backend, maxio.NewFactory(), stripe.NewFactory(), zuora.NewFactory())
}

// invoke runs the adapter method behind one cell of the capability matrix.
func invoke(ctx context.Context, a adapters.Adapter, kind domain.EntityKind, op domain.Operation) (any, error) {
	const conn, id, family = "conn_1", "id_1", "fam_1"
	switch kind {
	case domain.KindCustomer:
		switch op {
		case domain.OpList:
			return a.ListCustomers(ctx, conn)
		case domain.OpCreate:
			return a.CreateCustomer(ctx, conn, domain.CustomerRequest{FirstName: "A", Email: "a@example.com"})
		case domain.OpUpdate:
			return a.UpdateCustomer(ctx, conn, id, domain.CustomerRequest{FirstName: "A", Email: "a@example.com"})
		case domain.OpDelete:
			return nil, a.DeleteCustomer(ctx, conn, id)
		}
	case domain.KindSubscription:
		switch op {
		case domain.OpList:
			return a.ListSubscriptions(ctx, conn)
		case domain.OpCreate:
			return a.CreateSubscription(ctx, conn, domain.SubscriptionRequest{CustomerID: "c", ProductID: "p"})
		case domain.OpUpdate:
			return a.UpdateSubscription(ctx, conn, id, domain.SubscriptionUpdateRequest{ProductID: "p"})
		case domain.OpDelete:
			return nil, a.CancelSubscription(ctx, conn, id)
		}
	case domain.KindProductFamily:
		switch op {
		case domain.OpList:
			return a.ListProductFamilies(ctx, conn)
		case domain.OpCreate:
			return a.CreateProductFamily(ctx, conn, domain.ProductFamilyRequest{Name: "f"})
		case domain.OpUpdate:
			return a.UpdateProductFamily(ctx, conn, id, domain.ProductFamilyRequest{Name: "f"})
		case domain.OpDelete:
			return nil, a.DeleteProductFamily(ctx, conn, id)
		}
	case domain.KindProduct:
		switch op {
		case domain.OpList:
			return a.ListFamilyProducts(ctx, conn, family)
		case domain.OpCreate:
			return a.CreateProduct(ctx, conn, family, domain.ProductRequest{Name: "p"})
		case domain.OpUpdate:
			return a.UpdateProduct(ctx, conn, family, id, domain.ProductRequest{Name: "p"})
		case domain.OpDelete:
			return nil, a.DeleteProduct(ctx, conn, family, id)
		}
	case domain.KindInvoice:
		if op == domain.OpList {
			return a.ListInvoices(ctx, conn)
		}
		return nil, &domain.CapabilityUnsupportedError{Kind: kind, Platform: a.Platform(), Op: op}
	case domain.KindCoupon:
		switch op {
		case domain.OpList:
			return a.ListCoupons(ctx, conn)
		case domain.OpCreate:
			return a.CreateCoupon(ctx, conn, domain.CouponRequest{Duration: "once"})
		case domain.OpUpdate:
			return a.UpdateCoupon(ctx, conn, id, domain.CouponUpdateRequest{})
		case domain.OpDelete:
			return nil, a.DeleteCoupon(ctx, conn, id)
		}
	case domain.KindPayment:
		if op == domain.OpList {
			return a.ListPayments(ctx, conn)
		}
		return nil, &domain.CapabilityUnsupportedError{Kind: kind, Platform: a.Platform(), Op: op}
	}
	return nil, nil
}

func TestAdaptersHonourCapabilityMatrix(t *testing.T) {
	ops := []domain.Operation{domain.OpList, domain.OpCreate, domain.OpUpdate, domain.OpDelete}

	for _, platform := range domain.Platforms {
		for _, kind := range domain.EntityKinds {
			for _, op := range ops {
				supported := domain.Capabilities(platform, kind).Has(op)
				t.Run(string(platform)+"/"+string(kind)+"/"+op.String(), func(t *testing.T) {
					backend := emptyBackend(t)
					a, err := newRegistry(backend).Get(platform)
					require.NoError(t, err)

					_, err = invoke(context.Background(), a, kind, op)
					if supported {
						assert.NotErrorIs(t, err, domain.ErrCapabilityUnsupported)
						assert.NotEmpty(t, backend.Requests())
						return
					}
					require.ErrorIs(t, err, domain.ErrCapabilityUnsupported)
					var capErr *domain.CapabilityUnsupportedError
					require.ErrorAs(t, err, &capErr)
					assert.Equal(t, kind, capErr.Kind)
					assert.Equal(t, platform, capErr.Platform)
					assert.Empty(t, backend.Requests(), "unsupported operation reached the network")
				})
			}
		}
	}
}

func TestEmptyListsAreNeverNil(t *testing.T) {
	for _, platform := range domain.Platforms {
		for _, kind := range domain.EntityKinds {
			if !domain.Capabilities(platform, kind).Has(domain.OpList) {
				continue
			}
			t.Run(string(platform)+"/"+string(kind), func(t *testing.T) {
				a, err := newRegistry(emptyBackend(t)).Get(platform)
				require.NoError(t, err)

				items, err := adapters.ListItems(context.Background(), a, kind, "conn_1", "")
				require.NoError(t, err)
				assert.NotNil(t, items)
				assert.Empty(t, items)
			})
		}
	}
}

func TestListItemsTagsKind(t *testing.T) {
	backend := adapterstest.JSON(t, http.StatusOK, `[{"id":"c1","first_name":"Ada","email":"ada@example.com"}]`)
	a, err := newRegistry(backend).Get(domain.PlatformMaxio)
	require.NoError(t, err)

	items, err := adapters.ListItems(context.Background(), a, domain.KindCustomer, "conn_1", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.KindCustomer, items[0].Kind)
	assert.Equal(t, "c1", items[0].ID())
}

func TestRegistryUnknownPlatform(t *testing.T) {
	_, err := newRegistry(emptyBackend(t)).Get(domain.Platform("chargebee"))
	assert.ErrorIs(t, err, adapters.ErrUnknownPlatform)
}

func TestTestConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		backend := adapterstest.JSON(t, http.StatusOK, `{"success":true}`)
		require.NoError(t, adapters.TestConnection(context.Background(), backend, "conn_1"))
		assert.Equal(t, "/api/connections/conn_1/test", backend.Last().Path)
		assert.Equal(t, http.MethodPost, backend.Last().Method)
	})

	t.Run("rejected", func(t *testing.T) {
		backend := adapterstest.JSON(t, http.StatusOK, `{"success":false,"message":"Invalid API Key provided"}`)
		err := adapters.TestConnection(context.Background(), backend, "conn_1")
		var failed *adapters.TestFailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, "Invalid API Key provided", failed.Error())
	})

	t.Run("upstream", func(t *testing.T) {
		backend := adapterstest.JSON(t, http.StatusUnauthorized, `{"error":"bad credentials"}`)
		err := adapters.TestConnection(context.Background(), backend, "conn_1")
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}
