package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/billinghub/internal/adapters"
	"github.com/railzwaylabs/billinghub/internal/adapters/adapterstest"
	"github.com/railzwaylabs/billinghub/internal/adapters/maxio"
	"github.com/railzwaylabs/billinghub/internal/adapters/stripe"
	"github.com/railzwaylabs/billinghub/internal/adapters/zuora"
	auditdomain "github.com/railzwaylabs/billinghub/internal/audit/domain"
	auditrepo "github.com/railzwaylabs/billinghub/internal/audit/repository"
	auditservice "github.com/railzwaylabs/billinghub/internal/audit/service"
	"github.com/railzwaylabs/billinghub/internal/cache"
	"github.com/railzwaylabs/billinghub/internal/clock"
	"github.com/railzwaylabs/billinghub/internal/config"
	"github.com/railzwaylabs/billinghub/internal/connection"
	"github.com/railzwaylabs/billinghub/internal/dispatcher"
	"github.com/railzwaylabs/billinghub/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type harness struct {
	server  *Server
	backend *adapterstest.Backend
}

func newHarness(t *testing.T, handler http.HandlerFunc) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	repo := auditrepo.Provide(db)
	auditSvc := auditservice.NewService(repo, node, clock.SystemClock{}, zap.NewNop())

	backend := adapterstest.New(t, handler)
	registry := adapters.NewRegistry(backend, maxio.NewFactory(), stripe.NewFactory(), zuora.NewFactory())
	d := dispatcher.New(registry, cache.NewMemory(0), backend, auditSvc, zap.NewNop())
	conns := connection.NewService(backend, registry, d, auditSvc, clock.SystemClock{}, zap.NewNop())

	s := New(Params{
		Cfg:            config.Config{Server: config.ServerConfig{Mode: gin.TestMode}},
		Dispatcher:     d,
		Connections:    conns,
		AuditSvc:       auditSvc,
		AuditExportSvc: auditservice.NewExportService(repo),
		DB:             db,
		Gatherer:       observability.Gatherer(observability.NewRegistry()),
		Log:            zap.NewNop(),
	})
	return &harness{server: s, backend: backend}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Fields  []struct {
			Field string `json:"field"`
		} `json:"fields"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	w := h.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))

	w = h.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(headerRequestID))
}

func TestExpandProductFamily(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"price_1","object":"price","product":"prod_123","unit_amount":1999,"currency":"usd","active":true,"recurring":{"interval":"month","interval_count":1}}]}`))
	})

	w := h.do(t, http.MethodPost, "/api/console/nodes/expand", `{
		"id": "conn_1:product-families:prod_123",
		"type": "product-family",
		"connection_id": "conn_1",
		"platform_type": "stripe",
		"data": {"kind": "product_family", "product_family": {"id": "prod_123", "name": "Pro"}}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var exp struct {
		State    string `json:"state"`
		Children []struct {
			Name string `json:"name"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &exp))
	assert.Equal(t, "loaded", exp.State)
	require.Len(t, exp.Children, 1)
	assert.Equal(t, "USD 19.99 / month", exp.Children[0].Name)
}

func TestTreeCarriesIcons(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"id": "stripe",
			"type": "platform",
			"name": "Stripe",
			"platform_type": "stripe",
			"children": [{
				"id": "conn_1",
				"type": "connection",
				"name": "Live",
				"data": {"kind": "connection", "connection": {"id": "conn_1", "platform_type": "stripe", "name": "Live", "status": "error"}}
			}]
		}]`))
	})

	w := h.do(t, http.MethodGet, "/api/console/tree", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var roots []struct {
		Icon     string `json:"icon"`
		Children []struct {
			Icon     string `json:"icon"`
			Children []struct {
				Type string `json:"type"`
				Icon string `json:"icon"`
			} `json:"children"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &roots))
	require.Len(t, roots, 1)
	assert.Equal(t, "cloud", roots[0].Icon)
	require.Len(t, roots[0].Children, 1)
	conn := roots[0].Children[0]
	assert.Equal(t, "plug-error", conn.Icon)
	require.NotEmpty(t, conn.Children)
	assert.Equal(t, "customers", conn.Children[0].Type)
	assert.Equal(t, "folder-users", conn.Children[0].Icon)
}

func TestExpandRejectsBadBody(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	w := h.do(t, http.MethodPost, "/api/console/nodes/expand", `{"id":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNodeActions(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	w := h.do(t, http.MethodPost, "/api/console/nodes/actions", `{"id":"c","type":"coupons","platform_type":"maxio","connection_id":"conn_1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var actions []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &actions))
	for _, a := range actions {
		assert.NotEqual(t, "create", a["id"])
	}
}

func TestDeleteCoupon(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := h.do(t, http.MethodDelete, "/api/console/platforms/stripe/connections/conn_1/coupons/SUMMER20", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Invalidated []cache.Key `json:"invalidated"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, []cache.Key{cache.NewKey("stripe", "coupon", "conn_1")}, res.Invalidated)

	w = h.do(t, http.MethodGet, "/api/console/audit?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var logs []auditdomain.AuditLog
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, auditdomain.ActionEntityDeleted, logs[0].Action)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		method  string
		path    string
		payload string
		want    int
		code    string
		message string
	}{
		{
			name:    "unsupported create",
			method:  http.MethodPost,
			path:    "/api/console/platforms/maxio/connections/conn_1/coupons",
			payload: `{"duration":"once","percent_off":10}`,
			want:    http.StatusNotImplemented,
			code:    "capability_unsupported",
		},
		{
			name:    "unsupported invoice create",
			method:  http.MethodPost,
			path:    "/api/console/platforms/stripe/connections/conn_1/invoices",
			payload: `{}`,
			want:    http.StatusNotImplemented,
			code:    "capability_unsupported",
		},
		{
			name:    "validation",
			method:  http.MethodPost,
			path:    "/api/console/platforms/stripe/connections/conn_1/customers",
			payload: `{"first_name":"A","email":"nope"}`,
			want:    http.StatusBadRequest,
			code:    "validation_error",
		},
		{
			name:    "upstream",
			status:  http.StatusPaymentRequired,
			body:    `{"error":{"message":"Your card was declined."}}`,
			method:  http.MethodPost,
			path:    "/api/console/platforms/stripe/connections/conn_1/customers",
			payload: `{"first_name":"A","email":"a@example.com"}`,
			want:    http.StatusBadGateway,
			code:    "upstream_error",
			message: "Your card was declined.",
		},
		{
			name:   "unknown platform",
			method: http.MethodDelete,
			path:   "/api/console/platforms/chargebee/connections/conn_1/customers/c1",
			want:   http.StatusBadRequest,
			code:   "invalid_request",
		},
		{
			name:    "malformed json",
			method:  http.MethodPost,
			path:    "/api/console/platforms/stripe/connections/conn_1/customers",
			payload: `{`,
			want:    http.StatusBadRequest,
			code:    "invalid_request",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
				status := tt.status
				if status == 0 {
					status = http.StatusOK
				}
				w.WriteHeader(status)
				_, _ = w.Write([]byte(tt.body))
			})

			w := h.do(t, tt.method, tt.path, tt.payload)
			require.Equal(t, tt.want, w.Code, w.Body.String())
			env := decode(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Error.Message)
			}
			if tt.code == "validation_error" {
				require.NotEmpty(t, env.Error.Fields)
				assert.Equal(t, "email", env.Error.Fields[0].Field)
			}
			if tt.want != http.StatusBadGateway {
				assert.Empty(t, h.backend.Requests())
			}
		})
	}
}

func TestCreateConnectionWithFailingTest(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/connections":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"conn_9","platform_type":"stripe","name":"Sandbox","is_sandbox":true,"status":"pending"}`))
		case "/api/connections/conn_9/test":
			_, _ = w.Write([]byte(`{"success":false,"error":"Invalid API Key provided"}`))
		}
	})

	w := h.do(t, http.MethodPost, "/api/console/connections", `{"platform_type":"stripe","name":"Sandbox","is_sandbox":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var conn struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &conn))
	assert.Equal(t, "error", conn.Status)
	assert.Equal(t, "Invalid API Key provided", conn.ErrorMessage)
}

func TestDeleteConnection(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	w := h.do(t, http.MethodDelete, "/api/console/connections/conn_1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuditLimitValidation(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})
	w := h.do(t, http.MethodGet, "/api/console/audit?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditExportRequiresDates(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	w := h.do(t, http.MethodGet, "/api/console/audit/export", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/console/audit/export?start_date=2026-01-01&end_date=2026-01-31&format=json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-Audit-Export-Count"))
	assert.Len(t, w.Header().Get("X-Audit-Export-Checksum"), 64)
}
