package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge_cao/app/integrations"
	"bridge_cao/app/services"
	"bridge_cao/config"
)

func newTestServer(t *testing.T, shop http.Handler, mutate func(*config.Configuration)) (*Server, *config.Configuration) {
	t.Helper()
	var shopURL string
	if shop != nil {
		srv := httptest.NewServer(shop)
		t.Cleanup(srv.Close)
		shopURL = srv.URL
	}

	cfg := &config.Configuration{
		ShopBaseURL:       shopURL,
		APIVersion:        "v3",
		StatusOpenBelow:   30,
		StatusClosedAbove: 50,
		MaxXMLBytes:       2 << 20,
		ExportDir:         t.TempDir(),
		LangCode:          "de",
		LangName:          "Deutsch",
		LangID:            "2",
	}
	if mutate != nil {
		mutate(cfg)
	}
	svc := services.New(integrations.NewGambioClient(cfg), cfg)
	return NewServer(cfg, svc), cfg
}

func doRequest(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func writeShopJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestVersionAction(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura.php?action=version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/xml")
	body := rec.Body.String()
	assert.Contains(t, body, "<CODE>111</CODE>")
	assert.Contains(t, body, "<SCRIPT_VER>2.0</SCRIPT_VER>")
}

func TestUnknownActionReturnsErrorDocument(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?action=bogus", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<ERROR>Unknown action</ERROR>")
}

func TestEmptyOpReturnsReadyDocument(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<INFO>ready</INFO>")
}

func TestUnknownOpReturnsErrorDocument(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?op=nope", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<ERROR>Unknown operation</ERROR>")
}

func TestAccessTokenRequired(t *testing.T) {
	s, _ := newTestServer(t, nil, func(cfg *config.Configuration) {
		cfg.AccessToken = "sesam"
	})

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?action=version", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "<ERROR>")

	req := httptest.NewRequest(http.MethodGet, "/cao-faktura?action=version", nil)
	req.Header.Set("X-CAO-Token", "sesam")
	rec = doRequest(t, s, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Legacy clients can only append a query parameter.
	rec = doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?action=version&token=sesam", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/cao-faktura?action=version", nil)
	req.Header.Set("X-CAO-Token", "wrong")
	rec = doRequest(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIPAllowlist(t *testing.T) {
	s, _ := newTestServer(t, nil, func(cfg *config.Configuration) {
		cfg.AllowedIPs = []string{"10.1.2.3"}
	})

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?action=version", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/cao-faktura?action=version", nil)
	req.RemoteAddr = "10.1.2.3:54321"
	rec = doRequest(t, s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrdersExportEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api.php/v3/orders", func(w http.ResponseWriter, r *http.Request) {
		writeShopJSON(t, w, map[string]interface{}{"data": []interface{}{
			map[string]interface{}{
				"id":       4711,
				"statusId": 1,
				"items": []interface{}{
					map[string]interface{}{"id": 1, "name": "Widget", "quantity": 1.0, "finalPrice": 9.99},
				},
				"totals": map[string]interface{}{"grandTotal": 9.99},
			},
		}})
	})

	s, cfg := newTestServer(t, mux, nil)
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?action=orders_export&order_from=1&order_to=5000", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<ORDER_INFO>")
	assert.Contains(t, body, "<ORDER_ID>4711</ORDER_ID>")

	files, err := filepath.Glob(filepath.Join(cfg.ExportDir, "orders_export_*.xml"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	saved, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, body, string(saved))
}

func TestOrdersExportUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	s, _ := newTestServer(t, mux, nil)
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?action=orders_export", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "<ERROR>")
}

func TestAPIVersionOverride(t *testing.T) {
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.Contains(r.URL.Path, "/v2/orders/search") {
			writeShopJSON(t, w, map[string]interface{}{"data": []interface{}{}})
			return
		}
		writeShopJSON(t, w, map[string]interface{}{"data": []interface{}{}})
	})

	s, _ := newTestServer(t, mux, nil)
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?action=orders_export&api=v2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		assert.Contains(t, p, "/api.php/v2/")
	}
}

func TestUpsertProduct(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/cao-faktura?op=upsert_product",
		strings.NewReader(`<PRODUCT_INFO><PRODUCT_DATA><PRODUCT_MODEL>ABC</PRODUCT_MODEL></PRODUCT_DATA></PRODUCT_INFO>`))
	req.Header.Set("Content-Type", "application/xml")
	rec := doRequest(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<STATUS>OK</STATUS>")
	assert.Contains(t, rec.Body.String(), "<API_VERSION>v3</API_VERSION>")
}

func TestUpsertProductRejectsOversizedBody(t *testing.T) {
	s, _ := newTestServer(t, nil, func(cfg *config.Configuration) {
		cfg.MaxXMLBytes = 16
	})

	req := httptest.NewRequest(http.MethodPost, "/cao-faktura?op=upsert_product",
		strings.NewReader(strings.Repeat("x", 64)))
	rec := doRequest(t, s, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUpsertProductRejectsInvalidXML(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/cao-faktura?op=upsert_product",
		strings.NewReader(`<PRODUCT_INFO><unclosed>`))
	rec := doRequest(t, s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid XML")
}

func TestUpsertProductRequiresBody(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodPost, "/cao-faktura?op=upsert_product", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetOrderStatusOp(t *testing.T) {
	var gotBody map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api.php/v3/orders/42", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		writeShopJSON(t, w, map[string]interface{}{"success": true})
	})

	s, _ := newTestServer(t, mux, nil)
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/cao-faktura?op=set_order_status&order_id=42&status_id=15&notify=1&comment=shipped", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<OK/>")
	assert.Equal(t, float64(15), gotBody["statusId"])
	assert.Equal(t, float64(1), gotBody["notifyCustomer"])
	assert.Equal(t, "shipped", gotBody["comment"])
}

func TestSetOrderStatusOpValidation(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/cao-faktura?op=set_order_status&order_id=42", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "<ERROR>")
}

func TestAddTrackingOp(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api.php/v3/tracking-codes", func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.Equal(t, http.MethodPost, r.Method)
		writeShopJSON(t, w, map[string]interface{}{"success": true})
	})

	s, _ := newTestServer(t, mux, nil)
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/cao-faktura?op=add_tracking&order_id=42&code=DHL123&carrier=DHL", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.Contains(t, rec.Body.String(), "<OK/>")
}
