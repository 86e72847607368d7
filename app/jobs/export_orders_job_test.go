package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge_cao/app/integrations"
	"bridge_cao/app/services"
	"bridge_cao/config"
)

func TestExportOrdersSinceJobWritesArchive(t *testing.T) {
	var sinceParams []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api.php/v3/orders", func(w http.ResponseWriter, r *http.Request) {
		sinceParams = append(sinceParams, r.URL.Query().Get("filter[datePurchased]"))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{
				map[string]interface{}{
					"id":       9001,
					"statusId": 1,
					"items":    []interface{}{map[string]interface{}{"id": 1}},
					"totals":   map[string]interface{}{"grandTotal": 5.0},
				},
			},
		}))
	})
	shop := httptest.NewServer(mux)
	t.Cleanup(shop.Close)

	cfg := &config.Configuration{ShopBaseURL: shop.URL, APIVersion: "v3"}
	svc := services.New(integrations.NewGambioClient(cfg), cfg)
	dir := t.TempDir()

	job := NewExportOrdersSinceJob("export-orders", "0 */5 * * * *", svc, dir)
	require.NoError(t, job.Execute(context.Background()))

	files, err := filepath.Glob(filepath.Join(dir, "orders_export_*.xml"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "<ORDER_ID>9001</ORDER_ID>")

	// First run must cover roughly the past day.
	require.Len(t, sinceParams, 1)
	firstSince, err := time.Parse("2006-01-02T15:04:05", trimGte(t, sinceParams[0]))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), firstSince, time.Minute)

	// The next run starts where the previous one began.
	require.NoError(t, job.Execute(context.Background()))
	require.Len(t, sinceParams, 2)
	secondSince, err := time.Parse("2006-01-02T15:04:05", trimGte(t, sinceParams[1]))
	require.NoError(t, err)
	assert.True(t, secondSince.After(firstSince))
}

func trimGte(t *testing.T, v string) string {
	t.Helper()
	require.True(t, len(v) > 4 && v[:4] == "gte|", "unexpected filter value %q", v)
	return v[4:]
}
