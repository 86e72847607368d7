package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge_cao/app/records"
)

func customerJSON(id int, first, last, email string) map[string]interface{} {
	return map[string]interface{}{
		"id":            id,
		"customerGroup": 2,
		"personalInformation": map[string]interface{}{
			"customerNumber": "K-1000",
			"gender":         "f",
			"firstName":      first,
			"lastName":       last,
			"dateOfBirth":    "1990-06-15",
		},
		"contactInformation": map[string]interface{}{
			"email":       email,
			"phoneNumber": "040 999",
		},
		"businessInformation": map[string]interface{}{
			"companyName": "Nord GmbH",
			"vatId":       "DE123456789",
		},
		"createdAt": "2022-02-02T12:00:00Z",
	}
}

func TestFetchCustomersPageAlwaysUsesV3(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api.php/v3/customers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{"data": []interface{}{
			customerJSON(31, "Frida", "Nord", "frida@example.de"),
		}})
	})

	// A v2-configured bridge still reads customers from v3.
	s := newTestServices(t, "v2", mux)
	rows, err := s.FetchCustomersPage(1, 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "31", records.ScalarString(row["customers_id"]))
	assert.Equal(t, "K-1000", row["customers_cid"])
	assert.Equal(t, "Frida", row["entry_firstname"])
	assert.Equal(t, "Nord GmbH", row["entry_company"])
	assert.Equal(t, "frida@example.de", row["customers_email_address"])
	assert.Equal(t, "DE123456789", row["vat_id"])
	assert.Equal(t, "2022-02-02T12:00:00Z", row["customers_info_date_account_created"])
	// Addresses are not part of the listing payload.
	assert.Equal(t, "", row["entry_street_address"])
	assert.Equal(t, "", row["countries_iso_code_2"])
}

func TestStreamAllCustomersPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api.php/v3/customers", func(w http.ResponseWriter, r *http.Request) {
		var rows []interface{}
		if r.URL.Query().Get("page") == "1" {
			for i := 1; i <= 100; i++ {
				rows = append(rows, customerJSON(i, "A", "B", "x@example.de"))
			}
		} else {
			rows = append(rows, customerJSON(101, "A", "B", "x@example.de"))
		}
		writeJSON(t, w, map[string]interface{}{"data": rows})
	})

	s := newTestServices(t, "v3", mux)

	count := 0
	// Oversized page sizes are clamped to the v3 limit of 100.
	err := s.StreamAllCustomers(500, func(records.Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 101, count)
}

func TestEnrichManufacturersMergesDetailAndSurvivesErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api.php/v2/manufacturers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{"data": []interface{}{
			map[string]interface{}{"id": 1, "name": "Acme"},
			map[string]interface{}{"id": 2, "name": "Globex"},
		}})
	})
	mux.HandleFunc("/api.php/v2/manufacturers/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{
			"urls": map[string]interface{}{"DE": "https://acme.example/de"},
		})
	})
	mux.HandleFunc("/api.php/v2/manufacturers/2", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	s := newTestServices(t, "v2", mux)
	rows, err := s.FetchManufacturers(1, 50)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	s.EnrichManufacturers(rows)

	assert.NotNil(t, records.AsRecord(rows[0]["urls"]))
	assert.Equal(t, "Globex", rows[1]["name"])
	assert.Nil(t, rows[1]["urls"])
}
