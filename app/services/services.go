// Package services implements the shop-side data flows of the bridge:
// paged collection, version fallback, detail enrichment and the write
// operations the legacy client triggers.
package services

import (
	"strings"

	"github.com/sirupsen/logrus"

	"bridge_cao/app/integrations"
	"bridge_cao/app/records"
	"bridge_cao/config"
	"bridge_cao/utility/logger"
)

// Services bundles the shop API client with the runtime configuration.
type Services struct {
	api *integrations.GambioClient
	cfg *config.Configuration
	log *logrus.Logger
}

// New creates the service layer on top of an API client.
func New(api *integrations.GambioClient, cfg *config.Configuration) *Services {
	return &Services{
		api: api,
		cfg: cfg,
		log: logger.GetLogger("services"),
	}
}

// WithVersion returns a copy pinned to the given API generation, used
// for the per-request ?api= override.
func (s *Services) WithVersion(version string) *Services {
	clone := *s
	clone.api = s.api.WithVersion(version)
	return &clone
}

// APIVersion returns the API generation requests go out with.
func (s *Services) APIVersion() string {
	return s.api.Version()
}

// rowsOf filters a decoded list down to the object entries.
func rowsOf(list []interface{}) []records.Record {
	rows := make([]records.Record, 0, len(list))
	for _, item := range list {
		if rec := records.AsRecord(item); rec != nil {
			rows = append(rows, rec)
		}
	}
	return rows
}

// splitCSV splits a comma separated list, dropping empty entries.
func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// emptyVal reports whether a record field counts as absent: nil, an
// empty string, or an empty container.
func emptyVal(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}
