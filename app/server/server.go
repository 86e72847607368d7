// Package server exposes the legacy-compatible HTTP entry point. One
// endpoint dispatches on ?action= (bulk exports) and ?op= (single
// operations), replies are always XML.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"bridge_cao/app/caoxml"
	"bridge_cao/app/services"
	"bridge_cao/config"
	"bridge_cao/utility/logger"
)

// Server serves the CAO-Faktura entry point.
type Server struct {
	cfg *config.Configuration
	svc *services.Services
	log *logrus.Logger
}

// NewServer wires the entry point to the service layer.
func NewServer(cfg *config.Configuration, svc *services.Services) *Server {
	return &Server{
		cfg: cfg,
		svc: svc,
		log: logger.GetLogger("server"),
	}
}

// Router builds the HTTP routing table. The .php alias keeps existing
// client configurations working unchanged.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.accessPolicy)
	r.HandleFunc("/cao-faktura", s.handle)
	r.HandleFunc("/cao-faktura.php", s.handle)
	return r
}

// ListenAndServe runs the server on the configured address.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.cfg.ListenAddr).Info("CAO entry point listening")
	return http.ListenAndServe(s.cfg.ListenAddr, s.Router())
}

// handle dispatches a single request. The API generation can be
// overridden per request with ?api=v2|v3.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	svc := s.svc
	if api := param(r, "api"); api == "v2" || api == "v3" {
		svc = s.svc.WithVersion(api)
	}

	if action := r.URL.Query().Get("action"); action != "" {
		s.handleAction(w, r, svc, action)
		return
	}
	s.handleOp(w, r, svc, param(r, "op"))
}

// param reads a request parameter from the query string first, then
// from a form body.
func param(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return r.PostFormValue(name)
}

func writeXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeXML(w, status, caoxml.ErrorDocument(msg))
}

// archive drops a copy of an export next to the logs. Failures are
// logged but never reach the client; the download already succeeded.
func (s *Server) archive(kind, xml string) {
	if s.cfg.ExportDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.ExportDir, 0o775); err != nil {
		s.log.WithError(err).Warn("cannot create export dir")
		return
	}
	name := kind + "_export_" + time.Now().Format("20060102_150405") + ".xml"
	if err := os.WriteFile(filepath.Join(s.cfg.ExportDir, name), []byte(xml), 0o644); err != nil {
		s.log.WithError(err).WithField("file", name).Warn("cannot archive export")
	}
}
