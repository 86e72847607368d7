package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"bridge_cao/app/caoxml"
	"bridge_cao/app/services"
)

const sinceLayout = "2006-01-02T15:04:05"

func (s *Server) handleOp(w http.ResponseWriter, r *http.Request, svc *services.Services, op string) {
	switch op {
	case "":
		writeXML(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<STATUS>
  <INFO>ready</INFO>
</STATUS>`)
	case "get_orders_since":
		s.opOrdersSince(w, r, svc)
	case "set_order_status":
		s.opSetOrderStatus(w, r, svc)
	case "add_tracking":
		s.opAddTracking(w, r, svc)
	case "upsert_product":
		s.opUpsertProduct(w, r, svc)
	case "set_stock":
		s.opSetStock(w, r, svc)
	case "set_price":
		s.opSetPrice(w, r, svc)
	default:
		writeError(w, http.StatusOK, "Unknown operation")
	}
}

func (s *Server) opOrdersSince(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	since := param(r, "since")
	if since == "" {
		since = time.Now().Add(-24 * time.Hour).Format(sinceLayout)
	}
	// v2 searches on the raw database column, which stores the
	// timestamp with a space separator.
	sinceV2 := strings.Replace(since, "T", " ", 1)
	if _, err := time.Parse("2006-01-02 15:04:05", sinceV2); err != nil {
		sinceV2 = time.Now().Format("2006-01-02 15:04:05")
	}

	orders, err := svc.FetchOrdersSince(since, sinceV2)
	if err != nil {
		s.failOp(w, "get_orders_since", err)
		return
	}
	doc := caoxml.BuildOrders(orders)
	xml, err := caoxml.Serialize(doc)
	if err != nil {
		s.failOp(w, "get_orders_since", err)
		return
	}
	writeXML(w, http.StatusOK, xml)
}

func (s *Server) opSetOrderStatus(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	orderID := intParam(r, "order_id", 0)
	statusID := intParam(r, "status_id", 0)
	if orderID <= 0 || statusID <= 0 {
		writeError(w, http.StatusBadRequest, "order_id and status_id are required")
		return
	}
	notify := boolParam(r, "notify")
	comment := param(r, "comment")

	if err := svc.SetOrderStatus(orderID, statusID, comment, notify); err != nil {
		s.failOp(w, "set_order_status", err)
		return
	}
	writeResultOK(w)
}

func (s *Server) opAddTracking(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	orderID := intParam(r, "order_id", 0)
	code := param(r, "code")
	if orderID <= 0 || code == "" {
		writeError(w, http.StatusBadRequest, "order_id and code are required")
		return
	}
	carrier := param(r, "carrier")

	if err := svc.AddTrackingCode(orderID, code, carrier); err != nil {
		s.failOp(w, "add_tracking", err)
		return
	}
	writeResultOK(w)
}

func (s *Server) opUpsertProduct(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	limit := s.cfg.MaxXMLBytes
	if limit <= 0 {
		limit = 2 << 20
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		s.failOp(w, "upsert_product", err)
		return
	}
	if int64(len(body)) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "XML body exceeds size limit")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "XML body is required")
		return
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid XML: "+err.Error())
		return
	}
	if err := svc.UpsertProductFromXML(doc); err != nil {
		s.failOp(w, "upsert_product", err)
		return
	}

	reply := `<?xml version="1.0" encoding="UTF-8"?>
<RESULT>
  <STATUS>OK</STATUS>
  <API_VERSION>` + svc.APIVersion() + `</API_VERSION>
</RESULT>`
	writeXML(w, http.StatusOK, reply)
}

func (s *Server) opSetStock(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	sku := param(r, "sku")
	if sku == "" {
		writeError(w, http.StatusBadRequest, "sku is required")
		return
	}
	qty := intParam(r, "qty", 0)

	if err := svc.UpdateStock(sku, qty); err != nil {
		s.failOp(w, "set_stock", err)
		return
	}
	writeResultOK(w)
}

func (s *Server) opSetPrice(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	sku := param(r, "sku")
	if sku == "" {
		writeError(w, http.StatusBadRequest, "sku is required")
		return
	}
	price, err := strconv.ParseFloat(param(r, "price"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "price must be numeric")
		return
	}

	if err := svc.UpdatePrice(sku, price); err != nil {
		s.failOp(w, "set_price", err)
		return
	}
	writeResultOK(w)
}

func (s *Server) failOp(w http.ResponseWriter, op string, err error) {
	s.log.WithError(err).WithField("op", op).Error("operation failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeResultOK(w http.ResponseWriter) {
	writeXML(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<RESULT>
  <OK/>
</RESULT>`)
}

func boolParam(r *http.Request, name string) bool {
	switch strings.ToLower(param(r, name)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
