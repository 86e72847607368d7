package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"bridge_cao/app/caoxml"
	"bridge_cao/app/records"
	"bridge_cao/app/services"
)

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, svc *services.Services, action string) {
	switch action {
	case "version":
		s.handleVersion(w)
	case "orders_export":
		s.handleOrdersExport(w, r, svc)
	case "products_export":
		s.handleProductsExport(w, r, svc)
	case "categories_export":
		s.handleCategoriesExport(w, r, svc)
	case "customers_export":
		s.handleCustomersExport(w, r, svc)
	case "manufacturers_export":
		s.handleManufacturersExport(w, r, svc)
	default:
		writeError(w, http.StatusOK, "Unknown action")
	}
}

// handleVersion reports the protocol handshake the client probes before
// anything else. Code 111 identifies the order-export capable variant.
func (s *Server) handleVersion(w http.ResponseWriter) {
	body := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<STATUS>
  <STATUS_DATA>
    <ACTION>version</ACTION>
    <CODE>111</CODE>
    <SCRIPT_VER>2.0</SCRIPT_VER>
    <SCRIPT_DATE>%s</SCRIPT_DATE>
  </STATUS_DATA>
</STATUS>`, time.Now().Format("2006-01-02"))
	writeXML(w, http.StatusOK, body)
}

func (s *Server) handleOrdersExport(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	from := intParam(r, "order_from", 1)
	to := intParam(r, "order_to", 999999)
	status := param(r, "order_status")
	q := param(r, "q")
	statusIn := param(r, "status_in")

	orders, err := svc.FetchOrdersByIDRange(from, to, status, q, statusIn)
	if err != nil {
		s.failAction(w, "orders_export", err)
		return
	}

	doc := caoxml.BuildOrders(orders)
	s.finishExport(w, "orders", doc)
}

func (s *Server) handleProductsExport(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	page := intParam(r, "page", 1)
	// Product detail enrichment is expensive, the default page size
	// stays small.
	perPage := intParam(r, "per_page", 50)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	// Keep in step with the service-side page clamp so the short-page
	// check sees the real size.
	if perPage > 200 {
		perPage = 200
	}
	lang := s.exportLang()

	doc, root := caoxml.NewDocument("PRODUCTS")
	for {
		rows, err := svc.FetchProductsPage(page, perPage)
		if err != nil {
			s.failAction(w, "products_export", err)
			return
		}
		for _, p := range rows {
			caoxml.AppendProduct(root, p, lang)
		}
		if len(rows) != perPage {
			break
		}
		page++
	}
	s.finishExport(w, "products", doc)
}

func (s *Server) handleCategoriesExport(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	perPage := intParam(r, "per_page", 200)
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 200 {
		perPage = 200
	}
	startPage := intParam(r, "page_start", 1)
	lang := s.exportLang()

	doc, root := caoxml.NewDocument("CATEGORIES")
	err := svc.ExportCategories(perPage, startPage, func(row records.Record) error {
		caoxml.AppendCategory(root, row, lang)
		return nil
	})
	if err != nil {
		s.failAction(w, "categories_export", err)
		return
	}
	s.finishExport(w, "categories", doc)
}

func (s *Server) handleCustomersExport(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	perPage := intParam(r, "per_page", 100)
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 100 {
		perPage = 100
	}

	doc, root := caoxml.NewDocument("CUSTOMERS")
	err := svc.StreamAllCustomers(perPage, func(row records.Record) error {
		caoxml.AppendCustomer(root, row)
		return nil
	})
	if err != nil {
		s.failAction(w, "customers_export", err)
		return
	}
	s.finishExport(w, "customers", doc)
}

func (s *Server) handleManufacturersExport(w http.ResponseWriter, r *http.Request, svc *services.Services) {
	page := intParam(r, "page", 1)
	perPage := intParam(r, "per_page", 200)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 200
	}
	if perPage > 200 {
		perPage = 200
	}

	doc, root := caoxml.NewDocument("MANUFACTURERS")
	for {
		rows, err := svc.FetchManufacturers(page, perPage)
		if err != nil {
			s.failAction(w, "manufacturers_export", err)
			return
		}
		svc.EnrichManufacturers(rows)
		for _, m := range rows {
			caoxml.AppendManufacturer(root, m)
		}
		if len(rows) != perPage {
			break
		}
		page++
	}
	s.finishExport(w, "manufacturers", doc)
}

func (s *Server) finishExport(w http.ResponseWriter, kind string, doc *etree.Document) {
	xml, err := caoxml.Serialize(doc)
	if err != nil {
		s.failAction(w, kind, err)
		return
	}
	writeXML(w, http.StatusOK, xml)
	s.archive(kind, xml)
}

func (s *Server) failAction(w http.ResponseWriter, action string, err error) {
	s.log.WithError(err).WithField("action", action).Error("export failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) exportLang() caoxml.Lang {
	return caoxml.Lang{
		ID:   s.cfg.LangID,
		Code: s.cfg.LangCode,
		Name: s.cfg.LangName,
	}
}

func intParam(r *http.Request, name string, def int) int {
	v := param(r, name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
