package services

import (
	"strconv"

	"github.com/beevik/etree"

	"bridge_cao/app/integrations"
	"bridge_cao/app/records"
)

// FetchProductsPage loads one page of products with details, prices,
// stock, images and categories merged in. A v3 client falls back to v2
// when the route is missing.
func (s *Services) FetchProductsPage(page, perPage int) ([]records.Record, error) {
	if s.api.Version() == "v3" {
		rows, err := s.fetchProductsPage(page, perPage, true)
		if err != nil {
			if integrations.IsNotFound(err) {
				s.log.Warn("v3 products endpoint missing, falling back to v2")
				return s.WithVersion("v2").fetchProductsPage(page, perPage, false)
			}
			return nil, err
		}
		return rows, nil
	}
	return s.fetchProductsPage(page, perPage, false)
}

func (s *Services) fetchProductsPage(page, perPage int, sorted bool) ([]records.Record, error) {
	perPage = clampPerPage(perPage)

	// Older installations page with limit/offset, newer ones with
	// page/per-page; sending both keeps a single code path.
	params := map[string]string{
		"page":     strconv.Itoa(page),
		"per-page": strconv.Itoa(perPage),
		"limit":    strconv.Itoa(perPage),
		"offset":   strconv.Itoa((page - 1) * perPage),
	}
	if sorted {
		params["sort"] = "id"
	}

	res, err := s.api.Get("products", params)
	if err != nil {
		return nil, err
	}
	rows := rowsOf(records.ExtractList(res, "data", "products"))
	s.enrichProducts(rows)
	return rows, nil
}

func clampPerPage(perPage int) int {
	// Gambio caps list endpoints at 200 per page.
	if perPage > 200 {
		return 200
	}
	if perPage < 1 {
		return 50
	}
	return perPage
}

// enrichProducts merges the detail sub-resources into each product row.
// Every lookup fails independently; a partial record is still exported.
func (s *Services) enrichProducts(rows []records.Record) {
	for _, p := range rows {
		id, _ := records.NumberValue(records.Resolve(p, []string{"products_id", "id"}, nil))
		productID := int(id)
		if productID <= 0 {
			continue
		}
		base := "products/" + strconv.Itoa(productID)

		if emptyVal(p["data"]) {
			if det, err := s.api.Get(base, nil); err == nil {
				if data := records.AsRecord(records.Unwrap(det)); data != nil {
					records.DeepMerge(p, data)
				}
			} else {
				s.log.WithError(err).WithField("product", productID).Debug("product detail unavailable")
			}
		}

		if emptyVal(p["prices"]) {
			if res, err := s.api.Get(base+"/prices", nil); err == nil {
				if pr := records.AsRecord(records.Unwrap(res)); pr != nil {
					p["prices"] = pr
				}
			} else {
				s.log.WithError(err).WithField("product", productID).Debug("product prices unavailable")
			}
		}

		if _, ok := p["stock"]; !ok {
			if res, err := s.api.Get(base+"/stock", nil); err == nil {
				if st := records.Unwrap(res); st != nil {
					p["stock"] = st
				}
			} else {
				s.log.WithError(err).WithField("product", productID).Debug("product stock unavailable")
			}
		}

		if emptyVal(p["images"]) {
			if res, err := s.api.Get(base+"/images", nil); err == nil {
				if im := records.AsList(records.Unwrap(res)); im != nil {
					p["images"] = im
				}
			} else {
				s.log.WithError(err).WithField("product", productID).Debug("product images unavailable")
			}
		}

		if emptyVal(p["categories"]) {
			if res, err := s.api.Get(base+"/categories", nil); err == nil {
				if cats := records.AsList(records.Unwrap(res)); cats != nil {
					p["categories"] = cats
				}
			} else {
				s.log.WithError(err).WithField("product", productID).Debug("product categories unavailable")
			}
		}

		s.resolveTaxRate(p, productID)
	}
}

// resolveTaxRate fills prices.tax_rate from the tax class when the
// price payload does not carry the rate itself.
func (s *Services) resolveTaxRate(p records.Record, productID int) {
	if records.Get(p, "prices.tax_rate") != nil || records.Get(p, "tax_rate") != nil {
		return
	}
	taxClass, _ := records.NumberValue(records.Resolve(p, []string{"taxClassId", "products_tax_class_id"}, nil))
	if int(taxClass) <= 0 {
		return
	}
	res, err := s.api.Get("tax_classes/"+strconv.Itoa(int(taxClass)), nil)
	if err != nil {
		s.log.WithError(err).WithField("product", productID).Debug("tax class unavailable")
		return
	}
	tx := records.AsRecord(records.Unwrap(res))
	if tx == nil {
		return
	}
	rate, ok := records.NumberValue(tx["rate"])
	if !ok {
		return
	}
	prices := records.AsRecord(p["prices"])
	if prices == nil {
		prices = records.Record{}
		p["prices"] = prices
	}
	prices["tax_rate"] = rate
}

// UpsertProductFromXML will create or update a product from an uploaded
// legacy product document. The write direction is not wired up yet; the
// entry point accepts and validates the upload so the old client keeps
// working.
func (s *Services) UpsertProductFromXML(doc *etree.Document) error {
	root := doc.Root()
	tag := ""
	if root != nil {
		tag = root.Tag
	}
	s.log.WithField("root", tag).Info("product upsert received, shop write not implemented")
	return nil
}

// UpdateStock is accepted but not forwarded to the shop yet.
func (s *Services) UpdateStock(sku string, qty int) error {
	s.log.WithField("sku", sku).WithField("qty", qty).Info("stock update received, shop write not implemented")
	return nil
}

// UpdatePrice is accepted but not forwarded to the shop yet.
func (s *Services) UpdatePrice(sku string, price float64) error {
	s.log.WithField("sku", sku).WithField("price", price).Info("price update received, shop write not implemented")
	return nil
}
