package services

import (
	"fmt"
	"strconv"
	"strings"

	"bridge_cao/app/integrations"
	"bridge_cao/app/records"
)

// FetchOrdersByIDRange collects all orders within [from, to], the way
// the legacy client requests them. A v3 client that hits a missing
// route falls back to the v2 search endpoint.
//
// Filters: status is a single status id, statusIn a CSV whitelist, q a
// free text search over customer, payment, shipping and comment fields.
// Without any status filter the default window applies: status below
// the open bound or above the closed bound.
func (s *Services) FetchOrdersByIDRange(from, to int, status, q, statusIn string) ([]records.Record, error) {
	if s.api.Version() == "v3" {
		rows, err := s.fetchOrdersByIDRangeV3(from, to, status, q, statusIn)
		if err != nil {
			if integrations.IsNotFound(err) {
				s.log.Warn("v3 orders endpoint missing, falling back to v2")
				return s.WithVersion("v2").fetchOrdersByIDRangeV2(from, to, status, q, statusIn)
			}
			return nil, err
		}
		return rows, nil
	}
	return s.fetchOrdersByIDRangeV2(from, to, status, q, statusIn)
}

func (s *Services) fetchOrdersByIDRangeV3(from, to int, status, q, statusIn string) ([]records.Record, error) {
	const perPage = 100

	params := map[string]string{
		"sort":     "id",
		"per-page": strconv.Itoa(perPage),
	}
	var filters []string
	if from > 0 {
		filters = append(filters, fmt.Sprintf("gte|%d", from))
	}
	if to > 0 {
		filters = append(filters, fmt.Sprintf("lte|%d", to))
	}
	if len(filters) > 0 {
		params["filter[id]"] = strings.Join(filters, ",")
	}
	if status != "" {
		params["filter[statusId]"] = status
	}

	var all []records.Record
	for page := 1; ; page++ {
		params["page"] = strconv.Itoa(page)
		res, err := s.api.Get("orders", params)
		if err != nil {
			return nil, err
		}
		chunk := rowsOf(records.ExtractList(res, "data", "orders"))
		all = append(all, chunk...)

		hasMore := len(chunk) == perPage
		if hasMore && to > 0 {
			lastID, _ := records.NumberValue(chunk[len(chunk)-1]["id"])
			hasMore = int(lastID) < to
		}
		if !hasMore {
			break
		}
	}

	// The v3 route cannot express "below X or above Y", so the default
	// window is applied here after collection.
	if status == "" && statusIn == "" {
		all = s.filterDefaultStatusWindow(all)
	}
	if statusIn != "" {
		all = filterStatusWhitelist(all, splitCSV(statusIn))
	}
	if q != "" {
		all = filterOrdersText(all, q)
	}
	return all, nil
}

func (s *Services) fetchOrdersByIDRangeV2(from, to int, status, q, statusIn string) ([]records.Record, error) {
	search := map[string]interface{}{}
	if from > 0 {
		search["geq"] = map[string]interface{}{"orders.orders_id": strconv.Itoa(from)}
	}
	if to > 0 {
		search["leq"] = map[string]interface{}{"orders.orders_id": strconv.Itoa(to)}
	}
	if status != "" {
		search["match"] = map[string]interface{}{"orders.orders_status": status}
	}
	if statusIn != "" {
		if ids := splitCSV(statusIn); len(ids) > 0 {
			search["in"] = map[string]interface{}{"orders.orders_status": ids}
		}
	}
	if status == "" && statusIn == "" {
		search["should"] = []interface{}{
			map[string]interface{}{"lower": map[string]interface{}{"orders.orders_status": s.cfg.StatusOpenBelow}},
			map[string]interface{}{"greater": map[string]interface{}{"orders.orders_status": s.cfg.StatusClosedAbove}},
		}
	}

	all, err := s.searchOrdersV2(search)
	if err != nil {
		return nil, err
	}

	s.enrichOrders(all)

	// Text search runs after enrichment so it sees the detail fields
	// and stays ANDed with the status and range filters.
	if q != "" {
		all = filterOrdersText(all, q)
	}
	return all, nil
}

// FetchOrdersSince collects orders purchased at or after since.
// v3 filters on datePurchased and accepts ISO timestamps, the v2 search
// needs "YYYY-MM-DD HH:MM:SS" in sinceV2.
func (s *Services) FetchOrdersSince(since, sinceV2 string) ([]records.Record, error) {
	if s.api.Version() == "v3" {
		rows, err := s.fetchOrdersSinceV3(since)
		if err == nil {
			return rows, nil
		}
		if !integrations.IsNotFound(err) {
			return nil, err
		}
		s.log.Warn("v3 orders endpoint missing, falling back to v2 for the since query")
	}

	search := map[string]interface{}{
		"geq": map[string]interface{}{"orders.date_purchased": sinceV2},
	}
	all, err := s.WithVersion("v2").searchOrdersV2(search)
	if err != nil {
		return nil, err
	}
	s.WithVersion("v2").enrichOrders(all)
	return all, nil
}

func (s *Services) fetchOrdersSinceV3(since string) ([]records.Record, error) {
	const perPage = 100

	var all []records.Record
	for page := 1; ; page++ {
		res, err := s.api.Get("orders", map[string]string{
			"filter[datePurchased]": "gte|" + since,
			"sort":                  "-id",
			"page":                  strconv.Itoa(page),
			"per-page":              strconv.Itoa(perPage),
		})
		if err != nil {
			return nil, err
		}
		chunk := rowsOf(records.ExtractList(res, "data", "orders"))
		all = append(all, chunk...)
		if len(chunk) != perPage {
			break
		}
	}
	return all, nil
}

// searchOrdersV2 pages through POST orders/search with limit/offset
// until a short page arrives.
func (s *Services) searchOrdersV2(search map[string]interface{}) ([]records.Record, error) {
	const limit = 200

	var all []records.Record
	offset := 0
	for {
		res, err := s.api.Post("orders/search", map[string]interface{}{"search": search}, map[string]string{
			"limit":  strconv.Itoa(limit),
			"offset": strconv.Itoa(offset),
		})
		if err != nil {
			return nil, err
		}
		chunk := rowsOf(records.ExtractList(res, "orders", "data"))
		all = append(all, chunk...)
		offset += len(chunk)
		if len(chunk) != limit {
			break
		}
	}
	return all, nil
}

// enrichOrders loads detail, items and totals for every order that
// lacks them. Each aspect fails independently: a broken sub-endpoint
// degrades the record but never aborts the export.
func (s *Services) enrichOrders(orders []records.Record) {
	for _, o := range orders {
		id, _ := records.NumberValue(records.Resolve(o, []string{"id", "orders_id"}, nil))
		orderID := int(id)
		if orderID <= 0 {
			continue
		}
		if !emptyVal(o["items"]) && !emptyVal(o["totals"]) {
			continue
		}

		if detail, err := s.api.Get("orders/"+strconv.Itoa(orderID), nil); err == nil {
			if data := records.AsRecord(records.Unwrap(detail)); data != nil {
				records.DeepMerge(o, data)
			}
		} else {
			s.log.WithError(err).WithField("order", orderID).Debug("order detail unavailable")
		}

		if emptyVal(o["items"]) {
			if res, err := s.api.Get("orders/"+strconv.Itoa(orderID)+"/items", nil); err == nil {
				if items := records.AsList(records.Unwrap(res)); items != nil {
					o["items"] = items
				}
			} else {
				s.log.WithError(err).WithField("order", orderID).Debug("order items unavailable")
			}
		}

		if emptyVal(o["totals"]) {
			if res, err := s.api.Get("orders/"+strconv.Itoa(orderID)+"/totals", nil); err == nil {
				if t := mapTotals(records.AsList(records.Unwrap(res))); len(t) > 0 {
					o["totals"] = t
				}
			} else {
				s.log.WithError(err).WithField("order", orderID).Debug("order totals unavailable")
			}
		}
	}
}

// mapTotals folds the per-class total rows into the flat keys the XML
// assembly reads.
func mapTotals(rows []interface{}) map[string]interface{} {
	t := map[string]interface{}{}
	for _, raw := range rows {
		row := records.AsRecord(raw)
		if row == nil {
			continue
		}
		class := records.ScalarString(records.Resolve(row, []string{"class", "code"}, nil))
		val := records.Resolve(row, []string{"value", "amount", "price"}, nil)
		f, ok := records.NumberValue(val)
		if !ok {
			continue
		}
		switch class {
		case "ot_subtotal":
			t["subtotal"] = f
		case "ot_shipping":
			t["shippingTotal"] = f
		case "ot_tax":
			t["taxTotal"] = f
		case "ot_total":
			t["grandTotal"] = f
		}
	}
	return t
}

func (s *Services) filterDefaultStatusWindow(orders []records.Record) []records.Record {
	out := orders[:0]
	for _, o := range orders {
		sid, _ := records.NumberValue(records.Resolve(o, []string{"statusId", "status.id", "orders_status"}, 0))
		if int(sid) < s.cfg.StatusOpenBelow || int(sid) > s.cfg.StatusClosedAbove {
			out = append(out, o)
		}
	}
	return out
}

func filterStatusWhitelist(orders []records.Record, whitelist []string) []records.Record {
	if len(whitelist) == 0 {
		return orders
	}
	allowed := make(map[string]bool, len(whitelist))
	for _, w := range whitelist {
		allowed[w] = true
	}
	out := orders[:0]
	for _, o := range orders {
		sid := records.ScalarString(records.Resolve(o, []string{"statusId", "status.id", "orders_status"}, nil))
		if allowed[sid] {
			out = append(out, o)
		}
	}
	return out
}

// filterOrdersText keeps orders whose searchable fields contain term.
// Both generations' field names go into the haystack, so it works on
// raw v3 rows as well as enriched v2 rows.
func filterOrdersText(orders []records.Record, term string) []records.Record {
	term = strings.ToLower(term)
	out := orders[:0]
	for _, o := range orders {
		hay := strings.Join([]string{
			records.ScalarString(o["customers_name"]),
			records.ScalarString(o["customers_email_address"]),
			records.ScalarString(o["payment_method"]),
			records.ScalarString(o["payment_class"]),
			records.CleanHTML(o["shipping_method"]),
			records.ScalarString(o["shipping_class"]),
			records.ScalarString(records.Resolve(o, []string{"comment", "comments"}, nil)),
			records.ScalarString(o["customerName"]),
			records.ScalarString(o["customerEmail"]),
			records.ScalarString(records.Resolve(o, []string{"paymentType.title", "payment.title"}, nil)),
			records.ScalarString(records.Resolve(o, []string{"paymentType.module", "payment.code"}, nil)),
			records.CleanHTML(records.Resolve(o, []string{"shippingType.title", "shipping.title"}, nil)),
			records.ScalarString(records.Resolve(o, []string{"shippingType.module", "shipping.code"}, nil)),
		}, " ")
		if strings.Contains(strings.ToLower(hay), term) {
			out = append(out, o)
		}
	}
	return out
}

// SetOrderStatus updates the shop-side order status. The two API
// generations take different routes and field names.
func (s *Services) SetOrderStatus(orderID, statusID int, comment string, notify bool) error {
	notifyFlag := 0
	if notify {
		notifyFlag = 1
	}

	var err error
	if s.api.Version() == "v3" {
		_, err = s.api.Patch(fmt.Sprintf("orders/%d", orderID), map[string]interface{}{
			"statusId":       statusID,
			"comment":        comment,
			"notifyCustomer": notifyFlag,
		})
	} else {
		_, err = s.api.Patch(fmt.Sprintf("orders/%d/status", orderID), map[string]interface{}{
			"status_id":       statusID,
			"comments":        comment,
			"notify_customer": notifyFlag,
		})
	}
	return err
}

// AddTrackingCode attaches a parcel tracking code to an order.
func (s *Services) AddTrackingCode(orderID int, code, carrier string) error {
	var err error
	if s.api.Version() == "v3" {
		_, err = s.api.Post("tracking-codes", map[string]interface{}{
			"orderId": orderID,
			"code":    code,
			"carrier": carrier,
		}, nil)
	} else {
		_, err = s.api.Post(fmt.Sprintf("orders/%d/tracking_codes", orderID), map[string]interface{}{
			"tracking_code": code,
			"carrier":       carrier,
		}, nil)
	}
	return err
}
