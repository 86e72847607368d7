package caoxml

import (
	"github.com/beevik/etree"

	"bridge_cao/app/records"
)

// BuildProducts assembles the <PRODUCTS> export document using the
// classic per-product layout the legacy import expects.
func BuildProducts(rows []records.Record, lang Lang) *etree.Document {
	doc, root := NewDocument("PRODUCTS")
	for _, r := range rows {
		AppendProduct(root, r, lang)
	}
	return doc
}

// AppendProduct maps one product record onto
// <PRODUCT_INFO><PRODUCT_DATA>...<PRODUCT_DESCRIPTION/></PRODUCT_DATA></PRODUCT_INFO>.
func AppendProduct(root *etree.Element, row records.Record, lang Lang) *etree.Element {
	d := row
	if data := records.AsRecord(row["data"]); data != nil {
		d = data
	}

	info := root.CreateElement("PRODUCT_INFO")
	x := info.CreateElement("PRODUCT_DATA")

	addChild(x, "PRODUCT_ID", pickStr(d, "id", "products_id"))
	// Numeric fields keep an explicit empty string empty instead of
	// defaulting it to zero.
	addChild(x, "PRODUCT_QUANTITY", records.NormalizeNumber(records.ResolveAny(d, []string{"quantity", "products_quantity"}, 0)))
	addChild(x, "PRODUCT_MODEL", pickStr(d, "productModel", "products_model"))
	addChild(x, "PRODUCT_FSK18", records.NormalizeNumber(boolField(d, "isFsk18", "products_fsk18", 0)))
	addChild(x, "PRODUCT_IMAGE", mainImage(d))
	addChild(x, "PRODUCT_EAN", pickStr(d, "ean", "products_ean"))

	// Single net shop price, like the old export.
	addChild(x, "PRODUCT_PRICE", records.NormalizeMoney(records.ResolveAny(d, []string{"price", "products_price"}, 0)))

	addChild(x, "PRODUCT_TAX_CLASS_ID", pickStr(d, "taxClassId", "products_tax_class_id"))
	addChild(x, "PRODUCT_TAX_RATE", records.NormalizeNumber(records.ResolveAny(d, []string{"prices.tax_rate", "tax_rate"}, 0)))

	addChild(x, "PRODUCT_WEIGHT", records.NormalizeNumber(records.ResolveAny(d, []string{"weight", "products_weight"}, 0)))
	addChild(x, "PRODUCT_STATUS", records.NormalizeNumber(boolField(d, "isActive", "products_status", 1)))
	addChild(x, "MANUFACTURERS_ID", pickStr(d, "manufacturerId", "manufacturers_id"))
	addChild(x, "PRODUCT_DATE_ADDED", records.NormalizeDate(records.Resolve(d, []string{"dateAdded", "products_date_added"}, nil)))
	addChild(x, "PRODUCT_LAST_MODIFIED", records.NormalizeDate(records.Resolve(d, []string{"lastModified", "products_last_modified"}, nil)))

	avail := records.NormalizeDate(records.Resolve(d, []string{"dateAvailable", "products_date_available"}, nil))
	if avail == "" {
		avail = "1000-01-01 00:00:00"
	}
	addChild(x, "PRODUCT_DATE_AVAILABLE", avail)
	addChild(x, "PRODUCTS_ORDERED", records.NormalizeNumber(records.ResolveAny(d, []string{"orderedCount", "products_ordered"}, 0)))

	pd := x.CreateElement("PRODUCT_DESCRIPTION")
	pd.CreateAttr("ID", lang.ID)
	pd.CreateAttr("CODE", lang.Code)
	pd.CreateAttr("NAME", lang.Name)

	addChild(pd, "NAME", PickLang(d["name"], lang.Code))
	addChild(pd, "URL", PickLang(d["url"], lang.Code))
	addChild(pd, "DESCRIPTION", PickLang(d["description"], lang.Code))
	addChild(pd, "SHORT_DESCRIPTION", PickLang(d["shortDescription"], lang.Code))
	addChild(pd, "META_TITLE", PickLang(d["metaTitle"], lang.Code))
	addChild(pd, "META_DESCRIPTION", PickLang(d["metaDescription"], lang.Code))
	addChild(pd, "META_KEYWORDS", PickLang(d["metaKeywords"], lang.Code))

	return info
}

// boolField reads a boolean flag that newer payloads carry under
// boolKey and older ones as a numeric legacyKey.
func boolField(d records.Record, boolKey, legacyKey string, def interface{}) interface{} {
	if v, ok := d[boolKey]; ok {
		if b, isBool := v.(bool); isBool {
			if b {
				return 1
			}
			return 0
		}
		if f, numOK := records.NumberValue(v); numOK {
			if f != 0 {
				return 1
			}
			return 0
		}
	}
	if v, ok := d[legacyKey]; ok {
		return v
	}
	return def
}

func mainImage(d records.Record) string {
	if images := records.AsList(d["images"]); len(images) > 0 {
		if first := records.AsRecord(images[0]); first != nil {
			return records.ScalarString(records.Resolve(first, []string{"filename", "image"}, nil))
		}
		return records.ScalarString(images[0])
	}
	return records.ScalarString(d["image"])
}
