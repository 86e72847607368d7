package caoxml

import (
	"sort"
	"strings"

	"github.com/beevik/etree"

	"bridge_cao/app/records"
)

// BuildManufacturers assembles the <MANUFACTURERS> export document.
func BuildManufacturers(rows []records.Record) *etree.Document {
	doc, root := NewDocument("MANUFACTURERS")
	for _, r := range rows {
		AppendManufacturer(root, r)
	}
	return doc
}

// AppendManufacturer maps one manufacturer record onto a
// <MANUFACTURERS_DATA> block. Description blocks come either from the
// newer urls map keyed by language code or from the classic
// descriptions list; urls are emitted in sorted code order.
func AppendManufacturer(root *etree.Element, row records.Record) *etree.Element {
	d := row
	if data := records.AsRecord(row["data"]); data != nil {
		d = data
	}

	x := root.CreateElement("MANUFACTURERS_DATA")

	addChild(x, "ID", pickStr(d, "manufacturers_id", "id"))
	addChild(x, "NAME", pickStr(d, "manufacturers_name", "name"))
	addChild(x, "IMAGE", pickStr(d, "manufacturers_image", "image"))
	addChild(x, "DATE_ADDED", records.NormalizeDate(records.Resolve(d, []string{"date_added", "dateAdded", "createdAt"}, nil)))
	addChild(x, "LAST_MODIFIED", records.NormalizeDate(records.Resolve(d, []string{"last_modified", "lastModified", "updatedAt"}, nil)))

	if urls := records.AsRecord(d["urls"]); len(urls) > 0 {
		codes := make([]string, 0, len(urls))
		for c := range urls {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		for _, c := range codes {
			appendManufacturerURL(x, strings.ToLower(c), urls[c])
		}
		return x
	}

	for _, raw := range records.AsList(d["descriptions"]) {
		desc := records.AsRecord(raw)
		if desc == nil {
			continue
		}
		appendManufacturerDescription(x, desc)
	}

	return x
}

func appendManufacturerURL(x *etree.Element, code string, url interface{}) {
	node := x.CreateElement("MANUFACTURERS_DESCRIPTION")
	if code != "" {
		node.CreateAttr("CODE", code)
	}
	if l, ok := langDefaults[code]; ok {
		node.CreateAttr("ID", l.ID)
		node.CreateAttr("NAME", l.Name)
	}
	addChild(node, "URL", records.ScalarString(url))
	addChild(node, "URL_CLICK", "0")
	addChild(node, "DATE_LAST_CLICK", "")
}

func appendManufacturerDescription(x *etree.Element, desc records.Record) {
	node := x.CreateElement("MANUFACTURERS_DESCRIPTION")

	lid := pickStr(desc, "languages_id", "language_id")
	code := strings.ToLower(pickStr(desc, "lang_code", "code"))
	name := pickStr(desc, "lang_name", "language")
	if l, ok := langDefaults[code]; ok {
		if lid == "" {
			lid = l.ID
		}
		if name == "" {
			name = l.Name
		}
	}
	if lid != "" {
		node.CreateAttr("ID", lid)
	}
	if code != "" {
		node.CreateAttr("CODE", code)
	}
	if name != "" {
		node.CreateAttr("NAME", name)
	}

	addChild(node, "URL", pickStr(desc, "manufacturers_url", "url"))
	addChild(node, "URL_CLICK", records.ScalarString(records.Resolve(desc, []string{"url_clicked", "clicks"}, "0")))
	addChild(node, "DATE_LAST_CLICK", records.NormalizeDate(desc["date_last_click"]))
}
