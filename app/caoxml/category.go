package caoxml

import (
	"github.com/beevik/etree"

	"bridge_cao/app/records"
)

// BuildCategories assembles the <CATEGORIES> export document.
func BuildCategories(rows []records.Record, lang Lang) *etree.Document {
	doc, root := NewDocument("CATEGORIES")
	for _, r := range rows {
		AppendCategory(root, r, lang)
	}
	return doc
}

// AppendCategory maps one category record onto a <CATEGORIES_DATA>
// block. Status and image are intentionally not emitted; the legacy
// import chokes on them.
func AppendCategory(root *etree.Element, row records.Record, lang Lang) *etree.Element {
	x := root.CreateElement("CATEGORIES_DATA")

	addChild(x, "ID", pickStr(row, "categories_id", "id"))
	addChild(x, "PARENT_ID", records.ScalarString(records.Resolve(row, []string{"parent_id", "parentId"}, "0")))
	addChild(x, "SORT_ORDER", records.NormalizeNumber(records.Resolve(row, []string{"sort_order", "sortOrder"}, 0)))
	addChild(x, "DATE_ADDED", records.NormalizeDate(records.Resolve(row, []string{"date_added", "dateAdded"}, nil)))
	addChild(x, "LAST_MODIFIED", records.NormalizeDate(records.Resolve(row, []string{"last_modified", "lastModified"}, nil)))

	cd := x.CreateElement("CATEGORIES_DESCRIPTION")
	cd.CreateAttr("ID", lang.ID)
	cd.CreateAttr("CODE", lang.Code)
	cd.CreateAttr("NAME", lang.Name)

	addChild(cd, "NAME", PickLang(row["name"], lang.Code))
	addChild(cd, "DESCRIPTION", PickLang(row["description"], lang.Code))
	addChild(cd, "META_TITLE", PickLang(row["meta_title"], lang.Code))
	addChild(cd, "META_DESCRIPTION", PickLang(row["meta_description"], lang.Code))
	addChild(cd, "META_KEYWORDS", PickLang(row["meta_keywords"], lang.Code))
	addChild(cd, "URL", PickLang(row["url"], lang.Code))

	return x
}
