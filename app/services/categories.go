package services

import (
	"strconv"

	"bridge_cao/app/integrations"
	"bridge_cao/app/records"
)

// FetchCategoriesPage loads one page of categories in the normalized
// flat shape. A v3 client falls back to v2 when the route is missing.
func (s *Services) FetchCategoriesPage(page, perPage int) ([]records.Record, error) {
	if s.api.Version() == "v3" {
		rows, err := s.fetchCategoriesPage(page, perPage)
		if err != nil {
			if integrations.IsNotFound(err) {
				s.log.Warn("v3 categories endpoint missing, falling back to v2")
				return s.WithVersion("v2").fetchCategoriesPage(page, perPage)
			}
			return nil, err
		}
		return rows, nil
	}
	return s.fetchCategoriesPage(page, perPage)
}

func (s *Services) fetchCategoriesPage(page, perPage int) ([]records.Record, error) {
	perPage = clampPerPage(perPage)

	res, err := s.api.Get("categories", map[string]string{
		"page":     strconv.Itoa(page),
		"per-page": strconv.Itoa(perPage),
		"limit":    strconv.Itoa(perPage),
		"offset":   strconv.Itoa((page - 1) * perPage),
		"sort":     "id",
	})
	if err != nil {
		return nil, err
	}

	list := records.ExtractList(res, "data", "categories")
	norm := make([]records.Record, 0, len(list))
	for _, raw := range list {
		if c := records.AsRecord(raw); c != nil {
			norm = append(norm, normalizeCategory(c))
		}
	}
	return norm, nil
}

// normalizeCategory maps either generation's category fields onto the
// flat keys the XML assembly reads. Language fields may stay maps.
func normalizeCategory(c records.Record) records.Record {
	return records.Record{
		"categories_id":    records.Resolve(c, []string{"id", "categories_id"}, nil),
		"parent_id":        records.Resolve(c, []string{"parentId", "parent_id"}, 0),
		"sort_order":       records.Resolve(c, []string{"sortOrder", "sort_order"}, 0),
		"date_added":       records.Resolve(c, []string{"dateAdded", "date_added"}, ""),
		"last_modified":    records.Resolve(c, []string{"lastModified", "last_modified"}, ""),
		"name":             c["name"],
		"description":      c["description"],
		"meta_title":       records.Resolve(c, []string{"metaTitle", "meta_title"}, nil),
		"meta_description": records.Resolve(c, []string{"metaDescription", "meta_description"}, nil),
		"meta_keywords":    records.Resolve(c, []string{"metaKeywords", "meta_keywords"}, nil),
		"url":              c["url"],
	}
}

// FetchCategoryChildren loads the direct children of a category. Rows
// missing a parent reference get it restored from the request context,
// so the tree stays connected in the export.
func (s *Services) FetchCategoryChildren(parentID int) ([]records.Record, error) {
	res, err := s.api.Get("categories/"+strconv.Itoa(parentID)+"/children", nil)
	if err != nil {
		return nil, err
	}

	list := records.ExtractList(res, "data", "categories")
	norm := make([]records.Record, 0, len(list))
	for _, raw := range list {
		c := records.AsRecord(raw)
		if c == nil {
			continue
		}
		n := normalizeCategory(c)
		if emptyVal(n["parent_id"]) {
			n["parent_id"] = parentID
		}
		norm = append(norm, n)
	}
	return norm, nil
}

// ExportCategories walks the whole category tree breadth-first and
// hands each category to emit exactly once. Pages of the flat listing
// seed the walk; the children endpoint fills in subtrees the listing
// may not cover. Categories without an id are skipped.
func (s *Services) ExportCategories(perPage, startPage int, emit func(records.Record) error) error {
	perPage = clampPerPage(perPage)
	if startPage < 1 {
		startPage = 1
	}

	visited := map[string]bool{}
	var queue []int

	take := func(row records.Record) error {
		id := records.ScalarString(row["categories_id"])
		if id == "" || visited[id] {
			return nil
		}
		visited[id] = true
		if err := emit(row); err != nil {
			return err
		}
		if n, err := strconv.Atoi(id); err == nil {
			queue = append(queue, n)
		}
		return nil
	}

	for page := startPage; ; page++ {
		rows, err := s.FetchCategoriesPage(page, perPage)
		if err != nil {
			return err
		}
		// Each listed category is followed immediately by its whole
		// subtree, so sibling roots never interleave.
		for _, row := range rows {
			if err := take(row); err != nil {
				return err
			}
			for len(queue) > 0 {
				parent := queue[0]
				queue = queue[1:]
				children, err := s.FetchCategoryChildren(parent)
				if err != nil {
					return err
				}
				for _, child := range children {
					if err := take(child); err != nil {
						return err
					}
				}
			}
		}
		if len(rows) != perPage {
			return nil
		}
	}
}
