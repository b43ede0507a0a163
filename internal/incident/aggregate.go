package incident

import (
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// KeyFunc extracts a grouping category from a record. ok is false when the
// record has no category and must be skipped.
type KeyFunc func(Record) (category string, ok bool)

// ByIncidentType groups on IncidentType.
func ByIncidentType(r Record) (string, bool) {
	return r.IncidentType, r.IncidentType != ""
}

// ByLocationType groups on LocationType.
func ByLocationType(r Record) (string, bool) {
	return r.LocationType, r.LocationType != ""
}

// DistributionEntry is one ranked category of a distribution.
type DistributionEntry struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	ArrestRate float64 `json:"arrest_rate"`
}

// CrossTabCell is one cell of a dense row × column count grid.
type CrossTabCell struct {
	Row   string `json:"row"`
	Col   string `json:"col"`
	Count int    `json:"count"`
}

// DistributionBy groups records by key and returns one entry per category,
// ordered by count descending. Equal counts keep the order in which their
// categories were first seen.
func DistributionBy(records []Record, key KeyFunc) []DistributionEntry {
	var order []string
	arrests := make(map[string][]float64)
	for _, r := range records {
		cat, ok := key(r)
		if !ok {
			continue
		}
		if _, seen := arrests[cat]; !seen {
			order = append(order, cat)
		}
		flag := 0.0
		if r.Arrest {
			flag = 1
		}
		arrests[cat] = append(arrests[cat], flag)
	}

	entries := make([]DistributionEntry, 0, len(order))
	for _, cat := range order {
		group := arrests[cat]
		entries = append(entries, DistributionEntry{
			Category:   cat,
			Count:      len(group),
			ArrestRate: stats.Mean(group),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// TopCategories returns the categories of the first n entries of dist.
// n <= 0 returns every category.
func TopCategories(dist []DistributionEntry, n int) []string {
	if n <= 0 || n > len(dist) {
		n = len(dist)
	}
	cats := make([]string, n)
	for i := 0; i < n; i++ {
		cats[i] = dist[i].Category
	}
	return cats
}

// CrossTab counts records for every (row, col) pair in rows × cols, keyed by
// rowKey and colKey. Cells are emitted row-major and pairs with no records
// are present with a zero count.
func CrossTab(records []Record, rowKey, colKey KeyFunc, rows, cols []string) []CrossTabCell {
	nested := make(map[string]map[string]int)
	for _, r := range records {
		row, ok := rowKey(r)
		if !ok {
			continue
		}
		col, ok := colKey(r)
		if !ok {
			continue
		}
		inner, ok := nested[row]
		if !ok {
			inner = make(map[string]int)
			nested[row] = inner
		}
		inner[col]++
	}

	cells := make([]CrossTabCell, 0, len(rows)*len(cols))
	for _, row := range rows {
		inner := nested[row]
		for _, col := range cols {
			cells = append(cells, CrossTabCell{Row: row, Col: col, Count: inner[col]})
		}
	}
	return cells
}
