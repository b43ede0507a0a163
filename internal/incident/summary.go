package incident

// DefaultTopN caps the heat map at the ten leading categories per axis.
const DefaultTopN = 10

// Summary is the full set of views for one filter state.
type Summary struct {
	Key        FilterKey           `json:"-"`
	Mode       string              `json:"mode"`
	Range      Range               `json:"range"`
	Total      int                 `json:"total"`
	ByType     []DistributionEntry `json:"by_type"`
	ByLocation []DistributionEntry `json:"by_location"`
	Rows       []string            `json:"heatmap_rows"`
	Cols       []string            `json:"heatmap_cols"`
	Heatmap    []CrossTabCell      `json:"heatmap"`
	Extent     *Extent             `json:"extent,omitempty"`
}

// Summarize computes both distributions and the location × type heat map
// over records. The heat map axes are the topN leading categories of the
// distributions of the same records; topN <= 0 uses every category.
func Summarize(key FilterKey, rng Range, records []Record, topN int) Summary {
	byType := DistributionBy(records, ByIncidentType)
	byLocation := DistributionBy(records, ByLocationType)
	rows := TopCategories(byLocation, topN)
	cols := TopCategories(byType, topN)

	s := Summary{
		Key:        key,
		Mode:       key.String(),
		Range:      rng,
		Total:      len(records),
		ByType:     byType,
		ByLocation: byLocation,
		Rows:       rows,
		Cols:       cols,
		Heatmap:    CrossTab(records, ByLocationType, ByIncidentType, rows, cols),
	}
	if ext, ok := ExtentOf(records); ok {
		s.Extent = &ext
	}
	return s
}

// Dashboard ties a RangeFilter to the Summary of its current subset. Every
// range change recomputes the Summary from scratch and replaces the old one.
type Dashboard struct {
	filter  *RangeFilter
	topN    int
	summary Summary
}

// NewDashboard builds a dashboard over the full span of store.
func NewDashboard(store *Store, key FilterKey, topN int) (*Dashboard, error) {
	f, err := NewRangeFilter(store, key)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{filter: f, topN: topN}
	d.refresh()
	return d, nil
}

// SetRange narrows the dashboard to [lower, upper] and returns the new Summary.
func (d *Dashboard) SetRange(lower, upper float64) (Summary, error) {
	if err := d.filter.SetRange(lower, upper); err != nil {
		return d.summary, err
	}
	d.refresh()
	return d.summary, nil
}

// Reset widens the dashboard back to the full dataset.
func (d *Dashboard) Reset() Summary {
	d.filter.Reset()
	d.refresh()
	return d.summary
}

func (d *Dashboard) refresh() {
	d.summary = Summarize(d.filter.Key(), d.filter.Range(), d.filter.subset, d.topN)
}

// Summary returns the views for the current range.
func (d *Dashboard) Summary() Summary { return d.summary }

// Filter exposes the underlying range filter.
func (d *Dashboard) Filter() *RangeFilter { return d.filter }
