package incident

import (
	"github.com/golang/geo/s2"
)

// Extent is the bounding box of records with usable coordinates.
type Extent struct {
	Points int     `json:"points"`
	South  float64 `json:"south"`
	West   float64 `json:"west"`
	North  float64 `json:"north"`
	East   float64 `json:"east"`
	CenLat float64 `json:"center_lat"`
	CenLng float64 `json:"center_lng"`
}

// ExtentOf computes the bounding box of records whose coordinates are finite
// and within valid latitude/longitude ranges. ok is false when none qualify.
func ExtentOf(records []Record) (ext Extent, ok bool) {
	rect := s2.EmptyRect()
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		ll := s2.LatLngFromDegrees(r.Latitude, r.Longitude)
		if !ll.IsValid() {
			continue
		}
		rect = rect.AddPoint(ll)
		ext.Points++
	}
	if rect.IsEmpty() {
		return Extent{}, false
	}

	lo, hi, center := rect.Lo(), rect.Hi(), rect.Center()
	ext.South = lo.Lat.Degrees()
	ext.West = lo.Lng.Degrees()
	ext.North = hi.Lat.Degrees()
	ext.East = hi.Lng.Degrees()
	ext.CenLat = center.Lat.Degrees()
	ext.CenLng = center.Lng.Degrees()
	return ext, true
}
