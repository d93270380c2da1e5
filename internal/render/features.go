package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/KaramelBytes/leasemap/internal/lease"
)

// Feature kinds carried in the "kind" property.
const (
	KindLease    = "lease"
	KindBuilding = "building"
)

// LeasePopup is the popup HTML for one lease. User data is escaped.
func LeasePopup(r lease.Record) string {
	return fmt.Sprintf("<b>%s</b><br>SF&nbsp;:&nbsp;%s<br>Safety&nbsp;:&nbsp;%.2f<br>Access&nbsp;:&nbsp;%.2f",
		html.EscapeString(r.DisplayAddress()),
		lease.Thousands(int(r.SquareFeet)),
		r.Safety, r.Access,
	)
}

// BuildingPopup is the popup HTML for one building aggregate.
func BuildingPopup(b lease.Building) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b><br>", html.EscapeString(b.DisplayAddress()))
	fmt.Fprintf(&sb, "Total SF&nbsp;:&nbsp;%s (%s)<br>", lease.Thousands(int(b.TotalSF)), b.Category().Name)
	fmt.Fprintf(&sb, "Leases&nbsp;:&nbsp;%d<br>", b.Leases)
	if len(b.Companies) > 0 {
		fmt.Fprintf(&sb, "Companies&nbsp;:&nbsp;%s<br>", html.EscapeString(strings.Join(b.Companies, ", ")))
	}
	if len(b.Sectors) > 0 {
		fmt.Fprintf(&sb, "Sectors&nbsp;:&nbsp;%s<br>", html.EscapeString(strings.Join(b.Sectors, ", ")))
	}
	fmt.Fprintf(&sb, "Safety&nbsp;:&nbsp;%.2f<br>Access&nbsp;:&nbsp;%.2f", b.Safety, b.Access)
	return sb.String()
}

// LeaseFeatures builds one point feature per record, in order.
func LeaseFeatures(records []lease.Record) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		icon := lease.IconFor(r.Access)
		f := geojson.NewFeature(orb.Point{r.Lon, r.Lat})
		f.Properties["kind"] = KindLease
		f.Properties["tooltip"] = html.EscapeString(r.Address)
		f.Properties["popup"] = LeasePopup(r)
		f.Properties["icon"] = icon.Icon
		f.Properties["icon_color"] = icon.Color
		f.Properties["company"] = r.Company
		f.Properties["industry"] = r.Industry
		f.Properties["leased_sf"] = r.SquareFeet
		f.Properties["safety_score"] = r.Safety
		f.Properties["accessibility_score"] = r.Access
		fc.Append(f)
	}
	return fc
}

// BuildingFeatures builds one circle feature per building, sized by category.
func BuildingFeatures(buildings []lease.Building) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, b := range buildings {
		cat := b.Category()
		f := geojson.NewFeature(orb.Point{b.Lon, b.Lat})
		f.Properties["kind"] = KindBuilding
		f.Properties["tooltip"] = html.EscapeString(b.Address)
		f.Properties["popup"] = BuildingPopup(b)
		f.Properties["category"] = cat.Name
		f.Properties["color"] = cat.Color
		f.Properties["radius"] = cat.Radius
		f.Properties["total_sf"] = b.TotalSF
		f.Properties["leases"] = b.Leases
		fc.Append(f)
	}
	return fc
}

// Extent returns the bounding box of the features, or false when empty.
func Extent(fc *geojson.FeatureCollection) (orb.Bound, bool) {
	if fc == nil || len(fc.Features) == 0 {
		return orb.Bound{}, false
	}
	b := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		b = b.Union(f.Geometry.Bound())
	}
	return b, true
}
