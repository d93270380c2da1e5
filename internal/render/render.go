package render

import (
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"

	"github.com/KaramelBytes/leasemap/internal/lease"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"thousands": func(v float64) string { return lease.Thousands(int(v)) },
	"field":     newRangeField,
}).ParseFS(templateFS, "templates/*.html.tmpl"))

// Options controls map framing.
type Options struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
	Tiles     string
	Height    string // CSS height of the map element
}

// DefaultOptions frames Midtown Manhattan.
func DefaultOptions() Options {
	return Options{CenterLat: 40.75, CenterLon: -73.97, Zoom: 12, Tiles: "cartodbpositron", Height: "600px"}
}

// Renderer writes self-contained Leaflet pages.
type Renderer struct {
	opt      Options
	tiles    TileLayer
	clock    clockwork.Clock
	colormap *LinearColormap
	newID    func() string
}

// New validates opt. A nil clock means the real clock.
func New(opt Options, clock clockwork.Clock) (*Renderer, error) {
	tiles, err := LookupTiles(opt.Tiles)
	if err != nil {
		return nil, err
	}
	if opt.Zoom <= 0 {
		opt.Zoom = DefaultOptions().Zoom
	}
	if opt.Height == "" {
		opt.Height = DefaultOptions().Height
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Renderer{opt: opt, tiles: tiles, clock: clock, colormap: SafetyColormap(), newID: mapID}, nil
}

// mapID returns "map_" followed by a random UUID in hex.
func mapID() string {
	u := uuid.New()
	return "map_" + hex.EncodeToString(u[:])
}

// mapView is the data every map template receives.
type mapView struct {
	ID        string
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Height    template.CSS
	Tiles     TileLayer
	Features  *geojson.FeatureCollection
	Count     int
	Colormap  *LinearColormap
	Sizes     []lease.SizeCategory
	Icons     []lease.AccessIcon
	Generated string
}

func (r *Renderer) view(title string, fc *geojson.FeatureCollection) mapView {
	return mapView{
		ID:        r.newID(),
		Title:     title,
		CenterLat: r.opt.CenterLat,
		CenterLon: r.opt.CenterLon,
		Zoom:      r.opt.Zoom,
		Height:    template.CSS(r.opt.Height),
		Tiles:     r.tiles,
		Features:  fc,
		Count:     len(fc.Features),
		Generated: r.clock.Now().UTC().Format(time.RFC3339),
	}
}

// LeaseMap writes the lease page: one accessibility icon per lease, clustered,
// with the safety colorbar.
func (r *Renderer) LeaseMap(w io.Writer, records []lease.Record) error {
	v := r.view("Manhattan Leases", LeaseFeatures(records))
	v.Colormap = r.colormap
	v.Icons = lease.AccessIcons[:]
	return execute(w, "map_page", v)
}

// BuildingMap writes the building page: one circle per building sized by total SF.
func (r *Renderer) BuildingMap(w io.Writer, buildings []lease.Building) error {
	v := r.view("Manhattan Buildings by Leased SF", BuildingFeatures(buildings))
	v.Sizes = lease.SizeCategories
	return execute(w, "map_page", v)
}

// ExplorerView is the state of the interactive explorer page.
type ExplorerView struct {
	Records []lease.Record // already filtered
	Total   int
	Filter  lease.Filter
	Bounds  lease.Bounds
}

type explorerPage struct {
	mapView
	Summary string
	Filter  lease.Filter
	Bounds  lease.Bounds
}

// Explorer writes the explorer page: sidebar range controls plus the lease map.
func (r *Renderer) Explorer(w io.Writer, ev ExplorerView) error {
	v := r.view("Manhattan Leases Explorer", LeaseFeatures(ev.Records))
	v.Colormap = r.colormap
	v.Icons = lease.AccessIcons[:]
	return execute(w, "explorer_page", explorerPage{
		mapView: v,
		Summary: lease.Summary(len(ev.Records), ev.Total),
		Filter:  ev.Filter,
		Bounds:  ev.Bounds,
	})
}

// rangeField is one low/high pair of sidebar inputs.
type rangeField struct {
	Label    string
	LowName  string
	HighName string
	Min      string
	Max      string
	Step     string
	Low      string
	High     string
}

func newRangeField(label, lowName, highName string, limits lease.Range, step float64, cur lease.Range) rangeField {
	return rangeField{
		Label:    label,
		LowName:  lowName,
		HighName: highName,
		Min:      formatNumber(limits.Low),
		Max:      formatNumber(limits.High),
		Step:     formatNumber(step),
		Low:      formatNumber(cur.Low),
		High:     formatNumber(cur.High),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func execute(w io.Writer, name string, data any) error {
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
