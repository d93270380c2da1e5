package render

import (
	"fmt"
	"sort"
	"strings"
)

// TileLayer is a Leaflet base layer.
type TileLayer struct {
	Name        string
	URL         string
	Attribution string
	Subdomains  string
	MaxZoom     int
}

var tileLayers = map[string]TileLayer{
	"cartodbpositron": {
		Name:        "cartodbpositron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Subdomains:  "abcd",
		MaxZoom:     20,
	},
	"cartodbdark_matter": {
		Name:        "cartodbdark_matter",
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Subdomains:  "abcd",
		MaxZoom:     20,
	},
	"openstreetmap": {
		Name:        "openstreetmap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		Subdomains:  "abc",
		MaxZoom:     19,
	},
}

// LookupTiles returns the named tile layer, case-insensitively.
func LookupTiles(name string) (TileLayer, error) {
	t, ok := tileLayers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(tileLayers))
		for n := range tileLayers {
			names = append(names, n)
		}
		sort.Strings(names)
		return TileLayer{}, fmt.Errorf("unknown tile layer %q (available: %s)", name, strings.Join(names, ", "))
	}
	return t, nil
}
