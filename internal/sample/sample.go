package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/jaswdr/faker"

	"github.com/KaramelBytes/leasemap/internal/lease"
)

// Header is the column layout of generated files.
var Header = []string{
	"company", "industry", "full_address", "latitude", "longitude",
	"total_leasedSF", "crime_rate", "transit_score",
}

// Industries are the sectors assigned to generated tenants.
var Industries = []string{
	"Technology", "Financial Services", "Legal", "Healthcare", "Media",
	"Retail", "Real Estate", "Consulting", "Education", "Nonprofit",
}

// Manhattan bounding box used for coordinates.
const (
	minLat = 40.700
	maxLat = 40.800
	minLon = -74.020
	maxLon = -73.930
)

// Options controls generation.
type Options struct {
	Rows int
	Seed int64
	// BlankPercent is the share of crime_rate cells left empty.
	BlankPercent int
	// LeasesPerBuilding is the average number of leases sharing an address.
	LeasesPerBuilding int
}

// DefaultOptions generates 500 leases.
func DefaultOptions() Options {
	return Options{Rows: 500, Seed: 1, BlankPercent: 3, LeasesPerBuilding: 4}
}

type building struct {
	address  string
	lat, lon float64
	crime    float64
	transit  int
}

// Generate returns the header followed by opt.Rows lease rows. The same seed
// always yields the same rows.
func Generate(opt Options) [][]string {
	if opt.Rows < 0 {
		opt.Rows = 0
	}
	if opt.LeasesPerBuilding < 1 {
		opt.LeasesPerBuilding = 1
	}
	fake := faker.NewWithSeed(rand.NewSource(opt.Seed))

	nb := opt.Rows/opt.LeasesPerBuilding + 1
	pool := make([]building, nb)
	for i := range pool {
		addr := fake.Address()
		pool[i] = building{
			address: fmt.Sprintf("%s %s, New York, NY", addr.BuildingNumber(), addr.StreetName()),
			lat:     minLat + (maxLat-minLat)*float64(fake.IntBetween(0, 100_000))/100_000,
			lon:     minLon + (maxLon-minLon)*float64(fake.IntBetween(0, 100_000))/100_000,
			crime:   fake.Float64(1, 0, 100),
			transit: fake.IntBetween(0, 100),
		}
	}

	out := make([][]string, 0, opt.Rows+1)
	out = append(out, append([]string(nil), Header...))
	for i := 0; i < opt.Rows; i++ {
		b := pool[fake.IntBetween(0, nb-1)]
		crime := strconv.FormatFloat(b.crime, 'f', 1, 64)
		if fake.IntBetween(1, 100) <= opt.BlankPercent {
			crime = ""
		}
		out = append(out, []string{
			fake.Company().Name(),
			Industries[fake.IntBetween(0, len(Industries)-1)],
			b.address,
			strconv.FormatFloat(b.lat, 'f', 6, 64),
			strconv.FormatFloat(b.lon, 'f', 6, 64),
			lease.Thousands(leasedSF(fake)),
			crime,
			strconv.Itoa(b.transit),
		})
	}
	return out
}

// leasedSF is mostly small and mid-size space with an occasional large floor plate.
func leasedSF(fake faker.Faker) int {
	switch p := fake.IntBetween(1, 100); {
	case p <= 60:
		return fake.IntBetween(1, 20) * 500
	case p <= 92:
		return fake.IntBetween(20, 120) * 500
	default:
		return fake.IntBetween(120, 600) * 500
	}
}

// Write generates rows and writes them as CSV.
func Write(w io.Writer, opt Options) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Generate(opt)); err != nil {
		return fmt.Errorf("write sample csv: %w", err)
	}
	return nil
}
