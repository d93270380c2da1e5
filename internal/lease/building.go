package lease

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Building aggregates every lease sharing one address.
type Building struct {
	Key       string
	Address   string
	Lat       float64
	Lon       float64
	TotalSF   float64
	Leases    int
	Companies []string
	Sectors   []string
	Safety    float64 // mean over leases
	Access    float64 // mean over leases
}

// Category is the size category of the building's total leased SF.
func (b Building) Category() SizeCategory {
	return CategoryFor(b.TotalSF)
}

// DisplayAddress returns the address or a placeholder when it is blank.
func (b Building) DisplayAddress() string {
	if b.Address == "" {
		return "No address"
	}
	return b.Address
}

// BuildingKey groups leases: NFKC-normalized, case-folded address with collapsed
// whitespace, or the coordinates rounded to 5 decimals when the address is blank.
func BuildingKey(r Record) string {
	addr := strings.Join(strings.Fields(norm.NFKC.String(r.Address)), " ")
	if addr != "" {
		return "addr:" + cases.Fold().String(addr)
	}
	return "geo:" + strconv.FormatFloat(round5(r.Lat), 'f', 5, 64) + "," + strconv.FormatFloat(round5(r.Lon), 'f', 5, 64)
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// Aggregate groups records into buildings in first-seen order. The first lease
// of a group supplies its address spelling and coordinate.
func Aggregate(records []Record) []Building {
	index := map[string]int{}
	var out []Building
	companies := map[string]map[string]bool{}
	sectors := map[string]map[string]bool{}
	for _, r := range records {
		key := BuildingKey(r)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Building{Key: key, Address: strings.TrimSpace(r.Address), Lat: r.Lat, Lon: r.Lon})
			companies[key] = map[string]bool{}
			sectors[key] = map[string]bool{}
		}
		b := &out[i]
		b.Leases++
		b.TotalSF += r.SquareFeet
		b.Safety += r.Safety
		b.Access += r.Access
		if r.Company != "" && !companies[key][r.Company] {
			companies[key][r.Company] = true
			b.Companies = append(b.Companies, r.Company)
		}
		if r.Industry != "" && !sectors[key][r.Industry] {
			sectors[key][r.Industry] = true
			b.Sectors = append(b.Sectors, r.Industry)
		}
	}
	for i := range out {
		n := float64(out[i].Leases)
		out[i].Safety /= n
		out[i].Access /= n
	}
	return out
}
