package lease

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/KaramelBytes/leasemap/internal/analysis"
)

// Record is one lease row after normalization.
type Record struct {
	Lat        float64
	Lon        float64
	SquareFeet float64
	Company    string
	Industry   string
	Address    string
	Safety     float64
	Access     float64
}

// DisplayAddress returns the address or a placeholder when it is blank.
func (r Record) DisplayAddress() string {
	if r.Address == "" {
		return "No address"
	}
	return r.Address
}

// FromResult converts a prepared table into typed records, preserving row order.
func FromResult(res *analysis.Result) ([]Record, error) {
	if res == nil {
		return nil, fmt.Errorf("nil result")
	}
	df := res.Frame
	lat, err := floatCol(df, analysis.LatitudeColumn)
	if err != nil {
		return nil, err
	}
	lon, err := floatCol(df, analysis.LongitudeColumn)
	if err != nil {
		return nil, err
	}
	sf, err := floatCol(df, analysis.SquareFootageColumn)
	if err != nil {
		return nil, err
	}
	safety, err := floatCol(df, analysis.SafetyColumn)
	if err != nil {
		return nil, err
	}
	access, err := floatCol(df, analysis.AccessibilityColumn)
	if err != nil {
		return nil, err
	}
	company := textCol(df, res, analysis.RoleCompany)
	industry := textCol(df, res, analysis.RoleIndustry)
	address := textCol(df, res, analysis.RoleAddress)

	out := make([]Record, df.Nrow())
	for i := range out {
		out[i] = Record{
			Lat:        lat[i],
			Lon:        lon[i],
			SquareFeet: sf[i],
			Company:    company[i],
			Industry:   industry[i],
			Address:    address[i],
			Safety:     safety[i],
			Access:     access[i],
		}
	}
	return out, nil
}

func floatCol(df dataframe.DataFrame, name string) ([]float64, error) {
	s := df.Col(name)
	if s.Err != nil {
		return nil, fmt.Errorf("column %s: %w", name, s.Err)
	}
	return s.Float(), nil
}

// textCol returns the trimmed cells of the column resolved for role, or blanks.
func textCol(df dataframe.DataFrame, res *analysis.Result, role analysis.Role) []string {
	out := make([]string, df.Nrow())
	name, ok := res.Column(role)
	if !ok {
		return out
	}
	s := df.Col(name)
	if s.Err != nil {
		return out
	}
	for i, v := range s.Records() {
		v = strings.TrimSpace(v)
		if v == "NaN" {
			v = ""
		}
		out[i] = v
	}
	return out
}
