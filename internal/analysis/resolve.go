package analysis

import (
	"fmt"
	"regexp"
	"sort"
)

// Role names a semantic column whose exact header varies between source files.
type Role string

const (
	RoleLatitude      Role = "latitude"
	RoleLongitude     Role = "longitude"
	RoleSafety        Role = "safety"
	RoleAccessibility Role = "accessibility"
	RoleSquareFootage Role = "square_footage"
	RoleCompany       Role = "company"
	RoleIndustry      Role = "industry"
	RoleAddress       Role = "address"
)

// Roles lists every role in resolution order.
var Roles = []Role{
	RoleLatitude, RoleLongitude, RoleSafety, RoleAccessibility,
	RoleSquareFootage, RoleCompany, RoleIndustry, RoleAddress,
}

// Patterns holds the ordered regex lists tried for each role.
type Patterns map[Role][]string

// DefaultPatterns returns the pattern lists used for the Manhattan lease exports.
func DefaultPatterns() Patterns {
	return Patterns{
		RoleLatitude:  {`^lat(itude)?$`},
		RoleLongitude: {`^(lon|lng|long|longitude)$`},
		RoleSafety:    {`crime`, `risk`, `safety`},
		RoleAccessibility: {
			`(access|walk|transit).*score`,
			`accessibility`,
			`weighted_routes`,
		},
		RoleSquareFootage: {
			`(total_)?leased.*sf`, // total_leasedSF, leasedSF
			`\bsf$`,
			`sq.?ft`, // sqft, sq_ft, sq ft
			`sf`,
		},
		RoleCompany:  {`company`, `tenant`},
		RoleIndustry: {`industry`, `sector`},
		RoleAddress:  {`full_address`, `address`},
	}
}

// Resolver finds the first column matching an ordered list of case-insensitive patterns.
type Resolver struct {
	patterns []*regexp.Regexp
}

// NewResolver compiles patterns. Matching is always case-insensitive.
func NewResolver(patterns []string) (*Resolver, error) {
	r := &Resolver{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile column pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Resolve tries patterns in order and returns the first matching column. When
// several columns match the same pattern the smallest name wins, so the result
// does not depend on column order.
func (r *Resolver) Resolve(columns []string) (string, bool) {
	for _, re := range r.patterns {
		var hits []string
		for _, col := range columns {
			if re.MatchString(col) {
				hits = append(hits, col)
			}
		}
		if len(hits) == 0 {
			continue
		}
		sort.Strings(hits)
		return hits[0], true
	}
	return "", false
}

// FirstMatch is a one-shot Resolve.
func FirstMatch(columns []string, patterns []string) (string, bool, error) {
	r, err := NewResolver(patterns)
	if err != nil {
		return "", false, err
	}
	col, ok := r.Resolve(columns)
	return col, ok, nil
}
