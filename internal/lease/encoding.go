package lease

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AccessIcon is the marker icon for one accessibility bucket.
type AccessIcon struct {
	Bucket int
	Icon   string // Font Awesome name
	Color  string
	Label  string
}

// AccessIcons is indexed by bucket: 0 is least accessible.
var AccessIcons = [5]AccessIcon{
	{0, "walk", "#d7191c", "0.00–0.20"},
	{1, "bicycle", "#fdae61", "0.21–0.40"},
	{2, "subway", "#ffffbf", "0.41–0.60"},
	{3, "train", "#abdda4", "0.61–0.80"},
	{4, "bus", "#2b83ba", "0.81–1.00"},
}

// AccessBucket maps a score in [0,1] to 0..4 as min(4, floor(score*5)).
func AccessBucket(score float64) int {
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	b := int(math.Floor(score * 5))
	if b > 4 {
		return 4
	}
	return b
}

// IconFor returns the accessibility icon for score.
func IconFor(score float64) AccessIcon {
	return AccessIcons[AccessBucket(score)]
}

// SizeCategory buckets a building by total leased square footage.
type SizeCategory struct {
	Name   string
	Below  float64 // exclusive upper bound; +Inf for the last category
	Color  string
	Radius int
}

// SizeCategories are ordered by ascending threshold.
var SizeCategories = []SizeCategory{
	{"small", 10_000, "#2b83ba", 5},
	{"medium", 50_000, "#abdda4", 8},
	{"large", 100_000, "#fdae61", 12},
	{"major", math.Inf(1), "#d7191c", 16},
}

// CategoryFor returns the size category for sf.
func CategoryFor(sf float64) SizeCategory {
	for _, c := range SizeCategories {
		if sf < c.Below {
			return c
		}
	}
	return SizeCategories[len(SizeCategories)-1]
}

var printer = message.NewPrinter(language.English)

// Thousands formats n with comma grouping, e.g. 12500 -> "12,500".
func Thousands(n int) string {
	return printer.Sprintf("%d", n)
}

// Summary is the "Showing N of M leases" line.
func Summary(shown, total int) string {
	return printer.Sprintf("Showing %d of %d leases", shown, total)
}
