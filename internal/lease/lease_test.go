package lease_test

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/leasemap/internal/analysis"
	"github.com/KaramelBytes/leasemap/internal/lease"
	"github.com/KaramelBytes/leasemap/internal/sample"
)

func TestAccessBucketBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  int
		icon  string
	}{
		{0, 0, "walk"},
		{0.199, 0, "walk"},
		{0.2, 1, "bicycle"},
		{0.4, 2, "subway"},
		{0.6, 3, "train"},
		{0.79, 3, "train"},
		{0.8, 4, "bus"},
		{1, 4, "bus"},
		{-0.1, 0, "walk"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lease.AccessBucket(tt.score), "score %v", tt.score)
		assert.Equal(t, tt.icon, lease.IconFor(tt.score).Icon, "score %v", tt.score)
	}
	assert.Equal(t, "#d7191c", lease.IconFor(0.1).Color)
	assert.Equal(t, "#2b83ba", lease.IconFor(0.95).Color)
}

func TestSizeCategoryThresholds(t *testing.T) {
	tests := []struct {
		sf     float64
		name   string
		radius int
	}{
		{0, "small", 5},
		{9_999, "small", 5},
		{10_000, "medium", 8},
		{49_999.5, "medium", 8},
		{50_000, "large", 12},
		{99_999, "large", 12},
		{100_000, "major", 16},
		{2_500_000, "major", 16},
	}
	for _, tt := range tests {
		c := lease.CategoryFor(tt.sf)
		assert.Equal(t, tt.name, c.Name, "sf %v", tt.sf)
		assert.Equal(t, tt.radius, c.Radius, "sf %v", tt.sf)
	}
}

func TestSummaryUsesThousandsSeparators(t *testing.T) {
	assert.Equal(t, "Showing 1,234 of 56,789 leases", lease.Summary(1234, 56789))
	assert.Equal(t, "12,500", lease.Thousands(12500))
}

func sampleRecords() []lease.Record {
	return []lease.Record{
		{Lat: 40.75, Lon: -73.98, SquareFeet: 1_000, Safety: 0.9, Access: 0.1, Address: "1 Main St", Company: "Acme", Industry: "Tech"},
		{Lat: 40.76, Lon: -73.97, SquareFeet: 20_000, Safety: 0.4, Access: 0.5, Address: "2 Broad St", Company: "Globex", Industry: "Finance"},
		{Lat: 40.75001, Lon: -73.98001, SquareFeet: 5_000, Safety: 0.7, Access: 0.3, Address: "  1   MAIN st ", Company: "Initech", Industry: "Tech"},
		{Lat: 40.77, Lon: -73.95, SquareFeet: 150_000, Safety: 0.2, Access: 0.9, Address: "", Company: "Umbrella", Industry: "Pharma"},
		{Lat: 40.770001, Lon: -73.950001, SquareFeet: 50_000, Safety: 0.6, Access: 0.7, Address: "", Company: "Umbrella", Industry: "Pharma"},
	}
}

func TestFilterApplySubsetInOrder(t *testing.T) {
	recs := sampleRecords()
	f := lease.Filter{
		SF:     lease.Range{Low: 1_000, High: 50_000},
		Safety: lease.Range{Low: 0.4, High: 1},
		Access: lease.Range{Low: 0, High: 1},
	}
	got := f.Apply(recs)
	require.Len(t, got, 4)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, "Globex", got[1].Company)
	assert.Equal(t, "Initech", got[2].Company)
	assert.Equal(t, 50_000.0, got[3].SquareFeet, "upper bound is inclusive")
	assert.LessOrEqual(t, len(got), len(recs))
}

func TestDefaultBoundsAndClamp(t *testing.T) {
	recs := sampleRecords()
	b := lease.DefaultBounds(recs, lease.DefaultBoundsOptions())
	assert.Equal(t, lease.Range{Low: 1_000, High: 150_000}, b.SF)
	// sorted SF: 1000, 5000, 20000, 50000, 150000; q99 = 50000 + 0.96*100000
	assert.Equal(t, 146_000.0, b.SFDefault)
	assert.Equal(t, 500.0, b.SFStep)
	assert.Equal(t, lease.Range{Low: 0, High: 1}, b.Score)

	all := b.Filter().Apply(recs)
	assert.Len(t, all, 4, "the top percentile is outside the default range")

	c := b.Clamp(lease.Filter{
		SF:     lease.Range{Low: -5, High: 1e9},
		Safety: lease.Range{Low: 0.8, High: 0.2},
		Access: lease.Range{Low: 2, High: 3},
	})
	assert.Equal(t, b.SF, c.SF)
	assert.Equal(t, lease.Range{Low: 0.2, High: 0.8}, c.Safety)
	assert.Equal(t, lease.Range{Low: 1, High: 1}, c.Access)
	wide := b.Clamp(lease.Filter{SF: lease.Range{Low: 0, High: 1e9}, Safety: b.Score, Access: b.Score})
	assert.Len(t, wide.Apply(recs), len(recs), "widening the slider reaches the largest lease")
}

// Browsers refuse to submit a range value that is off the step grid.
func TestDefaultBoundsStayOnStepGrid(t *testing.T) {
	rows := sample.Generate(sample.DefaultOptions())
	nf := analysis.USNumberFormat()
	recs := make([]lease.Record, 0, len(rows)-1)
	for _, r := range rows[1:] {
		sf, ok := analysis.ParseNumeric(r[5], nf)
		require.True(t, ok)
		recs = append(recs, lease.Record{SquareFeet: sf})
	}
	for _, opt := range []lease.BoundsOptions{
		lease.DefaultBoundsOptions(),
		{Quantile: 0.9, SFStep: 250, ScoreStep: 0.05},
		{Quantile: 0.5, SFStep: 1000, ScoreStep: 0.1},
	} {
		b := lease.DefaultBounds(recs, opt)
		for name, v := range map[string]float64{"max": b.SF.High, "default": b.SFDefault} {
			steps := (v - b.SF.Low) / b.SFStep
			assert.Equal(t, math.Trunc(steps), steps, "%s %v is off the %v grid from %v", name, v, b.SFStep, b.SF.Low)
		}
		assert.LessOrEqual(t, b.SFDefault, b.SF.High)
		assert.GreaterOrEqual(t, b.SFDefault, math.Floor(analysis.Quantile(sfValues(recs), opt.Quantile)))
	}
}

func sfValues(recs []lease.Record) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.SquareFeet
	}
	return out
}

func TestAggregateBuildings(t *testing.T) {
	bs := lease.Aggregate(sampleRecords())
	require.Len(t, bs, 3)

	first := bs[0]
	assert.Equal(t, "1 Main St", first.Address)
	assert.Equal(t, 2, first.Leases)
	assert.Equal(t, 6_000.0, first.TotalSF)
	assert.Equal(t, []string{"Acme", "Initech"}, first.Companies)
	assert.Equal(t, []string{"Tech"}, first.Sectors)
	assert.Equal(t, 40.75, first.Lat)
	assert.InDelta(t, 0.8, first.Safety, 1e-9)
	assert.InDelta(t, 0.2, first.Access, 1e-9)
	assert.Equal(t, "small", first.Category().Name)

	assert.Equal(t, "medium", bs[1].Category().Name)

	geo := bs[2]
	assert.Equal(t, "No address", geo.DisplayAddress())
	assert.Equal(t, 2, geo.Leases)
	assert.Equal(t, []string{"Umbrella"}, geo.Companies)
	assert.Equal(t, "major", geo.Category().Name)
}

func TestBuildingKeyNormalizesWidthAndCase(t *testing.T) {
	a := lease.BuildingKey(lease.Record{Address: "ＡＢＣ Tower"})
	b := lease.BuildingKey(lease.Record{Address: "abc   tower"})
	assert.Equal(t, a, b)
}

func TestFromResult(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"lat", "lon", "leasedSF", "crime", "company", "full_address"},
		{"40.75", "-73.98", "1,000", "10", "Acme", " 1 Main St "},
		{"40.76", "-73.97", "3,000", "30", "", ""},
	}, dataframe.DetectTypes(false), dataframe.DefaultType(series.String), dataframe.HasHeader(true))
	require.NoError(t, df.Err)

	opt := analysis.DefaultOptions()
	opt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	res, err := analysis.Prepare(df, opt)
	require.NoError(t, err)

	recs, err := lease.FromResult(res)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1 Main St", recs[0].Address)
	assert.Equal(t, "Acme", recs[0].Company)
	assert.Equal(t, "", recs[0].Industry)
	assert.Equal(t, 1.0, recs[0].Safety)
	assert.Equal(t, 0.0, recs[1].Safety)
	assert.Equal(t, 0.5, recs[1].Access)
	assert.Equal(t, 3_000.0, recs[1].SquareFeet)
	assert.Equal(t, "No address", recs[1].DisplayAddress())
}
