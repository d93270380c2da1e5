package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Canonical column names written into the prepared frame.
const (
	LatitudeColumn      = "latitude"
	LongitudeColumn     = "longitude"
	SafetyColumn        = "safety_score"
	AccessibilityColumn = "accessibility_score"
	SquareFootageColumn = "leasedSF"
)

var (
	// ErrNoCoordinates means the table has no recognizable latitude/longitude columns.
	ErrNoCoordinates = errors.New("could not detect latitude/longitude columns")
	// ErrNoRows means no row survived the coordinate check.
	ErrNoRows = errors.New("no rows with valid coordinates")
	// ErrNoSquareFootage means the table has no usable square-footage column.
	ErrNoSquareFootage = errors.New("could not detect a square-footage column; rename the column or add another pattern")
	// ErrNeutralScore means the neutral fallback score lies outside [0,1].
	ErrNeutralScore = errors.New("neutral score must lie in [0,1]")
)

// Options controls how a lease table is prepared.
type Options struct {
	Patterns     Patterns
	Number       NumberFormat
	NeutralScore float64
	Logger       *slog.Logger
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		Patterns:     DefaultPatterns(),
		Number:       USNumberFormat(),
		NeutralScore: 0.5,
		Logger:       slog.Default(),
	}
}

// ColumnReport describes how one derived column was produced.
type ColumnReport struct {
	Source   string // resolved source column, empty when a neutral default was used
	Neutral  bool
	Filled   int
	Rescaled bool
	Result   Stats
}

// Result is a prepared table: coordinates validated, scores and square footage normalized.
type Result struct {
	Frame        dataframe.DataFrame
	RowsRead     int
	RowsRetained int
	Columns      map[Role]string
	Safety       ColumnReport
	Access       ColumnReport
	SquareFeet   ColumnReport
	Warnings     []string
}

// Column returns the resolved source column for role, if any.
func (r *Result) Column(role Role) (string, bool) {
	c, ok := r.Columns[role]
	return c, ok
}

// Prepare drops rows without valid coordinates, resolves the semantic columns and
// appends safety_score, accessibility_score and leasedSF as float columns.
func Prepare(df dataframe.DataFrame, opt Options) (*Result, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("load table: %w", df.Err)
	}
	if math.IsNaN(opt.NeutralScore) || opt.NeutralScore < 0 || opt.NeutralScore > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrNeutralScore, opt.NeutralScore)
	}
	if opt.Patterns == nil {
		opt.Patterns = DefaultPatterns()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	res := &Result{RowsRead: df.Nrow(), Columns: map[Role]string{}}

	names := df.Names()
	for _, role := range Roles {
		col, ok, err := FirstMatch(names, opt.Patterns[role])
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", role, err)
		}
		if ok {
			res.Columns[role] = col
		}
	}

	df, err := dropMissingCoordinates(df, res)
	if err != nil {
		return nil, err
	}
	res.RowsRetained = df.Nrow()

	df, err = prepareSafety(df, res, opt)
	if err != nil {
		return nil, err
	}
	df, err = prepareAccessibility(df, res, opt)
	if err != nil {
		return nil, err
	}
	df, err = prepareSquareFootage(df, res, opt)
	if err != nil {
		return nil, err
	}
	res.Frame = df
	return res, nil
}

func dropMissingCoordinates(df dataframe.DataFrame, res *Result) (dataframe.DataFrame, error) {
	latCol, okLat := res.Columns[RoleLatitude]
	lonCol, okLon := res.Columns[RoleLongitude]
	if !okLat || !okLon {
		return df, ErrNoCoordinates
	}
	// Coordinates always use a '.' decimal.
	nf := NumberFormat{DecimalSeparator: '.', ThousandsSeparator: ','}
	lats := Coerce(df.Col(latCol).Records(), nf)
	lons := Coerce(df.Col(lonCol).Records(), nf)
	keep := make([]int, 0, len(lats))
	for i := range lats {
		if validCoordinate(lats[i], lons[i]) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return df, ErrNoRows
	}
	if len(keep) < len(lats) {
		df = df.Subset(keep)
		if df.Err != nil {
			return df, fmt.Errorf("drop rows without coordinates: %w", df.Err)
		}
		lats = pick(lats, keep)
		lons = pick(lons, keep)
	}
	df = df.Mutate(series.New(lats, series.Float, LatitudeColumn))
	df = df.Mutate(series.New(lons, series.Float, LongitudeColumn))
	if df.Err != nil {
		return df, fmt.Errorf("write coordinates: %w", df.Err)
	}
	return df, nil
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func pick(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

func prepareSafety(df dataframe.DataFrame, res *Result, opt Options) (dataframe.DataFrame, error) {
	n := df.Nrow()
	src, ok := res.Columns[RoleSafety]
	if !ok {
		res.warn(opt.Logger, "No crime/safety column found; assigning neutral scores.", "score", SafetyColumn, "neutral", opt.NeutralScore)
		res.Safety = ColumnReport{Neutral: true, Result: Summarize(Constant(n, opt.NeutralScore))}
		return mutate(df, SafetyColumn, Constant(n, opt.NeutralScore))
	}
	norm, err := NormalizeScore(df.Col(src).Records(), opt.Number, opt.NeutralScore)
	if errors.Is(err, ErrNoNumericValues) {
		res.warn(opt.Logger, fmt.Sprintf("Column %q has no numeric values; assigning neutral scores.", src), "score", SafetyColumn, "column", src)
		res.Safety = ColumnReport{Source: src, Neutral: true, Result: Summarize(Constant(n, opt.NeutralScore))}
		return mutate(df, SafetyColumn, Constant(n, opt.NeutralScore))
	}
	if err != nil {
		return df, fmt.Errorf("normalize %s: %w", src, err)
	}
	safety := Complement(norm.Values)
	res.Safety = ColumnReport{Source: src, Filled: norm.Filled, Rescaled: norm.Rescaled, Result: Summarize(safety)}
	df, err = mutate(df, src, norm.Values)
	if err != nil {
		return df, err
	}
	return mutate(df, SafetyColumn, safety)
}

func prepareAccessibility(df dataframe.DataFrame, res *Result, opt Options) (dataframe.DataFrame, error) {
	n := df.Nrow()
	src, ok := res.Columns[RoleAccessibility]
	if !ok {
		res.warn(opt.Logger, "No accessibility column found; assigning neutral scores.", "score", AccessibilityColumn, "neutral", opt.NeutralScore)
		res.Access = ColumnReport{Neutral: true, Result: Summarize(Constant(n, opt.NeutralScore))}
		return mutate(df, AccessibilityColumn, Constant(n, opt.NeutralScore))
	}
	norm, err := NormalizeScore(df.Col(src).Records(), opt.Number, opt.NeutralScore)
	if errors.Is(err, ErrNoNumericValues) {
		res.warn(opt.Logger, fmt.Sprintf("Column %q has no numeric values; assigning neutral scores.", src), "score", AccessibilityColumn, "column", src)
		res.Access = ColumnReport{Source: src, Neutral: true, Result: Summarize(Constant(n, opt.NeutralScore))}
		return replace(df, src, AccessibilityColumn, Constant(n, opt.NeutralScore))
	}
	if err != nil {
		return df, fmt.Errorf("normalize %s: %w", src, err)
	}
	res.Access = ColumnReport{Source: src, Filled: norm.Filled, Rescaled: norm.Rescaled, Result: Summarize(norm.Values)}
	return replace(df, src, AccessibilityColumn, norm.Values)
}

func prepareSquareFootage(df dataframe.DataFrame, res *Result, opt Options) (dataframe.DataFrame, error) {
	src, ok := res.Columns[RoleSquareFootage]
	if !ok {
		return df, ErrNoSquareFootage
	}
	norm, err := NormalizeQuantity(df.Col(src).Records(), opt.Number)
	if err != nil {
		return df, fmt.Errorf("%w: column %q: %v", ErrNoSquareFootage, src, err)
	}
	res.SquareFeet = ColumnReport{Source: src, Filled: norm.Filled, Result: Summarize(norm.Values)}
	return replace(df, src, SquareFootageColumn, norm.Values)
}

func (r *Result) warn(logger *slog.Logger, msg string, args ...any) {
	r.Warnings = append(r.Warnings, msg)
	logger.Warn(msg, args...)
}

func mutate(df dataframe.DataFrame, name string, vals []float64) (dataframe.DataFrame, error) {
	df = df.Mutate(series.New(vals, series.Float, name))
	if df.Err != nil {
		return df, fmt.Errorf("write column %s: %w", name, df.Err)
	}
	return df, nil
}

// replace writes vals under name and drops the source column when it differs.
func replace(df dataframe.DataFrame, src, name string, vals []float64) (dataframe.DataFrame, error) {
	df, err := mutate(df, name, vals)
	if err != nil || src == name {
		return df, err
	}
	df = df.Drop(src)
	if df.Err != nil {
		return df, fmt.Errorf("drop column %s: %w", src, df.Err)
	}
	return df, nil
}
