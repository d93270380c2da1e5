package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/leasemap/internal/analysis"
	cfgpkg "github.com/KaramelBytes/leasemap/internal/config"
	"github.com/KaramelBytes/leasemap/internal/lease"
	"github.com/KaramelBytes/leasemap/internal/parser"
	"github.com/KaramelBytes/leasemap/internal/render"
)

// dataset is a loaded, prepared lease table ready for rendering.
type dataset struct {
	name    string
	result  *analysis.Result
	records []lease.Record
	bounds  lease.Bounds
}

// inputPath returns the positional file argument or the configured input.
func inputPath(args []string, c *cfgpkg.Global) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0]
	}
	return c.Input
}

// loadDataset reads path, normalizes it and derives the default filter bounds.
func loadDataset(path string, c *cfgpkg.Global, logger *slog.Logger) (*dataset, error) {
	popt, err := parserOptions(c)
	if err != nil {
		return nil, err
	}
	aopt, err := analysisOptions(c, logger)
	if err != nil {
		return nil, err
	}
	df, err := parser.LoadFile(path, popt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	res, err := analysis.Prepare(df, aopt)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", filepath.Base(path), err)
	}
	recs, err := lease.FromResult(res)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded leases", "file", path, "rows_read", res.RowsRead, "rows_retained", res.RowsRetained)
	return &dataset{
		name:    filepath.Base(path),
		result:  res,
		records: recs,
		bounds:  lease.DefaultBounds(recs, boundsOptions(c)),
	}, nil
}

func parserOptions(c *cfgpkg.Global) (parser.Options, error) {
	var opt parser.Options
	switch c.Delimiter {
	case "":
	case "tab", `\t`, "\t":
		opt.Delimiter = '\t'
	default:
		r := []rune(c.Delimiter)
		if len(r) != 1 {
			return opt, fmt.Errorf("unsupported delimiter: %q", c.Delimiter)
		}
		opt.Delimiter = r[0]
	}
	opt.SheetName = c.SheetName
	opt.SheetIndex = c.SheetIndex
	return opt, nil
}

func analysisOptions(c *cfgpkg.Global, logger *slog.Logger) (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	opt.Logger = logger
	opt.NeutralScore = c.NeutralScore

	var err error
	if opt.Number.DecimalSeparator, err = separator("decimal_separator", c.DecimalSeparator); err != nil {
		return opt, err
	}
	if opt.Number.ThousandsSeparator, err = separator("thousands_separator", c.ThousandsSeparator); err != nil {
		return opt, err
	}
	if opt.Number.DecimalSeparator != 0 && opt.Number.DecimalSeparator == opt.Number.ThousandsSeparator {
		return opt, fmt.Errorf("decimal and thousands separators must differ")
	}

	overrides := map[analysis.Role][]string{
		analysis.RoleSafety:        c.SafetyPatterns,
		analysis.RoleAccessibility: c.AccessibilityPatterns,
		analysis.RoleSquareFootage: c.SqftPatterns,
	}
	for role, pats := range overrides {
		if len(pats) > 0 {
			opt.Patterns[role] = pats
		}
	}
	return opt, nil
}

func separator(key, val string) (rune, error) {
	switch strings.ToLower(val) {
	case "":
		return 0, nil
	case "space":
		return ' ', nil
	case "comma":
		return ',', nil
	case "dot":
		return '.', nil
	}
	r := []rune(val)
	if len(r) != 1 {
		return 0, fmt.Errorf("unsupported %s: %q", key, val)
	}
	return r[0], nil
}

func boundsOptions(c *cfgpkg.Global) lease.BoundsOptions {
	opt := lease.DefaultBoundsOptions()
	if c.SFQuantile > 0 && c.SFQuantile <= 1 {
		opt.Quantile = c.SFQuantile
	}
	if c.SFStep > 0 {
		opt.SFStep = c.SFStep
	}
	if c.ScoreStep > 0 {
		opt.ScoreStep = c.ScoreStep
	}
	return opt
}

func renderOptions(c *cfgpkg.Global) render.Options {
	opt := render.DefaultOptions()
	if c.MapCenterLat != 0 || c.MapCenterLon != 0 {
		opt.CenterLat, opt.CenterLon = c.MapCenterLat, c.MapCenterLon
	}
	if c.MapZoom > 0 {
		opt.Zoom = c.MapZoom
	}
	if c.MapTiles != "" {
		opt.Tiles = c.MapTiles
	}
	return opt
}
