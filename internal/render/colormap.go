package render

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
)

// namedColors covers the CSS names the legends use.
var namedColors = map[string]string{
	"red":        "#ff0000",
	"orange":     "#ffa500",
	"yellow":     "#ffff00",
	"lightgreen": "#90ee90",
	"green":      "#008000",
	"white":      "#ffffff",
	"black":      "#000000",
}

// LinearColormap maps [VMin, VMax] onto evenly spaced color stops.
type LinearColormap struct {
	Colors  []string
	VMin    float64
	VMax    float64
	Caption string
	rgb     [][3]float64
}

// NewLinearColormap resolves CSS names or #rrggbb colors into a colormap.
func NewLinearColormap(colors []string, vmin, vmax float64, caption string) (*LinearColormap, error) {
	if len(colors) < 2 {
		return nil, fmt.Errorf("colormap needs at least two colors, got %d", len(colors))
	}
	if !(vmax > vmin) {
		return nil, fmt.Errorf("colormap range [%v, %v] is empty", vmin, vmax)
	}
	cm := &LinearColormap{VMin: vmin, VMax: vmax, Caption: caption}
	for _, c := range colors {
		hex, rgb, err := parseColor(c)
		if err != nil {
			return nil, err
		}
		cm.Colors = append(cm.Colors, hex)
		cm.rgb = append(cm.rgb, rgb)
	}
	return cm, nil
}

// SafetyColormap is the red-to-green scale used on the lease map.
func SafetyColormap() *LinearColormap {
	cm, err := NewLinearColormap(
		[]string{"red", "orange", "yellow", "lightgreen", "green"},
		0, 1,
		"Safety Score (red = riskier → green = safer)",
	)
	if err != nil {
		panic(err)
	}
	return cm
}

// At returns the interpolated #rrggbb color for v, clamped to the range.
func (c *LinearColormap) At(v float64) string {
	if math.IsNaN(v) {
		v = c.VMin
	}
	t := (v - c.VMin) / (c.VMax - c.VMin)
	t = math.Min(math.Max(t, 0), 1)
	pos := t * float64(len(c.rgb)-1)
	i := int(math.Floor(pos))
	if i >= len(c.rgb)-1 {
		return c.Colors[len(c.Colors)-1]
	}
	w := pos - float64(i)
	a, b := c.rgb[i], c.rgb[i+1]
	var out [3]float64
	for k := range out {
		out[k] = a[k] + (b[k]-a[k])*w
	}
	return toHex(out)
}

// Gradient is the CSS linear-gradient for a horizontal legend bar.
func (c *LinearColormap) Gradient() template.CSS {
	return template.CSS("linear-gradient(to right, " + strings.Join(c.Colors, ", ") + ")")
}

// Tick is one labelled legend position.
type Tick struct {
	Value float64
	Label string
	Color string
}

// Ticks returns n evenly spaced labelled positions, endpoints included.
func (c *LinearColormap) Ticks(n int) []Tick {
	if n < 2 {
		n = 2
	}
	out := make([]Tick, n)
	for i := range out {
		v := c.VMin + (c.VMax-c.VMin)*float64(i)/float64(n-1)
		out[i] = Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64), Color: c.At(v)}
	}
	return out
}

func parseColor(s string) (string, [3]float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if len(s) != 7 || s[0] != '#' {
		return "", [3]float64{}, fmt.Errorf("unsupported color %q", s)
	}
	var rgb [3]float64
	for k := 0; k < 3; k++ {
		n, err := strconv.ParseUint(s[1+2*k:3+2*k], 16, 8)
		if err != nil {
			return "", [3]float64{}, fmt.Errorf("unsupported color %q: %w", s, err)
		}
		rgb[k] = float64(n)
	}
	return s, rgb, nil
}

func toHex(rgb [3]float64) string {
	return fmt.Sprintf("#%02x%02x%02x", int(math.Round(rgb[0])), int(math.Round(rgb[1])), int(math.Round(rgb[2])))
}
