package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dashboard"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

// Panel names as used in chart URLs
const (
	PanelDaily      = "daily"
	PanelShare      = "share"
	PanelCumulative = "cumulative"
	PanelDeathRate  = "deathrate"
	PanelDashboard  = "dashboard"
)

// Output formats
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Panel size bounds in pixels
const (
	DefaultPanelWidth  = 640
	DefaultPanelHeight = 420
	MinPanelSize       = 200
	MaxPanelSize       = 2000
	WebPQuality        = 85
)

var (
	ErrUnknownPanel  = errors.New("unknown chart panel")
	ErrUnknownFormat = errors.New("unknown image format")
)

// Options sets the size of a single panel; the dashboard composite is two panels wide and high.
type Options struct {
	Width  int
	Height int
}

func (o Options) normalize() Options {
	clamp := func(v, def int) int {
		if v == 0 {
			return def
		}
		return max(MinPanelSize, min(MaxPanelSize, v))
	}
	return Options{Width: clamp(o.Width, DefaultPanelWidth), Height: clamp(o.Height, DefaultPanelHeight)}
}

// ValidPanel reports whether name is a renderable panel, including the composite.
func ValidPanel(name string) bool {
	switch name {
	case PanelDaily, PanelShare, PanelCumulative, PanelDeathRate, PanelDashboard:
		return true
	}
	return false
}

// ContentType returns the MIME type of an output format.
func ContentType(format string) (string, error) {
	switch format {
	case FormatPNG:
		return "image/png", nil
	case FormatWebP:
		return "image/webp", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// Render draws the named panel (or the dashboard composite) and writes it in format.
func Render(w io.Writer, fig dashboard.Figure, panel, format string, opts Options) error {
	if _, err := ContentType(format); err != nil {
		return err
	}

	var (
		img image.Image
		err error
	)
	if panel == PanelDashboard {
		img, err = Compose(fig, opts)
	} else {
		img, err = PanelImage(fig, panel, opts)
	}
	if err != nil {
		return err
	}
	return Encode(w, img, format)
}

// PanelImage renders one panel. A panel without data yields a blank canvas.
func PanelImage(fig dashboard.Figure, panel string, opts Options) (image.Image, error) {
	opts = opts.normalize()

	var (
		buf   bytes.Buffer
		drawn bool
		err   error
	)
	switch panel {
	case PanelDaily:
		drawn, err = renderTimeSeries(&buf, fig.Daily, opts)
	case PanelCumulative:
		drawn, err = renderTimeSeries(&buf, fig.Cumulative, opts)
	case PanelShare:
		drawn, err = renderPie(&buf, fig.Share, opts)
	case PanelDeathRate:
		drawn, err = renderBar(&buf, fig.DeathRate, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPanel, panel)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s panel: %w", panel, err)
	}
	if !drawn {
		return blank(opts), nil
	}

	img, err := imaging.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decoding %s panel: %w", panel, err)
	}
	return img, nil
}

// Compose lays out the four panels in the 2x2 grid of the dashboard:
// daily | share on top, cumulative | death rate below.
func Compose(fig dashboard.Figure, opts Options) (image.Image, error) {
	opts = opts.normalize()
	canvas := imaging.New(opts.Width*2, opts.Height*2, color.White)

	layout := []struct {
		panel string
		at    image.Point
	}{
		{PanelDaily, image.Pt(0, 0)},
		{PanelShare, image.Pt(opts.Width, 0)},
		{PanelCumulative, image.Pt(0, opts.Height)},
		{PanelDeathRate, image.Pt(opts.Width, opts.Height)},
	}
	for _, cell := range layout {
		img, err := PanelImage(fig, cell.panel, opts)
		if err != nil {
			return nil, err
		}
		canvas = imaging.Paste(canvas, img, cell.at)
	}
	return canvas, nil
}

// Encode writes img as PNG or lossy WebP.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case FormatWebP:
		options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, WebPQuality)
		if err != nil {
			return fmt.Errorf("error creating encoder options: %w", err)
		}
		if err := webp.Encode(w, img, options); err != nil {
			return fmt.Errorf("error encoding WebP image: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

func blank(opts Options) image.Image {
	return imaging.New(opts.Width, opts.Height, color.White)
}

func renderTimeSeries(w io.Writer, p dashboard.TimeSeriesPanel, opts Options) (bool, error) {
	var (
		series           []chart.Series
		minT, maxT       time.Time
		minY, maxY       = math.Inf(1), math.Inf(-1)
		showLegend, seen bool
	)
	for _, tr := range p.Traces {
		ts := chart.TimeSeries{
			Name: tr.Name,
			Style: chart.Style{
				StrokeColor: parseColor(tr.Color),
				StrokeWidth: 2,
			},
		}
		for i, y := range tr.Y {
			// undefined values (unfilled moving-average window) are not plotted
			if y == nil || i >= len(tr.X) {
				continue
			}
			x, err := dataset.ParseDate(tr.X[i])
			if err != nil {
				return false, err
			}
			ts.XValues = append(ts.XValues, x)
			ts.YValues = append(ts.YValues, *y)

			if !seen || x.Before(minT) {
				minT = x
			}
			if !seen || x.After(maxT) {
				maxT = x
			}
			seen = true
			minY = math.Min(minY, *y)
			maxY = math.Max(maxY, *y)
		}
		if len(ts.XValues) == 0 {
			continue
		}
		series = append(series, ts)
		showLegend = showLegend || tr.ShowLegend
	}
	if len(series) == 0 {
		return false, nil
	}

	// go-chart rejects zero-width ranges, which a single point or a flat line would produce
	if !maxT.After(minT) {
		maxT = minT.Add(24 * time.Hour)
	}
	minY = math.Min(0, minY)
	if maxY <= minY {
		maxY = minY + 1
	}

	graph := chart.Chart{
		Title:  p.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           p.XTitle,
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(minT), Max: chart.TimeToFloat64(maxT)},
		},
		YAxis: chart.YAxis{
			Name:           p.YTitle,
			ValueFormatter: countFormatter,
			Range:          &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: series,
	}
	if showLegend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	return true, graph.Render(chart.PNG, w)
}

func renderPie(w io.Writer, p dashboard.PiePanel, opts Options) (bool, error) {
	var values []chart.Value
	for _, s := range p.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: s.Value,
			Label: fmt.Sprintf("%s %.1f%%", s.Label, s.Value*100),
		})
	}
	if len(values) == 0 {
		return false, nil
	}

	pie := chart.PieChart{
		Title:  p.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}
	return true, pie.Render(chart.PNG, w)
}

func renderBar(w io.Writer, p dashboard.BarPanel, opts Options) (bool, error) {
	if len(p.Bars) == 0 {
		return false, nil
	}

	fill := parseColor(p.Color)
	maxV := 0.0
	bars := make([]chart.Value, 0, len(p.Bars))
	for _, b := range p.Bars {
		bars = append(bars, chart.Value{
			Value: b.Value,
			Label: b.Label,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
		maxV = math.Max(maxV, b.Value)
	}
	if maxV <= 0 {
		maxV = 1
	}

	slot := (opts.Width - 80) / len(bars)
	barWidth := max(2, slot*2/3)

	bar := chart.BarChart{
		Title:      p.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		BarSpacing: max(1, slot-barWidth),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: chart.YAxis{
			Name:           p.YTitle,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxV},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.2f", v) },
		},
		Bars: bars,
	}
	return true, bar.Render(chart.PNG, w)
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return humanize.Comma(int64(math.Round(f)))
	}
	return fmt.Sprintf("%v", v)
}

// parseColor understands "#RRGGBB" and "rgb(r,g,b)".
func parseColor(s string) drawing.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "rgb(") {
		var r, g, b uint8
		if _, err := fmt.Sscanf(s, "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
			return drawing.Color{R: r, G: g, B: b, A: 255}
		}
		return chart.ColorBlack
	}
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
