package chart_views

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"balancechart/models"
	"balancechart/server/fastview"
	"balancechart/server/hooks"
)

// SVGRenderer draws static line charts server-side with go-chart and ships the SVG to
// the page. There is no smoothing or hover in this backend; Tension and HoverRadius
// are ignored. Empty datasets draw an empty plot.
type SVGRenderer struct {
	presentation  Presentation
	width, height int
	surfaces      *surfaces
}

func NewSVGRenderer(p Presentation, width, height int) *SVGRenderer {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 360
	}
	return &SVGRenderer{
		presentation: p,
		width:        width,
		height:       height,
		surfaces:     newSurfaces(),
	}
}

func (sr *SVGRenderer) Create(parent *hooks.Element, ds models.ChartDataset) (s *Session, err error) {
	if parent == nil {
		return nil, &RenderError{Backend: "svg", Err: fmt.Errorf("no parent element")}
	}
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, &RenderError{Backend: "svg", Err: fmt.Errorf("%v", r)}
		}
	}()

	// Every session draws on a new buffer.
	var surface bytes.Buffer
	if err := RenderSVG(&surface, ds, sr.presentation, sr.width, sr.height); err != nil {
		return nil, &RenderError{Backend: "svg", Err: err}
	}

	s = sr.surfaces.allocate(parent, ds)
	sr.surfaces.register(s)
	parent.Push(fastview.EleUpdate{
		EleId: parent.ID(),
		Ops: []fastview.Op{{
			Key:   fastview.InnerHTML,
			Value: `<div id="` + template.HTMLEscapeString(s.surfaceID) + `" class="chart-surface">` + surface.String() + `</div>`,
		}},
	})
	return s, nil
}

func (sr *SVGRenderer) Destroy(s *Session) {
	if !sr.surfaces.release(s) {
		return
	}
	s.parent.Push(fastview.EleUpdate{
		EleId: s.parent.ID(),
		Ops:   []fastview.Op{{Key: fastview.InnerHTML, Value: ""}},
	})
}

func (sr *SVGRenderer) Live() int {
	return sr.surfaces.count()
}

var palette = []drawing.Color{
	{R: 51, G: 102, B: 204, A: 255},
	{R: 220, G: 57, B: 18, A: 255},
	{R: 255, G: 153, B: 0, A: 255},
	{R: 16, G: 150, B: 24, A: 255},
	{R: 153, G: 0, B: 153, A: 255},
}

// RenderSVG draws ds as an SVG line chart onto w. A dataset with nothing to plot draws
// the axes alone, and a single x or y value gets a range padded around it.
func RenderSVG(w io.Writer, ds models.ChartDataset, p Presentation, width, height int) error {
	series := make([]chart.Series, 0, len(ds.Series))
	var xs, ys bounds
	for i, s := range ds.Series {
		if len(s.Points) == 0 {
			continue
		}
		xv := make([]float64, len(s.Points))
		yv := make([]float64, len(s.Points))
		for j, pt := range s.Points {
			xv[j], yv[j] = pt.X, pt.Y
			xs.add(pt.X)
			ys.add(pt.Y)
		}
		color := palette[i%len(palette)]
		series = append(series, chart.ContinuousSeries{
			Name: s.Name(i),
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    p.PointRadius,
			},
			XValues: xv,
			YValues: yv,
		})
	}
	if len(series) == 0 {
		// Zero colors mean defaults to go-chart, so the axes-only placeholder is white at alpha 0.
		invisible := drawing.Color{R: 255, G: 255, B: 255, A: 0}
		series = append(series, chart.ContinuousSeries{
			Style: chart.Style{
				StrokeColor: invisible,
				DotColor:    invisible,
			},
			XValues: []float64{1, 31},
			YValues: []float64{0, 1},
		})
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  p.XAxisTitle,
			Range: xs.padded(1),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  p.YAxisTitle,
			Range: ys.padded(math.Max(1, math.Abs(ys.min)/10)),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return p.FormatCurrency(f)
				}
				return ""
			},
		},
		Series: series,
	}
	return graph.Render(chart.SVG, w)
}

// bounds is the extent of the plotted values on one axis.
type bounds struct {
	min, max float64
	seen     bool
}

func (b *bounds) add(v float64) {
	if !b.seen {
		b.min, b.max, b.seen = v, v, true
		return
	}
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

// padded returns an explicit range when every value is the same, which go-chart
// cannot scale on its own. Otherwise the axis ranges itself.
func (b bounds) padded(pad float64) chart.Range {
	if !b.seen || b.max > b.min {
		return nil
	}
	return &chart.ContinuousRange{Min: b.min - pad, Max: b.max + pad}
}
