package chart_views

import (
	"encoding/json"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"

	"balancechart/models"
	"balancechart/server/fastview"
	"balancechart/server/hooks"
)

// EchartsRenderer draws interactive line charts in the browser with ECharts. The chart
// option is built server-side with go-echarts; the page runs the init and dispose scripts.
type EchartsRenderer struct {
	presentation Presentation
	surfaces     *surfaces
}

func NewEchartsRenderer(p Presentation) *EchartsRenderer {
	return &EchartsRenderer{
		presentation: p,
		surfaces:     newSurfaces(),
	}
}

func (er *EchartsRenderer) Create(parent *hooks.Element, ds models.ChartDataset) (s *Session, err error) {
	if parent == nil {
		return nil, &RenderError{Backend: "echarts", Err: errors.New("no parent element")}
	}
	// go-echarts panics on option shapes it cannot marshal.
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, &RenderError{Backend: "echarts", Err: fmt.Errorf("%v", r)}
		}
	}()

	s = er.surfaces.allocate(parent, ds)
	snippet := er.lineChart(s.surfaceID, ds).RenderSnippet()
	script, err := er.initScript(s.surfaceID, snippet.Option)
	if err != nil {
		return nil, &RenderError{Backend: "echarts", Err: err}
	}

	er.surfaces.register(s)
	parent.Push(fastview.EleUpdate{
		EleId: parent.ID(),
		Ops: []fastview.Op{
			{Key: fastview.InnerHTML, Value: snippet.Element},
			{Key: fastview.Script, Value: script},
		},
	})
	return s, nil
}

func (er *EchartsRenderer) Destroy(s *Session) {
	if !er.surfaces.release(s) {
		return
	}
	surface, _ := json.Marshal(s.surfaceID)
	s.parent.Push(fastview.EleUpdate{
		EleId: s.parent.ID(),
		Ops: []fastview.Op{
			{Key: fastview.Script, Value: fmt.Sprintf(disposeScript, surface)},
			{Key: fastview.InnerHTML, Value: ""},
		},
	})
}

func (er *EchartsRenderer) Live() int {
	return er.surfaces.count()
}

func (er *EchartsRenderer) lineChart(surfaceID string, ds models.ChartDataset) *charts.Line {
	p := er.presentation
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: surfaceID,
			Width:   p.Width,
			Height:  p.Height,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		// The page renders its own legend.
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: p.XAxisTitle,
			Type: "value",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: p.YAxisTitle,
			Type: "value",
		}),
	)

	for i, series := range ds.Series {
		data := make([]opts.LineData, 0, len(series.Points))
		for _, pt := range series.Points {
			data = append(data, opts.LineData{Value: []interface{}{pt.X, pt.Y}})
		}
		line.AddSeries(series.Name(i), data,
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(p.Tension > 0),
				ShowSymbol: opts.Bool(true),
			}),
		)
	}
	return line
}

// initScript runs with `el` bound to the parent element. Formatters are functions, so they
// are attached to the option on the page rather than serialized.
func (er *EchartsRenderer) initScript(surfaceID string, option string) (string, error) {
	p := er.presentation
	args, err := json.Marshal([]interface{}{surfaceID, p.CurrencySymbol, p.TooltipTitle})
	if err != nil {
		return "", errors.Wrap(err, "encode script arguments")
	}
	scale := 1.0
	if p.PointRadius > 0 {
		scale = p.HoverRadius / p.PointRadius
	}
	return fmt.Sprintf(initScript, args, option, p.PointRadius*2, p.Tension, scale), nil
}

const initScript = `var a = %s, id = a[0], cur = a[1], title = a[2];
var surface = document.getElementById(id);
if (!surface || !window.echarts) { return; }
var option = %s;
var esc = function (s) {
	return String(s).replace(/[&<>"]/g, function (c) {
		return { "&": "&amp;", "<": "&lt;", ">": "&gt;", '"': "&quot;" }[c];
	});
};
(option.series || []).forEach(function (s) {
	s.symbolSize = %g;
	s.smooth = %g;
	s.emphasis = { scale: %g };
});
option.tooltip = option.tooltip || {};
option.tooltip.formatter = function (params) {
	if (!params.length) { return ""; }
	var lines = [esc(title + " " + params[0].value[0])];
	params.forEach(function (p) {
		lines.push(esc(p.seriesName + ": " + cur + p.value[1]));
	});
	return lines.join("<br/>");
};
[].concat(option.yAxis || []).forEach(function (y) {
	y.axisLabel = y.axisLabel || {};
	y.axisLabel.formatter = function (v) { return cur + v; };
});
var chart = echarts.init(surface);
chart.setOption(option);
surface.onWindowResize = function () { chart.resize(); };
window.addEventListener("resize", surface.onWindowResize);`

const disposeScript = `var surface = document.getElementById(%s);
if (surface && surface.onWindowResize) {
	window.removeEventListener("resize", surface.onWindowResize);
}
if (surface && window.echarts) {
	var chart = echarts.getInstanceByDom(surface);
	if (chart) { chart.dispose(); }
}`
