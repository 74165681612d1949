package chart_views

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"balancechart/models"
	"balancechart/server/fastview"
)

func mustDecode(payload string) models.ChartDataset {
	ds, err := models.Decode(payload)
	So(err, ShouldBeNil)
	return ds
}

func TestEchartsRenderer(t *testing.T) {
	Convey("Given an echarts renderer", t, func() {
		renderer := NewEchartsRenderer(DefaultPresentation())
		page := &pushes{}
		parent := chartElement(scenarioA, page.push)

		Convey("Create draws on a fresh surface inside the parent", func() {
			s, err := renderer.Create(parent, mustDecode(scenarioA))
			So(err, ShouldBeNil)
			So(renderer.Live(), ShouldEqual, 1)

			surface, err := s.Surface()
			So(err, ShouldBeNil)
			So(surface, ShouldStartWith, "chart-checking-surface-")

			So(page.keys(), ShouldResemble, []string{fastview.InnerHTML, fastview.Script})
			So(page.updates[0].EleId, ShouldEqual, "chart-checking")
			So(page.updates[0].Ops[0].Value, ShouldContainSubstring, surface)
			script := page.updates[0].Ops[1].Value
			So(script, ShouldContainSubstring, "echarts.init")
			So(script, ShouldContainSubstring, `"€"`)
			So(script, ShouldContainSubstring, "Checking")

			Convey("Destroy releases the session exactly once", func() {
				renderer.Destroy(s)
				So(renderer.Live(), ShouldEqual, 0)
				So(s.Destroyed(), ShouldBeTrue)
				_, err := s.Surface()
				So(err, ShouldEqual, ErrSessionDestroyed)
				So(page.keys()[2:], ShouldResemble, []string{fastview.Script, fastview.InnerHTML})
				So(page.updates[1].Ops[0].Value, ShouldContainSubstring, "dispose")

				renderer.Destroy(s)
				renderer.Destroy(nil)
				So(len(page.updates), ShouldEqual, 2)
			})
		})

		Convey("Surfaces are never reused", func() {
			seen := map[string]bool{}
			for i := 0; i < 10; i++ {
				s, err := renderer.Create(parent, mustDecode(scenarioA))
				So(err, ShouldBeNil)
				surface, _ := s.Surface()
				So(seen[surface], ShouldBeFalse)
				seen[surface] = true
				renderer.Destroy(s)
			}
			So(renderer.Live(), ShouldEqual, 0)
		})

		Convey("An empty dataset draws an empty plot", func() {
			s, err := renderer.Create(parent, mustDecode(scenarioB))
			So(err, ShouldBeNil)
			series, points, _ := s.Shape()
			So(series, ShouldEqual, 0)
			So(points, ShouldEqual, 0)
		})

		Convey("A missing parent is a render error", func() {
			_, err := renderer.Create(nil, mustDecode(scenarioA))
			So(err, ShouldHaveSameTypeAs, &RenderError{})
			So(renderer.Live(), ShouldEqual, 0)
		})
	})
}

func TestSVGRenderer(t *testing.T) {
	Convey("Given an svg renderer", t, func() {
		renderer := NewSVGRenderer(DefaultPresentation(), 0, 0)
		page := &pushes{}
		parent := chartElement(scenarioA, page.push)

		Convey("Create pushes the drawn svg in a fresh surface", func() {
			s, err := renderer.Create(parent, mustDecode(scenarioA))
			So(err, ShouldBeNil)
			So(renderer.Live(), ShouldEqual, 1)
			So(page.keys(), ShouldResemble, []string{fastview.InnerHTML})

			surface, _ := s.Surface()
			html := page.updates[0].Ops[0].Value
			So(html, ShouldStartWith, `<div id="`+surface+`"`)
			So(html, ShouldContainSubstring, "<svg")

			renderer.Destroy(s)
			renderer.Destroy(s)
			So(renderer.Live(), ShouldEqual, 0)
			So(len(page.updates), ShouldEqual, 2)
			So(page.updates[1].Ops[0], ShouldResemble, fastview.Op{Key: fastview.InnerHTML, Value: ""})
		})

		Convey("An empty dataset draws an empty plot", func() {
			s, err := renderer.Create(parent, mustDecode(scenarioB))
			So(err, ShouldBeNil)
			series, points, err := s.Shape()
			So(err, ShouldBeNil)
			So(series, ShouldEqual, 0)
			So(points, ShouldEqual, 0)
			So(renderer.Live(), ShouldEqual, 1)
			So(page.updates[0].Ops[0].Value, ShouldContainSubstring, "<svg")
		})

		Convey("A series with a single point is drawn", func() {
			s, err := renderer.Create(parent, mustDecode(`{"series":[{"label":"Checking","points":[[1,100.00]]}]}`))
			So(err, ShouldBeNil)
			series, points, _ := s.Shape()
			So(series, ShouldEqual, 1)
			So(points, ShouldEqual, 1)
			So(page.updates[0].Ops[0].Value, ShouldContainSubstring, "<svg")
		})

		Convey("A chart mounted on empty or opening-day data draws without errors", func() {
			for _, payload := range []string{scenarioB, `{"series":[{"label":"Checking","points":[[1,100.00]]}]}`} {
				reporter := &fakeReporter{}
				bc := NewBalanceChart(renderer, reporter)
				bc.Mounted(chartElement(payload, page.push))
				So(reporter.reports, ShouldBeEmpty)
				bc.Destroyed(chartElement(payload, page.push))
			}
			So(renderer.Live(), ShouldEqual, 0)
		})

		Convey("Series without points and flat balances are drawn", func() {
			_, err := renderer.Create(parent, mustDecode(`{"series":[{"label":"A","points":[]},{"label":"B","points":[[1,5],[2,5]]}]}`))
			So(err, ShouldBeNil)
			So(renderer.Live(), ShouldEqual, 1)
		})
	})

	Convey("RenderSVG writes a standalone svg document", t, func() {
		var buf bytes.Buffer
		err := RenderSVG(&buf, mustDecode(scenarioA), DefaultPresentation(), 640, 320)
		So(err, ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "<svg")
		So(strings.TrimSpace(buf.String()), ShouldEndWith, "</svg>")
	})
}

func TestPresentation(t *testing.T) {
	Convey("Currency values are prefixed with the symbol", t, func() {
		p := DefaultPresentation()
		So(p.FormatCurrency(150.5), ShouldEqual, "€150.5")
		So(p.FormatCurrency(-3), ShouldEqual, "€-3")
	})
}
