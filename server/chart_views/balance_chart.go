package chart_views

import (
	"fmt"

	"balancechart/models"
	"balancechart/server/hooks"
)

// ChartDataAttr is the dataset name of the attribute holding the chart payload,
// i.e. the element carries it as data-chart-data.
const ChartDataAttr = "chart-data"

// BalanceChartHook is the hook name balance chart elements are bound with.
const BalanceChartHook = "BalanceChart"

type phase int

const (
	unattached phase = iota
	attached
	updating
	detached
)

func (p phase) String() string {
	switch p {
	case unattached:
		return "unattached"
	case attached:
		return "attached"
	case updating:
		return "updating"
	default:
		return "detached"
	}
}

// BalanceChart is the hook bound to one chart element. It owns at most one live
// session and replaces it wholesale whenever the element's chart data changes: the
// old session is always destroyed before the new one is created.
//
// A failed attach or update leaves the element without a chart. Whatever was drawn
// before is destroyed whether decoding or rendering failed, so the chart area is
// empty until the next good payload arrives.
type BalanceChart struct {
	renderer Renderer
	reporter ErrorReporter
	phase    phase
	session  *Session
}

func NewBalanceChart(renderer Renderer, reporter ErrorReporter) *BalanceChart {
	return &BalanceChart{
		renderer: renderer,
		reporter: reporter,
	}
}

// NewBalanceChartHook returns a hook factory for a hooks.Registry.
func NewBalanceChartHook(renderer Renderer, reporter ErrorReporter) func() hooks.Hook {
	return func() hooks.Hook {
		return NewBalanceChart(renderer, reporter)
	}
}

// Mounted draws the element's initial chart. An element may be mounted again after it
// was destroyed.
func (bc *BalanceChart) Mounted(el *hooks.Element) {
	if bc.phase == attached || bc.phase == updating {
		bc.report(el, InvariantViolation, fmt.Sprintf("mounted while %s", bc.phase))
		return
	}
	bc.phase = attached
	bc.redraw(el)
}

// Updated redraws the chart from the element's current chart data.
func (bc *BalanceChart) Updated(el *hooks.Element) {
	if bc.phase != attached {
		bc.report(el, InvariantViolation, fmt.Sprintf("updated while %s", bc.phase))
		return
	}
	bc.phase = updating
	bc.redraw(el)
	bc.phase = attached
}

// Destroyed releases the chart. It does nothing if the element is not attached.
func (bc *BalanceChart) Destroyed(el *hooks.Element) {
	if bc.phase != attached && bc.phase != updating {
		return
	}
	bc.retire(el)
	bc.phase = detached
}

func (bc *BalanceChart) redraw(el *hooks.Element) {
	ds, err := models.Decode(el.Dataset(ChartDataAttr))
	bc.retire(el)
	if err != nil {
		bc.report(el, DecodeError, err.Error())
		return
	}
	bc.create(el, ds)
}

// retire takes the session out of the controller before destroying it, so a destroyed
// session is never reachable from bc even if Destroy panics.
func (bc *BalanceChart) retire(el *hooks.Element) {
	s := bc.session
	bc.session = nil
	if s == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			bc.report(el, RenderCreationError, fmt.Sprintf("destroy panicked: %v", r))
		}
	}()
	bc.renderer.Destroy(s)
}

func (bc *BalanceChart) create(el *hooks.Element, ds models.ChartDataset) {
	defer func() {
		if r := recover(); r != nil {
			bc.report(el, RenderCreationError, fmt.Sprintf("create panicked: %v", r))
		}
	}()
	s, err := bc.renderer.Create(el, ds)
	if err != nil {
		bc.report(el, RenderCreationError, err.Error())
		return
	}
	bc.session = s
}

func (bc *BalanceChart) report(el *hooks.Element, kind ErrorKind, msg string) {
	if bc.reporter != nil {
		bc.reporter.Report(el.ID(), kind, msg)
	}
}
