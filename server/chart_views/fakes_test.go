package chart_views

import (
	"errors"
	"fmt"

	"balancechart/models"
	"balancechart/server/fastview"
	"balancechart/server/hooks"
)

// fakeRenderer records create and destroy calls in the order they happen.
type fakeRenderer struct {
	calls       []string
	surfaces    *surfaces
	failCreate  error
	panicCreate bool
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{surfaces: newSurfaces()}
}

func (fr *fakeRenderer) Create(parent *hooks.Element, ds models.ChartDataset) (*Session, error) {
	fr.calls = append(fr.calls, "create")
	if fr.panicCreate {
		panic("boom")
	}
	if fr.failCreate != nil {
		return nil, fr.failCreate
	}
	s := fr.surfaces.allocate(parent, ds)
	fr.surfaces.register(s)
	return s, nil
}

func (fr *fakeRenderer) Destroy(s *Session) {
	if fr.surfaces.release(s) {
		fr.calls = append(fr.calls, "destroy")
	}
}

func (fr *fakeRenderer) Live() int {
	return fr.surfaces.count()
}

type report struct {
	elementID string
	kind      ErrorKind
	message   string
}

type fakeReporter struct {
	reports []report
}

func (fr *fakeReporter) Report(elementID string, kind ErrorKind, message string) {
	fr.reports = append(fr.reports, report{elementID, kind, message})
}

func (fr *fakeReporter) kinds() (kinds []ErrorKind) {
	for _, r := range fr.reports {
		kinds = append(kinds, r.kind)
	}
	return
}

// pushes collects what elements push to the page.
type pushes struct {
	updates []fastview.EleUpdate
}

func (p *pushes) push(updates ...fastview.EleUpdate) {
	p.updates = append(p.updates, updates...)
}

func (p *pushes) keys() (keys []string) {
	for _, up := range p.updates {
		for _, op := range up.Ops {
			keys = append(keys, op.Key)
		}
	}
	return
}

func chartElement(payload string, push func(...fastview.EleUpdate)) *hooks.Element {
	return hooks.NewElement("chart-checking", BalanceChartHook, map[string]string{
		"data-" + ChartDataAttr: payload,
	}, push)
}

const (
	scenarioA = `{"series":[{"label":"Checking","points":[[1,100.00],[2,150.50]]}]}`
	scenarioB = `{"series":[]}`
)

func payloadWith(points int) string {
	pts := ""
	for i := 0; i < points; i++ {
		if i > 0 {
			pts += ","
		}
		pts += fmt.Sprintf("[%d,%d]", i+1, 100*(i+1))
	}
	return `{"series":[{"label":"a","points":[` + pts + `]}]}`
}

var errRejected = errors.New("rejected")
