package server

import (
	"sync"
	"sync/atomic"
	"time"

	"balancechart/models"
	"balancechart/server/chart_views"
	"balancechart/server/hooks"
)

// Diagnostics is process-wide state about connected pages and their charts. It is
// created on first use and never replaced; core logic never reads it, it is only fed
// through the decorators below and served for inspection.
type Diagnostics struct {
	started           time.Time
	clients           atomic.Int64
	sessionsCreated   atomic.Int64
	sessionsDestroyed atomic.Int64

	mu     sync.Mutex
	errors map[chart_views.ErrorKind]int64
}

var (
	diagOnce sync.Once
	diag     *Diagnostics
)

// Diag returns the process diagnostics.
func Diag() *Diagnostics {
	diagOnce.Do(func() {
		diag = &Diagnostics{
			started: time.Now(),
			errors:  map[chart_views.ErrorKind]int64{},
		}
	})
	return diag
}

// DiagnosticsSnapshot is the JSON form of the diagnostics.
type DiagnosticsSnapshot struct {
	Uptime            string           `json:"uptime"`
	Clients           int64            `json:"clients"`
	SessionsCreated   int64            `json:"sessions_created"`
	SessionsDestroyed int64            `json:"sessions_destroyed"`
	SessionsLive      int64            `json:"sessions_live"`
	Errors            map[string]int64 `json:"errors"`
}

func (d *Diagnostics) Snapshot() DiagnosticsSnapshot {
	d.mu.Lock()
	errs := make(map[string]int64, len(d.errors))
	for kind, n := range d.errors {
		errs[string(kind)] = n
	}
	d.mu.Unlock()

	created, destroyed := d.sessionsCreated.Load(), d.sessionsDestroyed.Load()
	return DiagnosticsSnapshot{
		Uptime:            time.Since(d.started).Truncate(time.Second).String(),
		Clients:           d.clients.Load(),
		SessionsCreated:   created,
		SessionsDestroyed: destroyed,
		SessionsLive:      created - destroyed,
		Errors:            errs,
	}
}

func (d *Diagnostics) connected() func() {
	d.clients.Add(1)
	return func() { d.clients.Add(-1) }
}

// CountSessions decorates r to count the sessions it creates and destroys.
func (d *Diagnostics) CountSessions(r chart_views.Renderer) chart_views.Renderer {
	return &countingRenderer{Renderer: r, diag: d}
}

// CountReports decorates rep to count reports by kind. rep may be nil.
func (d *Diagnostics) CountReports(rep chart_views.ErrorReporter) chart_views.ErrorReporter {
	return &countingReporter{next: rep, diag: d}
}

type countingRenderer struct {
	chart_views.Renderer
	diag *Diagnostics
}

func (cr *countingRenderer) Create(parent *hooks.Element, ds models.ChartDataset) (*chart_views.Session, error) {
	s, err := cr.Renderer.Create(parent, ds)
	if err == nil {
		cr.diag.sessionsCreated.Add(1)
	}
	return s, err
}

func (cr *countingRenderer) Destroy(s *chart_views.Session) {
	live := !s.Destroyed()
	cr.Renderer.Destroy(s)
	if live && s.Destroyed() {
		cr.diag.sessionsDestroyed.Add(1)
	}
}

type countingReporter struct {
	next chart_views.ErrorReporter
	diag *Diagnostics
}

func (cr *countingReporter) Report(elementID string, kind chart_views.ErrorKind, message string) {
	cr.diag.mu.Lock()
	cr.diag.errors[kind]++
	cr.diag.mu.Unlock()
	if cr.next != nil {
		cr.next.Report(elementID, kind, message)
	}
}
