package chart_views

import (
	"fmt"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"

	"balancechart/server/fastview"
	"balancechart/server/hooks"
)

// BalanceCharts is the container of one chart element per open account. Elements come
// and go with accounts; their chart hooks are driven by a private hooks.Host.
type BalanceCharts struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

// NewBalanceCharts draws every chart with renderer. The host, and so every hook, runs on
// a single goroutine; renderer need not be safe for concurrent use by this view.
func NewBalanceCharts(
	done <-chan struct{},
	views <-chan BalanceView,
	renderer Renderer,
	reporter ErrorReporter,
) *BalanceCharts {
	bc := &BalanceCharts{id: "balance-charts"}
	host := hooks.NewHost(bc.id, hooks.Registry{
		BalanceChartHook: NewBalanceChartHook(renderer, reporter),
	})
	host.OnPanic = func(elementID string, recovered interface{}) {
		if reporter != nil {
			reporter.Report(elementID, RenderCreationError, fmt.Sprintf("hook panicked: %v", recovered))
		}
	}
	bc.updates = host.Run(done, channerics.Convert(done, views, elementSpecs))
	return bc
}

func (bc *BalanceCharts) Updates() <-chan []fastview.EleUpdate {
	return bc.updates
}

func elementSpecs(view BalanceView) []hooks.ElementSpec {
	specs := make([]hooks.ElementSpec, 0, len(view.Accounts))
	for _, acct := range view.Accounts {
		specs = append(specs, hooks.ElementSpec{
			ID:   acct.ElementID,
			Hook: BalanceChartHook,
			Attrs: map[string]string{
				"class":                 "balance-chart",
				"aria-label":            acct.Name,
				"data-account":          acct.AccountID,
				"data-" + ChartDataAttr: acct.Payload,
			},
		})
	}
	return specs
}

// Parse defines the empty container; charts are appended to it once the page connects.
func (bc *BalanceCharts) Parse(t *template.Template) (name string, err error) {
	name = "balancecharts"
	_, err = t.Parse(`{{ define "` + name + `" }}
		<section>
			<h2>Balances</h2>
			<div id="` + bc.id + `" class="balance-charts"></div>
		</section>
	{{ end }}`)
	return
}
