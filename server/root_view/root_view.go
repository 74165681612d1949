// root_view is the accounts page: the container of every view, the wiring of their
// channels, and the page bootstrap that applies element updates pushed by the server.
package root_view

import (
	"context"
	"html/template"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/pkg/errors"

	"balancechart/ledger"
	"balancechart/server/chart_views"
	"balancechart/server/fastview"
	"balancechart/server/input_views"
)

// WebsocketPath is where the page connects back to the server.
const WebsocketPath = "/ws"

const defaultBatchRate = 20 * time.Millisecond

// Options configure one page. Renderer draws the page's charts; it is owned by the
// page and must not be shared with another one.
type Options struct {
	Renderer     chart_views.Renderer
	Reporter     chart_views.ErrorReporter
	Presentation chart_views.Presentation
	BatchRate    time.Duration
}

// PageData is what the page template executes with.
type PageData struct {
	Title      string
	EchartsURL string
}

// RootView is the main page, which contains every view component.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView builds the views of one page. The views stop, and their charts are
// released, when ctx is done or snapshots is closed.
func NewRootView(
	ctx context.Context,
	snapshots <-chan ledger.Snapshot,
	messages <-chan fastview.ClientMessage,
	opts Options,
) (*RootView, error) {
	if opts.Renderer == nil {
		return nil, errors.New("root view: no renderer")
	}
	if opts.BatchRate <= 0 {
		opts.BatchRate = defaultBatchRate
	}

	views, err := fastview.NewViewBuilder[ledger.Snapshot, chart_views.BalanceView]().
		WithContext(ctx).
		WithModel(snapshots, chart_views.Convert).
		WithView(func(
			done <-chan struct{},
			balances <-chan chart_views.BalanceView) fastview.ViewComponent {
			return chart_views.NewBalanceSummary(done, balances, opts.Presentation)
		}).
		WithView(func(
			done <-chan struct{},
			balances <-chan chart_views.BalanceView) fastview.ViewComponent {
			return chart_views.NewBalanceCharts(done, balances, opts.Renderer, opts.Reporter)
		}).
		Build()
	if err != nil {
		return nil, errors.Wrap(err, "root view")
	}
	views = append(views, input_views.NewAmountDisplay(ctx.Done(), messages))

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views, opts.BatchRate),
	}, nil
}

// Updates returns the main ele-update channel for all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page's template, with the websocket bootstrap, and returns its name.
func (rv *RootView) Parse(parent *template.Template) (name string, err error) {
	var bodySpec string
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(parent)
		if parseErr != nil {
			return "", parseErr
		}
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	name = "mainpage"
	_, err = parent.Parse(`{{ define "` + name + `" }}
<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<title>{{ .Title }}</title>
		<link rel="icon" href="data:,">
		<style>
			body { font-family: sans-serif; margin: 2em; }
			.balance-chart { margin-bottom: 2em; }
			.balance-chart::before { content: attr(aria-label); font-weight: bold; }
			td.amount { text-align: right; padding-left: 2em; }
		</style>
		{{ if .EchartsURL }}<script src="{{ .EchartsURL }}"></script>{{ end }}
		<!--The client bootstrap by which the server pushes element updates to the page.-->
		<script>
			const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "` + WebsocketPath + `");
			ws.onopen = function () {
				console.log("Web socket opened");
			};
			ws.onerror = function (event) {
				console.log("WebSocket error: ", event);
			};

			// Ops apply in order; an element may be created by an earlier update of the same batch.
			function apply(update) {
				const ele = document.getElementById(update.EleId);
				if (!ele) {
					return;
				}
				for (const op of update.Ops) {
					switch (op.Key) {
					case "textContent":
						ele.textContent = op.Value;
						break;
					case "innerHTML":
						ele.innerHTML = op.Value;
						break;
					case "appendHTML":
						ele.insertAdjacentHTML("beforeend", op.Value);
						break;
					case "remove":
						ele.remove();
						return;
					case "script":
						try {
							new Function("el", op.Value)(ele);
						} catch (err) {
							console.error(update.EleId, err);
						}
						break;
					default:
						ele.setAttribute(op.Key, op.Value);
					}
				}
			}

			ws.onmessage = function (event) {
				for (const update of JSON.parse(event.data)) {
					apply(update);
				}
			};

			document.addEventListener("input", function (event) {
				if (event.target.id && ws.readyState === WebSocket.OPEN) {
					ws.send(JSON.stringify({EleId: event.target.id, Value: event.target.value}));
				}
			});
		</script>
	</head>
	<body>
		<h1>{{ .Title }}</h1>
		` + bodySpec + `
	</body>
</html>
{{ end }}`)
	return
}

// fanIn aggregates the views' ele-update channels into a single, batched channel.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), rate)
}
