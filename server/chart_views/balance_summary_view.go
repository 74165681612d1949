package chart_views

import (
	"bytes"
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/sirupsen/logrus"

	"balancechart/ledger"
	"balancechart/server/fastview"
)

// BalanceSummary is a table of the current balance of every open account.
type BalanceSummary struct {
	id           string
	presentation Presentation
	updates      <-chan []fastview.EleUpdate

	lastDate, lastRows string
}

func NewBalanceSummary(
	done <-chan struct{},
	views <-chan BalanceView,
	p Presentation,
) *BalanceSummary {
	bs := &BalanceSummary{
		id:           "balance-summary",
		presentation: p,
	}
	bs.updates = channerics.Convert(done, views, bs.onUpdate)
	return bs
}

func (bs *BalanceSummary) Updates() <-chan []fastview.EleUpdate {
	return bs.updates
}

type summaryRow struct {
	Name    string
	Balance string
}

var summaryRows = template.Must(template.New("rows").Parse(
	`{{ range . }}<tr><td>{{ .Name }}</td><td class="amount">{{ .Balance }}</td></tr>{{ end }}`))

// onUpdate returns only what changed since the previous view-model.
func (bs *BalanceSummary) onUpdate(view BalanceView) (ops []fastview.EleUpdate) {
	date := "As of " + view.Date.Format("2006-01-02")
	if date != bs.lastDate {
		bs.lastDate = date
		ops = append(ops, fastview.EleUpdate{
			EleId: bs.id + "-date",
			Ops:   []fastview.Op{{Key: fastview.TextContent, Value: date}},
		})
	}

	rows := make([]summaryRow, 0, len(view.Accounts))
	for _, acct := range view.Accounts {
		rows = append(rows, summaryRow{
			Name:    acct.Name,
			Balance: bs.presentation.CurrencySymbol + ledger.FormatMinor(acct.BalanceMinor),
		})
	}
	var buf bytes.Buffer
	if err := summaryRows.Execute(&buf, rows); err != nil {
		logrus.Errorf("balance summary: %v", err)
		return
	}
	if buf.String() != bs.lastRows {
		bs.lastRows = buf.String()
		ops = append(ops, fastview.EleUpdate{
			EleId: bs.id + "-rows",
			Ops:   []fastview.Op{{Key: fastview.InnerHTML, Value: bs.lastRows}},
		})
	}
	return
}

func (bs *BalanceSummary) Parse(t *template.Template) (name string, err error) {
	name = "balancesummary"
	_, err = t.Parse(`{{ define "` + name + `" }}
		<section id="` + bs.id + `">
			<p id="` + bs.id + `-date"></p>
			<table>
				<thead><tr><th>Account</th><th>Balance</th></tr></thead>
				<tbody id="` + bs.id + `-rows"></tbody>
			</table>
		</section>
	{{ end }}`)
	return
}
