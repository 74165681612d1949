// input_views contains views driven by what the user types on the page.
package input_views

import (
	"html/template"

	channerics "github.com/niceyeti/channerics/channels"

	"balancechart/ledger"
	"balancechart/server/fastview"
)

const (
	AmountInputID   = "payment-amount-input"
	AmountDisplayID = "euro-amount-display"
)

// AmountDisplay echoes the payment amount typed in minor units as a formatted euro
// amount. Anything that is not an integer displays as zero.
type AmountDisplay struct {
	updates <-chan []fastview.EleUpdate
}

func NewAmountDisplay(
	done <-chan struct{},
	messages <-chan fastview.ClientMessage,
) *AmountDisplay {
	return &AmountDisplay{
		updates: channerics.Convert(done, messages, onInput),
	}
}

func (ad *AmountDisplay) Updates() <-chan []fastview.EleUpdate {
	return ad.updates
}

// FormatAmount renders a typed minor-unit amount for display.
func FormatAmount(typed string) string {
	return "Amount: EUR " + ledger.FormatMinor(ledger.ParseMinor(typed))
}

func onInput(msg fastview.ClientMessage) []fastview.EleUpdate {
	if msg.EleId != AmountInputID {
		return nil
	}
	return []fastview.EleUpdate{{
		EleId: AmountDisplayID,
		Ops:   []fastview.Op{{Key: fastview.TextContent, Value: FormatAmount(msg.Value)}},
	}}
}

func (ad *AmountDisplay) Parse(t *template.Template) (name string, err error) {
	name = "amountdisplay"
	_, err = t.Parse(`{{ define "` + name + `" }}
		<section>
			<label for="` + AmountInputID + `">Payment amount (cents)</label>
			<input id="` + AmountInputID + `" type="number" step="1" inputmode="numeric">
			<p id="` + AmountDisplayID + `">` + template.HTMLEscapeString(FormatAmount("")) + `</p>
		</section>
	{{ end }}`)
	return
}
