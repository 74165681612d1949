package chart_views

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"balancechart/ledger"
	"balancechart/models"
)

// BalanceView is the view-model shared by the balance views: one entry per open account.
type BalanceView struct {
	Date     time.Time
	Accounts []AccountChart
}

// AccountChart is everything needed to render one account's chart element. Fields are
// immediately usable as view parameters.
type AccountChart struct {
	// ElementID is the id of the chart element on the page.
	ElementID    string
	AccountID    string
	Name         string
	BalanceMinor int64
	// Payload is the chart-data attribute value: one series per month, x the day of the
	// month and y the closing balance in major units.
	Payload string
}

// ElementIDOf returns the id of an account's chart element.
func ElementIDOf(accountID string) string {
	return "chart-" + accountID
}

// Convert transforms a ledger snapshot into the balance view-model.
func Convert(snap ledger.Snapshot) BalanceView {
	view := BalanceView{
		Date:     snap.Date,
		Accounts: make([]AccountChart, 0, len(snap.Accounts)),
	}
	for _, acct := range snap.Accounts {
		payload, err := models.EncodePayload(payloadOf(acct))
		if err != nil {
			// The chart reports the empty payload as a decode error on the page side.
			logrus.WithField("account", acct.ID).Errorf("chart payload: %v", err)
		}
		view.Accounts = append(view.Accounts, AccountChart{
			ElementID:    ElementIDOf(acct.ID),
			AccountID:    acct.ID,
			Name:         acct.Name,
			BalanceMinor: acct.BalanceMinor,
			Payload:      payload,
		})
	}
	return view
}

func payloadOf(acct ledger.AccountHistory) models.Payload {
	p := models.Payload{Series: make([]models.PayloadSeries, 0, len(acct.Months))}
	for _, month := range acct.Months {
		series := models.PayloadSeries{
			Label:  fmt.Sprintf("%04d-%02d", month.Year, int(month.Month)),
			Points: make([][2]float64, 0, len(month.Days)),
			Meta:   &models.PayloadMeta{DisplayName: fmt.Sprintf("%s %d", month.Month, month.Year)},
		}
		for _, day := range month.Days {
			series.Points = append(series.Points, [2]float64{float64(day.Day), ledger.ToMajor(day.Minor)})
		}
		p.Series = append(p.Series, series)
	}
	return p
}
