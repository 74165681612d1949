package chart_views

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"balancechart/ledger"
	"balancechart/models"
	"balancechart/server/fastview"
)

var day = time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC)

func snapshotOf(accounts ...ledger.AccountConfig) ledger.Snapshot {
	book, err := ledger.NewBook(day, 2, accounts...)
	So(err, ShouldBeNil)
	book.AdvanceDay()
	return book.Snapshot()
}

func TestConvert(t *testing.T) {
	Convey("Given a snapshot spanning two months", t, func() {
		view := Convert(snapshotOf(ledger.AccountConfig{ID: "checking", Name: "Checking", OpeningMinor: 15050}))

		So(view.Date.Equal(day.AddDate(0, 0, 1)), ShouldBeTrue)
		So(len(view.Accounts), ShouldEqual, 1)
		acct := view.Accounts[0]
		So(acct.ElementID, ShouldEqual, "chart-checking")
		So(acct.BalanceMinor, ShouldEqual, 15050)

		Convey("Each month becomes a series of major-unit balances by day", func() {
			ds, err := models.Decode(acct.Payload)
			So(err, ShouldBeNil)
			So(len(ds.Series), ShouldEqual, 2)
			So(ds.Series[0].Label, ShouldEqual, "2026-09")
			So(ds.Series[0].Meta.DisplayName, ShouldEqual, "September 2026")
			So(ds.Series[0].Points, ShouldResemble, []models.Point{{X: 30, Y: 150.5}})
			So(ds.Series[1].Label, ShouldEqual, "2026-10")
			So(ds.Series[1].Points, ShouldResemble, []models.Point{{X: 1, Y: 150.5}})
		})
	})
}

func TestBalanceCharts(t *testing.T) {
	Convey("Given a balance charts view drawn with echarts", t, func() {
		done := make(chan struct{})
		views := make(chan BalanceView)
		renderer := NewEchartsRenderer(DefaultPresentation())
		reporter := &fakeReporter{}
		bc := NewBalanceCharts(done, views, renderer, reporter)

		view := Convert(snapshotOf(ledger.AccountConfig{ID: "checking", Name: "Checking", OpeningMinor: 100}))

		Convey("A new account appends its element, then draws its chart", func() {
			views <- view
			updates := <-bc.Updates()
			So(len(updates), ShouldEqual, 2)
			So(updates[0].EleId, ShouldEqual, "balance-charts")
			So(updates[0].Ops[0].Key, ShouldEqual, fastview.AppendHTML)
			So(updates[0].Ops[0].Value, ShouldContainSubstring, `phx-hook="BalanceChart"`)
			So(updates[1].EleId, ShouldEqual, "chart-checking")
			So(updates[1].Ops[1].Key, ShouldEqual, fastview.Script)
			So(renderer.Live(), ShouldEqual, 1)

			Convey("A changed balance patches the attribute and redraws", func() {
				next := view
				next.Accounts = []AccountChart{view.Accounts[0]}
				next.Accounts[0].Payload = `{"series":[]}`
				views <- next
				updates := <-bc.Updates()
				So(updates[0].EleId, ShouldEqual, "chart-checking")
				So(updates[0].Ops, ShouldResemble, []fastview.Op{{Key: "data-chart-data", Value: `{"series":[]}`}})
				// dispose, then the new chart
				So(updates[1].Ops[0].Value, ShouldContainSubstring, "dispose")
				So(updates[2].Ops[0].Key, ShouldEqual, fastview.InnerHTML)
				So(renderer.Live(), ShouldEqual, 1)
			})

			Convey("A closed account disposes its chart, then removes the element", func() {
				views <- BalanceView{Date: view.Date}
				updates := <-bc.Updates()
				So(len(updates), ShouldEqual, 2)
				So(updates[0].Ops[0].Value, ShouldContainSubstring, "dispose")
				So(updates[1], ShouldResemble, fastview.EleUpdate{
					EleId: "chart-checking",
					Ops:   []fastview.Op{{Key: fastview.Remove}},
				})
				So(renderer.Live(), ShouldEqual, 0)
			})

			Convey("Closing the page releases every chart", func() {
				close(done)
				for range bc.Updates() {
				}
				So(renderer.Live(), ShouldEqual, 0)
			})
			So(reporter.reports, ShouldBeEmpty)
		})
	})
}

func TestBalanceSummary(t *testing.T) {
	Convey("Given a balance summary", t, func() {
		bs := NewBalanceSummary(nil, nil, DefaultPresentation())
		view := Convert(snapshotOf(
			ledger.AccountConfig{ID: "checking", Name: "Checking", OpeningMinor: 123456},
			ledger.AccountConfig{ID: "kids", Name: "<Kids>", OpeningMinor: -5},
		))

		Convey("The first view sets the date and every row", func() {
			ops := bs.onUpdate(view)
			So(len(ops), ShouldEqual, 2)
			So(ops[0], ShouldResemble, fastview.EleUpdate{
				EleId: "balance-summary-date",
				Ops:   []fastview.Op{{Key: fastview.TextContent, Value: "As of 2026-10-01"}},
			})
			So(ops[1].EleId, ShouldEqual, "balance-summary-rows")
			rows := ops[1].Ops[0].Value
			So(rows, ShouldContainSubstring, "<td>Checking</td><td class=\"amount\">€1234.56</td>")
			So(rows, ShouldContainSubstring, "&lt;Kids&gt;")
			So(rows, ShouldContainSubstring, "€-0.05")

			Convey("An unchanged view produces no updates", func() {
				So(bs.onUpdate(view), ShouldBeEmpty)
			})
		})
	})
}
