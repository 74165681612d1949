package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	. "github.com/smartystreets/goconvey/convey"
)

func writeConfig(content string) string {
	dir, err := os.MkdirTemp("", "balancechart-config")
	So(err, ShouldBeNil)
	path := filepath.Join(dir, "config.yaml")
	So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)
	return path
}

func TestFromYaml(t *testing.T) {
	Convey("Given a config file overriding some settings", t, func() {
		path := writeConfig(`
kind: balancechart
def:
  server:
    port: 9090
    batch_rate: 50ms
  chart:
    backend: svg
    currency_symbol: "$"
  ledger:
    start: "2026-09-01"
    tick: 250ms
    accounts:
      - id: brokerage
        opening_minor: 42
        lifetime_days: 10
`)
		defer os.RemoveAll(filepath.Dir(path))

		cfg, err := FromYaml(path)
		So(err, ShouldBeNil)

		Convey("Overridden values are read", func() {
			So(cfg.Server.Port, ShouldEqual, 9090)
			So(cfg.Server.BatchRate, ShouldEqual, 50*time.Millisecond)
			So(cfg.Chart.Backend, ShouldEqual, BackendSVG)
			So(cfg.Chart.CurrencySymbol, ShouldEqual, "$")
			So(cfg.Ledger.Tick, ShouldEqual, 250*time.Millisecond)
			So(cfg.Accounts(), ShouldHaveLength, 1)
			So(cfg.Accounts()[0].Name, ShouldEqual, "brokerage")
			So(cfg.Accounts()[0].LifetimeDays, ShouldEqual, 10)
		})

		Convey("Everything else keeps its default", func() {
			So(cfg.Server.Host, ShouldEqual, "localhost")
			So(cfg.Chart.XAxisTitle, ShouldEqual, "Day of Month")
			So(cfg.Chart.Tension, ShouldEqual, 0.4)
			So(cfg.Ledger.Months, ShouldEqual, 2)
			So(cfg.Addr(), ShouldEqual, "localhost:9090")
		})

		Convey("The start date is parsed", func() {
			start, err := cfg.StartDate(time.Now())
			So(err, ShouldBeNil)
			So(start.Equal(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(cfg.Validate(), ShouldBeNil)
		})
	})

	Convey("A file of another kind is rejected", t, func() {
		path := writeConfig("kind: training\ndef: {}\n")
		defer os.RemoveAll(filepath.Dir(path))
		_, err := FromYaml(path)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, `kind "training"`)
	})

	Convey("A missing file is an error", t, func() {
		_, err := FromYaml(filepath.Join(os.TempDir(), "no-such-balancechart.yaml"))
		So(err, ShouldNotBeNil)
	})

	Convey("The repository config is valid", t, func() {
		cfg, err := FromYaml("../config.yaml")
		So(err, ShouldBeNil)
		So(cfg.Validate(), ShouldBeNil)
		So(len(cfg.Accounts()), ShouldEqual, 3)
	})
}

func TestValidate(t *testing.T) {
	Convey("The defaults are valid", t, func() {
		So(Default().Validate(), ShouldBeNil)
	})

	Convey("Every problem is reported at once", t, func() {
		cfg := Default()
		cfg.Server.Port = 0
		cfg.Chart.Backend = "canvas"
		cfg.Ledger.Start = "yesterday"
		cfg.Ledger.Accounts = []AccountConfig{{ID: "a"}, {ID: "a"}, {}}

		err := cfg.Validate()
		So(err, ShouldNotBeNil)
		merr, ok := err.(*multierror.Error)
		So(ok, ShouldBeTrue)
		So(len(merr.Errors), ShouldEqual, 5)
	})

	Convey("Start defaults to today's date", t, func() {
		now := time.Date(2026, time.October, 14, 15, 4, 5, 0, time.Local)
		start, err := Default().StartDate(now)
		So(err, ShouldBeNil)
		So(start.Equal(time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
	})
}
