package input_views

import (
	"html/template"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"balancechart/server/fastview"
)

func TestAmountDisplay(t *testing.T) {
	Convey("Typed amounts are shown in euros", t, func() {
		So(FormatAmount("1234"), ShouldEqual, "Amount: EUR 12.34")
		So(FormatAmount("5"), ShouldEqual, "Amount: EUR 0.05")
		So(FormatAmount("-250"), ShouldEqual, "Amount: EUR -2.50")
		So(FormatAmount("12.7"), ShouldEqual, "Amount: EUR 0.12")
		So(FormatAmount("150abc"), ShouldEqual, "Amount: EUR 1.50")
		So(FormatAmount(""), ShouldEqual, "Amount: EUR 0.00")
	})

	Convey("Given an amount display fed by client messages", t, func() {
		done := make(chan struct{})
		defer close(done)
		messages := make(chan fastview.ClientMessage)
		ad := NewAmountDisplay(done, messages)

		Convey("Input on the amount field updates the display", func() {
			messages <- fastview.ClientMessage{EleId: AmountInputID, Value: "999"}
			So(<-ad.Updates(), ShouldResemble, []fastview.EleUpdate{{
				EleId: AmountDisplayID,
				Ops:   []fastview.Op{{Key: fastview.TextContent, Value: "Amount: EUR 9.99"}},
			}})
		})

		Convey("Input on other elements is ignored", func() {
			messages <- fastview.ClientMessage{EleId: "elsewhere", Value: "1"}
			So(<-ad.Updates(), ShouldBeEmpty)
		})
	})

	Convey("The view defines the input and the display", t, func() {
		ad := &AmountDisplay{}
		root := template.New("root")
		name, err := ad.Parse(root)
		So(err, ShouldBeNil)
		So(root.Lookup(name), ShouldNotBeNil)
	})
}
