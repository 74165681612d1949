package models

import (
	"errors"
	"math/rand"
	"testing"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDecode(t *testing.T) {
	Convey("When decoding a valid payload", t, func() {
		ds, err := Decode(`{"series":[{"label":"Checking","points":[[1,100.00],[2,150.50]]}]}`)
		So(err, ShouldBeNil)
		So(len(ds.Series), ShouldEqual, 1)
		So(ds.Series[0].Label, ShouldEqual, "Checking")
		So(ds.Series[0].Points, ShouldResemble, []Point{{X: 1, Y: 100}, {X: 2, Y: 150.5}})
		So(ds.NumPoints(), ShouldEqual, 2)

		Convey("The display name falls back to the label", func() {
			So(ds.Series[0].Name(0), ShouldEqual, "Checking")
		})
	})

	Convey("When decoding series metadata", t, func() {
		ds, err := Decode(`{"series":[{"label":"2026-09","points":[],"meta":{"displayName":"September"}},{"label":"","points":[]}]}`)
		So(err, ShouldBeNil)
		So(ds.Series[0].Meta.DisplayName, ShouldEqual, "September")
		So(ds.Series[0].Name(0), ShouldEqual, "September")
		So(ds.Series[1].Name(1), ShouldEqual, "Series 2")
	})

	Convey("When decoding an empty series list", t, func() {
		ds, err := Decode(`{"series":[]}`)
		So(err, ShouldBeNil)
		So(ds.Series, ShouldNotBeNil)
		So(len(ds.Series), ShouldEqual, 0)
	})

	Convey("Long strings found in the wrong place are cut on a rune boundary", t, func() {
		_, err := Decode(`{"series":[{"label":"a","points":[["€€€€€€€€€€€€€€€€€€€€",1]]}]}`)
		var derr *DecodeError
		So(errors.As(err, &derr), ShouldBeTrue)
		So(derr.Found, ShouldEqual, `string "€€€€€€€€€€€€€€€€..."`)
		So(utf8.ValidString(derr.Error()), ShouldBeTrue)
	})

	Convey("When decoding malformed payloads", t, func() {
		cases := []struct {
			payload string
			field   string
		}{
			{"", ""},
			{"not-json", ""},
			{`[]`, ""},
			{`{}`, "series"},
			{`{"series":{}}`, "series"},
			{`{"series":[1]}`, "series[0]"},
			{`{"series":[{"points":[]}]}`, "series[0].label"},
			{`{"series":[{"label":7,"points":[]}]}`, "series[0].label"},
			{`{"series":[{"label":"a"}]}`, "series[0].points"},
			{`{"series":[{"label":"a","points":"x"}]}`, "series[0].points"},
			{`{"series":[{"label":"a","points":[[1]]}]}`, "series[0].points[0]"},
			{`{"series":[{"label":"a","points":[[1,2,3]]}]}`, "series[0].points[0]"},
			{`{"series":[{"label":"a","points":[[1,2],["x",2]]}]}`, "series[0].points[1][0]"},
			{`{"series":[{"label":"a","points":[[1,null]]}]}`, "series[0].points[0][1]"},
			{`{"series":[{"label":"a","points":[],"meta":3}]}`, "series[0].meta"},
			{`{"series":[{"label":"a","points":[],"meta":{"displayName":false}}]}`, "series[0].meta.displayName"},
		}
		for _, c := range cases {
			ds, err := Decode(c.payload)
			var decodeErr *DecodeError
			So(errors.As(err, &decodeErr), ShouldBeTrue)
			So(decodeErr.Field, ShouldEqual, c.field)
			So(decodeErr.Error(), ShouldNotBeEmpty)
			So(ds.Series, ShouldBeNil)
		}
	})

	Convey("When decoding arbitrary input", t, func() {
		rng := rand.New(rand.NewSource(7))
		alphabet := []byte(`{}[],:"0123456789.-eabelpointsri `)
		for i := 0; i < 2000; i++ {
			buf := make([]byte, rng.Intn(48))
			for j := range buf {
				buf[j] = alphabet[rng.Intn(len(alphabet))]
			}
			ds, err := Decode(string(buf))
			if err != nil {
				var decodeErr *DecodeError
				So(errors.As(err, &decodeErr), ShouldBeTrue)
				So(ds.Series, ShouldBeNil)
			}
		}
	})
}

func TestEncodePayload(t *testing.T) {
	Convey("When encoding a payload with nil slices", t, func() {
		s, err := EncodePayload(Payload{Series: []PayloadSeries{{Label: "a"}}})
		So(err, ShouldBeNil)
		So(s, ShouldEqual, `{"series":[{"label":"a","points":[]}]}`)

		Convey("It decodes back to the same dataset", func() {
			ds, err := Decode(s)
			So(err, ShouldBeNil)
			So(len(ds.Series), ShouldEqual, 1)
			So(len(ds.Series[0].Points), ShouldEqual, 0)
		})
	})

	Convey("When converting a dataset to its wire form", t, func() {
		ds := ChartDataset{Series: []Series{{
			Label:  "2026-09",
			Points: []Point{{X: 1, Y: 2.5}},
			Meta:   SeriesMeta{DisplayName: "September"},
		}}}
		s, err := EncodePayload(PayloadOf(ds))
		So(err, ShouldBeNil)
		So(s, ShouldEqual, `{"series":[{"label":"2026-09","points":[[1,2.5]],"meta":{"displayName":"September"}}]}`)
	})
}
