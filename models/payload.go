package models

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Payload is the wire form of a ChartDataset, as written into an element's
// data-chart-data attribute by the server side.
type Payload struct {
	Series []PayloadSeries `json:"series"`
}

// PayloadSeries is one series on the wire. Points are [x, y] pairs.
type PayloadSeries struct {
	Label  string       `json:"label"`
	Points [][2]float64 `json:"points"`
	Meta   *PayloadMeta `json:"meta,omitempty"`
}

type PayloadMeta struct {
	DisplayName string `json:"displayName,omitempty"`
}

// EncodePayload serializes a payload. Nil slices are written as empty arrays so the
// result always decodes.
func EncodePayload(p Payload) (string, error) {
	if p.Series == nil {
		p.Series = []PayloadSeries{}
	}
	for i := range p.Series {
		if p.Series[i].Points == nil {
			p.Series[i].Points = [][2]float64{}
		}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "encode chart payload")
	}
	return string(b), nil
}

// PayloadOf converts a dataset back to its wire form.
func PayloadOf(ds ChartDataset) Payload {
	p := Payload{Series: make([]PayloadSeries, 0, len(ds.Series))}
	for _, s := range ds.Series {
		ps := PayloadSeries{Label: s.Label, Points: make([][2]float64, 0, len(s.Points))}
		for _, pt := range s.Points {
			ps.Points = append(ps.Points, [2]float64{pt.X, pt.Y})
		}
		if s.Meta.DisplayName != "" {
			ps.Meta = &PayloadMeta{DisplayName: s.Meta.DisplayName}
		}
		p.Series = append(p.Series, ps)
	}
	return p
}
