package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError describes why a payload could not be decoded into a ChartDataset.
// Field is a path into the payload, e.g. series[0].points[3][1].
type DecodeError struct {
	Field  string
	Found  string
	Reason string
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode chart data")
	if e.Field != "" {
		b.WriteString(": " + e.Field)
	}
	b.WriteString(": " + e.Reason)
	if e.Found != "" {
		b.WriteString(" (found " + e.Found + ")")
	}
	return b.String()
}

// Decode parses a serialized chart payload. It never returns a partially populated
// dataset: any structural problem yields a *DecodeError and a zero ChartDataset.
func Decode(payload string) (ChartDataset, error) {
	if strings.TrimSpace(payload) == "" {
		return ChartDataset{}, &DecodeError{Reason: "empty payload"}
	}

	var root interface{}
	if err := json.Unmarshal([]byte(payload), &root); err != nil {
		return ChartDataset{}, &DecodeError{Reason: "malformed json", Found: err.Error()}
	}

	ds, err := decodeRoot(root)
	if err != nil {
		return ChartDataset{}, err
	}
	return ds, nil
}

func decodeRoot(root interface{}) (ds ChartDataset, err error) {
	obj, ok := root.(map[string]interface{})
	if !ok {
		return ds, &DecodeError{Reason: "expected an object", Found: describe(root)}
	}

	rawSeries, ok := obj["series"]
	if !ok {
		return ds, &DecodeError{Field: "series", Reason: "missing field"}
	}
	items, ok := rawSeries.([]interface{})
	if !ok {
		return ds, &DecodeError{Field: "series", Reason: "expected an array", Found: describe(rawSeries)}
	}

	ds.Series = make([]Series, 0, len(items))
	for i, item := range items {
		s, err := decodeSeries(fmt.Sprintf("series[%d]", i), item)
		if err != nil {
			return ChartDataset{}, err
		}
		ds.Series = append(ds.Series, s)
	}
	return ds, nil
}

func decodeSeries(path string, item interface{}) (s Series, err error) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return s, &DecodeError{Field: path, Reason: "expected an object", Found: describe(item)}
	}

	rawLabel, ok := obj["label"]
	if !ok {
		return s, &DecodeError{Field: path + ".label", Reason: "missing field"}
	}
	if s.Label, ok = rawLabel.(string); !ok {
		return s, &DecodeError{Field: path + ".label", Reason: "expected a string", Found: describe(rawLabel)}
	}

	rawPoints, ok := obj["points"]
	if !ok {
		return s, &DecodeError{Field: path + ".points", Reason: "missing field"}
	}
	points, ok := rawPoints.([]interface{})
	if !ok {
		return s, &DecodeError{Field: path + ".points", Reason: "expected an array", Found: describe(rawPoints)}
	}

	s.Points = make([]Point, 0, len(points))
	for j, rawPoint := range points {
		p, err := decodePoint(fmt.Sprintf("%s.points[%d]", path, j), rawPoint)
		if err != nil {
			return Series{}, err
		}
		s.Points = append(s.Points, p)
	}

	if rawMeta, ok := obj["meta"]; ok && rawMeta != nil {
		if s.Meta, err = decodeMeta(path+".meta", rawMeta); err != nil {
			return Series{}, err
		}
	}
	return s, nil
}

func decodePoint(path string, rawPoint interface{}) (p Point, err error) {
	pair, ok := rawPoint.([]interface{})
	if !ok {
		return p, &DecodeError{Field: path, Reason: "expected an [x, y] array", Found: describe(rawPoint)}
	}
	if len(pair) != 2 {
		return p, &DecodeError{Field: path, Reason: "expected exactly 2 coordinates", Found: fmt.Sprintf("%d", len(pair))}
	}
	if p.X, ok = pair[0].(float64); !ok {
		return p, &DecodeError{Field: path + "[0]", Reason: "expected a number", Found: describe(pair[0])}
	}
	if p.Y, ok = pair[1].(float64); !ok {
		return p, &DecodeError{Field: path + "[1]", Reason: "expected a number", Found: describe(pair[1])}
	}
	return p, nil
}

func decodeMeta(path string, rawMeta interface{}) (meta SeriesMeta, err error) {
	obj, ok := rawMeta.(map[string]interface{})
	if !ok {
		return meta, &DecodeError{Field: path, Reason: "expected an object", Found: describe(rawMeta)}
	}
	if rawName, ok := obj["displayName"]; ok && rawName != nil {
		if meta.DisplayName, ok = rawName.(string); !ok {
			return meta, &DecodeError{Field: path + ".displayName", Reason: "expected a string", Found: describe(rawName)}
		}
	}
	return meta, nil
}

// describe names the json kind of v, for diagnostics.
func describe(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		if r := []rune(t); len(r) > 16 {
			t = string(r[:16]) + "..."
		}
		return fmt.Sprintf("string %q", t)
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func fmtSeriesIndex(i int) string {
	return fmt.Sprintf("Series %d", i+1)
}
