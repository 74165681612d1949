// models contains the chart dataset that bound chart elements carry in their
// data attribute, and the codec for its wire form.
package models

// ChartDataset is an ordered set of series, as plotted by one chart.
type ChartDataset struct {
	Series []Series
}

// Series is a labelled sequence of points. Meta is optional.
type Series struct {
	Label  string
	Points []Point
	Meta   SeriesMeta
}

// Point is a single (x, y) sample. Money values are already in major units.
type Point struct {
	X, Y float64
}

// SeriesMeta holds presentation-only descriptors of a series.
type SeriesMeta struct {
	// DisplayName is shown in tooltips in place of the label, e.g. a month name.
	DisplayName string
}

// Name returns the name shown for the series at index i: the display name if
// one was given, else the label, else a positional name.
func (s Series) Name(i int) string {
	if s.Meta.DisplayName != "" {
		return s.Meta.DisplayName
	}
	if s.Label != "" {
		return s.Label
	}
	return fmtSeriesIndex(i)
}

// NumPoints returns the total number of points across all series.
func (ds ChartDataset) NumPoints() (n int) {
	for _, s := range ds.Series {
		n += len(s.Points)
	}
	return
}
