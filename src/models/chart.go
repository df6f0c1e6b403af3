package models

// -----------------------------------------------------------------------------
// Reconciled series and the chart document built from it
// -----------------------------------------------------------------------------

// MReconciledSeries is the gap-tolerant series aligned to the fixed session
// axis. Values[i] == nil means no data for Labels[i]. Derived, ephemeral,
// recomputed whenever any input changes. len(Values) == len(Labels) always.
type MReconciledSeries struct {
	Labels []string   `json:"labels"`
	Values []*float64 `json:"values"`
}

// -----------------------------------------------------------------------------
// Line chart configuration (data + options contract of the charting library)
// -----------------------------------------------------------------------------

type MChartConfig struct {
	Data    MChartData    `json:"data"`
	Options MChartOptions `json:"options"`
}

type MChartData struct {
	Labels   []string        `json:"labels"`
	Datasets []MChartDataset `json:"datasets"`
}

type MChartDataset struct {
	Label       string     `json:"label"`
	Data        []*float64 `json:"data"`
	BorderColor string     `json:"borderColor"`
	BorderWidth int        `json:"borderWidth"`
	PointRadius int        `json:"pointRadius"`
	Tension     float64    `json:"tension"`
	SpanGaps    bool       `json:"spanGaps"`
}

type MChartOptions struct {
	Title         string          `json:"title"`
	MaxAxisTicks  int             `json:"maxAxisTicks"`
	ReferenceLine *MReferenceLine `json:"referenceLine,omitempty"`
}

// MReferenceLine is the fixed dashed line drawn at the previous close.
type MReferenceLine struct {
	Value  float64 `json:"value"`
	Dashed bool    `json:"dashed"`
	Color  string  `json:"color"`
}
