package schema

// MetricsDimension describes one scoring dimension for display purposes.
type MetricsDimension struct {
	Name    Dimension `json:"name"`
	Purpose string    `json:"purpose"`
	Signals []string  `json:"signals"`
	Weight  float64   `json:"weight"`
}

// MetricsDevice describes one device tier of the size dimension.
type MetricsDevice struct {
	Name    DeviceTier `json:"name"`
	LimitMB float64    `json:"limit_mb"`
}

// MetricsRenderModel contains all processed data needed for displaying metrics definitions.
type MetricsRenderModel struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Dimensions   []MetricsDimension `json:"dimensions"`
	Formula      string             `json:"formula"`
	Devices      []MetricsDevice    `json:"devices"`
	SizeFormula  string             `json:"size_formula"`
	Placeholders []Dimension        `json:"placeholders"`
}
