package insight

import "sort"

// Anomaly types.
const (
	AnomalyVolume    = "volume"
	AnomalySensor    = "sensor"
	AnomalyOperation = "operation"
)

// Severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Trend impacts.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// Anomaly is one detected irregularity in the analyzed operations.
type Anomaly struct {
	Type           string `json:"type"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// Trend is one identified pattern across the analyzed period.
type Trend struct {
	Metric      string `json:"metric"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Insight is the structured analysis result parsed from the model output.
// It is built once per analysis call and not mutated afterwards.
type Insight struct {
	Summary         string    `json:"summary"`
	Anomalies       []Anomaly `json:"anomalies"`
	Trends          []Trend   `json:"trends"`
	Recommendations []string  `json:"recommendations"`
}

var severityRank = map[string]int{
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

// SortAnomalies orders anomalies high > medium > low, preserving the original
// relative order of equal severities. Callers depend on this ordering when
// rendering reports.
func SortAnomalies(anomalies []Anomaly) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		return severityRank[anomalies[i].Severity] > severityRank[anomalies[j].Severity]
	})
}
