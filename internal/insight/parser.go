package insight

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports a model response that does not conform to the insight
// schema. It carries the raw text so callers can log or surface it; the
// parser never substitutes placeholder data for a malformed response.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %s", e.Reason)
}

// rawInsight mirrors Insight with pointer fields so a missing key can be told
// apart from a present-but-empty one.
type rawInsight struct {
	Summary         *string       `json:"summary"`
	Anomalies       *[]rawAnomaly `json:"anomalies"`
	Trends          *[]rawTrend   `json:"trends"`
	Recommendations *[]string     `json:"recommendations"`
}

type rawAnomaly struct {
	Type           *string `json:"type"`
	Description    *string `json:"description"`
	Severity       *string `json:"severity"`
	Recommendation *string `json:"recommendation"`
}

type rawTrend struct {
	Metric      *string `json:"metric"`
	Description *string `json:"description"`
	Impact      *string `json:"impact"`
}

var anomalyTypes = map[string]bool{AnomalyVolume: true, AnomalySensor: true, AnomalyOperation: true}
var severities = map[string]bool{SeverityLow: true, SeverityMedium: true, SeverityHigh: true}
var impacts = map[string]bool{ImpactPositive: true, ImpactNegative: true, ImpactNeutral: true}

// Parse validates the raw model output against the insight schema. Models tend
// to wrap JSON in markdown fences or prose, so the first balanced-looking
// object is extracted before unmarshalling. Parsing the same text twice yields
// equal results.
func Parse(raw string) (Insight, error) {
	if strings.TrimSpace(raw) == "" {
		return Insight{}, &ParseError{Raw: raw, Reason: "empty response"}
	}

	jsonStr, ok := extractObject(raw)
	if !ok {
		return Insight{}, &ParseError{Raw: raw, Reason: "no JSON object found in response"}
	}

	var parsed rawInsight
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return Insight{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if parsed.Summary == nil {
		return Insight{}, &ParseError{Raw: raw, Reason: "missing required field 'summary'"}
	}
	if parsed.Anomalies == nil {
		return Insight{}, &ParseError{Raw: raw, Reason: "missing required field 'anomalies'"}
	}
	if parsed.Trends == nil {
		return Insight{}, &ParseError{Raw: raw, Reason: "missing required field 'trends'"}
	}
	if parsed.Recommendations == nil {
		return Insight{}, &ParseError{Raw: raw, Reason: "missing required field 'recommendations'"}
	}

	result := Insight{
		Summary:         *parsed.Summary,
		Anomalies:       make([]Anomaly, 0, len(*parsed.Anomalies)),
		Trends:          make([]Trend, 0, len(*parsed.Trends)),
		Recommendations: *parsed.Recommendations,
	}

	for i, a := range *parsed.Anomalies {
		if a.Type == nil || a.Description == nil || a.Severity == nil || a.Recommendation == nil {
			return Insight{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("anomalies[%d] is missing a required field", i)}
		}
		if !anomalyTypes[*a.Type] {
			return Insight{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("anomalies[%d].type '%s' is not one of volume|sensor|operation", i, *a.Type)}
		}
		if !severities[*a.Severity] {
			return Insight{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("anomalies[%d].severity '%s' is not one of low|medium|high", i, *a.Severity)}
		}
		result.Anomalies = append(result.Anomalies, Anomaly{
			Type:           *a.Type,
			Description:    *a.Description,
			Severity:       *a.Severity,
			Recommendation: *a.Recommendation,
		})
	}

	for i, t := range *parsed.Trends {
		if t.Metric == nil || t.Description == nil || t.Impact == nil {
			return Insight{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("trends[%d] is missing a required field", i)}
		}
		if !impacts[*t.Impact] {
			return Insight{}, &ParseError{Raw: raw, Reason: fmt.Sprintf("trends[%d].impact '%s' is not one of positive|negative|neutral", i, *t.Impact)}
		}
		result.Trends = append(result.Trends, Trend{
			Metric:      *t.Metric,
			Description: *t.Description,
			Impact:      *t.Impact,
		})
	}

	return result, nil
}

// extractObject returns the substring from the first '{' to the last '}'.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
