package insight

import "fmt"

// promptTemplate is the contract with the external model: format instructions
// first, then the retrieved historical context, then the current data. The
// ordering and wording stay fixed so responses remain parseable.
const promptTemplate = `You are an industrial silo operations analyst. Analyze the current silo data using the historical context for reference, and respond with a single JSON object that matches this exact schema:

{
  "summary": string,
  "anomalies": [
    {
      "type": "volume" | "sensor" | "operation",
      "description": string,
      "severity": "low" | "medium" | "high",
      "recommendation": string
    }
  ],
  "trends": [
    {
      "metric": string,
      "description": string,
      "impact": "positive" | "negative" | "neutral"
    }
  ],
  "recommendations": [string]
}

Every field is required. Use empty arrays when there is nothing to report. Respond with JSON only, no surrounding prose.

Historical Context:
%s

Current Silo Data:
%s`

// BuildPrompt assembles the analysis prompt. Context and current data are
// embedded verbatim, never truncated.
func BuildPrompt(context, currentData string) string {
	return fmt.Sprintf(promptTemplate, context, currentData)
}
