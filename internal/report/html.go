package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agenthands/silosight/internal/insight"
)

// Generator renders an Insight as a standalone HTML report and persists it
// under the configured reports directory.
type Generator struct {
	reportsDir string
	tmpl       *template.Template
}

func NewGenerator(reportsDir string) (*Generator, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Generator{reportsDir: reportsDir, tmpl: tmpl}, nil
}

type templateData struct {
	Insight     insight.Insight
	GeneratedAt string
}

// Render produces the report HTML.
func (g *Generator) Render(ins insight.Insight) (string, error) {
	var b strings.Builder
	err := g.tmpl.Execute(&b, templateData{
		Insight:     ins,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return b.String(), nil
}

// Save writes the report under the reports directory, creating it if absent.
// Filenames embed an ISO timestamp with ':' and '.' replaced by '-' so they
// stay filesystem-safe. Returns the bare filename.
func (g *Generator) Save(html string) (string, error) {
	if err := os.MkdirAll(g.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	timestamp := strings.NewReplacer(":", "-", ".", "-").Replace(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	filename := fmt.Sprintf("silo-report-%s.html", timestamp)

	path := filepath.Join(g.reportsDir, filename)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return filename, nil
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Silo Operations Analysis Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
          font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
          line-height: 1.6;
          color: #333;
          background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
          min-height: 100vh;
          padding: 20px;
        }
        .container {
          max-width: 1200px;
          margin: 0 auto;
          background: white;
          border-radius: 15px;
          box-shadow: 0 20px 40px rgba(0,0,0,0.1);
          overflow: hidden;
        }
        .header {
          background: linear-gradient(135deg, #2c3e50 0%, #3498db 100%);
          color: white;
          padding: 40px 30px;
          text-align: center;
        }
        .header h1 { font-size: 2.5em; margin-bottom: 10px; font-weight: 300; }
        .content { padding: 40px 30px; }
        .section { margin-bottom: 40px; }
        .section-title {
          font-size: 1.8em;
          margin-bottom: 20px;
          color: #2c3e50;
          border-bottom: 3px solid #3498db;
          padding-bottom: 10px;
        }
        .summary-box {
          background: linear-gradient(135deg, #f8f9fa 0%, #e9ecef 100%);
          padding: 25px;
          border-radius: 10px;
          border-left: 5px solid #3498db;
          font-size: 1.1em;
          line-height: 1.7;
        }
        .card-grid {
          display: grid;
          grid-template-columns: repeat(auto-fit, minmax(350px, 1fr));
          gap: 20px;
        }
        .anomaly-card {
          background: white;
          border-radius: 10px;
          padding: 25px;
          box-shadow: 0 5px 15px rgba(0,0,0,0.08);
          border-left: 5px solid;
        }
        .anomaly-card.high { border-left-color: #e74c3c; }
        .anomaly-card.medium { border-left-color: #f39c12; }
        .anomaly-card.low { border-left-color: #f1c40f; }
        .severity-badge {
          display: inline-block;
          padding: 5px 12px;
          border-radius: 20px;
          font-size: 0.8em;
          font-weight: bold;
          text-transform: uppercase;
          margin-bottom: 15px;
        }
        .severity-high { background: #e74c3c; color: white; }
        .severity-medium { background: #f39c12; color: white; }
        .severity-low { background: #f1c40f; color: #333; }
        .card-heading { font-size: 1.2em; font-weight: 600; color: #2c3e50; margin-bottom: 10px; }
        .card-body { color: #555; margin-bottom: 15px; }
        .card-recommendation {
          background: #ecf0f1;
          padding: 15px;
          border-radius: 8px;
          border-left: 3px solid #3498db;
          font-style: italic;
        }
        .trend-card {
          background: white;
          border-radius: 10px;
          padding: 25px;
          box-shadow: 0 5px 15px rgba(0,0,0,0.08);
          border-left: 5px solid;
        }
        .trend-card.positive { border-left-color: #27ae60; }
        .trend-card.negative { border-left-color: #e74c3c; }
        .trend-card.neutral { border-left-color: #95a5a6; }
        .impact-badge {
          display: inline-block;
          padding: 5px 12px;
          border-radius: 20px;
          font-size: 0.8em;
          font-weight: bold;
          text-transform: uppercase;
          margin-bottom: 15px;
          color: white;
        }
        .impact-positive { background: #27ae60; }
        .impact-negative { background: #e74c3c; }
        .impact-neutral { background: #95a5a6; }
        .recommendations-list { list-style: none; }
        .recommendations-list li {
          background: white;
          margin-bottom: 15px;
          padding: 20px;
          border-radius: 10px;
          box-shadow: 0 3px 10px rgba(0,0,0,0.05);
          border-left: 4px solid #3498db;
        }
        .timestamp {
          text-align: center;
          color: #7f8c8d;
          font-size: 0.9em;
          margin-top: 30px;
          padding-top: 20px;
          border-top: 1px solid #ecf0f1;
        }
        .no-data {
          text-align: center;
          color: #7f8c8d;
          font-style: italic;
          padding: 40px;
          background: #f8f9fa;
          border-radius: 10px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Silo Operations Analysis</h1>
            <div>Comprehensive Operational Insights &amp; Recommendations</div>
        </div>

        <div class="content">
            <div class="section">
                <h2 class="section-title">Executive Summary</h2>
                <div class="summary-box">{{.Insight.Summary}}</div>
            </div>

            <div class="section">
                <h2 class="section-title">Detected Anomalies</h2>
                {{if .Insight.Anomalies}}
                <div class="card-grid">
                    {{range .Insight.Anomalies}}
                    <div class="anomaly-card {{.Severity}}">
                        <div class="severity-badge severity-{{.Severity}}">{{.Severity}} severity</div>
                        <div class="card-heading">{{title .Type}} Anomaly</div>
                        <div class="card-body">{{.Description}}</div>
                        <div class="card-recommendation"><strong>Recommendation:</strong> {{.Recommendation}}</div>
                    </div>
                    {{end}}
                </div>
                {{else}}
                <div class="no-data">No anomalies detected. Operations appear normal.</div>
                {{end}}
            </div>

            <div class="section">
                <h2 class="section-title">Operational Trends</h2>
                {{if .Insight.Trends}}
                <div class="card-grid">
                    {{range .Insight.Trends}}
                    <div class="trend-card {{.Impact}}">
                        <div class="impact-badge impact-{{.Impact}}">{{.Impact}} impact</div>
                        <div class="card-heading">{{.Metric}}</div>
                        <div class="card-body">{{.Description}}</div>
                    </div>
                    {{end}}
                </div>
                {{else}}
                <div class="no-data">No significant trends identified in the current data period.</div>
                {{end}}
            </div>

            <div class="section">
                <h2 class="section-title">Recommendations</h2>
                {{if .Insight.Recommendations}}
                <ul class="recommendations-list">
                    {{range .Insight.Recommendations}}<li>{{.}}</li>
                    {{end}}
                </ul>
                {{else}}
                <div class="no-data">No specific recommendations at this time.</div>
                {{end}}
            </div>

            <div class="timestamp">Report generated on {{.GeneratedAt}}</div>
        </div>
    </div>
</body>
</html>
`
