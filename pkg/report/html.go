package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Forensic Analysis Report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { border-bottom: 2px solid #444; padding-bottom: 0.3em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.5em 0.8em; text-align: left; vertical-align: top; }
th { background: #f0f0f0; }
.level-Low { color: #2e7d32; font-weight: bold; }
.level-Moderate { color: #f9a825; font-weight: bold; }
.level-High { color: #ef6c00; font-weight: bold; }
.level-Very.High, .level-VeryHigh { color: #c62828; font-weight: bold; }
.status-error, .status-tool_unavailable { color: #c62828; }
.verdict { font-size: 1.2em; margin: 1em 0; }
.meta { color: #666; font-size: 0.9em; }
</style>
</head>
<body>
<h1>Forensic Analysis Report</h1>
<p class="meta">Image: {{.Image}}<br>Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
{{if .Evidence}}
<h2>Evidence</h2>
<table>
<tr><th>Original</th><td>{{.Evidence.OriginalPath}}</td></tr>
<tr><th>Working copy</th><td>{{.Evidence.WorkingCopy}}</td></tr>
<tr><th>Size</th><td>{{.Evidence.Size}} bytes</td></tr>
<tr><th>MD5</th><td><code>{{.Evidence.MD5}}</code></td></tr>
<tr><th>SHA-1</th><td><code>{{.Evidence.SHA1}}</code></td></tr>
<tr><th>SHA-256</th><td><code>{{.Evidence.SHA256}}</code></td></tr>
</table>
{{end}}
<p class="verdict">Overall verdict: <span class="level-{{.Summary.Verdict}}">{{.Summary.Verdict}}</span></p>
<h2>Results</h2>
<table>
<tr><th>Analyzer</th><th>Status</th><th>Score</th><th>Level</th><th>Interpretation</th></tr>
{{range $name := .Order}}{{with index $.Results $name}}
<tr>
<td>{{.Analyzer}}</td>
<td class="status-{{.Status}}">{{.Status}}</td>
<td>{{printf "%.2f" .SuspicionScore}}</td>
<td class="level-{{.SuspicionLevel}}">{{.SuspicionLevel}}</td>
<td>{{if .Error}}{{.Error}}{{else}}{{.Interpretation}}{{end}}</td>
</tr>
{{end}}{{end}}
</table>
</body>
</html>
`))

// WriteHTML persists the report as a timestamped HTML page and returns its
// path.
func (w *Writer) WriteHTML(report *Report) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(w.outputDir, fmt.Sprintf("report_%s.html", report.GeneratedAt.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := htmlTemplate.Execute(f, report); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	w.log.Infof("wrote HTML report to %s", path)
	return path, nil
}
