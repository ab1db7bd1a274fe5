package bundle

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/opensource-finance/harrier/internal/domain"
)

// ProgramData feeds the program.html summary page.
type ProgramData struct {
	RulesetID string
	Lookback  domain.Lookback
	Scores    []domain.Score
	Cases     []domain.Case
	Rejects   []domain.RejectedRow
	Sources   []domain.Source
}

// RenderProgram renders the human-readable summary page included in every
// bundle. Rendering is deterministic for fixed input.
func RenderProgram(data ProgramData) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := programTmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("failed to render program page: %w", err)
	}
	return buf.Bytes(), nil
}

var programTmpl = template.Must(template.New("program").Funcs(template.FuncMap{
	"amount": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AML Program Summary</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1a1a1a; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #f2f2f2; }
.band-High { color: #b00020; font-weight: bold; }
.band-Medium { color: #b26a00; }
.band-Low { color: #2e7d32; }
small { color: #666; }
</style>
</head>
<body>
<h1>AML Program Summary</h1>
<p>Ruleset <code>{{.RulesetID}}</code> &middot; lookback {{.Lookback.Start.Format "2006-01-02"}} to {{.Lookback.End.Format "2006-01-02"}}</p>

<h2>Client Risk Scores</h2>
<table>
<tr><th>Client</th><th>Score</th><th>Band</th><th>Reasons</th></tr>
{{range .Scores}}<tr>
<td>{{.ClientID}}</td>
<td>{{.Score}}</td>
<td class="band-{{.Band}}">{{.Band}}</td>
<td><ul>{{range .Reasons}}<li>{{if .Family}}[{{.Family}} +{{.Points}}] {{end}}{{.Text}}</li>{{end}}</ul>
{{if .Narrative}}<small>{{.Narrative}}</small>{{end}}</td>
</tr>{{end}}
</table>

<h2>Cases ({{len .Cases}})</h2>
{{if .Cases}}<table>
<tr><th>Type</th><th>Client</th><th>Rule</th><th>Samples</th></tr>
{{range .Cases}}<tr>
<td>{{.Type}}</td>
<td>{{.ClientID}}</td>
<td>{{.Rule}}</td>
<td>{{range .Samples}}{{.Date.Format "2006-01-02"}} {{.Currency}} {{amount .Amount}}{{if .CounterpartyCountry}} &rarr; {{.CounterpartyCountry}}{{end}}<br>{{end}}</td>
</tr>{{end}}
</table>{{else}}<p>No cases triggered.</p>{{end}}

<h2>Rejected Rows ({{len .Rejects}})</h2>
{{if .Rejects}}<table>
<tr><th>Row</th><th>Reason</th></tr>
{{range .Rejects}}<tr><td>{{.Index}}</td><td>{{.Reason}}</td></tr>{{end}}
</table>{{else}}<p>No rows rejected.</p>{{end}}

<h2>Risk List Sources</h2>
<ul>
{{range .Sources}}<li>{{.Name}} ({{.Publisher}}, as at {{.AsOf}})</li>{{end}}
</ul>
</body>
</html>
`))
