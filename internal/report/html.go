package report

import (
	"bytes"
	"html/template"

	"rugby-scorekeeper/internal/models"
)

var funcs = template.FuncMap{
	"date": func(v View) string { return v.Date.Format("2006-01-02 15:04") },
}

var fullTmpl = template.Must(template.New("full").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Match {{.ID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 24px; color: #222; }
h1 { text-align: center; }
.score { font-size: 28px; font-weight: bold; text-align: center; margin: 16px 0; }
table { border-collapse: collapse; width: 100%; margin-bottom: 16px; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; font-size: 12px; }
th { background: #2b5797; color: #fff; }
.BLUE { color: #2b5797; } .RED { color: #b91d47; }
</style></head>
<body>
<h1>Rugby match report</h1>
<p>Date: {{date .}} &middot; Match: {{.ID}}</p>
<p>Status: <b>{{.Status}}</b>{{if .FinishedEarly}} (finished early){{end}} &middot; Time: {{.MatchTime}}</p>
<div class="score">{{.Scoreline}}</div>
<table><tr><th>Team</th><th>Tries</th><th>Conversions</th><th>Penalties</th><th>Total</th></tr>
{{range .Teams}}<tr><td class="{{.Side}}">{{.Name}}</td><td>{{.Score.Tries}}</td><td>{{.Score.Conversions}}</td><td>{{.Score.Penalties}}</td><td>{{.Score.Total}}</td></tr>
{{end}}</table>
<h2>Scoring</h2>
{{if .Scores}}<table><tr><th>Min</th><th>Team</th><th>Type</th><th>Player</th><th>Pts</th></tr>
{{range .Scores}}<tr><td>{{.Minute}}'</td><td>{{.Team}}</td><td>{{.Kind}}</td><td>{{.Player}}</td><td>{{.Points}}</td></tr>
{{end}}</table>{{else}}<p>No points scored</p>{{end}}
<h2>Cards</h2>
{{if .Cards}}<table><tr><th>Min</th><th>Team</th><th>Player</th><th>Card</th><th>State</th></tr>
{{range .Cards}}<tr><td>{{.Minute}}'</td><td>{{.Team}}</td><td>{{.Player}}</td><td>{{.Kind}}</td><td>{{.State}}</td></tr>
{{end}}</table>{{else}}<p>No cards</p>{{end}}
<h2>Substitutions</h2>
{{if .Subs}}<table><tr><th>Min</th><th>Team</th><th>Off</th><th>On</th></tr>
{{range .Subs}}<tr><td>{{.Minute}}'</td><td>{{.Team}}</td><td>{{.Out}}</td><td>{{.In}}</td></tr>
{{end}}</table>{{else}}<p>No substitutions</p>{{end}}
{{range .Teams}}<h2 class="{{.Side}}">Lineup: {{.Name}}</h2>
<table><tr><th>#</th><th>Player</th><th>Position</th></tr>
{{range .Starters}}<tr><td>{{.Number}}</td><td>{{.Name}}</td><td>{{.Position}}</td></tr>
{{end}}</table>{{end}}
</body></html>`))

var summaryTmpl = template.Must(template.New("summary").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Summary {{.ID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 24px; }
.score { font-size: 24px; font-weight: bold; }
table { border-collapse: collapse; } td, th { border: 1px solid #ccc; padding: 4px 8px; }
</style></head>
<body>
<div class="score">{{.Scoreline}}</div>
<p>{{date .}} &middot; {{.Status}}, {{.MatchTime}}{{if .FinishedEarly}} (finished early){{end}}</p>
<table><tr><th>Team</th><th>T</th><th>C</th><th>P</th><th>Subs</th><th>YC</th><th>RC</th></tr>
{{range .Teams}}<tr><td>{{.Name}}</td><td>{{.Score.Tries}}</td><td>{{.Score.Conversions}}</td><td>{{.Score.Penalties}}</td><td>{{.Subs}}</td><td>{{.Issued.Yellow}}</td><td>{{.Issued.Red}}</td></tr>
{{end}}</table>
</body></html>`))

func render(t *template.Template, m models.Match) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, Build(m)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func HTML(m models.Match) ([]byte, error) { return render(fullTmpl, m) }

func SummaryHTML(m models.Match) ([]byte, error) { return render(summaryTmpl, m) }
