// File: services/export_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"school-vote/models"
)

// utf8BOM lets spreadsheet tools detect the encoding of the CSV export.
const utf8BOM = "\uFEFF"

// CSVContentType is the MIME type of ToDelimitedText output.
const CSVContentType = "text/csv; charset=utf-8"

var csvHeader = []string{"Name", "Email", "Vote"}

// SortByName returns a copy of records ordered by voter name using
// Brazilian Portuguese collation, case-insensitive.
func SortByName(records []models.VoteRecord) []models.VoteRecord {
	out := make([]models.VoteRecord, len(records))
	copy(out, records)

	c := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// ToDelimitedText renders a header row plus one row per record, in the
// given order, every field double-quoted, rows separated by "\n" with no
// trailing newline, prefixed by a UTF-8 byte-order mark.
func ToDelimitedText(records []models.VoteRecord) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)
	writeCSVRow(&b, csvHeader)
	for _, rec := range records {
		b.WriteByte('\n')
		writeCSVRow(&b, []string{rec.Name, rec.Email, rec.Vote})
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

// CSVFilename is the suggested download name for an export made at t.
func CSVFilename(t time.Time) string {
	return fmt.Sprintf("resultados-votacao-%s.csv", t.Format("2006-01-02"))
}

// ------------------- printable report -------------------

type reportCard struct {
	Name    string
	Votes   int
	Percent string
}

type reportData struct {
	Total       int
	Invalid     int
	GeneratedAt string
	Cards       []reportCard
	Rows        []models.VoteRecord
}

// ToPrintableDocument renders a self-contained HTML report: summary, one
// card per tally entry with its share of tally.Total, and every vote
// sorted by voter name. The browser's print dialog turns it into a PDF.
func ToPrintableDocument(records []models.VoteRecord, tally models.Tally, generatedAt time.Time) ([]byte, error) {
	data := reportData{
		Total:       tally.Total,
		Invalid:     tally.Invalid,
		GeneratedAt: generatedAt.Format("02/01/2006 15:04:05"),
		Rows:        SortByName(records),
	}
	for _, e := range tally.Entries {
		data.Cards = append(data.Cards, reportCard{
			Name:    e.Name,
			Votes:   e.Votes,
			Percent: FormatPercentage(e.Votes, tally.Total),
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="utf-8">
  <title>Resultados da Votação</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; color: #333; }
    h1 { color: #2563eb; text-align: center; margin-bottom: 30px; }
    .summary { margin: 20px 0; padding: 15px; background-color: #f8f9fa; border-radius: 8px; }
    .results-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 15px; margin: 20px 0; }
    .result-card { border: 2px solid #e9ecef; padding: 20px; text-align: center; border-radius: 8px; }
    .result-number { font-size: 2.5em; font-weight: bold; color: #2563eb; margin: 10px 0; }
    .percentage { color: #6c757d; font-size: 0.9em; }
    table { width: 100%; border-collapse: collapse; margin-top: 20px; }
    th, td { border: 1px solid #dee2e6; padding: 12px; text-align: left; }
    th { background-color: #e9ecef; }
    tr:nth-child(even) { background-color: #f8f9fa; }
    .footer { margin-top: 30px; text-align: center; color: #6c757d; font-size: 0.9em; border-top: 1px solid #dee2e6; padding-top: 20px; }
    @media print { body { margin: 0; } }
  </style>
</head>
<body>
  <h1>Resultados da Votação</h1>

  <div class="summary">
    <h2>Resumo dos Resultados</h2>
    <p><strong>Total de votos:</strong> <span id="total">{{.Total}}</span></p>
    {{if .Invalid}}<p><strong>Votos não reconhecidos:</strong> {{.Invalid}}</p>{{end}}
    <p><strong>Data do relatório:</strong> {{.GeneratedAt}}</p>
  </div>

  <div class="results-grid">
    {{range .Cards}}
    <div class="result-card">
      <h3>{{.Name}}</h3>
      <div class="result-number">{{.Votes}}</div>
      <p class="percentage">{{.Percent}} dos votos</p>
    </div>
    {{end}}
  </div>

  <h2>Detalhes dos Votos</h2>
  <table>
    <thead>
      <tr><th>Nome do Eleitor</th><th>Email</th><th>Voto</th></tr>
    </thead>
    <tbody>
      {{range .Rows}}
      <tr><td>{{.Name}}</td><td>{{.Email}}</td><td><strong>{{.Vote}}</strong></td></tr>
      {{end}}
    </tbody>
  </table>

  <div class="footer">
    <p>Relatório gerado automaticamente pelo Sistema de Votação Escolar</p>
    <p>Gerado em: {{.GeneratedAt}}</p>
  </div>
  <script>window.addEventListener("load", function () { setTimeout(function () { window.print(); }, 500); });</script>
</body>
</html>
`))
