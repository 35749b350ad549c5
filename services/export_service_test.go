// file: services/export_service_test.go
package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-vote/models"
)

func sampleRecords() []models.VoteRecord {
	return []models.VoteRecord{
		{Name: "Bruno Costa", Email: "bruno.costa@escola.pr.gov.br", Vote: models.OptionChapa2},
		{Name: "Ana Silva", Email: "ana.silva@escola.pr.gov.br", Vote: models.OptionChapa1},
		{Name: "Álvaro Lima", Email: "alvaro.lima@escola.pr.gov.br", Vote: models.OptionVotoNulo},
	}
}

func TestToDelimitedText_LinesAndQuoting(t *testing.T) {
	recs := sampleRecords()
	out := string(ToDelimitedText(recs))

	require.True(t, strings.HasPrefix(out, "\uFEFF"), "export starts with a BOM")
	lines := strings.Split(strings.TrimPrefix(out, "\uFEFF"), "\n")
	require.Len(t, lines, len(recs)+1)

	assert.Equal(t, `"Name","Email","Vote"`, lines[0])
	// input order is preserved
	assert.Equal(t, `"Bruno Costa","bruno.costa@escola.pr.gov.br","Chapa 2"`, lines[1])
	for _, l := range lines {
		assert.Len(t, strings.Split(l, `","`), 3, l)
		assert.True(t, strings.HasPrefix(l, `"`) && strings.HasSuffix(l, `"`), l)
	}
}

func TestToDelimitedText_Empty(t *testing.T) {
	out := string(ToDelimitedText(nil))
	assert.Equal(t, "\uFEFF"+`"Name","Email","Vote"`, out)
}

func TestToDelimitedText_EscapesEmbeddedQuotes(t *testing.T) {
	out := string(ToDelimitedText([]models.VoteRecord{{Name: `Ana "Aninha", Silva`, Email: "a@escola.pr.gov.br", Vote: "Chapa 1"}}))
	assert.Contains(t, out, `"Ana ""Aninha"", Silva","a@escola.pr.gov.br","Chapa 1"`)
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "resultados-votacao-2025-09-01.csv", CSVFilename(time.Date(2025, 9, 1, 23, 0, 0, 0, time.UTC)))
}

func TestSortByName_Collation(t *testing.T) {
	in := sampleRecords()
	sorted := SortByName(in)

	assert.Equal(t, []string{"Álvaro Lima", "Ana Silva", "Bruno Costa"},
		[]string{sorted[0].Name, sorted[1].Name, sorted[2].Name})
	// input untouched
	assert.Equal(t, "Bruno Costa", in[0].Name)
}

func TestToPrintableDocument(t *testing.T) {
	recs := sampleRecords()
	tally := ComputeTally(recs)
	when := time.Date(2025, 9, 1, 14, 5, 0, 0, time.UTC)

	doc, err := ToPrintableDocument(recs, tally, when)
	require.NoError(t, err)
	html := string(doc)

	assert.Contains(t, html, `<span id="total">3</span>`)
	assert.Contains(t, html, "01/09/2025 14:05:00")
	assert.Contains(t, html, "33.3% dos votos")
	assert.Contains(t, html, "0.0% dos votos") // Chapa 3
	assert.NotContains(t, html, "Votos não reconhecidos")

	// per-voter table is sorted by name
	iAlvaro := strings.Index(html, "Álvaro Lima")
	iAna := strings.Index(html, "Ana Silva")
	iBruno := strings.Index(html, "Bruno Costa")
	assert.True(t, iAlvaro < iAna && iAna < iBruno)
}

func TestToPrintableDocument_NoVotes(t *testing.T) {
	doc, err := ToPrintableDocument(nil, ComputeTally(nil), time.Now())
	require.NoError(t, err)
	html := string(doc)

	assert.Contains(t, html, `<span id="total">0</span>`)
	assert.Equal(t, 4, strings.Count(html, "0.0% dos votos"))
	assert.NotContains(t, html, "NaN")
}

func TestToPrintableDocument_EscapesNames(t *testing.T) {
	recs := []models.VoteRecord{{Name: "<script>alert(1)</script>", Email: "x@escola.pr.gov.br", Vote: "Chapa 1"}}
	doc, err := ToPrintableDocument(recs, ComputeTally(recs), time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "<script>alert(1)</script>")
}
