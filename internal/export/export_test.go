package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finance-dashboard/internal/domain"
)

func sample() []domain.Transaction {
	return []domain.Transaction{
		{ID: "2", Amount: decimal.NewFromInt(-350), Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Description: "Feira", Category: "Alimentação", Type: domain.Expense},
		{ID: "1", Amount: decimal.NewFromInt(5000), Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Description: "Maio", Category: "Salário", Type: domain.Income},
		{ID: "0", Amount: decimal.NewFromInt(-80), Date: time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC), Description: "Pizza", Category: "Alimentação", Type: domain.Expense},
	}
}

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}), "missing BOM")
	recs, err := csv.NewReader(bytes.NewReader(b[3:])).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestDetailedCSV(t *testing.T) {
	table, err := Transactions(sample(), Detailed, Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table, CSV))
	recs := readCSV(t, buf.Bytes())

	assert.Equal(t, []string{"Data", "Tipo", "Categoria", "Descrição", "Valor"}, recs[0])
	assert.Equal(t, []string{"03/05/2024", "Despesa", "Alimentação", "Feira", "-350.00"}, recs[1])
	assert.Equal(t, []string{"01/05/2024", "Receita", "Salário", "Maio", "5000.00"}, recs[2])
	assert.Len(t, recs, 4)
}

func TestSummary_FiltersByDate(t *testing.T) {
	table, err := Transactions(sample(), Summary, Options{Start: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table, CSV))
	recs := readCSV(t, buf.Bytes())
	assert.Equal(t, [][]string{
		{"Categoria", "Total"},
		{"Alimentação", "-350.00"},
		{"Salário", "5000.00"},
	}, recs)
}

func TestTransactions_UnknownKind(t *testing.T) {
	_, err := Transactions(nil, "pivot", Options{})
	assert.Error(t, err)
}

func TestTemplateXLSX(t *testing.T) {
	table, err := Template(TemplateBudget)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table, XLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Orçamento"}, f.GetSheetList())
	header, err := f.GetCellValue("Orçamento", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Categoria", header)

	formula, err := f.GetCellFormula("Orçamento", "D2")
	require.NoError(t, err)
	assert.Equal(t, "B2-C2", formula)

	limit, err := f.GetCellValue("Orçamento", "B3")
	require.NoError(t, err)
	assert.Equal(t, "600", limit)
}

func TestTemplateCSV_KeepsFormulaText(t *testing.T) {
	table, err := Template(TemplateInvestments)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table, CSV))
	recs := readCSV(t, buf.Bytes())
	assert.Equal(t, "=(D2-C2)*B2", recs[1][5])
	assert.Equal(t, "35.50", recs[1][2])
}

func TestTemplates_AllKnown(t *testing.T) {
	for _, name := range TemplateNames {
		table, err := Template(name)
		require.NoError(t, err, name)
		assert.Len(t, table.Rows, 2)
		for _, row := range table.Rows {
			assert.Len(t, row, len(table.Columns))
		}
	}
	_, err := Template("Impostos")
	assert.Error(t, err)
}

func TestFileNames(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "transacoes_summary_1700000000123.xlsx", FileName(Summary, XLSX, now))
	assert.Equal(t, "modelo_saídas_1700000000123.csv", TemplateFileName(TemplateExpenses, CSV, now))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, XLSX, f)
	assert.Contains(t, f.ContentType(), "spreadsheetml")
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
