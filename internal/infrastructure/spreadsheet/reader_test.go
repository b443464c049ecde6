package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeBook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "comissoes.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadRows_PrimeraHojaConValoresCrudos(t *testing.T) {
	path := writeBook(t, [][]interface{}{
		{"sid", "prestador", "mes", "ano", "principal", "bonus", "ajuste", "hospedagem", "total"},
		{7654321, "Jane Doe", 5, 2024, 100, 10, 0, 0, 110.5},
		{"", "Sem SID"},
	})

	rows, err := NewReader().ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"7654321", "Jane Doe", "5", "2024", "100", "10", "0", "0", "110.5"}, rows[1])
	assert.Equal(t, "Sem SID", rows[2][1])
}

func TestReadRows_ArchivoInvalido(t *testing.T) {
	_, err := NewReader().ReadRows(filepath.Join(t.TempDir(), "no-existe.xlsx"))
	assert.Error(t, err)
}
