// Package spreadsheet lee planillas xlsx con excelize.
package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/comisiones-api/internal/application/importing"
)

var _ importing.SheetReader = (*Reader)(nil)

// Reader devuelve las filas de la primera hoja del libro.
type Reader struct{}

// NewReader construye el lector.
func NewReader() *Reader { return &Reader{} }

// ReadRows lee la primera hoja. Las celdas numéricas se devuelven con su valor
// almacenado (sin el formato de presentación), para no recibir "1.234,50" o fechas formateadas.
func (r *Reader) ReadRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("abrir planilla: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("planilla sin hojas")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheets[0], err)
	}
	return rows, nil
}
