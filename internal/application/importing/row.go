package importing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Columnas de la planilla de comisiones, por posición.
const (
	colSID = iota
	colProviderName
	colMonth
	colYear
	colPrincipal
	colBonus
	colCommercialAdjustment
	colHostingFee
	colTotal
	columnCount
)

// Row fila de la planilla ya convertida.
type Row struct {
	Line                 int    `validate:"-"`
	SID                  string `validate:"required,sid"`
	ProviderName         string `validate:"required"`
	Month                int    `validate:"min=1,max=12"`
	Year                 int    `validate:"min=1900,max=9999"`
	Principal            decimal.Decimal
	Bonus                decimal.Decimal
	CommercialAdjustment decimal.Decimal
	HostingFee           decimal.Decimal
	Total                decimal.Decimal
}

// RowError falla de una fila: la fila no se persistió y el import se detuvo en ella.
type RowError struct {
	Line   int
	Values []string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("linha %d %v: %v", e.Line, e.Values, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// blank indica si la fila no tiene sid o nombre; esas filas se ignoran sin error.
func blank(cells []string) bool {
	return cell(cells, colSID) == "" || cell(cells, colProviderName) == ""
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// parseRow convierte las celdas. line es el número de línea en la planilla (1 = cabecera).
func parseRow(line int, cells []string) (Row, error) {
	r := Row{
		Line:         line,
		SID:          trimIntegral(cell(cells, colSID)),
		ProviderName: cell(cells, colProviderName),
	}
	var err error
	if r.Month, err = parseInt(cell(cells, colMonth)); err != nil {
		return r, fmt.Errorf("mês de competência: %w", err)
	}
	if r.Year, err = parseInt(cell(cells, colYear)); err != nil {
		return r, fmt.Errorf("ano de competência: %w", err)
	}
	amounts := []struct {
		dst  *decimal.Decimal
		col  int
		name string
	}{
		{&r.Principal, colPrincipal, "valor principal"},
		{&r.Bonus, colBonus, "valor bônus"},
		{&r.CommercialAdjustment, colCommercialAdjustment, "valor ajuste comercial"},
		{&r.HostingFee, colHostingFee, "valor hospedagem anúncio"},
		{&r.Total, colTotal, "valor total"},
	}
	for _, a := range amounts {
		if *a.dst, err = parseAmount(cell(cells, a.col)); err != nil {
			return r, fmt.Errorf("%s: %w", a.name, err)
		}
	}
	return r, nil
}

// trimIntegral quita el ".0" que dejan las celdas numéricas.
func trimIntegral(s string) string {
	if i := strings.IndexByte(s, '.'); i > 0 && strings.Trim(s[i+1:], "0") == "" {
		return s[:i]
	}
	return s
}

func parseInt(s string) (int, error) {
	d, err := parseAmount(s)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%q não é inteiro", s)
	}
	return int(d.IntPart()), nil
}

// parseAmount acepta "1234.5", "1.234,50" y celda vacía (= 0).
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "R$")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q não é numérico", s)
	}
	return d, nil
}
