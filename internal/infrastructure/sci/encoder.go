package sci

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/comisiones-api/internal/application/exporting"
)

var _ exporting.DocumentEncoder = (*Encoder)(nil)

var hundred = decimal.NewFromInt(100)

// Encoder arma los registros y codifica el archivo en ISO-8859-1.
// Un registro por línea, separados por una línea en blanco.
type Encoder struct{}

// NewEncoder construye el encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// EncodeServices genera el archivo de comisiones.
func (e *Encoder) EncodeServices(lines []exporting.ServiceLine) ([]byte, error) {
	records := make([]string, 0, len(lines))
	for i, l := range lines {
		rec, err := e.ServiceRecord(l)
		if err != nil {
			return nil, fmt.Errorf("linha %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return e.Encode(records)
}

// EncodeProviders genera el archivo de registro de prestadores.
func (e *Encoder) EncodeProviders(lines []exporting.ProviderLine) ([]byte, error) {
	records := make([]string, 0, len(lines))
	for i, l := range lines {
		rec, err := e.ProviderRecord(l)
		if err != nil {
			return nil, fmt.Errorf("linha %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return e.Encode(records)
}

// ServiceRecord arma un registro de comisión (tipo 20).
func (e *Encoder) ServiceRecord(l exporting.ServiceLine) (string, error) {
	cents, err := wholeUnits(l.Amount.Mul(hundred), "valor")
	if err != nil {
		return "", err
	}
	iss, err := wholeUnits(l.ISSPercentage.Mul(hundred), "percentual iss")
	if err != nil {
		return "", err
	}
	return record(serviceLayout,
		recordTypeService,
		l.CompanyCode,
		l.ProviderCode,
		l.CostCenterCode,
		l.PaymentDate.Format(dateLayout),
		l.RealizationDate.Format(dateLayout),
		fmt.Sprintf("%d", l.DocumentType),
		cents,
		iss,
		"",
	)
}

// ProviderRecord arma un registro de prestador (tipo 10).
func (e *Encoder) ProviderRecord(l exporting.ProviderLine) (string, error) {
	birth := ""
	if l.BirthDate != nil {
		birth = l.BirthDate.Format(dateLayout)
	}
	return record(providerLayout,
		recordTypeProvider,
		l.Document,
		l.Name,
		l.Neighborhood,
		l.Email,
		l.CEP,
		l.MotherName,
		l.PIS,
		l.RGNumber,
		l.RGIssuer,
		birth,
		"",
	)
}

// Encode une los registros y codifica el archivo. Sin registros devuelve nil.
func (e *Encoder) Encode(records []string) ([]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}
	text := strings.Join(records, "\n\n") + "\n"
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("codificar ISO-8859-1: %w", err)
	}
	return out, nil
}

// wholeUnits redondea y exige un valor no negativo.
func wholeUnits(d decimal.Decimal, name string) (string, error) {
	d = d.Round(0)
	if d.IsNegative() {
		return "", fmt.Errorf("%s negativo: %s", name, d)
	}
	return d.String(), nil
}

func record(layout []field, values ...string) (string, error) {
	if len(values) != len(layout) {
		return "", fmt.Errorf("registro com %d campos, layout espera %d", len(values), len(layout))
	}
	var b strings.Builder
	b.Grow(layoutWidth(layout))
	for i, f := range layout {
		s, err := format(f, values[i])
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	if _, err := charmap.ISO8859_1.NewEncoder().String(b.String()); err != nil {
		return "", fmt.Errorf("registro fora de ISO-8859-1: %w", err)
	}
	return b.String(), nil
}

func format(f field, v string) (string, error) {
	switch f.kind {
	case numeric:
		digits := onlyDigits(v)
		if digits == "" && f.blank {
			return strings.Repeat(" ", f.width), nil
		}
		if len(digits) > f.width {
			return "", fmt.Errorf("campo %s excede %d dígitos: %q", f.name, f.width, v)
		}
		return strings.Repeat("0", f.width-len(digits)) + digits, nil
	case alpha:
		return padRight(plain(strings.ToUpper(v)), f.width), nil
	default:
		return padRight(plain(v), f.width), nil
	}
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// stripMarks descompone y elimina las marcas diacríticas: "São João" -> "Sao Joao".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// plain quita acentos, colapsa saltos de línea y reemplaza lo que no entra en ISO-8859-1.
func plain(s string) string {
	out, _, err := transform.String(stripMarks, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case r > 0xFF:
			return '?'
		}
		return r
	}, out)
}

// padRight trunca o completa con espacios hasta width caracteres.
func padRight(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
