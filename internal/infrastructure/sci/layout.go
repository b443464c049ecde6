// Package sci genera los archivos de ancho fijo que importa SCI Único.
package sci

// fieldKind cómo se formatea un campo.
type fieldKind int

const (
	numeric  fieldKind = iota // dígitos, ceros a la izquierda
	alpha                     // mayúsculas sin acentos, espacios a la derecha
	verbatim                  // sin mayúsculas (email), espacios a la derecha
)

type field struct {
	name  string
	width int
	kind  fieldKind
	blank bool // numérico que queda en espacios cuando no hay valor
}

// Registro de comisión (tipo 20).
var serviceLayout = []field{
	{name: "tipo registro", width: 2, kind: numeric},
	{name: "codigo empresa", width: 5, kind: numeric},
	{name: "codigo prestador", width: 10, kind: numeric},
	{name: "centro de custo", width: 5, kind: numeric},
	{name: "data pagamento", width: 8, kind: numeric},
	{name: "data realizacao", width: 8, kind: numeric},
	{name: "tipo documento", width: 2, kind: numeric},
	{name: "valor", width: 15, kind: numeric},
	{name: "percentual iss", width: 5, kind: numeric},
	{name: "filler", width: 8, kind: alpha},
}

// Registro de prestador (tipo 10).
var providerLayout = []field{
	{name: "tipo registro", width: 2, kind: numeric},
	{name: "documento", width: 14, kind: numeric},
	{name: "nome", width: 60, kind: alpha},
	{name: "bairro", width: 30, kind: alpha},
	{name: "email", width: 60, kind: verbatim},
	{name: "cep", width: 8, kind: numeric},
	{name: "nome mae", width: 60, kind: alpha},
	{name: "pis", width: 11, kind: numeric},
	{name: "rg", width: 15, kind: alpha},
	{name: "orgao emissor", width: 10, kind: alpha},
	{name: "data nascimento", width: 8, kind: numeric, blank: true},
	{name: "filler", width: 40, kind: alpha},
}

const (
	recordTypeProvider = "10"
	recordTypeService  = "20"
	dateLayout         = "02012006"
)

func layoutWidth(layout []field) int {
	n := 0
	for _, f := range layout {
		n += f.width
	}
	return n
}
