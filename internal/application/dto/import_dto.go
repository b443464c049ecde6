package dto

// ImportResponse resultado de la importación de comisiones.
type ImportResponse struct {
	Message          string `json:"mensagem"`
	Imported         int    `json:"importados"`
	Skipped          int    `json:"ignorados"`
	ProvidersCreated int    `json:"prestadoresCriados"`
}
