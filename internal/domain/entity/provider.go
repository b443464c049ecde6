package entity

import "time"

// Estados del prestador.
const (
	ProviderStatusActive          = "ativo"
	ProviderStatusUnderReview     = "em-analise"
	ProviderStatusPendingReview   = "pendente-de-revisao"
	ProviderStatusInactive        = "inativo"
	ProviderStatusArchived        = "arquivado"
	ProviderStatusAwaitingERPCode = "aguardando-codigo-sci"
)

// Tipos de prestador.
const (
	ProviderKindIndividual = "pf"
	ProviderKindCompany    = "pj"
)

// Regímenes tributarios admitidos para personas jurídicas.
const (
	TaxRegimeMEI             = "MEI"
	TaxRegimeSimplesNacional = "Simples Nacional"
	TaxRegimeLucroPresumido  = "Lucro Presumido"
	TaxRegimeLucroReal       = "Lucro Real"
)

// Provider representa un prestador de servicios que recibe comisiones.
type Provider struct {
	ID             string
	SID            string
	SciUnico       string // código en SCI Único; vacío hasta que el ERP lo asigne
	Name           string
	Document       string // CPF (11) o CNPJ (14), solo dígitos
	Email          string
	Bank           BankDetails
	Address        Address
	Details        ProviderDetails // nil mientras no se conoce el tipo
	Status         string
	ReviewComments string
	ExportedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Kind devuelve "pf", "pj" o vacío según la variante de Details.
func (p *Provider) Kind() string {
	if p.Details == nil {
		return ""
	}
	return p.Details.Kind()
}

// HasERPCode indica si el prestador ya fue registrado en SCI Único.
func (p *Provider) HasERPCode() bool {
	return p.SciUnico != ""
}

// Individual devuelve los datos de persona física si aplica.
func (p *Provider) Individual() (*IndividualDetails, bool) {
	d, ok := p.Details.(*IndividualDetails)
	return d, ok
}

// BankDetails datos bancarios.
type BankDetails struct {
	Bank        string `json:"banco,omitempty"`
	Agency      string `json:"agencia,omitempty"`
	Account     string `json:"conta,omitempty"`
	AccountType string `json:"tipoConta,omitempty"` // "", corrente, poupanca
}

// Address dirección del prestador.
type Address struct {
	CEP          string `json:"cep,omitempty"`
	Street       string `json:"rua,omitempty"`
	Number       string `json:"numero,omitempty"`
	Complement   string `json:"complemento,omitempty"`
	Neighborhood string `json:"bairro,omitempty"`
	City         string `json:"cidade,omitempty"`
	State        string `json:"estado,omitempty"`
}

// ProviderDetails datos específicos según el tipo de prestador.
// Solo IndividualDetails y CompanyDetails la implementan.
type ProviderDetails interface {
	Kind() string
	isProviderDetails()
}

// IndividualDetails datos de persona física.
type IndividualDetails struct {
	BirthDate  *time.Time `json:"dataNascimento,omitempty"`
	PIS        string     `json:"pis,omitempty"`
	MotherName string     `json:"nomeMae,omitempty"`
	RG         RG         `json:"rg"`
}

// RG documento de identidad.
type RG struct {
	Number string `json:"numero,omitempty"`
	Issuer string `json:"orgaoEmissor,omitempty"`
}

func (*IndividualDetails) Kind() string     { return ProviderKindIndividual }
func (*IndividualDetails) isProviderDetails() {}

// CompanyDetails datos de persona jurídica.
type CompanyDetails struct {
	LegalName           string `json:"razaoSocial,omitempty"`
	TradeName           string `json:"nomeFantasia,omitempty"`
	CNAE                string `json:"codigoCNAE,omitempty"`
	NationalServiceCode string `json:"codigoServicoNacional,omitempty"`
	TaxRegime           string `json:"regimeTributario,omitempty"`
}

func (*CompanyDetails) Kind() string     { return ProviderKindCompany }
func (*CompanyDetails) isProviderDetails() {}
