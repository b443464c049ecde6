// Package validation envuelve go-playground/validator con las reglas de los documentos brasileños
// que usan el import, el registro de cuentas a pagar y la asignación del código SCI.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	sidPattern      = regexp.MustCompile(`^\d{7}$`)
	sciUnicoPattern = regexp.MustCompile(`^\d{5,10}$`)
	documentPattern = regexp.MustCompile(`^(\d{11}|\d{14})$`)
	cepPattern      = regexp.MustCompile(`^\d{8}$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// Validator validador con las etiquetas sid, sciunico, documento, cep y digits.
type Validator struct {
	v *validator.Validate
}

// New registra las etiquetas propias.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	must(v.RegisterValidation("sid", matchOrEmpty(sidPattern)))
	must(v.RegisterValidation("sciunico", matchOrEmpty(sciUnicoPattern)))
	must(v.RegisterValidation("documento", matchOrEmpty(documentPattern)))
	must(v.RegisterValidation("cep", matchOrEmpty(cepPattern)))
	must(v.RegisterValidation("digits", matchOrEmpty(digitsPattern)))
	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// matchOrEmpty deja que "required" decida sobre el valor vacío.
func matchOrEmpty(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || re.MatchString(s)
	}
}

// Struct valida s y traduce los errores a un mensaje legible.
func (x *Validator) Struct(s interface{}) error {
	err := x.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return &Error{Fields: msgs}
}

// Error errores de validación por campo.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return "validação: " + strings.Join(e.Fields, "; ")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fe.Field())
	case "sid":
		return fmt.Sprintf("%s deve ter exatamente 7 dígitos (%v)", fe.Field(), fe.Value())
	case "sciunico":
		return fmt.Sprintf("%s deve ter de 5 a 10 dígitos (%v)", fe.Field(), fe.Value())
	case "documento":
		return fmt.Sprintf("%s deve ter 11 ou 14 dígitos (%v)", fe.Field(), fe.Value())
	case "cep":
		return fmt.Sprintf("%s deve ter 8 dígitos (%v)", fe.Field(), fe.Value())
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("%s fora do intervalo (%v)", fe.Field(), fe.Value())
	}
	return fmt.Sprintf("%s inválido (%s)", fe.Field(), fe.Tag())
}
