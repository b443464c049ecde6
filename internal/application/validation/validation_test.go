package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	SID      string `validate:"required,sid"`
	SciUnico string `validate:"omitempty,sciunico"`
	Document string `validate:"documento"`
	Month    int    `validate:"min=1,max=12"`
}

func TestStruct_Valido(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(sample{SID: "7654321", SciUnico: "12345", Document: "12345678901", Month: 5}))
	require.NoError(t, v.Struct(sample{SID: "7654321", Month: 12}))
}

func TestStruct_ErroresTraducidos(t *testing.T) {
	v := New()
	err := v.Struct(sample{SID: "123", SciUnico: "12", Document: "123", Month: 13})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
	assert.Contains(t, err.Error(), "SID deve ter exatamente 7 dígitos")
	assert.Contains(t, err.Error(), "SciUnico deve ter de 5 a 10 dígitos")
}

func TestStruct_Requerido(t *testing.T) {
	err := New().Struct(sample{Month: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SID é obrigatório")
}

func TestStruct_SciUnicoCabeEnElRegistro(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(sample{SID: "7654321", SciUnico: "1234567890", Month: 1}))

	err := v.Struct(sample{SID: "7654321", SciUnico: "12345678901", Month: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SciUnico deve ter de 5 a 10 dígitos")
}
