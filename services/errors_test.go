package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	ve := newValidationError(FieldRef{Name: "NOMBRE", Label: "Nombre"}, CodeRequired, "es requerido", nil)
	assert.Equal(t, "Error en campo 'Nombre': es requerido", ve.Error())

	unlabeled := &ValidationError{Field: "CORREO", Message: "no es válido"}
	assert.Equal(t, "Error en campo 'CORREO': no es válido", unlabeled.Error())

	nf := &NotFoundError{Entity: "Parcela", ID: int64(8)}
	assert.Equal(t, "Parcela con ID 8 no encontrado", nf.Error())

	iu := &EntityInUseError{Entity: "Finca", ID: int64(3), UsedIn: "parcelas"}
	assert.Equal(t, "No se puede eliminar Finca con ID 3: está siendo usado en parcelas", iu.Error())

	oe := &OperationError{Entity: "hotel", Action: ActionList, Err: errors.New("timeout")}
	assert.Equal(t, "Error listando hotel: timeout", oe.Error())
}

func TestErrorSentinels(t *testing.T) {
	wrapped := fmt.Errorf("saving: %w", &NotFoundError{Entity: "Finca", ID: 1})
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrValidation)

	assert.ErrorIs(t, &ValidationError{}, ErrValidation)
	assert.ErrorIs(t, &EntityInUseError{}, ErrInUse)

	cause := fmt.Errorf("%w: refused", ErrConnection)
	oe := &OperationError{Entity: "finca", Action: ActionGet, Err: cause}
	assert.ErrorIs(t, oe, ErrOperation)
	assert.ErrorIs(t, oe, ErrConnection)
}
