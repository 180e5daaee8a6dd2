package handlers

import (
	"errors"
	"net/http"

	"agrocontrol_app_go/services"
	"agrocontrol_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the dialog shown for a failed operation
type ErrorResponse struct {
	Error  string `json:"error"`
	Title  string `json:"title"`
	Field  string `json:"field,omitempty"`
	Entity string `json:"entity,omitempty"`
	UsedIn string `json:"used_in,omitempty"`
}

// renderError maps the error taxonomy onto status codes and translated dialogs
func renderError(c echo.Context, err error) error {
	ctx := c.Request().Context()
	lang := i18n.GetLocale(ctx)

	var (
		ve *services.ValidationError
		nf *services.NotFoundError
		iu *services.EntityInUseError
		oe *services.OperationError
	)
	switch {
	case errors.As(err, &ve):
		status := http.StatusUnprocessableEntity
		if ve.Code == services.CodePositiveID {
			status = http.StatusBadRequest
		}
		return c.JSON(status, ErrorResponse{
			Error: validationMessage(lang, ve),
			Title: i18n.Translate(lang, "errors.validation.title"),
			Field: ve.Field,
		})

	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error: i18n.Translate(lang, "errors.not_found.message",
				map[string]interface{}{"entity": nf.Entity, "id": nf.ID}),
			Title:  i18n.Translate(lang, "errors.not_found.title"),
			Entity: nf.Entity,
		})

	case errors.As(err, &iu):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error: i18n.Translate(lang, "errors.in_use.message",
				map[string]interface{}{"entity": iu.Entity, "id": iu.ID, "used_in": iu.UsedIn}),
			Title:  i18n.Translate(lang, "errors.in_use.title"),
			Entity: iu.Entity,
			UsedIn: iu.UsedIn,
		})

	case errors.Is(err, services.ErrConnection):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: i18n.Translate(lang, "errors.connection.message"),
			Title: i18n.Translate(lang, "errors.connection.title"),
		})

	case errors.As(err, &oe):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: i18n.Translate(lang, "errors.operation.message",
				map[string]interface{}{"action": oe.Action, "entity": oe.Entity}),
			Title:  i18n.Translate(lang, "errors.operation.title"),
			Entity: oe.Entity,
		})
	}

	c.Logger().Errorf("Unhandled error: %v", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: err.Error(),
		Title: i18n.Translate(lang, "errors.operation.title"),
	})
}

// badRequest answers a body that could not be decoded
func badRequest(c echo.Context) error {
	lang := i18n.GetLocale(c.Request().Context())
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: i18n.Translate(lang, "errors.bad_request.message"),
		Title: i18n.Translate(lang, "errors.bad_request.title"),
	})
}

// validationMessage translates a validation error, falling back to its
// Spanish default when the catalog has no entry for the code.
func validationMessage(lang string, ve *services.ValidationError) string {
	if !i18n.Has(lang, ve.Code) {
		return ve.Error()
	}
	params := map[string]interface{}{"field": ve.Label}
	if ve.Label == "" {
		params["field"] = ve.Field
	}
	for k, v := range ve.Params {
		params[k] = v
	}
	return i18n.Translate(lang, ve.Code, params)
}

func validationMessages(lang string, errs map[string]*services.ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for field, ve := range errs {
		out[field] = validationMessage(lang, ve)
	}
	return out
}
