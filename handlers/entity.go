package handlers

import (
	"net/http"

	"agrocontrol_app_go/config"
	"agrocontrol_app_go/models"
	"agrocontrol_app_go/services"
	"agrocontrol_app_go/services/i18n"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FormDescriptor tells the client how to draw the entity form
type FormDescriptor struct {
	Entity     string               `json:"entity"`
	Plural     string               `json:"plural"`
	Title      string               `json:"title"`
	PrimaryKey string               `json:"primary_key"`
	Fields     []models.FieldSchema `json:"fields"`
	Theme      config.Theme         `json:"theme"`
}

// ListResponse carries the re-rendered list after a read or a mutation
type ListResponse struct {
	ID    int64           `json:"id,omitempty"`
	Items []models.Record `json:"items"`
}

// ValidationResponse is the outcome of a dry-run validation
type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// EntityView exposes one entity controller over HTTP: a form descriptor, the
// list, and the mutations, each of which answers with the refreshed list.
type EntityView struct {
	ctrl  *services.EntityController
	theme config.Theme
	log   *zap.Logger
}

func NewEntityView(ctrl *services.EntityController, theme config.Theme, log *zap.Logger) *EntityView {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityView{
		ctrl:  ctrl,
		theme: theme,
		log:   log.With(zap.String("view", ctrl.Schema().Plural)),
	}
}

// Schema returns the schema of the entity behind the view
func (v *EntityView) Schema() models.EntitySchema {
	return v.ctrl.Schema()
}

// Register mounts the entity routes on g
func (v *EntityView) Register(g *echo.Group) {
	g.GET("", v.ListHandler)
	g.POST("", v.CreateHandler)
	g.GET("/form", v.FormHandler)
	g.GET("/count", v.CountHandler)
	g.POST("/validate", v.ValidateHandler)
	g.GET("/:id", v.GetHandler)
	g.GET("/:id/exists", v.ExistsHandler)
	g.PUT("/:id", v.UpdateHandler)
	g.DELETE("/:id", v.DeleteHandler)
	g.GET("/:id/history", v.HistoryHandler)
}

// FormHandler returns the form descriptor
func (v *EntityView) FormHandler(c echo.Context) error {
	s := v.Schema()
	return c.JSON(http.StatusOK, FormDescriptor{
		Entity:     s.Entity,
		Plural:     s.Plural,
		Title:      i18n.T(c.Request().Context(), "tabs."+s.Plural),
		PrimaryKey: s.PrimaryKey,
		Fields:     s.Fields,
		Theme:      v.theme,
	})
}

// ListHandler returns every record, or the search results when ?q is given
func (v *EntityView) ListHandler(c echo.Context) error {
	ctx := c.Request().Context()
	if c.QueryParams().Has("q") {
		items, err := v.ctrl.Search(ctx, c.QueryParam("q"))
		if err != nil {
			return renderError(c, err)
		}
		return c.JSON(http.StatusOK, ListResponse{Items: items})
	}
	return c.JSON(http.StatusOK, ListResponse{Items: v.ctrl.List(ctx)})
}

// GetHandler returns one record
func (v *EntityView) GetHandler(c echo.Context) error {
	record, err := v.ctrl.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

// ExistsHandler reports whether the record is stored, without loading it
func (v *EntityView) ExistsHandler(c echo.Context) error {
	ok, err := v.ctrl.Exists(c.Request().Context(), c.Param("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": ok})
}

// CreateHandler stores a new record
func (v *EntityView) CreateHandler(c echo.Context) error {
	input, err := bindInput(c)
	if err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	id, err := v.ctrl.Create(ctx, input)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusCreated, ListResponse{ID: id, Items: v.ctrl.List(ctx)})
}

// UpdateHandler replaces an existing record
func (v *EntityView) UpdateHandler(c echo.Context) error {
	input, err := bindInput(c)
	if err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	if err := v.ctrl.Update(ctx, c.Param("id"), input); err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Items: v.ctrl.List(ctx)})
}

// DeleteHandler removes a record
func (v *EntityView) DeleteHandler(c echo.Context) error {
	ctx := c.Request().Context()
	if err := v.ctrl.Delete(ctx, c.Param("id")); err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Items: v.ctrl.List(ctx)})
}

// ValidateHandler checks a form without saving it
func (v *EntityView) ValidateHandler(c echo.Context) error {
	input, err := bindInput(c)
	if err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	ok, errs := v.ctrl.ValidateForUI(ctx, input)
	return c.JSON(http.StatusOK, ValidationResponse{
		Valid:  ok,
		Errors: validationMessages(i18n.GetLocale(ctx), errs),
	})
}

// CountHandler returns the number of stored records
func (v *EntityView) CountHandler(c echo.Context) error {
	n, err := v.ctrl.Count(c.Request().Context())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

// HistoryHandler returns the audit trail of one record
func (v *EntityView) HistoryHandler(c echo.Context) error {
	logs, err := v.ctrl.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": logs})
}
