package handlers

import (
	"net/http"

	"agrocontrol_app_go/config"
	"agrocontrol_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CultivoView adds photo uploads to the generic view
type CultivoView struct {
	*EntityView
	svc          *services.CultivoService
	uploadLimits echo.MiddlewareFunc
}

// NewCultivoView builds the crop view. uploadLimits guards the photo route
// and may be nil.
func NewCultivoView(svc *services.CultivoService, theme config.Theme, uploadLimits echo.MiddlewareFunc, log *zap.Logger) *CultivoView {
	return &CultivoView{
		EntityView:   NewEntityView(svc.EntityController, theme, log),
		svc:          svc,
		uploadLimits: uploadLimits,
	}
}

// Register mounts the generic routes plus the photo upload
func (v *CultivoView) Register(g *echo.Group) {
	var mw []echo.MiddlewareFunc
	if v.uploadLimits != nil {
		mw = append(mw, v.uploadLimits)
	}
	g.POST("/:id/photo", v.PhotoHandler, mw...)
	g.GET("/:id/photo", v.PhotoFileHandler)
	v.EntityView.Register(g)
}

// PhotoHandler stores the uploaded "photo" file and answers with the updated
// crop and the refreshed list.
func (v *CultivoView) PhotoHandler(c echo.Context) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	record, err := v.svc.SetPhoto(ctx, c.Param("id"), file)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"record": record,
		"items":  v.svc.List(ctx),
	})
}

// PhotoFileHandler streams the stored photo of a crop
func (v *CultivoView) PhotoFileHandler(c echo.Context) error {
	reader, contentType, err := v.svc.Photo(c.Request().Context(), c.Param("id"))
	if err != nil {
		return renderError(c, err)
	}
	defer reader.Close()
	return c.Stream(http.StatusOK, contentType, reader)
}
