package handlers

import (
	"net/http"

	"agrocontrol_app_go/config"
	"agrocontrol_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FincaView adds the farm summary and region lookup to the generic view
type FincaView struct {
	*EntityView
	svc *services.FincaService
}

func NewFincaView(svc *services.FincaService, theme config.Theme, log *zap.Logger) *FincaView {
	return &FincaView{EntityView: NewEntityView(svc.EntityController, theme, log), svc: svc}
}

// Register mounts the generic routes plus the farm extras
func (v *FincaView) Register(g *echo.Group) {
	g.GET("/region/:region", v.RegionHandler)
	g.GET("/:id/summary", v.SummaryHandler)
	v.EntityView.Register(g)
}

// SummaryHandler returns a farm with its completeness flags
func (v *FincaView) SummaryHandler(c echo.Context) error {
	summary, err := v.svc.Summary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// RegionHandler lists the farms of one region
func (v *FincaView) RegionHandler(c echo.Context) error {
	items, err := v.svc.ByRegion(c.Request().Context(), c.Param("region"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Items: items})
}
