// Package api serves the admin store over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/internal/export"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
	"github.com/celerix-dev/celerix-admin/pkg/sdk"
)

// Store is what the handlers need on top of the SDK surface: stateful list
// pages and the dashboard filter values.
type Store interface {
	sdk.AdminStore
	Source(collection string) (listing.Source, error)
	NewView(collection string) (listing.Controller, error)
	DashboardOptions() map[string][]string
}

type Handler struct {
	Store Store
	Views *Views
	Log   zerolog.Logger
	Now   func() time.Time
}

func NewHandler(s Store, log zerolog.Logger) *Handler {
	return &Handler{
		Store: s,
		Views: NewViews(),
		Log:   log.With().Str("component", "api").Logger(),
		Now:   time.Now,
	}
}

// Register mounts every route on g.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/collections", h.GetCollections)
	g.GET("/collections/:collection", h.ListRecords)
	g.GET("/collections/:collection/records/:id", h.GetRecord)
	g.GET("/collections/:collection/options/:field", h.GetOptions)
	g.GET("/collections/:collection/board/:field", h.GetBoard)
	g.GET("/collections/:collection/export", h.ExportCollection)

	g.POST("/collections/:collection/views", h.CreateView)
	g.GET("/views/:id", h.GetView)
	g.DELETE("/views/:id", h.DeleteView)
	g.PUT("/views/:id/query", h.SetQuery)
	g.PUT("/views/:id/filters/:field", h.SetFilter)
	g.DELETE("/views/:id/filters", h.ResetFilters)
	g.PUT("/views/:id/selection/:record", h.Select)
	g.DELETE("/views/:id/selection", h.ClearSelection)
	g.POST("/views/:id/form", h.OpenForm)
	g.DELETE("/views/:id/form", h.CloseForm)
	g.POST("/views/:id/form/submit", h.SubmitForm)
	g.GET("/views/:id/export", h.ExportView)

	g.GET("/dashboard", h.GetDashboard)
	g.GET("/dashboard/options", h.GetDashboardOptions)
	g.GET("/dashboard/export", h.ExportDashboard)

	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.PutSettings)
	g.POST("/settings/reset", h.ResetSettings)
}

// fail writes err as {"error": ...} with a status derived from its kind.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sdk.ErrCollectionNotFound),
		errors.Is(err, sdk.ErrRecordNotFound),
		errors.Is(err, ErrViewNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sdk.ErrUnknownFilter),
		errors.Is(err, sdk.ErrInvalidRange),
		errors.Is(err, export.ErrUnknownFormat):
		status = http.StatusBadRequest
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) GetCollections(c *gin.Context) {
	names, err := h.Store.Collections()
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(names))
	for _, n := range names {
		out = append(out, gin.H{"name": n, "title": schema.Titles[n]})
	}
	c.JSON(http.StatusOK, out)
}

// ListRecords filters a collection by ?q= and one query parameter per filter.
func (h *Handler) ListRecords(c *gin.Context) {
	ctrl, err := h.Store.NewView(c.Param("collection"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := applyQuery(c, ctrl); err != nil {
		fail(c, err)
		return
	}

	f := ctrl.Frame()
	res := gin.H{
		"records": f.Records,
		"count":   f.Count,
		"total":   f.Total,
	}
	if f.Suggestion != "" {
		res["suggestion"] = f.Suggestion
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetRecord(c *gin.Context) {
	rec, err := h.Store.Get(c.Param("collection"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetOptions(c *gin.Context) {
	opts, err := h.Store.Options(c.Param("collection"), c.Param("field"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *Handler) GetBoard(c *gin.Context) {
	q, err := h.query(c)
	if err != nil {
		fail(c, err)
		return
	}
	board, err := h.Store.Board(c.Param("collection"), c.Param("field"), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *Handler) ExportCollection(c *gin.Context) {
	w, err := export.Lookup(c.DefaultQuery("format", "csv"))
	if err != nil {
		fail(c, err)
		return
	}
	q, err := h.query(c)
	if err != nil {
		fail(c, err)
		return
	}
	collection := c.Param("collection")
	t, err := h.Store.Table(collection, q)
	if err != nil {
		fail(c, err)
		return
	}
	h.send(c, w, t, collection+"-"+h.Now().Format(time.DateOnly))
}

func (h *Handler) GetDashboard(c *gin.Context) {
	var f dashboard.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.Store.Dashboard(f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetDashboardOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.DashboardOptions())
}

func (h *Handler) ExportDashboard(c *gin.Context) {
	w, err := export.Lookup(c.DefaultQuery("format", "csv"))
	if err != nil {
		fail(c, err)
		return
	}
	var f dashboard.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.Store.Dashboard(f)
	if err != nil {
		fail(c, err)
		return
	}
	t, base := dashboard.Report(view.Dataset, h.Now())
	h.send(c, w, t, base)
}

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.Store.Settings()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) PutSettings(c *gin.Context) {
	var s schema.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.SaveSettings(s); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) ResetSettings(c *gin.Context) {
	s, err := h.Store.ResetSettings()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// query reads ?q= and the filter parameters of the collection in the path.
// Like applyQuery, it rejects parameters that are neither q, format nor a
// declared filter.
func (h *Handler) query(c *gin.Context) (listing.Query, error) {
	src, err := h.Store.Source(c.Param("collection"))
	if err != nil {
		return listing.Query{}, err
	}
	declared := make(map[string]bool)
	for _, name := range src.FilterNames() {
		declared[name] = true
	}
	q := listing.Query{Text: c.Query("q"), Filters: map[string]string{}}
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 || key == "q" || key == "format" {
			continue
		}
		if !declared[key] {
			return listing.Query{}, fmt.Errorf("%w: %s", listing.ErrUnknownFilter, key)
		}
		q.Filters[key] = values[0]
	}
	return q, nil
}

// applyQuery copies ?q= and the filter parameters onto ctrl. Parameters that
// are neither q, format nor a declared filter are rejected.
func applyQuery(c *gin.Context, ctrl listing.Controller) error {
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		switch key {
		case "q":
			ctrl.SetQuery(values[0])
		case "format":
		default:
			if err := ctrl.SetFilter(key, values[0]); err != nil {
				return err
			}
		}
	}
	return nil
}

// send writes t through w as a download named base plus the writer's
// extension.
func (h *Handler) send(c *gin.Context, w export.Writer, t export.Table, base string) {
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(base, w)+`"`)
	c.Header("Content-Type", w.ContentType())
	c.Status(http.StatusOK)
	if err := w.Write(c.Writer, t); err != nil {
		h.Log.Error().Err(err).Str("format", w.Format()).Msg("export failed")
		c.Error(err)
	}
}
