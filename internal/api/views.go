package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/celerix-dev/celerix-admin/internal/export"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

// ErrViewNotFound is returned for an unknown or expired view id.
var ErrViewNotFound = errors.New("view not found")

// ViewTTL is how long an untouched view survives.
const ViewTTL = 30 * time.Minute

// session is one client's list page. Its own lock serializes requests on the
// same view; a listing.View is not safe for concurrent use.
type session struct {
	mu      sync.Mutex
	id      string
	ctrl    listing.Controller
	touched time.Time
}

// Views holds the open list pages, keyed by a random id.
type Views struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewViews() *Views {
	return &Views{sessions: make(map[string]*session), now: time.Now}
}

// Open registers ctrl and returns its id. Views idle for longer than ViewTTL
// are dropped on the way.
func (v *Views) Open(ctrl listing.Controller) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	for id, s := range v.sessions {
		if now.Sub(s.touched) > ViewTTL {
			delete(v.sessions, id)
		}
	}

	id := uuid.NewString()
	v.sessions[id] = &session{id: id, ctrl: ctrl, touched: now}
	return id
}

// With runs fn on the view under its lock.
func (v *Views) With(id string, fn func(ctrl listing.Controller) error) error {
	v.mu.Lock()
	s, ok := v.sessions[id]
	if ok {
		s.touched = v.now()
	}
	v.mu.Unlock()
	if !ok {
		return ErrViewNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ctrl)
}

// Close forgets the view.
func (v *Views) Close(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.sessions[id]; !ok {
		return ErrViewNotFound
	}
	delete(v.sessions, id)
	return nil
}

func (v *Views) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.sessions)
}

// drafts build an empty record to validate a submitted create form against.
var drafts = map[string]func() any{
	schema.ClientsCollection:    func() any { return &schema.Client{} },
	schema.EmployeesCollection:  func() any { return &schema.Employee{} },
	schema.PartnersCollection:   func() any { return &schema.Partner{} },
	schema.ProjectsCollection:   func() any { return &schema.Project{} },
	schema.TasksCollection:      func() any { return &schema.Task{} },
	schema.PromotionsCollection: func() any { return &schema.Promotion{} },
}

// CreateView opens a list page. Query parameters seed its search and filters.
func (h *Handler) CreateView(c *gin.Context) {
	ctrl, err := h.Store.NewView(c.Param("collection"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := applyQuery(c, ctrl); err != nil {
		fail(c, err)
		return
	}
	id := h.Views.Open(ctrl)
	c.JSON(http.StatusCreated, gin.H{"id": id, "frame": ctrl.Frame()})
}

// withView runs fn on the view in the path and replies with its frame.
func (h *Handler) withView(c *gin.Context, fn func(ctrl listing.Controller) error) {
	var frame listing.Frame
	err := h.Views.With(c.Param("id"), func(ctrl listing.Controller) error {
		if err := fn(ctrl); err != nil {
			return err
		}
		frame = ctrl.Frame()
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, frame)
}

func (h *Handler) GetView(c *gin.Context) {
	h.withView(c, func(listing.Controller) error { return nil })
}

func (h *Handler) DeleteView(c *gin.Context) {
	if err := h.Views.Close(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) SetQuery(c *gin.Context) {
	var input struct {
		Query string `json:"q"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.withView(c, func(ctrl listing.Controller) error {
		ctrl.SetQuery(input.Query)
		return nil
	})
}

func (h *Handler) SetFilter(c *gin.Context) {
	var input struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.withView(c, func(ctrl listing.Controller) error {
		return ctrl.SetFilter(c.Param("field"), input.Value)
	})
}

func (h *Handler) ResetFilters(c *gin.Context) {
	h.withView(c, func(ctrl listing.Controller) error {
		ctrl.ResetFilters()
		return nil
	})
}

func (h *Handler) Select(c *gin.Context) {
	h.withView(c, func(ctrl listing.Controller) error {
		return ctrl.SelectID(c.Param("record"))
	})
}

func (h *Handler) ClearSelection(c *gin.Context) {
	h.withView(c, func(ctrl listing.Controller) error {
		ctrl.Clear()
		return nil
	})
}

func (h *Handler) OpenForm(c *gin.Context) {
	h.withView(c, func(ctrl listing.Controller) error {
		ctrl.OpenForm()
		return nil
	})
}

func (h *Handler) CloseForm(c *gin.Context) {
	h.withView(c, func(ctrl listing.Controller) error {
		ctrl.CloseForm()
		return nil
	})
}

// SubmitForm validates the posted draft against the collection's record rules
// and closes the form. Nothing is stored.
func (h *Handler) SubmitForm(c *gin.Context) {
	var status int
	var body any
	err := h.Views.With(c.Param("id"), func(ctrl listing.Controller) error {
		if !ctrl.Frame().FormOpen {
			status, body = http.StatusConflict, gin.H{"error": "form is not open"}
			return nil
		}
		newDraft, ok := drafts[ctrl.Name()]
		if !ok {
			return fmt.Errorf("no create form for %s", ctrl.Name())
		}
		draft := newDraft()
		if err := c.ShouldBindJSON(draft); err != nil {
			status, body = http.StatusBadRequest, gin.H{"error": err.Error()}
			return nil
		}
		ctrl.CloseForm()
		status, body = http.StatusOK, gin.H{"draft": draft, "frame": ctrl.Frame()}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, body)
}

// ExportView downloads the rows the view currently shows.
func (h *Handler) ExportView(c *gin.Context) {
	w, err := export.Lookup(c.DefaultQuery("format", "csv"))
	if err != nil {
		fail(c, err)
		return
	}
	var frame listing.Frame
	err = h.Views.With(c.Param("id"), func(ctrl listing.Controller) error {
		frame = ctrl.Frame()
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	t := export.Table{Title: schema.Titles[frame.Collection], Headers: frame.Headers, Rows: frame.Rows}
	h.send(c, w, t, frame.Collection+"-"+h.Now().Format(time.DateOnly))
}
