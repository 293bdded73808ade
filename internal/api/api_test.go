package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/celerix-dev/celerix-admin/internal/engine"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d, err := engine.Seed()
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	store := engine.NewCatalog(d, schema.DefaultSettings(), nil, zerolog.Nop())
	h := NewHandler(store, zerolog.Nop())
	h.Now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	return NewEngine(h, zerolog.Nop()), h
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCollections(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/api/collections", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var out []struct{ Name, Title string }
	json.Unmarshal(w.Body.Bytes(), &out)
	if len(out) != 6 || out[0].Name != "clients" || out[0].Title != "Клиенты" {
		t.Errorf("Unexpected collections %+v", out)
	}
}

func TestListRecords(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/api/collections/clients?q=Иван&status=active", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var res struct {
		Records    []schema.Client `json:"records"`
		Count      int             `json:"count"`
		Total      int             `json:"total"`
		Suggestion string          `json:"suggestion"`
	}
	json.Unmarshal(w.Body.Bytes(), &res)
	if res.Count != 1 || res.Total != 4 || res.Records[0].ID != "1" {
		t.Errorf("Expected only client 1, got %+v", res)
	}

	w = do(r, "GET", "/api/collections/clients?q=Петроф", nil)
	res.Records, res.Suggestion = nil, ""
	json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Records) != 0 || res.Suggestion != "Петров" {
		t.Errorf("Expected an empty list with a suggestion, got %+v", res)
	}

	if w := do(r, "GET", "/api/collections/clients?city=Москва", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an undeclared filter, got %d", w.Code)
	}
	if w := do(r, "GET", "/api/collections/invoices", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown collection, got %d", w.Code)
	}
}

func TestGetRecord(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/api/collections/employees/records/5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var e schema.Employee
	json.Unmarshal(w.Body.Bytes(), &e)
	if e.Name != "Игорь Волков" {
		t.Errorf("Expected employee 5, got %+v", e)
	}

	w = do(r, "GET", "/api/collections/employees/records/42", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "record not found") {
		t.Errorf("Expected 404 record not found, got %d %s", w.Code, w.Body)
	}
}

func TestOptionsAndBoard(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/api/collections/projects/options/priority", nil)
	var opts []string
	json.Unmarshal(w.Body.Bytes(), &opts)
	if strings.Join(opts, ",") != "low,medium,high,critical" {
		t.Errorf("Unexpected options %v", opts)
	}

	w = do(r, "GET", "/api/collections/tasks/board/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var board []listing.Group[schema.Task]
	json.Unmarshal(w.Body.Bytes(), &board)
	if len(board) != 5 || board[0].Key != "backlog" {
		t.Errorf("Expected five columns starting with backlog, got %+v", board)
	}

	if w := do(r, "GET", "/api/collections/tasks/board/due_date", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown filter, got %d", w.Code)
	}

	if w := do(r, "GET", "/api/collections/tasks/board/status?bogus=1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an undeclared filter parameter, got %d", w.Code)
	}
	if w := do(r, "GET", "/api/collections/tasks/board/status?priority=high", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for a declared filter, got %d", w.Code)
	}
}

func TestExportCollection(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/api/collections/partners/export?format=csv&status=pending", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "partners-2025-03-14.csv") {
		t.Errorf("Unexpected disposition %q", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Партнёры") || !strings.Contains(body, "Елена Кузнецова") {
		t.Errorf("Unexpected csv %q", body)
	}

	w = do(r, "GET", "/api/collections/partners/export?format=xlsx", nil)
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("Expected a zip-based xlsx body")
	}

	if w := do(r, "GET", "/api/collections/partners/export?format=docx", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown format, got %d", w.Code)
	}

	if w := do(r, "GET", "/api/collections/partners/export?bogus=1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an undeclared filter, got %d", w.Code)
	}
}

func TestViewLifecycle(t *testing.T) {
	r, h := setupTestRouter(t)

	w := do(r, "POST", "/api/collections/employees/views", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body)
	}
	var created struct {
		ID    string        `json:"id"`
		Frame listing.Frame `json:"frame"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || created.Frame.Count != 5 || created.Frame.Filters["department"] != listing.All {
		t.Fatalf("Unexpected view %+v", created)
	}
	base := "/api/views/" + created.ID

	frame := func(w *httptest.ResponseRecorder) listing.Frame {
		t.Helper()
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
		}
		var f listing.Frame
		json.Unmarshal(w.Body.Bytes(), &f)
		return f
	}

	f := frame(do(r, "PUT", base+"/filters/department", gin.H{"value": "IT"}))
	if f.Count != 2 {
		t.Errorf("Expected two IT employees, got %d", f.Count)
	}

	f = frame(do(r, "PUT", base+"/query", gin.H{"q": "игорь"}))
	if f.Count != 1 || f.IDs[0] != "5" {
		t.Errorf("Expected employee 5, got %v", f.IDs)
	}

	f = frame(do(r, "PUT", base+"/selection/5", nil))
	if !f.DetailOpen || len(f.Detail) == 0 {
		t.Errorf("Expected the detail to open, got %+v", f)
	}

	// The selection survives filters that hide the record.
	do(r, "PUT", base+"/query", gin.H{"q": "nobody"})
	f = frame(do(r, "GET", base, nil))
	if f.Count != 0 || !f.DetailOpen {
		t.Errorf("Expected an empty list with the detail still open, got %+v", f)
	}

	f = frame(do(r, "DELETE", base+"/selection", nil))
	if f.DetailOpen {
		t.Error("Expected the detail to close")
	}

	do(r, "PUT", base+"/query", gin.H{"q": ""})
	f = frame(do(r, "DELETE", base+"/filters", nil))
	if f.Count != 5 {
		t.Errorf("Expected every employee after a reset, got %d", f.Count)
	}

	if w := do(r, "PUT", base+"/filters/salary", gin.H{"value": "1"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown filter, got %d", w.Code)
	}
	if w := do(r, "PUT", base+"/selection/99", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown record, got %d", w.Code)
	}

	if w := do(r, "DELETE", base, nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w := do(r, "GET", base, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a closed view, got %d", w.Code)
	}
	if h.Views.Len() != 0 {
		t.Errorf("Expected no open views, got %d", h.Views.Len())
	}
}

func TestViewForm(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "POST", "/api/collections/clients/views", nil)
	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	base := "/api/views/" + created.ID

	draft := gin.H{"name": "Ольга Смирнова", "email": "olga@example.ru", "status": "lead"}
	if w := do(r, "POST", base+"/form/submit", draft); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 with the form closed, got %d", w.Code)
	}

	w = do(r, "POST", base+"/form", nil)
	var f listing.Frame
	json.Unmarshal(w.Body.Bytes(), &f)
	if !f.FormOpen {
		t.Fatal("Expected the form to open")
	}

	bad := gin.H{"name": "Ольга Смирнова", "email": "not-an-email", "status": "vip"}
	if w := do(r, "POST", base+"/form/submit", bad); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid draft, got %d", w.Code)
	}

	w = do(r, "POST", base+"/form/submit", draft)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var res struct {
		Frame listing.Frame `json:"frame"`
	}
	json.Unmarshal(w.Body.Bytes(), &res)
	if res.Frame.FormOpen || res.Frame.Total != 4 {
		t.Errorf("Expected a closed form and no new record, got %+v", res.Frame)
	}

	do(r, "POST", base+"/form", nil)
	w = do(r, "DELETE", base+"/form", nil)
	json.Unmarshal(w.Body.Bytes(), &f)
	if f.FormOpen {
		t.Error("Expected the form to close")
	}
}

func TestExportView(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "POST", "/api/collections/clients/views?status=active", nil)
	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)

	w = do(r, "GET", "/api/views/"+created.ID+"/export?format=json", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var table struct {
		Title string     `json:"title"`
		Rows  [][]string `json:"rows"`
	}
	json.Unmarshal(w.Body.Bytes(), &table)
	if table.Title != "Клиенты" || len(table.Rows) != 2 {
		t.Errorf("Expected the two active clients, got %+v", table)
	}
}

func TestDashboard(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/api/dashboard?city=Москва", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var v struct {
		Dataset struct {
			Cities []struct{ City string } `json:"cities"`
		} `json:"dataset"`
		Totals struct {
			Revenue int64 `json:"revenue"`
		} `json:"totals"`
	}
	json.Unmarshal(w.Body.Bytes(), &v)
	if len(v.Dataset.Cities) != 1 || v.Dataset.Cities[0].City != "Москва" {
		t.Errorf("Expected only Москва, got %+v", v.Dataset.Cities)
	}
	if v.Totals.Revenue != 12850000 {
		t.Errorf("Expected revenue 12850000, got %d", v.Totals.Revenue)
	}

	if w := do(r, "GET", "/api/dashboard?from=2025-12-02&to=2025-12-01", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a reversed range, got %d", w.Code)
	}

	w = do(r, "GET", "/api/dashboard/options", nil)
	var opts map[string][]string
	json.Unmarshal(w.Body.Bytes(), &opts)
	if len(opts["city"]) == 0 || len(opts["client_type"]) == 0 {
		t.Errorf("Unexpected options %v", opts)
	}

	w = do(r, "GET", "/api/dashboard/export?format=csv", nil)
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "dashboard-report-2025-03-14.csv") {
		t.Errorf("Unexpected disposition %q", got)
	}
	if !strings.Contains(w.Body.String(), "Отчёт по дашборду") {
		t.Errorf("Unexpected report %q", w.Body)
	}

	w = do(r, "GET", "/api/dashboard/export?format=pdf", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("Unexpected pdf reply %d %v", w.Code, w.Header())
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "dashboard-report-2025-03-14.pdf") {
		t.Errorf("Unexpected disposition %q", got)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("Expected a pdf body")
	}
}

func TestSettings(t *testing.T) {
	r, h := setupTestRouter(t)

	s := schema.DefaultSettings()
	s.Theme = "dark"
	s.Profile.Language = "en"
	w := do(r, "PUT", "/api/settings", s)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	if got, _ := h.Store.Settings(); got.Theme != "dark" || got.Profile.Language != "en" {
		t.Errorf("Settings not applied: %+v", got)
	}

	s.Profile.Email = "broken"
	if w := do(r, "PUT", "/api/settings", s); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid email, got %d", w.Code)
	}

	w = do(r, "POST", "/api/settings/reset", nil)
	var got schema.Settings
	json.Unmarshal(w.Body.Bytes(), &got)
	if got != schema.DefaultSettings() {
		t.Errorf("Expected defaults after reset, got %+v", got)
	}

	w = do(r, "GET", "/api/settings", nil)
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.Theme != "light" {
		t.Errorf("Expected light theme, got %q", got.Theme)
	}
}

func TestCORSAndNoRoute(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "OPTIONS", "/api/settings", nil)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Unexpected preflight reply %d %v", w.Code, w.Header())
	}

	w = do(r, "GET", "/api/nothing", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "route not found") {
		t.Errorf("Expected a JSON 404, got %d %s", w.Code, w.Body)
	}
}

func TestViews_Expire(t *testing.T) {
	v := NewViews()
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	d, _ := engine.Seed()
	c := engine.NewCatalog(d, schema.DefaultSettings(), nil, zerolog.Nop())
	ctrl, _ := c.NewView("tasks")
	old := v.Open(ctrl)

	now = now.Add(ViewTTL + time.Minute)
	v.Open(ctrl)

	if err := v.With(old, func(listing.Controller) error { return nil }); err != ErrViewNotFound {
		t.Errorf("Expected the idle view to expire, got %v", err)
	}
	if v.Len() != 1 {
		t.Errorf("Expected one live view, got %d", v.Len())
	}
}
