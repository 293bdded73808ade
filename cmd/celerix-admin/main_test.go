package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupEnv points config and data at a temporary directory.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CELERIX_CONFIG", filepath.Join(dir, "config.toml"))
	t.Setenv("CELERIX_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("CELERIX_STORE_ADDR", "")
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	a := newApp()
	root := a.rootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := a.execute(root)
	return out.String(), errOut.String(), err
}

func TestFailedCommandClosesStore(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("CELERIX_LOG_PATH", filepath.Join(dir, "admin.log"))

	a := newApp()
	root := a.rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"show", "clients", "42"})
	if err := a.execute(root); err == nil || !strings.Contains(err.Error(), "record not found") {
		t.Fatalf("Expected record not found, got %v", err)
	}
	if a.store != nil {
		t.Error("Expected the store to be closed after a failed command")
	}
	if a.logData != nil {
		t.Error("Expected the log file to be closed after a failed command")
	}
}

func TestList(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "list", "clients", "-q", "Иван", "-f", "status=active")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Иван Петров") || strings.Contains(out, "Алексей Иванов") {
		t.Errorf("Expected only the active Иван, got %s", out)
	}

	out, errOut, err := run(t, "list", "clients", "-q", "Петроф")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" || !strings.Contains(errOut, "Возможно, вы искали: Петров") {
		t.Errorf("Expected an empty list and a hint, got %q / %q", out, errOut)
	}

	if _, _, err := run(t, "list", "invoices"); err == nil || !strings.Contains(err.Error(), "collection not found") {
		t.Errorf("Expected collection not found, got %v", err)
	}
}

func TestShowOptionsBoard(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "show", "employees", "5")
	if err != nil || !strings.Contains(out, "Игорь Волков") {
		t.Errorf("Expected employee 5, got %q (%v)", out, err)
	}

	out, _, err = run(t, "options", "projects", "priority")
	if err != nil || out != "low\nmedium\nhigh\ncritical\n" {
		t.Errorf("Unexpected options %q (%v)", out, err)
	}

	out, _, err = run(t, "board")
	if err != nil {
		t.Fatalf("board failed: %v", err)
	}
	if !strings.HasPrefix(out, "Бэклог (1)\n  5 ") {
		t.Errorf("Expected the backlog column first, got %q", out)
	}
}

func TestExport(t *testing.T) {
	dir := setupEnv(t)

	out, _, err := run(t, "export", "partners", "--out", "-", "-f", "status=pending")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "Партнёры") || !strings.Contains(out, "Елена Кузнецова") || strings.Contains(out, "Анна Смирнова") {
		t.Errorf("Unexpected csv %q", out)
	}

	file := filepath.Join(dir, "clients.xlsx")
	if _, _, err := run(t, "export", "clients", "--format", "xlsx", "-o", file); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if info, err := os.Stat(file); err != nil || info.Size() == 0 {
		t.Errorf("Expected a non-empty xlsx file: %v", err)
	}

	out, _, err = run(t, "export", "dashboard", "--format", "json", "--out", "-")
	if err != nil || !strings.Contains(out, "Отчёт по дашборду") {
		t.Errorf("Unexpected dashboard report %q (%v)", out, err)
	}

	if _, _, err := run(t, "export", "clients", "--format", "docx"); err == nil {
		t.Error("Expected an unknown format error")
	}
}

func TestDashboard(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "dashboard", "--city", "Казань")
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if !strings.Contains(out, `"city": "Казань"`) || strings.Contains(out, `"city": "Москва"`) {
		t.Errorf("Expected only Казань, got %s", out)
	}

	if _, _, err := run(t, "dashboard", "--from", "2025-12-02", "--to", "2025-12-01"); err == nil {
		t.Error("Expected an invalid range error")
	}
}

func TestSettings(t *testing.T) {
	setupEnv(t)

	doc := `{"theme":"dark","notifications":{"email":true,"push":false,"sms":false},` +
		`"profile":{"name":"Администратор","email":"admin@fokus.ru","language":"ru","timezone":"Europe/Moscow"},` +
		`"security":{"two_factor":true,"password_age":60}}`
	if _, _, err := run(t, "settings", "set", doc); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}

	out, _, err := run(t, "settings", "show")
	if err != nil || !strings.Contains(out, `"theme": "dark"`) {
		t.Errorf("Expected the saved theme to persist, got %q (%v)", out, err)
	}

	if _, _, err := run(t, "settings", "set", `{"theme":"purple"}`); err == nil {
		t.Error("Expected a validation error")
	}

	out, _, err = run(t, "settings", "reset")
	if err != nil || !strings.Contains(out, `"theme": "light"`) {
		t.Errorf("Expected defaults after reset, got %q (%v)", out, err)
	}
}

func TestBackup(t *testing.T) {
	dir := setupEnv(t)
	target := filepath.Join(dir, "backup")

	if _, _, err := run(t, "backup", target); err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	for _, name := range []string{"clients.json", "tasks.json", "dashboard.json", "settings.json"} {
		if _, err := os.Stat(filepath.Join(target, name)); err != nil {
			t.Errorf("Expected %s in the backup: %v", name, err)
		}
	}
}

func TestConfigAndPing(t *testing.T) {
	dir := setupEnv(t)

	if _, _, err := run(t, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("Expected the config file: %v", err)
	}
	if _, _, err := run(t, "config", "init"); err == nil {
		t.Error("Expected init to refuse an existing file")
	}

	out, _, err := run(t, "config", "show")
	if err != nil || !strings.Contains(out, filepath.Join(dir, "data")) {
		t.Errorf("Expected the data dir in the config, got %q (%v)", out, err)
	}

	if _, _, err := run(t, "ping"); err == nil {
		t.Error("Expected ping to fail without store_addr")
	}
}
