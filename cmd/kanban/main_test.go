package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/kanban/internal/adapters/storage/sqlite"
	"github.com/hylla/kanban/internal/config"
	"github.com/hylla/kanban/internal/domain"
)

// TestMain pins dev mode off so tests never write workspace log files by default.
func TestMain(m *testing.M) {
	_ = os.Setenv("KANBAN_DEV_MODE", "false")
	os.Exit(m.Run())
}

type fakeProgram struct {
	runErr error
}

func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// scriptedProgram drives the real model without a terminal.
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

func stubProgram(t *testing.T, factory func(tea.Model) program) {
	t.Helper()
	orig := programFactory
	t.Cleanup(func() { programFactory = orig })
	programFactory = factory
}

// applyModelMsg applies one message and drains the resulting command chain.
func applyModelMsg(t *testing.T, model tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	return applyModelCmd(t, updated, cmd)
}

func applyModelCmd(t *testing.T, model tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	out := model
	currentCmd := cmd
	for i := 0; i < 8 && currentCmd != nil; i++ {
		updated, nextCmd := out.Update(currentCmd())
		out = updated
		currentCmd = nextCmd
	}
	return out
}

// pressModel applies one message and drops its command. Text inputs answer with cursor blink ticks.
func pressModel(model tea.Model, msg tea.Msg) tea.Model {
	updated, _ := model.Update(msg)
	return updated
}

func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "kanban version dev") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestRunStartsProgram(t *testing.T) {
	stubProgram(t, func(tea.Model) program { return fakeProgram{} })

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "kanban.db")
	cfgDir := filepath.Join(tmp, "conf", "kanban")
	err := run(context.Background(), []string{"--db", dbPath, "--config", filepath.Join(cfgDir, "missing.toml")}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected tables ensured at %s, stat error %v", dbPath, err)
	}
	if info, err := os.Stat(cfgDir); err != nil || !info.IsDir() {
		t.Fatalf("expected config dir created at %s, stat error %v", cfgDir, err)
	}
}

func TestRunPropagatesProgramError(t *testing.T) {
	stubProgram(t, func(tea.Model) program { return fakeProgram{runErr: errors.New("tty gone")} })

	tmp := t.TempDir()
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanban.db"), "--config", filepath.Join(tmp, "c.toml")}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "tty gone") {
		t.Fatalf("expected program error, got %v", err)
	}
}

func TestRunScriptedSessionPersistsTasks(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "kanban.db")

	stubProgram(t, func(m tea.Model) program {
		return scriptedProgram{
			model: m,
			runFn: func(current tea.Model) (tea.Model, error) {
				current = applyModelCmd(t, current, current.Init())
				current = applyModelMsg(t, current, tea.WindowSizeMsg{Width: 120, Height: 40})
				if rendered := renderModel(current); !strings.Contains(rendered, "No tasks yet.") {
					t.Fatalf("expected empty screen, got\n%s", rendered)
				}

				current = pressModel(current, tea.KeyPressMsg{Code: 'a', Text: "a"})
				for _, r := range "Write changelog" {
					current = pressModel(current, tea.KeyPressMsg{Code: r, Text: string(r)})
				}
				current = pressModel(current, tea.KeyPressMsg{Code: tea.KeyTab})
				for _, r := range "Docs" {
					current = pressModel(current, tea.KeyPressMsg{Code: r, Text: string(r)})
				}
				current = applyModelMsg(t, current, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
				current = applyModelMsg(t, current, tea.KeyPressMsg{Code: 'p', Text: "p"})

				rendered := renderModel(current)
				if !strings.Contains(rendered, "In progress (1)") || !strings.Contains(rendered, "Write changelog") {
					t.Fatalf("expected promoted task on board, got\n%s", rendered)
				}
				return current, nil
			},
		}
	})

	if err := run(context.Background(), []string{"--db", dbPath, "--config", filepath.Join(tmp, "c.toml")}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	repo, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = repo.Close() }()
	tasks, err := repo.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != domain.StatusInProgress || tasks[0].Category != "Docs" {
		t.Fatalf("unexpected persisted tasks %#v", tasks)
	}
	categories, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Docs" {
		t.Fatalf("unexpected categories %#v", categories)
	}
}

func TestRunInvalidFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--unknown-flag"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"unknown-command"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	stubProgram(t, func(tea.Model) program { return fakeProgram{} })

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "env.db")
	cfgPath := filepath.Join(tmp, "env.toml")
	cfgContent := "[database]\npath = \"" + filepath.ToSlash(filepath.Join(tmp, "ignored.db")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("KANBAN_CONFIG", cfgPath)
	t.Setenv("KANBAN_DB_PATH", dbPath)

	if err := run(context.Background(), nil, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(with env paths) error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db created at env path, stat error %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "ignored.db")); err == nil {
		t.Fatal("expected env db path to override config file path")
	}
}

func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--app", "kanx", "--dev", "paths"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"app: kanx", "dev_mode: true", "kanx-dev", "db: "} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in paths output, got %q", want, output)
		}
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	stubProgram(t, func(tea.Model) program {
		t.Fatal("program must not start with invalid config")
		return nil
	})
	cases := map[string]string{
		"logging level": "[logging]\nlevel = \"loud\"\n",
		"board order":   "[board]\norder = \"alphabetical\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			tmp := t.TempDir()
			cfgPath := filepath.Join(tmp, "kanban.toml")
			if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			err := run(context.Background(), []string{"--db", filepath.Join(tmp, "kanban.db"), "--config", cfgPath}, io.Discard, io.Discard)
			if err == nil || !strings.Contains(err.Error(), "load config") {
				t.Fatalf("expected config load error, got %v", err)
			}
		})
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("KANBAN_BOOL_TEST", "true")
	got, ok := parseBoolEnv("KANBAN_BOOL_TEST")
	if !ok || !got {
		t.Fatalf("expected true bool env parse, got value=%t ok=%t", got, ok)
	}

	t.Setenv("KANBAN_BOOL_TEST", "not-bool")
	if _, ok := parseBoolEnv("KANBAN_BOOL_TEST"); ok {
		t.Fatal("expected invalid bool env to return ok=false")
	}
}

func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	stubProgram(t, func(tea.Model) program { return fakeProgram{} })

	workspace := t.TempDir()
	t.Chdir(workspace)

	var stderr bytes.Buffer
	args := []string{"--dev", "--db", filepath.Join(workspace, "kanban.db"), "--config", filepath.Join(workspace, "config.toml")}
	if err := run(context.Background(), args, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	logDir := filepath.Join(workspace, ".kanban", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
			break
		}
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s", logDir)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected TUI lifecycle entries in dev log, got %q", content)
	}
	if !strings.Contains(string(content), "tasks=0") || !strings.Contains(string(content), "categories=0") {
		t.Fatalf("expected store summary in dev log, got %q", content)
	}
	if strings.Contains(stderr.String(), "starting tui program loop") {
		t.Fatalf("expected console muted while the board runs, got %q", stderr.String())
	}
}

func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/kanban.db").Logging

	logger, err := newRuntimeLogger(&console, "kanban", false, cfg, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log outside dev mode, got %q", logger.DevLogPath())
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected unmuted entries, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
}

func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "kanban")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

func TestDevLogFilePathNamesFileByAppAndDay(t *testing.T) {
	dir := t.TempDir()
	got, err := devLogFilePath(dir, "my app", time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	if want := filepath.Join(dir, "my-app-20260222.log"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if stem := sanitizeLogFileStem(" / "); stem != "kanban" {
		t.Fatalf("expected fallback stem, got %q", stem)
	}
}

func renderModel(m tea.Model) string {
	type viewer interface{ View() tea.View }
	v, ok := m.(viewer)
	if !ok {
		return ""
	}
	return fmt.Sprint(v.View().Content)
}
