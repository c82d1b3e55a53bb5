package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/kanban/internal/app"
	"github.com/hylla/kanban/internal/domain"
)

// Service is the task surface the board drives.
type Service interface {
	LoadBoard(context.Context) (app.Board, error)
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	UpdateTask(context.Context, app.UpdateTaskInput) (domain.Task, error)
	DeleteTask(context.Context, string) error
	PromoteTask(context.Context, string) (domain.Task, error)
	RegressTask(context.Context, string) (domain.Task, error)
}

// screen identifies the active view.
type screen int

// screenEmpty and related constants enumerate the views.
const (
	screenEmpty screen = iota
	screenBoard
	screenForm
	screenDelete
)

// focusKind selects how focus is placed after the next board load.
type focusKind int

// focusKeep and related constants enumerate reload focus rules.
const (
	focusKeep focusKind = iota
	focusFirst
	focusOnPanel
)

// focusRequest is applied once to the next loaded board.
type focusRequest struct {
	kind  focusKind
	panel int
}

// deleteChoiceConfirm and deleteChoiceCancel index the delete screen buttons.
const (
	deleteChoiceConfirm = iota
	deleteChoiceCancel
)

// Model is the Bubble Tea model for the whole board session.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	loaded bool
	// busy is set while a load or mutation command is in flight; key presses are dropped until its result arrives.
	busy bool
	// err is the blocking error notice. Only acknowledge keys are accepted while it is set.
	err error

	status string

	help help.Model
	keys keyMap

	boardCfg      BoardConfig
	confirmDelete bool
	logger        Logger
	copyText      ClipboardFunc
	markdown      *markdownRenderer

	screen  screen
	board   app.Board
	focus   focusState
	pending focusRequest

	form         taskForm
	deleteTarget domain.Task
	deleteChoice int
}

// loadedMsg carries a freshly grouped board.
type loadedMsg struct {
	board app.Board
	err   error
}

// actionMsg carries the result of one persistence command.
type actionMsg struct {
	err        error
	status     string
	focus      focusRequest
	closeModal bool
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:           svc,
		status:        "loading...",
		busy:          true,
		help:          h,
		keys:          newKeyMap(),
		boardCfg:      DefaultBoardConfig(),
		confirmDelete: true,
		copyText:      defaultClipboard,
		markdown:      &markdownRenderer{},
		screen:        screenBoard,
		pending:       focusRequest{kind: focusFirst},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init loads the board.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.logError("load board failed", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.loaded = true
		m.board = msg.board
		m.applyFocus(m.pending)
		m.pending = focusRequest{}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		m.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, app.ErrNotFound) {
				m.logDebug("task vanished, reloading", "err", msg.err)
				m.closeModal()
				m.status = "task no longer exists"
				return m.reload(focusRequest{kind: focusFirst})
			}
			m.logError("task action failed", msg.err)
			m.err = msg.err
			return m, nil
		}
		if msg.closeModal {
			m.closeModal()
		}
		if msg.status != "" {
			m.status = msg.status
			m.logDebug(msg.status)
		}
		return m.reload(msg.focus)

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		if m.screen == screenForm {
			return m, m.form.updateFocused(msg)
		}
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	board, err := m.svc.LoadBoard(context.Background())
	return loadedMsg{board: board, err: err}
}

// reload marks the model busy and schedules a board load that applies req.
func (m Model) reload(req focusRequest) (tea.Model, tea.Cmd) {
	m.pending = req
	m.busy = true
	return m, m.loadData
}

// applyFocus places focus on the current board and picks Empty or Board.
func (m *Model) applyFocus(req focusRequest) {
	sizes := m.board.Sizes()
	if m.board.IsEmpty() {
		m.focus = focusState{}
		if m.screen == screenBoard {
			m.screen = screenEmpty
		}
		return
	}
	if m.screen == screenEmpty {
		m.screen = screenBoard
	}
	switch req.kind {
	case focusFirst:
		m.focus.focusFirstNonEmpty(sizes)
	case focusOnPanel:
		m.focus.focusPanel(sizes, req.panel)
	default:
		m.focus.clamp(sizes)
	}
}

// closeModal drops any form or delete state and returns to the board.
func (m *Model) closeModal() {
	if m.screen == screenForm || m.screen == screenDelete {
		m.screen = screenBoard
	}
	m.form = taskForm{}
	m.deleteTarget = domain.Task{}
	m.deleteChoice = deleteChoiceConfirm
}

// handleKey routes a key press to the active screen.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.err != nil {
		switch msg.String() {
		case "enter", "esc":
			m.err = nil
			m.status = "error dismissed"
		}
		return m, nil
	}
	if m.busy {
		return m, nil
	}
	switch m.screen {
	case screenForm:
		return m.handleFormKey(msg)
	case screenDelete:
		return m.handleDeleteKey(msg)
	default:
		return m.handleBoardKey(msg)
	}
}

// handleBoardKey handles keys on the Board and Empty screens.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		return m, m.openForm(nil)
	}

	if m.screen == screenEmpty {
		return m, nil
	}
	sizes := m.board.Sizes()
	switch {
	case key.Matches(msg, m.keys.moveLeft):
		m.focus.prevPanel(sizes)
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.focus.nextPanel(sizes)
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.focus.rowUp(sizes)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.focus.rowDown(sizes)
		return m, nil
	}

	task, ok := m.focusedTask()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.editTask):
		return m, m.openForm(&task)
	case key.Matches(msg, m.keys.deleteTask):
		if !m.confirmDelete {
			return m.runAction(m.deleteTaskCmd(task))
		}
		m.screen = screenDelete
		m.deleteTarget = task
		m.deleteChoice = deleteChoiceConfirm
		m.status = "confirm delete"
		return m, nil
	case key.Matches(msg, m.keys.promoteTask):
		return m.runAction(m.transitionCmd(task, true))
	case key.Matches(msg, m.keys.regressTask):
		return m.runAction(m.transitionCmd(task, false))
	case key.Matches(msg, m.keys.yankTitle):
		if err := m.copyText(task.Title); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied title"
		return m, nil
	}
	return m, nil
}

// handleFormKey handles keys on the add/edit screen.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.form.handleKey(msg)
	switch action {
	case formActionCancel:
		m.closeModal()
		m.status = "cancelled"
		return m.reload(focusRequest{kind: focusFirst})
	case formActionSubmit:
		return m.submitForm()
	}
	return m, cmd
}

// submitForm validates the form and persists it. Invalid input never reaches the service.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if !m.form.validate() {
		m.status = "fix the highlighted fields"
		return m, nil
	}
	vals := m.form.values()
	if m.form.mode == formEdit {
		return m.runAction(m.updateTaskCmd(m.form.task.ID, vals))
	}
	return m.runAction(m.createTaskCmd(vals))
}

// handleDeleteKey handles keys on the delete confirmation screen.
func (m Model) handleDeleteKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		return m.cancelDelete()
	case "y":
		return m.runAction(m.deleteTaskCmd(m.deleteTarget))
	case "h", "left", "l", "right", "tab", "shift+tab":
		if m.deleteChoice == deleteChoiceConfirm {
			m.deleteChoice = deleteChoiceCancel
		} else {
			m.deleteChoice = deleteChoiceConfirm
		}
		return m, nil
	case "enter":
		if m.deleteChoice == deleteChoiceCancel {
			return m.cancelDelete()
		}
		return m.runAction(m.deleteTaskCmd(m.deleteTarget))
	}
	return m, nil
}

// cancelDelete leaves the delete screen without touching the store.
func (m Model) cancelDelete() (tea.Model, tea.Cmd) {
	m.closeModal()
	m.status = "cancelled"
	return m.reload(focusRequest{kind: focusFirst})
}

// openForm switches to the add/edit screen.
func (m *Model) openForm(task *domain.Task) tea.Cmd {
	form, cmd := newTaskForm(task)
	m.form = form
	m.screen = screenForm
	m.help.ShowAll = false
	if task != nil {
		m.status = "edit task"
	} else {
		m.status = "new task"
	}
	return cmd
}

// runAction marks the model busy and runs one persistence command.
func (m Model) runAction(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = "saving..."
	return m, cmd
}

// createTaskCmd persists a new task from form values.
func (m Model) createTaskCmd(vals taskFormValues) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, err := svc.CreateTask(context.Background(), app.CreateTaskInput{
			Title:        vals.Title,
			Body:         vals.Body,
			CategoryName: vals.Category,
		})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{
			status:     "added " + task.Title,
			focus:      focusRequest{kind: focusFirst},
			closeModal: true,
		}
	}
}

// updateTaskCmd persists edited form values and refocuses the first non-empty panel.
func (m Model) updateTaskCmd(taskID string, vals taskFormValues) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, err := svc.UpdateTask(context.Background(), app.UpdateTaskInput{
			TaskID:       taskID,
			Title:        vals.Title,
			Body:         vals.Body,
			CategoryName: vals.Category,
		})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{
			status:     "updated " + task.Title,
			focus:      focusRequest{kind: focusFirst},
			closeModal: true,
		}
	}
}

// deleteTaskCmd removes a task and refocuses the first non-empty panel.
func (m Model) deleteTaskCmd(task domain.Task) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.DeleteTask(context.Background(), task.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{
			status:     "deleted " + task.Title,
			focus:      focusRequest{kind: focusFirst},
			closeModal: true,
		}
	}
}

// transitionCmd promotes or regresses a task and follows it to its new panel.
func (m Model) transitionCmd(task domain.Task, promote bool) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		apply := svc.RegressTask
		if promote {
			apply = svc.PromoteTask
		}
		moved, err := apply(context.Background(), task.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		status := fmt.Sprintf("%s → %s", moved.Title, strings.ToLower(moved.Status.String()))
		if moved.Status == task.Status {
			status = fmt.Sprintf("%s is already %s", moved.Title, strings.ToLower(moved.Status.String()))
		}
		return actionMsg{
			status: status,
			focus:  focusRequest{kind: focusOnPanel, panel: int(moved.Status)},
		}
	}
}

// focusedTask returns the task under the cursor.
func (m Model) focusedTask() (domain.Task, bool) {
	tasks := m.board.Tasks(m.focus.status())
	if m.focus.row < 0 || m.focus.row >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.focus.row], true
}

// logDebug writes a debug event when a logger is configured.
func (m Model) logDebug(msg string, keyvals ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, keyvals...)
	}
}

// logError writes an error event when a logger is configured.
func (m Model) logError(msg string, err error) {
	if m.logger != nil {
		m.logger.Error(msg, "err", err)
	}
}
