package tui

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-playground/validator/v10"
	"github.com/hylla/kanban/internal/domain"
)

// formMode selects whether the task form creates or edits.
type formMode int

// formCreate and related constants define the form modes.
const (
	formCreate formMode = iota
	formEdit
)

// formFieldTitle and related constants index the focusable form elements in tab order.
const (
	formFieldTitle = iota
	formFieldCategory
	formFieldBody
	formButtonSave
	formButtonCancel
	formElementCount
)

// formAction is what a key press asks the owning model to do with the form.
type formAction int

// formActionNone and related constants enumerate form outcomes.
const (
	formActionNone formAction = iota
	formActionSubmit
	formActionCancel
)

// taskFormValues is the trimmed form content checked by the validator.
type taskFormValues struct {
	Title    string `validate:"required,max=100"`
	Category string `validate:"max=30"`
	Body     string
}

var formValidate = validator.New()

// taskForm is the add/edit modal. Create and edit differ only in prefill and submit target.
type taskForm struct {
	mode     formMode
	task     domain.Task
	title    textinput.Model
	category textinput.Model
	body     textarea.Model
	focus    int
	errs     map[int]string
}

// newTaskForm opens an empty create form, or an edit form prefilled from task.
func newTaskForm(task *domain.Task) (taskForm, tea.Cmd) {
	body := textarea.New()
	body.Placeholder = "description (markdown)"
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.MaxHeight = 0
	body.SetHeight(5)

	f := taskForm{
		mode:     formCreate,
		title:    newModalInput("", "task title (required)", "", domain.MaxTitleLength+20),
		category: newModalInput("", "category (optional)", "", domain.MaxCategoryNameLength+20),
		body:     body,
		errs:     map[int]string{},
	}
	if task != nil {
		f.mode = formEdit
		f.task = *task
		f.title.SetValue(task.Title)
		f.category.SetValue(task.Category)
		f.body.SetValue(task.Body)
	}
	return f, f.focusElement(formFieldTitle)
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// focusElement moves focus to idx, wrapping around the five elements.
func (f *taskForm) focusElement(idx int) tea.Cmd {
	f.focus = wrapIndex(idx, 0, formElementCount)
	f.title.Blur()
	f.category.Blur()
	f.body.Blur()
	switch f.focus {
	case formFieldTitle:
		return f.title.Focus()
	case formFieldCategory:
		return f.category.Focus()
	case formFieldBody:
		return f.body.Focus()
	}
	return nil
}

// values returns the current content with title and category trimmed.
func (f taskForm) values() taskFormValues {
	return taskFormValues{
		Title:    strings.TrimSpace(f.title.Value()),
		Category: strings.TrimSpace(f.category.Value()),
		Body:     f.body.Value(),
	}
}

// validate checks every field independently and records one message per failing field.
func (f *taskForm) validate() bool {
	f.errs = map[int]string{}
	err := formValidate.Struct(f.values())
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		f.errs[formFieldTitle] = err.Error()
		return false
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Title":
			if fe.Tag() == "required" {
				f.errs[formFieldTitle] = "title is required"
			} else {
				f.errs[formFieldTitle] = fmt.Sprintf("title must be at most %s characters", fe.Param())
			}
		case "Category":
			f.errs[formFieldCategory] = fmt.Sprintf("category must be at most %s characters", fe.Param())
		}
	}
	return len(f.errs) == 0
}

// handleKey applies one key press and reports whether the model should submit or cancel.
func (f *taskForm) handleKey(msg tea.KeyPressMsg) (formAction, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return formActionCancel, nil
	case "ctrl+s":
		return formActionSubmit, nil
	case "tab":
		return formActionNone, f.focusElement(f.focus + 1)
	case "shift+tab", "backtab":
		return formActionNone, f.focusElement(f.focus - 1)
	case "enter":
		switch f.focus {
		case formButtonSave:
			return formActionSubmit, nil
		case formButtonCancel:
			return formActionCancel, nil
		case formFieldTitle, formFieldCategory:
			return formActionNone, f.focusElement(f.focus + 1)
		}
	case "left", "right":
		if f.focus == formButtonSave || f.focus == formButtonCancel {
			next := formButtonSave
			if f.focus == formButtonSave {
				next = formButtonCancel
			}
			return formActionNone, f.focusElement(next)
		}
	}

	return formActionNone, f.updateFocused(msg)
}

// updateFocused forwards msg to the focused input. Buttons swallow it.
func (f *taskForm) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case formFieldTitle:
		f.title, cmd = f.title.Update(msg)
	case formFieldCategory:
		f.category, cmd = f.category.Update(msg)
	case formFieldBody:
		f.body, cmd = f.body.Update(msg)
	}
	return cmd
}

// heading returns the modal title.
func (f taskForm) heading() string {
	if f.mode == formEdit {
		return "Edit Task"
	}
	return "New Task"
}

// view renders the form body. preview is the rendered markdown of the description, if any.
func (f taskForm) view(p palette, width int, preview string) string {
	labelStyle := lipgloss.NewStyle().Foreground(p.muted)
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(p.accent)
	errStyle := lipgloss.NewStyle().Foreground(p.danger)
	hintStyle := lipgloss.NewStyle().Foreground(p.dim)

	fieldWidth := max(18, width-16)
	label := func(idx int, name string) string {
		style := labelStyle
		if f.focus == idx {
			style = activeStyle
		}
		return style.Render(fmt.Sprintf("%-12s", name+":"))
	}

	title, category, body := f.title, f.category, f.body
	title.SetWidth(fieldWidth)
	category.SetWidth(fieldWidth)
	body.SetWidth(fieldWidth)

	lines := []string{activeStyle.Render(f.heading()), ""}
	lines = append(lines, label(formFieldTitle, "title")+" "+title.View())
	if msg := f.errs[formFieldTitle]; msg != "" {
		lines = append(lines, errStyle.Render("  "+msg))
	}
	lines = append(lines, label(formFieldCategory, "category")+" "+category.View())
	if msg := f.errs[formFieldCategory]; msg != "" {
		lines = append(lines, errStyle.Render("  "+msg))
	}
	lines = append(lines, label(formFieldBody, "description"), body.View())
	if preview != "" && f.focus != formFieldBody {
		lines = append(lines, hintStyle.Render("preview"), preview)
	}
	if f.mode == formEdit {
		lines = append(lines, "", hintStyle.Render(fmt.Sprintf(
			"created %s • updated %s",
			formatTimestamp(f.task.CreatedAt),
			formatTimestamp(f.task.UpdatedAt),
		)))
	}

	save, cancel := labelStyle.Render("[ save ]"), labelStyle.Render("[ cancel ]")
	if f.focus == formButtonSave {
		save = activeStyle.Render("[ save ]")
	}
	if f.focus == formButtonCancel {
		cancel = activeStyle.Render("[ cancel ]")
	}
	lines = append(lines, "", save+"  "+cancel)
	lines = append(lines, hintStyle.Render("tab/shift+tab move • enter select • ctrl+s save • esc cancel"))
	return strings.Join(lines, "\n")
}
