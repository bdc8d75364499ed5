package tui

import (
	"strings"

	"taskdeck/internal/i18n"
	"taskdeck/internal/task"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// taskMode 面板内部状态机 / taskMode is the dashboard's inner state machine
type taskMode int

const (
	taskModeList taskMode = iota
	taskModeForm
	taskModeConfirm
)

// tasksView 任务面板状态
// tasksView holds the dashboard state
type tasksView struct {
	mode    taskMode
	cursor  int
	filter  task.Filter
	loading bool
	busy    bool
	errMsg  string
	width   int

	// 表单 / Form
	editingID  string
	titleInput textinput.Model
	descInput  textarea.Model
	formFocus  int

	// 删除确认 / Delete confirmation
	deleteTarget task.Task
}

func newTasksView(locale *i18n.I18n) tasksView {
	title := textinput.New()
	title.Placeholder = locale.T("tasks.field_title")
	title.CharLimit = 200
	title.Width = 50

	desc := textarea.New()
	desc.Placeholder = locale.T("tasks.field_desc")
	desc.CharLimit = 2000
	desc.SetHeight(3)
	desc.SetWidth(50)

	return tasksView{
		titleInput: title,
		descInput:  desc,
	}
}

func (v *tasksView) setWidth(width int) {
	v.width = width
}

func (v *tasksView) clampCursor(visible int) {
	if v.cursor >= visible {
		v.cursor = visible - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// updateTasksKey 处理任务面板按键 / updateTasksKey handles dashboard keys
func (a App) updateTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.tasksView.mode {
	case taskModeForm:
		return a.updateTaskFormKey(msg)
	case taskModeConfirm:
		return a.updateTaskConfirmKey(msg)
	}
	return a.updateTaskListKey(msg)
}

func (a App) updateTaskListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.tasksView.busy || a.tasksView.loading {
		return a, nil
	}
	visible := a.visibleTasks()

	switch {
	case key.Matches(msg, a.keys.Up):
		if a.tasksView.cursor > 0 {
			a.tasksView.cursor--
		}
		return a, nil
	case key.Matches(msg, a.keys.Down):
		if a.tasksView.cursor < len(visible)-1 {
			a.tasksView.cursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.Filter):
		// 过滤器三态轮转 / Cycle the three-way filter
		a.tasksView.filter = (a.tasksView.filter + 1) % 3
		a.tasksView.clampCursor(len(a.visibleTasks()))
		return a, nil

	case key.Matches(msg, a.keys.Reload):
		a.tasksView.loading = true
		return a, a.loadTasksCmd()

	case key.Matches(msg, a.keys.NewTask):
		a.tasksView.mode = taskModeForm
		a.tasksView.editingID = ""
		a.tasksView.titleInput.SetValue("")
		a.tasksView.descInput.SetValue("")
		a.tasksView.formFocus = 0
		a.tasksView.errMsg = ""
		a.tasksView.descInput.Blur()
		return a, a.tasksView.titleInput.Focus()

	case key.Matches(msg, a.keys.EditTask):
		if len(visible) == 0 {
			return a, nil
		}
		t := visible[a.tasksView.cursor]
		a.tasksView.mode = taskModeForm
		a.tasksView.editingID = t.ID
		a.tasksView.titleInput.SetValue(t.Title)
		a.tasksView.descInput.SetValue(t.Description)
		a.tasksView.formFocus = 0
		a.tasksView.errMsg = ""
		a.tasksView.descInput.Blur()
		return a, a.tasksView.titleInput.Focus()

	case key.Matches(msg, a.keys.DeleteTask):
		if len(visible) == 0 {
			return a, nil
		}
		a.tasksView.mode = taskModeConfirm
		a.tasksView.deleteTarget = visible[a.tasksView.cursor]
		return a, nil

	case key.Matches(msg, a.keys.ToggleDone):
		if len(visible) == 0 {
			return a, nil
		}
		a.tasksView.busy = true
		return a, a.toggleTaskCmd(visible[a.tasksView.cursor])

	case key.Matches(msg, a.keys.ToggleChat):
		a.chatView.open = true
		a.refreshChat()
		return a, a.chatView.input.Focus()

	case key.Matches(msg, a.keys.Logout):
		a.logout()
		return a, a.focusAuthField()
	}
	return a, nil
}

func (a App) updateTaskFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.tasksView.busy {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.tasksView.mode = taskModeList
		a.tasksView.errMsg = ""
		return a, nil

	case key.Matches(msg, a.keys.NextField):
		a.tasksView.formFocus = 1 - a.tasksView.formFocus
		if a.tasksView.formFocus == 0 {
			a.tasksView.descInput.Blur()
			return a, a.tasksView.titleInput.Focus()
		}
		a.tasksView.titleInput.Blur()
		return a, a.tasksView.descInput.Focus()

	case key.Matches(msg, a.keys.Submit):
		// 描述多行输入中回车换行，标题上回车提交
		// Enter submits from the title field; inside the description it
		// inserts a newline as usual.
		if a.tasksView.formFocus != 0 {
			break
		}
		draft := task.Draft{
			Title:       strings.TrimSpace(a.tasksView.titleInput.Value()),
			Description: strings.TrimSpace(a.tasksView.descInput.Value()),
		}
		if draft.Title == "" {
			a.tasksView.errMsg = a.locale.T("tasks.title_required")
			return a, nil
		}
		a.tasksView.busy = true
		a.tasksView.errMsg = ""
		return a, a.saveTaskCmd(a.tasksView.editingID, draft)
	}

	var cmd tea.Cmd
	a.tasksView, cmd = a.tasksView.updateFormInputs(msg)
	return a, cmd
}

// updateTaskConfirmKey 删除需要显式确认，y 确认，其余取消
// updateTaskConfirmKey: deletion needs explicit confirmation, y to
// confirm, anything else cancels
func (a App) updateTaskConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.tasksView.busy {
		return a, nil
	}
	switch msg.String() {
	case "y", "Y":
		a.tasksView.busy = true
		a.tasksView.mode = taskModeList
		return a, a.deleteTaskCmd(a.tasksView.deleteTarget.ID)
	default:
		a.tasksView.mode = taskModeList
		return a, nil
	}
}

func (v tasksView) updateFormInputs(msg tea.Msg) (tasksView, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.titleInput, cmd = v.titleInput.Update(msg)
	cmds = append(cmds, cmd)
	v.descInput, cmd = v.descInput.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

// --- 渲染 / Rendering ---

func (a App) renderTasks() string {
	switch a.tasksView.mode {
	case taskModeForm:
		return a.renderTaskForm()
	case taskModeConfirm:
		return a.renderTaskConfirm()
	}
	return a.renderTaskList()
}

func (a App) renderTaskList() string {
	var parts []string
	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("tasks.title")))

	// 过滤器行 / Filter row
	var tabs []string
	for _, f := range []task.Filter{task.FilterAll, task.FilterActive, task.FilterCompleted} {
		label := a.locale.T("filter." + f.String())
		style := a.theme.FilterOffStyle
		if f == a.tasksView.filter {
			style = a.theme.FilterOnStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	parts = append(parts, " "+lipgloss.JoinHorizontal(lipgloss.Top, tabs...))

	// 统计行基于完整列表，与过滤器无关
	// Stats derive from the full list regardless of the active filter
	stats := a.tasks.Stats()
	parts = append(parts, a.theme.MutedStyle.Render(
		"  "+a.locale.T("tasks.stats", stats.Total, stats.Pending, stats.Completed)))
	parts = append(parts, "")

	switch {
	case a.tasksView.loading:
		parts = append(parts, "  "+a.theme.MutedStyle.Render(a.locale.T("tasks.loading")))
	default:
		visible := a.visibleTasks()
		if len(visible) == 0 {
			empty := a.locale.T("tasks.empty")
			if a.tasksView.filter != task.FilterAll {
				label := a.locale.T("filter." + a.tasksView.filter.String())
				empty = a.locale.T("tasks.empty_filtered", label)
			}
			parts = append(parts, "  "+a.theme.MutedStyle.Render(empty))
		}
		for i, t := range visible {
			parts = append(parts, a.renderTaskLine(t, i == a.tasksView.cursor))
		}
	}

	if a.tasksView.busy {
		parts = append(parts, "")
		parts = append(parts, "  "+a.theme.MutedStyle.Render(a.locale.T("tasks.saving")))
	}
	if a.tasksView.errMsg != "" {
		parts = append(parts, "")
		parts = append(parts, "  "+a.theme.ErrorStyle.Render(a.tasksView.errMsg))
	}

	parts = append(parts, "")
	hints := strings.Join([]string{
		a.hint(a.keys.NewTask, "keys.new"), a.hint(a.keys.EditTask, "keys.edit"),
		a.hint(a.keys.DeleteTask, "keys.delete"), a.hint(a.keys.ToggleDone, "keys.toggle"),
		a.hint(a.keys.Filter, "keys.filter"),
	}, " · ")
	parts = append(parts, "  "+a.theme.MutedStyle.Render(hints))

	body := strings.Join(parts, "\n")
	return lipgloss.NewStyle().Height(a.contentHeight()).Render(body)
}

func (a App) renderTaskLine(t task.Task, selected bool) string {
	box := "[ ]"
	if t.Complete {
		box = "[✓]"
	}
	title := t.Title
	line := "  " + box + " " + title
	if t.Description != "" {
		line += a.theme.MutedStyle.Render("  — " + truncate(t.Description, 40))
	}

	switch {
	case selected:
		return a.theme.SelectedStyle.Render(line)
	case t.Complete:
		return a.theme.DoneStyle.Render(line)
	default:
		return line
	}
}

func (a App) renderTaskForm() string {
	heading := a.locale.T("tasks.form_new")
	if a.tasksView.editingID != "" {
		heading = a.locale.T("tasks.form_edit")
	}

	var parts []string
	parts = append(parts, a.theme.TitleStyle.Render(" "+heading))
	parts = append(parts, "")
	parts = append(parts, "  "+a.theme.LabelStyle.Render(a.locale.T("tasks.field_title")))
	parts = append(parts, "  "+a.tasksView.titleInput.View())
	parts = append(parts, "")
	parts = append(parts, "  "+a.theme.LabelStyle.Render(a.locale.T("tasks.field_desc")))
	parts = append(parts, indentLines(a.tasksView.descInput.View(), "  "))
	parts = append(parts, "")

	if a.tasksView.busy {
		parts = append(parts, "  "+a.theme.MutedStyle.Render(a.locale.T("tasks.saving")))
	}
	if a.tasksView.errMsg != "" {
		parts = append(parts, "  "+a.theme.ErrorStyle.Render(a.tasksView.errMsg))
	}
	parts = append(parts, "")
	formHints := strings.Join([]string{
		a.hint(a.keys.Submit, "keys.save"),
		a.hint(a.keys.NextField, "keys.field"),
		a.hint(a.keys.Cancel, "keys.cancel"),
	}, " · ")
	parts = append(parts, "  "+a.theme.MutedStyle.Render(formHints))

	body := strings.Join(parts, "\n")
	return lipgloss.NewStyle().Height(a.contentHeight()).Render(body)
}

func (a App) renderTaskConfirm() string {
	prompt := a.locale.T("tasks.confirm_delete", a.tasksView.deleteTarget.Title)
	var parts []string
	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("tasks.title")))
	parts = append(parts, "")
	parts = append(parts, "  "+a.theme.DangerStyle.Render(prompt))
	body := strings.Join(parts, "\n")
	return lipgloss.NewStyle().Height(a.contentHeight()).Render(body)
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
