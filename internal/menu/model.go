package menu

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	selectedCursorConstant    = "> "
	unselectedCursorConstant  = "  "
	previewSeparatorConstant  = " "
	menuHelpTextConstant      = "↑/↓ move · enter select · ctrl+c cancel"
	upKeyNameConstant         = "up"
	downKeyNameConstant       = "down"
	vimUpKeyNameConstant      = "k"
	vimDownKeyNameConstant    = "j"
	selectKeyNameConstant     = "enter"
	interruptKeyNameConstant  = "ctrl+c"
	escapeKeyNameConstant     = "esc"
	menuLineSeparatorConstant = "\n"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	previewStyle  = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// keyBindings maps raw keystrokes onto the menu's logical input events.
type keyBindings struct {
	MoveUp    key.Binding
	MoveDown  key.Binding
	Select    key.Binding
	Interrupt key.Binding
}

func defaultKeyBindings() keyBindings {
	return keyBindings{
		MoveUp:    key.NewBinding(key.WithKeys(upKeyNameConstant, vimUpKeyNameConstant)),
		MoveDown:  key.NewBinding(key.WithKeys(downKeyNameConstant, vimDownKeyNameConstant)),
		Select:    key.NewBinding(key.WithKeys(selectKeyNameConstant)),
		Interrupt: key.NewBinding(key.WithKeys(interruptKeyNameConstant, escapeKeyNameConstant)),
	}
}

// Option is a single selectable menu entry. Apply runs after the menu has
// resolved; the model itself never executes side effects.
type Option struct {
	Label   string
	Preview string
	Apply   func() error
}

// Model is a single-selection list. Navigation wraps circularly at both
// ends. Once a selection or cancellation freezes the model, every further
// keystroke except interrupt is dropped.
type Model struct {
	title         string
	options       []Option
	selectedIndex int
	frozen        bool
	cancelled     bool
	bindings      keyBindings
}

// NewModel constructs a menu model over the provided options. The first
// option is the default selection.
func NewModel(title string, options []Option) Model {
	return Model{title: title, options: options, bindings: defaultKeyBindings()}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model by resolving one keystroke per message.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	keyMessage, isKeyMessage := message.(tea.KeyMsg)
	if !isKeyMessage {
		return model, nil
	}

	if key.Matches(keyMessage, model.bindings.Interrupt) {
		model.cancelled = true
		model.frozen = true
		return model, tea.Quit
	}

	if model.frozen {
		return model, nil
	}

	switch {
	case key.Matches(keyMessage, model.bindings.MoveUp):
		model.selectedIndex = (model.selectedIndex - 1 + len(model.options)) % len(model.options)
	case key.Matches(keyMessage, model.bindings.MoveDown):
		model.selectedIndex = (model.selectedIndex + 1) % len(model.options)
	case key.Matches(keyMessage, model.bindings.Select):
		model.frozen = true
		return model, tea.Quit
	}

	return model, nil
}

// View implements tea.Model.
func (model Model) View() string {
	var viewBuilder strings.Builder

	if len(model.title) > 0 {
		viewBuilder.WriteString(titleStyle.Render(model.title))
		viewBuilder.WriteString(menuLineSeparatorConstant)
	}

	for optionIndex, option := range model.options {
		cursor := unselectedCursorConstant
		label := option.Label
		if optionIndex == model.selectedIndex {
			cursor = selectedCursorConstant
			label = selectedStyle.Render(label)
		}

		viewBuilder.WriteString(cursor)
		viewBuilder.WriteString(label)
		if len(option.Preview) > 0 {
			viewBuilder.WriteString(previewSeparatorConstant)
			viewBuilder.WriteString(previewStyle.Render(option.Preview))
		}
		viewBuilder.WriteString(menuLineSeparatorConstant)
	}

	viewBuilder.WriteString(helpStyle.Render(menuHelpTextConstant))
	viewBuilder.WriteString(menuLineSeparatorConstant)

	return viewBuilder.String()
}

// SelectedIndex reports the index the cursor currently rests on.
func (model Model) SelectedIndex() int {
	return model.selectedIndex
}

// Cancelled reports whether the menu resolved through an interrupt.
func (model Model) Cancelled() bool {
	return model.cancelled
}

// Frozen reports whether further navigation keystrokes are ignored.
func (model Model) Frozen() bool {
	return model.frozen
}
