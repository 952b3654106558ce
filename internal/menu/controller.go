package menu

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	noOptionsMessageConstant       = "menu requires at least one option"
	unexpectedModelMessageConstant = "menu program returned an unexpected model"
)

// ErrNoOptions indicates a menu was requested without any options.
var ErrNoOptions = errors.New(noOptionsMessageConstant)

// ErrUnexpectedModel indicates the menu program resolved to a foreign model type.
var ErrUnexpectedModel = errors.New(unexpectedModelMessageConstant)

// Selection is the resolved outcome of a menu interaction.
type Selection struct {
	Index     int
	Cancelled bool
}

// Controller presents single-selection menus on a terminal.
type Controller struct {
	input  io.Reader
	output io.Writer
}

// NewController constructs a Controller bound to the provided terminal streams.
func NewController(input io.Reader, output io.Writer) *Controller {
	return &Controller{input: input, output: output}
}

// Choose renders the options and blocks until the user selects an entry or
// interrupts the menu.
func (controller *Controller) Choose(executionContext context.Context, title string, options []Option) (Selection, error) {
	if len(options) == 0 {
		return Selection{}, ErrNoOptions
	}

	programOptions := []tea.ProgramOption{tea.WithContext(executionContext)}
	if controller.input != nil {
		programOptions = append(programOptions, tea.WithInput(controller.input))
	}
	if controller.output != nil {
		programOptions = append(programOptions, tea.WithOutput(controller.output))
	}

	menuProgram := tea.NewProgram(NewModel(title, options), programOptions...)

	finalModel, runError := menuProgram.Run()
	if runError != nil {
		if errors.Is(runError, tea.ErrProgramKilled) {
			return Selection{Cancelled: true}, nil
		}
		return Selection{}, runError
	}

	resolvedModel, isMenuModel := finalModel.(Model)
	if !isMenuModel {
		return Selection{}, ErrUnexpectedModel
	}

	if resolvedModel.Cancelled() {
		return Selection{Cancelled: true}, nil
	}

	return Selection{Index: resolvedModel.SelectedIndex()}, nil
}
