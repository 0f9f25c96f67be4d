package components

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/compozy/iconpipe/cli/helpers"
	"github.com/compozy/iconpipe/cli/tui/models"
)

const maxFormWidth = 60

// FormWrapper wraps a Huh form with BaseModel integration
type FormWrapper struct {
	models.BaseModel
	form      *huh.Form
	canceled  bool
	completed bool
}

// NewFormWrapper creates a new form wrapper
func NewFormWrapper(form *huh.Form) *FormWrapper {
	return &FormWrapper{form: form}
}

func (f *FormWrapper) Init() tea.Cmd {
	return f.form.Init()
}

// Update delegates to the form and quits once it completes or aborts
func (f *FormWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := f.BaseModel.Update(msg); f.IsQuitting() {
		f.canceled = true
		return f, cmd
	}
	if _, ok := msg.(tea.WindowSizeMsg); ok {
		width, _ := f.Size()
		f.form = f.form.WithWidth(min(width, maxFormWidth))
	}
	form, cmd := f.form.Update(msg)
	if frm, ok := form.(*huh.Form); ok {
		f.form = frm
		switch f.form.State {
		case huh.StateCompleted:
			f.completed = true
			return f, tea.Quit
		case huh.StateAborted:
			f.canceled = true
			return f, tea.Quit
		}
	}
	return f, cmd
}

func (f *FormWrapper) View() string {
	if f.completed || f.canceled {
		return ""
	}
	return f.form.View()
}

func (f *FormWrapper) IsCanceled() bool {
	return f.canceled
}

func (f *FormWrapper) IsCompleted() bool {
	return f.completed
}

// ProviderForm builds a single select over providers, numbered like the line prompt.
func ProviderForm(providers []string, choice *string) *huh.Form {
	options := make([]huh.Option[string], len(providers))
	for i, p := range providers {
		options[i] = huh.NewOption(fmt.Sprintf("%d. %s", i+1, p), p)
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Choose a provider").
			Options(options...).
			Value(choice),
	))
}

// SelectProvider runs the provider form until the user picks one.
func SelectProvider(ctx context.Context, providers []string) (string, error) {
	var choice string
	wrapper := NewFormWrapper(ProviderForm(providers, &choice))
	final, err := tea.NewProgram(wrapper, tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("provider prompt failed: %w", err)
	}
	w, ok := final.(*FormWrapper)
	switch {
	case !ok:
		return "", fmt.Errorf("unexpected prompt model %T", final)
	case w.IsCanceled():
		return "", helpers.ErrPromptCanceled
	case !w.IsCompleted():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", helpers.ErrPromptCanceled
	}
	return choice, nil
}
