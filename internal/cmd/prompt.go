package cmd

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// Prompter asks the user questions. The shell and the interactive actions
// only talk to the terminal through it.
type Prompter interface {
	Select(title string, options []string) (string, error)
	// Input pre-fills def and re-asks until validate (if set) accepts.
	Input(title, def string, validate func(string) error) (string, error)
	Confirm(title string, def bool) (bool, error)
	// Spin shows a spinner titled title while action runs.
	Spin(title string, action func()) error
}

// HuhPrompter is the terminal Prompter.
type HuhPrompter struct {
	Accessible bool
}

func (p HuhPrompter) run(f huh.Field) error {
	return huh.NewForm(huh.NewGroup(f)).WithAccessible(p.Accessible).Run()
}

func (p HuhPrompter) Select(title string, options []string) (string, error) {
	var v string
	err := p.run(huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&v))
	return v, err
}

func (p HuhPrompter) Input(title, def string, validate func(string) error) (string, error) {
	v := def
	in := huh.NewInput().Title(title).Placeholder(def).Value(&v)
	if validate != nil {
		in = in.Validate(validate)
	}
	err := p.run(in)
	return v, err
}

func (p HuhPrompter) Confirm(title string, def bool) (bool, error) {
	v := def
	err := p.run(huh.NewConfirm().Title(title).Value(&v))
	return v, err
}

func (p HuhPrompter) Spin(title string, action func()) error {
	return spinner.New().Title(title).Action(action).Accessible(p.Accessible).Run()
}
