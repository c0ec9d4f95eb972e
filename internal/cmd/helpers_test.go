package cmd

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/flo-mic/polyglot-pm/internal/pm"
	"github.com/flo-mic/polyglot-pm/internal/runner"
	"github.com/flo-mic/polyglot-pm/internal/testutil"
	"github.com/sirupsen/logrus/hooks/test"
)

// scripted answers prompts from a fixed list and aborts once it runs out.
type scripted struct {
	t       *testing.T
	answers []any
	titles  []string
}

func (s *scripted) next(title string) (any, error) {
	s.titles = append(s.titles, title)
	if len(s.answers) == 0 {
		return nil, huh.ErrUserAborted
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scripted) Select(title string, options []string) (string, error) {
	a, err := s.next(title)
	if err != nil {
		return "", err
	}
	v := a.(string)
	for _, o := range options {
		if o == v {
			return v, nil
		}
	}
	s.t.Errorf("answer %q is not an option of %q: %q", v, title, options)
	return v, nil
}

func (s *scripted) Input(title, def string, validate func(string) error) (string, error) {
	a, err := s.next(title)
	if err != nil {
		return "", err
	}
	v := a.(string)
	if validate != nil {
		if err := validate(v); err != nil {
			s.t.Errorf("answer %q to %q rejected: %v", v, title, err)
		}
	}
	return v, nil
}

func (s *scripted) Confirm(title string, def bool) (bool, error) {
	a, err := s.next(title)
	if err != nil {
		return false, err
	}
	return a.(bool), nil
}

func (s *scripted) Spin(title string, action func()) error {
	action()
	return nil
}

type testApp struct {
	*App
	out  *bytes.Buffer
	hook *test.Hook
}

// newTestApp returns an App for manager m whose package manager and tool
// runner are exe, answering prompts from answers.
func newTestApp(t *testing.T, m pm.Manager, exe string, answers ...any) testApp {
	t.Helper()
	store := testutil.Store(t.TempDir(), m, exe)
	log, hook := test.NewNullLogger()
	out := &bytes.Buffer{}
	r := runner.New(store, log)
	r.Stdout = out
	r.Stderr = out
	app := NewApp(store, r, m, &scripted{t: t, answers: answers}, log, out)
	return testApp{App: app, out: out, hook: hook}
}
