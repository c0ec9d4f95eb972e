package cmd

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

const exitAction = "Exit"

type action struct {
	name string
	run  func(*App, context.Context) error
}

var actions = []action{
	{"Install dependencies", (*App).Install},
	{"Check license compliance", (*App).CheckLicenses},
	{"Update dependencies", (*App).UpdateDependencies},
	{"Analyze unused dependencies", (*App).UnusedDependencies},
	{"Check for vulnerabilities", (*App).Audit},
	{"Generate CI/CD config", (*App).GenerateCI},
	{"Measure installation performance", (*App).MeasureInstall},
	{"Analyze build performance", (*App).AnalyzeBuild},
	{"Update project version", (*App).BumpVersion},
	{"Visualize dependency tree", (*App).DependencyTree},
}

func menu() []string {
	names := make([]string, 0, len(actions)+1)
	for _, a := range actions {
		names = append(names, a.name)
	}
	return append(names, exitAction)
}

// Shell shows the action menu until the user picks Exit or aborts. A failing
// action is reported and the menu is shown again.
func Shell(ctx context.Context, a *App) error {
	items := menu()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		choice, err := a.Prompt.Select("What would you like to do?", items)
		if errors.Is(err, huh.ErrUserAborted) || (err == nil && choice == exitAction) {
			a.out.Info("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		for _, act := range actions {
			if act.name != choice {
				continue
			}
			if err := act.run(a, ctx); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					break
				}
				a.Log.WithError(err).WithField("action", choice).Error("action failed")
				a.out.Error("Error: %v", err)
			}
			break
		}
	}
}
