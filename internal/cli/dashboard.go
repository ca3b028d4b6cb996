package cli

import (
	"github.com/spf13/cobra"

	"github.com/evrenbal/mlforge/internal/console"
	"github.com/evrenbal/mlforge/internal/selection"
	"github.com/evrenbal/mlforge/internal/ui"
	"github.com/evrenbal/mlforge/internal/workflow"
)

func newDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive workbench dashboard",
		Long: `Open the full-screen terminal dashboard: upload a dataset, clean and
encode it, pick features, split, then train, evaluate and predict, with
every server message collected in the console viewer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}
}

func runDashboard() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bus := console.NewBus()
	log := console.NewLog()
	bus.Subscribe(log.Append)

	sess, err := newSession(cfg, bus)
	if err != nil {
		return err
	}

	return ui.Run(ui.Deps{
		Session:   sess,
		Selection: selection.NewStore(),
		Tracker:   workflow.NewTracker(),
		Handoff:   newHandoffStore(cfg),
		Log:       log,
		Bus:       bus,
	})
}
