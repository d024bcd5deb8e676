package gains

import (
	"github.com/markusressel/act2go/internal/ui"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored tuning changes of a controller",
	Long:  `The controller falls back to the tuning of the configuration file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, pers, _, err := loadRegistry()
		if err != nil {
			return err
		}

		if err := pers.DeleteController(config.ID); err != nil {
			return err
		}

		ui.Success("Deleted stored tuning of %s", config.ID)
		printApplyHint()
		return nil
	},
}

func init() {
	Command.AddCommand(resetCmd)
}
