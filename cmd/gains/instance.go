package gains

import (
	"errors"
	"fmt"

	"github.com/markusressel/act2go/internal/ui"
	"github.com/spf13/cobra"
)

var (
	instanceIndex int
	inverted      bool
	enabled       bool
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Change the inversion or enable flag of a single instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("inverted") && !flags.Changed("enabled") {
			return errors.New("expected at least one of --inverted or --enabled")
		}

		config, pers, registry, err := loadRegistry()
		if err != nil {
			return err
		}

		instanceFlags, ok := registry.Instance(instanceIndex)
		if !ok {
			return fmt.Errorf("controller %s has no instance %d", config.ID, instanceIndex)
		}
		if flags.Changed("inverted") {
			instanceFlags.Inverted = inverted
		}
		if flags.Changed("enabled") {
			instanceFlags.Enabled = enabled
		}

		if err := pers.SaveInstanceFlags(config.ID, instanceIndex, instanceFlags); err != nil {
			return err
		}

		ui.Success("Updated instance %d of %s: %+v", instanceIndex, config.ID, instanceFlags)
		printApplyHint()
		return nil
	},
}

func init() {
	instanceCmd.Flags().IntVarP(&instanceIndex, "index", "n", 0, "Instance index")
	instanceCmd.Flags().BoolVar(&inverted, "inverted", false, "Invert the trim of this instance")
	instanceCmd.Flags().BoolVar(&enabled, "enabled", true, "Enable closed loop control of this instance")

	Command.AddCommand(instanceCmd)
}
