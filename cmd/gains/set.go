package gains

import (
	"fmt"

	"github.com/markusressel/act2go/internal/ui"
	"github.com/spf13/cobra"
)

var (
	lane             int
	p                float64
	i                float64
	d                float64
	offset           float64
	iLimit           float64
	derivativeFilter float64
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the gains of a single lane",
	Long:  `Only the given terms are changed, all others keep their current value.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, pers, registry, err := loadRegistry()
		if err != nil {
			return err
		}

		g, ok := registry.Lane(lane)
		if !ok {
			return fmt.Errorf("controller %s has no lane %d", config.ID, lane)
		}

		flags := cmd.Flags()
		if flags.Changed("p") {
			g.P = p
		}
		if flags.Changed("i") {
			g.I = i
		}
		if flags.Changed("d") {
			g.D = d
		}
		if flags.Changed("offset") {
			g.Offset = offset
		}
		if flags.Changed("ilimit") {
			g.ILimit = iLimit
		}
		if flags.Changed("filter") {
			g.DerivativeFilter = derivativeFilter
		}

		// validates the new gains
		if err := registry.SetGains(lane, g); err != nil {
			return err
		}
		if err := pers.SaveGains(config.ID, lane, g); err != nil {
			return err
		}

		ui.Success("Updated gains of %s lane %d: %+v", config.ID, lane, g)
		printApplyHint()
		return nil
	},
}

func init() {
	setCmd.Flags().IntVarP(&lane, "lane", "l", 0, "Lane index")
	setCmd.Flags().Float64Var(&p, "p", 0, "Proportional gain")
	setCmd.Flags().Float64Var(&i, "i", 0, "Integral gain")
	setCmd.Flags().Float64Var(&d, "d", 0, "Derivative gain")
	setCmd.Flags().Float64Var(&offset, "offset", 0, "Constant offset")
	setCmd.Flags().Float64Var(&iLimit, "ilimit", 0, "Integrator limit, 0 = unlimited")
	setCmd.Flags().Float64Var(&derivativeFilter, "filter", 0, "Derivative low pass factor in [0..1)")

	Command.AddCommand(setCmd)
}
