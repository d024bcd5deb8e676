package gains

import (
	"strconv"

	"github.com/markusressel/act2go/cmd/global"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/spf13/cobra"
)

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the effective tuning of a controller",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, registry, err := loadRegistry()
		if err != nil {
			return err
		}

		var laneRows [][]string
		for lane := 0; lane < registry.LanesPerBank(); lane++ {
			g, _ := registry.Lane(lane)
			laneRows = append(laneRows, []string{
				strconv.Itoa(lane),
				formatFloat(g.P),
				formatFloat(g.I),
				formatFloat(g.D),
				formatFloat(g.Offset),
				formatFloat(g.ILimit),
				formatFloat(g.DerivativeFilter),
			})
		}
		err = global.PrintTable([]string{"Lane", "P", "I", "D", "Offset", "I Limit", "D Filter"}, laneRows)
		if err != nil {
			return err
		}

		var instanceRows [][]string
		for index := 0; index < registry.InstanceCount(); index++ {
			address := controller.NewAddress(index, registry.LanesPerBank())
			flags, _ := registry.Instance(index)
			instanceRows = append(instanceRows, []string{
				strconv.Itoa(index),
				strconv.Itoa(address.Bank),
				strconv.Itoa(address.Lane),
				strconv.FormatBool(flags.Inverted),
				strconv.FormatBool(flags.Enabled),
			})
		}
		return global.PrintTable([]string{"Index", "Bank", "Lane", "Inverted", "Enabled"}, instanceRows)
	},
}

func init() {
	Command.AddCommand(getCmd)
}
