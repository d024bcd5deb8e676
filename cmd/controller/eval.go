package controller

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/markusressel/act2go/cmd/global"
	"github.com/markusressel/act2go/internal"
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/persistence"
	"github.com/spf13/cobra"
)

var (
	instanceIndex int
	target        float64
	observed      float64
	load          float64
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate the output of a single instance for the given inputs",
	Long: `Computes the open loop base and the closed loop output of a single
controller instance for the given target, observed value and load,
using the configured gains and any stored tuning changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(controllerId) <= 0 {
			return errors.New("missing controller id")
		}
		global.ReadValidatedConfig()

		config := configuration.CurrentConfig
		pers := persistence.NewPersistence(config.DbPath)
		if err := pers.Init(); err != nil {
			return err
		}

		objects, err := internal.InitializeObjects(&config, pers)
		if err != nil {
			return err
		}

		for _, group := range objects.Groups {
			if group.GetId() != controllerId {
				continue
			}
			instance, ok := group.Instance(instanceIndex)
			if !ok {
				return fmt.Errorf("controller %s has no instance %d", controllerId, instanceIndex)
			}
			snapshot := objects.Gains[controllerId].Get(instanceIndex)

			openLoop := instance.GetOpenLoop(load)
			evaluation, ok := instance.EvaluateClosedLoop(target, observed, load)

			address := instance.Address()
			rows := [][]string{
				{"Bank / Lane", fmt.Sprintf("%d / %d", address.Bank, address.Lane)},
				{"Gains", fmt.Sprintf("%+v", snapshot.Gains)},
				{"Inverted", strconv.FormatBool(snapshot.Inverted)},
				{"Enabled", strconv.FormatBool(snapshot.Enabled)},
				{"Open Loop", formatFloat(openLoop)},
			}
			if !ok {
				rows = append(rows, []string{"Closed Loop", "N/A"})
				return global.PrintTable([]string{"", ""}, rows)
			}

			closedLoop := formatFloat(evaluation.DutyPercent)
			if evaluation.Saturated {
				closedLoop += " (saturated)"
			}
			rows = append(rows,
				[]string{"P / I / D", fmt.Sprintf("%s / %s / %s",
					formatFloat(evaluation.Proportional), formatFloat(evaluation.Integral), formatFloat(evaluation.Derivative))},
				[]string{"Trim", formatFloat(evaluation.Trim)},
				[]string{"Closed Loop", closedLoop},
			)
			return global.PrintTable([]string{"", ""}, rows)
		}

		return fmt.Errorf("no controller with id found: %s", controllerId)
	},
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func init() {
	evalCmd.Flags().IntVarP(&instanceIndex, "index", "n", 0, "Instance index")
	evalCmd.Flags().Float64VarP(&target, "target", "t", 0, "Target value")
	evalCmd.Flags().Float64VarP(&observed, "observed", "o", 0, "Observed value")
	evalCmd.Flags().Float64VarP(&load, "load", "l", 0, "Load used to evaluate the open loop model")
	_ = evalCmd.MarkFlagRequired("target")
	_ = evalCmd.MarkFlagRequired("observed")

	Command.AddCommand(evalCmd)
}
