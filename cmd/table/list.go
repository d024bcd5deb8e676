package table

import (
	"fmt"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/act2go/cmd/global"
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/table"
	"github.com/markusressel/act2go/internal/ui"
	"github.com/spf13/cobra"
)

const graphSamples = 100

var tableId string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured calibration tables to console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		global.ReadValidatedConfig()

		registry, err := table.NewRegistryFromConfig(configuration.CurrentConfig.Tables)
		if err != nil {
			return err
		}

		for idx, id := range registry.Ids() {
			if len(tableId) > 0 && id != tableId {
				continue
			}
			if idx > 0 {
				ui.Printfln("")
			}

			if curve, err := registry.Curve(id); err == nil {
				err = printCurve(curve)
				if err != nil {
					return err
				}
				continue
			}
			if m, err := registry.Map(id); err == nil {
				err = printMap(m)
				if err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func axisRange(axis []float64) string {
	return fmt.Sprintf("%g .. %g (%d)", axis[0], axis[len(axis)-1], len(axis))
}

// sample evaluates f evenly spaced over the given axis
func sample(axis []float64, f func(x float64) float64) []float64 {
	start, end := axis[0], axis[len(axis)-1]
	values := make([]float64, graphSamples)
	for i := range values {
		x := start + (end-start)*float64(i)/float64(graphSamples-1)
		values[i] = f(x)
	}
	return values
}

func printCurve(curve *table.Curve) error {
	err := global.PrintTable([]string{"ID", "Type", "X"}, [][]string{
		{curve.ID, "Curve", axisRange(curve.X)},
	})
	if err != nil {
		return err
	}

	values := sample(curve.X, curve.Eval)
	graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(graphSamples), asciigraph.Caption(curve.ID))
	ui.Printfln("%s", graph)
	return nil
}

func printMap(m *table.Map) error {
	err := global.PrintTable([]string{"ID", "Type", "X", "Y"}, [][]string{
		{m.ID, "Map", axisRange(m.X), axisRange(m.Y)},
	})
	if err != nil {
		return err
	}

	// one line per y breakpoint
	var series [][]float64
	var captions []string
	for _, y := range m.Y {
		series = append(series, sample(m.X, func(x float64) float64 {
			return m.Eval(x, y)
		}))
		captions = append(captions, strconv.FormatFloat(y, 'g', -1, 64))
	}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(15),
		asciigraph.Width(graphSamples),
		asciigraph.Caption(fmt.Sprintf("%s, y = %v", m.ID, captions)),
	)
	ui.Printfln("%s", graph)
	return nil
}

func init() {
	listCmd.Flags().StringVarP(&tableId, "id", "i", "", "Table ID as specified in the config")

	Command.AddCommand(listCmd)
}
