package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/markusressel/act2go/cmd/global"
	"github.com/markusressel/act2go/internal/hwmon"
	"github.com/markusressel/act2go/internal/ui"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect devices",
	Long:  `Detects all hwmon inputs (temperatures, voltages, fans) and prints them as a list`,
	Run: func(cmd *cobra.Command, args []string) {
		chips := hwmon.GetChips()

		for _, chip := range chips {
			if len(chip.Name) <= 0 || len(chip.Inputs) <= 0 {
				continue
			}

			ui.Printfln("> %s (platform: %s)", chip.Name, chip.Platform)

			var rows [][]string
			for _, input := range chip.Inputs {
				_, file := filepath.Split(input.Path)
				rows = append(rows, []string{
					input.Feature,
					strconv.Itoa(input.Index),
					fmt.Sprintf("%s (%s)", input.Label, file),
					strconv.FormatFloat(input.Value, 'f', 2, 64),
				})
			}

			if err := global.PrintTable([]string{"Feature", "Index", "Label", "Value"}, rows); err != nil {
				ui.Fatal("Error printing table: %v", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
