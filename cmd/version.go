package cmd

import (
	"github.com/markusressel/act2go/internal/ui"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of act2go",
	Long:  `All software has versions. This is act2go's`,
	Run: func(cmd *cobra.Command, args []string) {
		ui.Printfln("%s", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
