package table

import (
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "table",
	Short:            "Calibration table related commands",
	Long:             ``,
	TraverseChildren: true,
}
