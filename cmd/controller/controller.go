package controller

import (
	"github.com/spf13/cobra"
)

var controllerId string

var Command = &cobra.Command{
	Use:              "controller",
	Short:            "Controller related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&controllerId,
		"id", "i",
		"",
		"Controller ID as specified in the config",
	)
}
