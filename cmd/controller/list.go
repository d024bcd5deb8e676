package controller

import (
	"strconv"

	"github.com/markusressel/act2go/cmd/global"
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured controllers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		global.ReadValidatedConfig()

		var rows [][]string
		for _, c := range configuration.CurrentConfig.Controllers {
			if len(controllerId) > 0 && c.ID != controllerId {
				continue
			}
			tickRate := c.TickRate
			if tickRate <= 0 {
				tickRate = configuration.CurrentConfig.ControllerTickRate
			}
			rows = append(rows, []string{
				c.ID,
				c.Type,
				strconv.Itoa(c.Banks),
				strconv.Itoa(c.LanesPerBank),
				strconv.Itoa(c.InstanceCount()),
				tickRate.String(),
				actuatorName(c.Actuator),
			})
		}

		return global.PrintTable([]string{"ID", "Type", "Banks", "Lanes", "Instances", "Tick Rate", "Actuator"}, rows)
	},
}

func actuatorName(config configuration.ActuatorConfig) string {
	switch {
	case config.File != nil:
		return "file: " + config.File.Path
	case config.Cmd != nil:
		return "cmd: " + config.Cmd.Exec
	default:
		return "none"
	}
}

func init() {
	Command.AddCommand(listCmd)
}
