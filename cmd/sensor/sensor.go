package sensor

import (
	"fmt"
	"strconv"

	"github.com/markusressel/act2go/cmd/global"
	"github.com/markusressel/act2go/internal"
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/spf13/cobra"
)

var sensorId string

var Command = &cobra.Command{
	Use:              "sensor",
	Short:            "Read the current value of configured sensors",
	Long:             `Reads all sensors once, or only the one given by --id.`,
	TraverseChildren: true,
	Args:             cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		global.ReadValidatedConfig()

		config := configuration.CurrentConfig
		config.Controllers = nil
		config.Telemetry.Enabled = false

		objects, err := internal.InitializeObjects(&config, nil)
		if err != nil {
			return err
		}
		registry := objects.Sensors

		// function sensors depend on other sensors, so read everything twice
		for pass := 0; pass < 2; pass++ {
			for _, sensor := range registry.Sensors() {
				_ = registry.Update(sensor.GetId())
			}
		}

		var rows [][]string
		for _, sensor := range registry.Sensors() {
			if len(sensorId) > 0 && sensor.GetId() != sensorId {
				continue
			}
			rows = append(rows, statusRow(registry, sensor.GetId()))
		}
		if len(sensorId) > 0 && len(rows) == 0 {
			return fmt.Errorf("no sensor with id found: %s", sensorId)
		}

		return global.PrintTable([]string{"ID", "Value", "Error"}, rows)
	},
}

func statusRow(registry *sensors.Registry, id string) []string {
	status, _ := registry.Status(id)
	value := "N/A"
	if status.Valid {
		value = strconv.FormatFloat(status.Value, 'f', 2, 64)
	}
	return []string{id, value, status.Error}
}

func init() {
	Command.PersistentFlags().StringVarP(
		&sensorId,
		"id", "i",
		"",
		"Sensor ID as specified in the config",
	)
}
