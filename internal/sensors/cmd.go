package sensors

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/util"
)

const defaultCmdTimeout = 2 * time.Second

type CmdSensor struct {
	Config configuration.SensorConfig `json:"configuration"`
}

func (sensor CmdSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor CmdSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor CmdSensor) GetValue() (float64, error) {
	timeout := sensor.Config.Cmd.Timeout
	if timeout <= 0 {
		timeout = defaultCmdTimeout
	}
	exec := sensor.Config.Cmd.Exec
	args := sensor.Config.Cmd.Args
	result, err := util.SafeCmdExecution(context.Background(), exec, args, timeout)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: %w", sensor.GetId(), err)
	}

	value, err := strconv.ParseFloat(result, 64)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: unable to parse command output of %s: %w", sensor.GetId(), exec, err)
	}

	return value, nil
}
