package actuators

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/util"
)

const defaultCmdTimeout = 2 * time.Second

// CmdSink runs an executable whenever the duty of an instance changes
type CmdSink struct {
	config  configuration.CmdActuatorConfig
	tracker changeTracker
}

func NewCmdSink(config configuration.CmdActuatorConfig, instanceCount int) *CmdSink {
	return &CmdSink{
		config:  config,
		tracker: newChangeTracker(instanceCount),
	}
}

func (s *CmdSink) Drive(index int, dutyPercent float64) error {
	duty := strconv.FormatFloat(dutyPercent, 'f', 2, 64)
	rounded, _ := strconv.ParseFloat(duty, 64)
	if s.tracker.unchanged(index, rounded) {
		return nil
	}

	var args []string
	for _, arg := range s.config.Args {
		replaced := strings.ReplaceAll(arg, "%index%", strconv.Itoa(index))
		replaced = strings.ReplaceAll(replaced, "%duty%", duty)
		args = append(args, replaced)
	}

	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = defaultCmdTimeout
	}
	_, err := util.SafeCmdExecution(context.Background(), s.config.Exec, args, timeout)
	if err != nil {
		return err
	}
	s.tracker.remember(index, rounded)
	return nil
}
