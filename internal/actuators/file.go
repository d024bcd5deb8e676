package actuators

import (
	"fmt"
	"math"
	"strings"

	"github.com/markusressel/act2go/internal/util"
)

const IndexPlaceholder = "%d"

// FileSink writes the duty of every instance to a file.
// "%d" in the path is replaced with the instance index.
type FileSink struct {
	paths   []string
	tracker changeTracker
}

func NewFileSink(path string, instanceCount int) (*FileSink, error) {
	path, err := util.ExpandHomePath(path)
	if err != nil {
		return nil, err
	}
	if instanceCount > 1 && !strings.Contains(path, IndexPlaceholder) {
		return nil, fmt.Errorf("actuator path %s must contain '%s' to address %d instances", path, IndexPlaceholder, instanceCount)
	}

	sink := &FileSink{
		tracker: newChangeTracker(instanceCount),
	}
	for index := 0; index < instanceCount; index++ {
		sink.paths = append(sink.paths, strings.ReplaceAll(path, IndexPlaceholder, fmt.Sprint(index)))
	}
	return sink, nil
}

func (s *FileSink) Path(index int) string {
	return s.paths[index]
}

func (s *FileSink) Drive(index int, dutyPercent float64) error {
	if index < 0 || index >= len(s.paths) {
		return fmt.Errorf("instance index %d out of range", index)
	}
	// only the written precision matters
	dutyPercent = math.Round(dutyPercent*100) / 100
	if s.tracker.unchanged(index, dutyPercent) {
		return nil
	}
	err := util.WriteFloatToFileAtomic(dutyPercent, s.paths[index])
	if err != nil {
		return err
	}
	s.tracker.remember(index, dutyPercent)
	return nil
}
