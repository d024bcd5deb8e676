package controller

import (
	"github.com/markusressel/act2go/internal/pid"
	"github.com/markusressel/act2go/internal/util"
)

// Output is the command sent to an actuator
type Output struct {
	// always finite and within [0..100]
	DutyPercent float64 `json:"dutyPercent"`
	// whether the command had to be clamped
	Saturated bool `json:"saturated"`
}

// Combine merges the feed-forward base of the envelope with the closed-loop trim,
// applies the instance inversion and clamps the result to the actuator range.
func Combine(envelope pid.Envelope, trim float64) Output {
	signed := envelope.Command(trim)
	if !util.IsFinite(signed) {
		return Output{DutyPercent: 0, Saturated: true}
	}
	return Output{
		DutyPercent: util.Coerce(signed, pid.MinDuty, pid.MaxDuty),
		Saturated:   signed < pid.MinDuty || signed > pid.MaxDuty,
	}
}
