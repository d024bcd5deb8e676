package controller

import "fmt"

type Status uint8

const (
	Uninitialized Status = iota
	Disabled
	OpenLoopOnly
	ClosedLoopActive
	Fault
)

var statusNames = map[Status]string{
	Uninitialized:    "uninitialized",
	Disabled:         "disabled",
	OpenLoopOnly:     "open_loop_only",
	ClosedLoopActive: "closed_loop_active",
	Fault:            "fault",
}

func (s Status) String() string {
	name, ok := statusNames[s]
	if !ok {
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
	return name
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status: %s", string(text))
}
