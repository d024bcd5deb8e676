package configuration

import "time"

const (
	ControllerTypeVvt        = "vvt"
	ControllerTypeIdle       = "idle"
	ControllerTypeEtb        = "etb"
	ControllerTypeAlternator = "alternator"
	ControllerTypeBoost      = "boost"
)

var ControllerTypes = []string{
	ControllerTypeVvt,
	ControllerTypeIdle,
	ControllerTypeEtb,
	ControllerTypeAlternator,
	ControllerTypeBoost,
}

type ControllerConfig struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Banks        int `json:"banks"`
	LanesPerBank int `json:"lanesPerBank"`

	TickRate time.Duration `json:"tickRate,omitempty"`

	// Gains holds the default tuning per lane, shared across all banks
	Gains []GainsConfig `json:"gains"`
	// Instances holds per instance settings, addressed by linear instance index
	Instances []InstanceConfig `json:"instances"`

	Actuator ActuatorConfig `json:"actuator"`

	// name of the record in the telemetry address table, defaults to Type
	TelemetryRecord string `json:"telemetryRecord,omitempty"`

	Vvt        *VvtConfig        `json:"vvt,omitempty"`
	Idle       *IdleConfig       `json:"idle,omitempty"`
	Etb        *EtbConfig        `json:"etb,omitempty"`
	Alternator *AlternatorConfig `json:"alternator,omitempty"`
	Boost      *BoostConfig      `json:"boost,omitempty"`
}

// InstanceCount returns the fixed number of controller instances (banks x lanes)
func (c ControllerConfig) InstanceCount() int {
	return c.Banks * c.LanesPerBank
}

type GainsConfig struct {
	P      float64 `json:"p"`
	I      float64 `json:"i"`
	D      float64 `json:"d"`
	Offset float64 `json:"offset"`
	// symmetric integrator limit, 0 means unlimited
	ILimit float64 `json:"iLimit,omitempty"`
	// low pass factor of the derivative term in [0..1), 0 disables filtering
	DerivativeFilter float64 `json:"derivativeFilter,omitempty"`
}

type InstanceConfig struct {
	Index    int             `json:"index"`
	Inverted bool            `json:"inverted"`
	Enabled  DefaultTrueBool `json:"enabled"`
}

type ActuatorConfig struct {
	File *FileActuatorConfig `json:"file,omitempty"`
	Cmd  *CmdActuatorConfig  `json:"cmd,omitempty"`
}

type FileActuatorConfig struct {
	// path of the output file, "%d" is replaced with the instance index
	Path string `json:"path"`
}

// CmdActuatorConfig runs an executable for every new duty value,
// "%index%" and "%duty%" in Args are replaced with the instance index and the duty in percent.
type CmdActuatorConfig struct {
	Exec    string        `json:"exec"`
	Args    []string      `json:"args"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

type VvtConfig struct {
	RpmSensor  string `json:"rpmSensor"`
	LoadSensor string `json:"loadSensor"`
	// target table per lane (cam)
	TargetTables []string `json:"targetTables"`
	// cam position sensor per instance
	PositionSensors []string `json:"positionSensors"`
}

type IdleConfig struct {
	RpmSensor     string `json:"rpmSensor"`
	CoolantSensor string `json:"coolantSensor"`
	// curve: coolant temperature -> target rpm
	TargetRpmTable string `json:"targetRpmTable"`
	// curve: coolant temperature -> base valve position
	OpenLoopTable string `json:"openLoopTable,omitempty"`
}

type EtbConfig struct {
	RpmSensor   string `json:"rpmSensor"`
	PedalSensor string `json:"pedalSensor"`
	// map: rpm x pedal -> target throttle position
	PedalTable string `json:"pedalTable"`
	// throttle position sensor per instance
	PositionSensors []string `json:"positionSensors"`
	// curve: pedal -> feed forward duty
	OpenLoopTable string `json:"openLoopTable,omitempty"`
}

type AlternatorConfig struct {
	VoltageSensor string  `json:"voltageSensor"`
	RpmSensor     string  `json:"rpmSensor,omitempty"`
	TargetVoltage float64 `json:"targetVoltage,omitempty"`
	// curve: rpm -> target voltage, takes precedence over TargetVoltage
	TargetTable string `json:"targetTable,omitempty"`
}

type BoostConfig struct {
	RpmSensor string `json:"rpmSensor"`
	TpsSensor string `json:"tpsSensor"`
	MapSensor string `json:"mapSensor"`
	// map: rpm x tps -> target manifold pressure
	TargetTable string `json:"targetTable"`
	// curve: tps -> open loop duty
	OpenLoopTable string `json:"openLoopTable,omitempty"`
}
