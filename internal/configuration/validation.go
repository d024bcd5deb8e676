package configuration

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/looplab/tarjan"
	"github.com/markusressel/act2go/internal/ui"
	"github.com/markusressel/act2go/internal/util"
	"golang.org/x/exp/slices"
)

func Validate(configPath string) error {
	return validateConfig(&CurrentConfig, configPath)
}

func validateConfig(config *Configuration, path string) error {
	err := validateSensors(config)
	if err != nil {
		return err
	}
	err = validateTables(config)
	if err != nil {
		return err
	}
	err = validateControllers(config)
	if err != nil {
		return err
	}
	err = validateTelemetry(config)
	if err != nil {
		return err
	}

	if containsCmdSensors(config) {
		if _, err := util.CheckFilePermissionsForExecution(path); err != nil {
			return fmt.Errorf("config file '%s' has invalid permissions: %w", path, err)
		}
	}

	return nil
}

func containsCmdSensors(config *Configuration) bool {
	for _, sensorConfig := range config.Sensors {
		if sensorConfig.Cmd != nil {
			return true
		}
	}
	return false
}

func validateSensors(config *Configuration) error {
	graph := make(map[interface{}][]interface{})
	var sensorIds []string

	for _, sensorConfig := range config.Sensors {
		if len(sensorConfig.ID) <= 0 {
			return errors.New("sensor: missing id")
		}
		if slices.Contains(sensorIds, sensorConfig.ID) {
			return fmt.Errorf("duplicate sensor id detected: %s", sensorConfig.ID)
		}
		sensorIds = append(sensorIds, sensorConfig.ID)

		subConfigs := 0
		if sensorConfig.Virtual != nil {
			subConfigs++
		}
		if sensorConfig.File != nil {
			subConfigs++
		}
		if sensorConfig.Cmd != nil {
			subConfigs++
		}
		if sensorConfig.HwMon != nil {
			subConfigs++
		}
		if sensorConfig.Function != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return fmt.Errorf("sensor %s: only one sensor type can be used per sensor definition block", sensorConfig.ID)
		}
		if subConfigs <= 0 {
			return fmt.Errorf("sensor %s: sub-configuration for sensor is missing, use one of: virtual | file | cmd | hwmon | function", sensorConfig.ID)
		}

		if sensorConfig.Min != nil && sensorConfig.Max != nil && *sensorConfig.Min >= *sensorConfig.Max {
			return fmt.Errorf("sensor %s: min must be smaller than max", sensorConfig.ID)
		}

		if !isSensorConfigInUse(sensorConfig.ID, config) {
			ui.Warning("Unused sensor configuration: %s", sensorConfig.ID)
		}

		if sensorConfig.File != nil && len(sensorConfig.File.Path) <= 0 {
			return fmt.Errorf("sensor %s: no file path provided", sensorConfig.ID)
		}

		if sensorConfig.Cmd != nil && len(sensorConfig.Cmd.Exec) <= 0 {
			return fmt.Errorf("sensor %s: executable is missing", sensorConfig.ID)
		}

		if sensorConfig.HwMon != nil {
			supportedFeatures := []string{HwMonFeatureTemp, HwMonFeatureVoltage, HwMonFeatureFan}
			if !slices.Contains(supportedFeatures, sensorConfig.HwMon.Feature) {
				return fmt.Errorf("sensor %s: unsupported hwmon feature '%s', use one of: %s", sensorConfig.ID, sensorConfig.HwMon.Feature, strings.Join(supportedFeatures, " | "))
			}
			if sensorConfig.HwMon.Index <= 0 {
				return fmt.Errorf("sensor %s: invalid index, must be >= 1", sensorConfig.ID)
			}
		}

		if sensorConfig.Function != nil {
			supportedTypes := []string{FunctionSum, FunctionAverage, FunctionMinimum, FunctionMaximum}
			if !slices.Contains(supportedTypes, sensorConfig.Function.Type) {
				return fmt.Errorf("sensor %s: unsupported function type '%s', use one of: %s", sensorConfig.ID, sensorConfig.Function.Type, strings.Join(supportedTypes, " | "))
			}
			if len(sensorConfig.Function.Sensors) <= 0 {
				return fmt.Errorf("sensor %s: function sensor needs at least one input sensor", sensorConfig.ID)
			}

			var connections []interface{}
			for _, input := range sensorConfig.Function.Sensors {
				if input == sensorConfig.ID {
					return fmt.Errorf("sensor %s: a sensor cannot reference itself", sensorConfig.ID)
				}
				if !sensorIdExists(input, config) {
					return fmt.Errorf("sensor %s: no sensor definition with id '%s' found", sensorConfig.ID, input)
				}
				connections = append(connections, input)
			}
			graph[sensorConfig.ID] = connections
		}
	}

	return validateNoLoops(graph)
}

func validateNoLoops(graph map[interface{}][]interface{}) error {
	output := tarjan.Connections(graph)
	for _, items := range output {
		if len(items) > 1 {
			return fmt.Errorf("you have created a sensor dependency cycle: %v", items)
		}
	}
	return nil
}

func isSensorConfigInUse(sensorId string, config *Configuration) bool {
	for _, sensorConfig := range config.Sensors {
		if sensorConfig.Function != nil && slices.Contains(sensorConfig.Function.Sensors, sensorId) {
			return true
		}
	}
	for _, controllerConfig := range config.Controllers {
		if slices.Contains(referencedSensors(controllerConfig), sensorId) {
			return true
		}
	}
	return false
}

func sensorIdExists(sensorId string, config *Configuration) bool {
	for _, sensor := range config.Sensors {
		if sensor.ID == sensorId {
			return true
		}
	}
	return false
}

func validateTables(config *Configuration) error {
	var tableIds []string
	for _, tableConfig := range config.Tables {
		if len(tableConfig.ID) <= 0 {
			return errors.New("table: missing id")
		}
		if slices.Contains(tableIds, tableConfig.ID) {
			return fmt.Errorf("duplicate table id detected: %s", tableConfig.ID)
		}
		tableIds = append(tableIds, tableConfig.ID)

		if (tableConfig.Curve == nil) == (tableConfig.Map == nil) {
			return fmt.Errorf("table %s: exactly one of curve | map has to be defined", tableConfig.ID)
		}

		if tableConfig.Curve != nil {
			curve := tableConfig.Curve
			if len(curve.X) <= 0 {
				return fmt.Errorf("table %s: curve has no breakpoints", tableConfig.ID)
			}
			if len(curve.X) != len(curve.Y) {
				return fmt.Errorf("table %s: curve has %d x values but %d y values", tableConfig.ID, len(curve.X), len(curve.Y))
			}
			if err := validateAxis(curve.X); err != nil {
				return fmt.Errorf("table %s: x axis %w", tableConfig.ID, err)
			}
			if err := validateFinite(curve.Y); err != nil {
				return fmt.Errorf("table %s: y values %w", tableConfig.ID, err)
			}
		}

		if tableConfig.Map != nil {
			m := tableConfig.Map
			if len(m.X) <= 0 || len(m.Y) <= 0 {
				return fmt.Errorf("table %s: map has no breakpoints", tableConfig.ID)
			}
			if err := validateAxis(m.X); err != nil {
				return fmt.Errorf("table %s: x axis %w", tableConfig.ID, err)
			}
			if err := validateAxis(m.Y); err != nil {
				return fmt.Errorf("table %s: y axis %w", tableConfig.ID, err)
			}
			if len(m.Values) != len(m.Y) {
				return fmt.Errorf("table %s: map has %d y breakpoints but %d value rows", tableConfig.ID, len(m.Y), len(m.Values))
			}
			for rowIdx, row := range m.Values {
				if len(row) != len(m.X) {
					return fmt.Errorf("table %s: row %d has %d values, expected %d", tableConfig.ID, rowIdx, len(row), len(m.X))
				}
				if err := validateFinite(row); err != nil {
					return fmt.Errorf("table %s: row %d %w", tableConfig.ID, rowIdx, err)
				}
			}
		}
	}
	return nil
}

func validateAxis(axis []float64) error {
	if err := validateFinite(axis); err != nil {
		return err
	}
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return errors.New("must be strictly increasing")
		}
	}
	return nil
}

func validateFinite(values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("must only contain finite numbers")
		}
	}
	return nil
}

func tableIdExists(tableId string, config *Configuration) bool {
	for _, table := range config.Tables {
		if table.ID == tableId {
			return true
		}
	}
	return false
}

func validateControllers(config *Configuration) error {
	var controllerIds []string
	for _, controllerConfig := range config.Controllers {
		id := controllerConfig.ID
		if len(id) <= 0 {
			return errors.New("controller: missing id")
		}
		if slices.Contains(controllerIds, id) {
			return fmt.Errorf("duplicate controller id detected: %s", id)
		}
		controllerIds = append(controllerIds, id)

		if !slices.Contains(ControllerTypes, controllerConfig.Type) {
			return fmt.Errorf("controller %s: unsupported type '%s', use one of: %s", id, controllerConfig.Type, strings.Join(ControllerTypes, " | "))
		}
		if controllerConfig.Banks <= 0 {
			return fmt.Errorf("controller %s: banks must be >= 1", id)
		}
		if controllerConfig.LanesPerBank <= 0 {
			return fmt.Errorf("controller %s: lanesPerBank must be >= 1", id)
		}
		if err := validateDomainConfig(controllerConfig); err != nil {
			return err
		}
		if controllerConfig.LanesPerBank > 2 {
			ui.Warning("Controller %s: lane addressing with more than two lanes per bank should be verified against the calibration", id)
		}
		if controllerConfig.TickRate < 0 {
			return fmt.Errorf("controller %s: tickRate must not be negative", id)
		}

		if len(controllerConfig.Gains) > controllerConfig.LanesPerBank {
			return fmt.Errorf("controller %s: %d gain sets defined, but only %d lanes per bank", id, len(controllerConfig.Gains), controllerConfig.LanesPerBank)
		}
		for lane, gains := range controllerConfig.Gains {
			if err := ValidateGains(gains); err != nil {
				return fmt.Errorf("controller %s: lane %d: %w", id, lane, err)
			}
		}

		var indices []int
		for _, instance := range controllerConfig.Instances {
			if instance.Index < 0 || instance.Index >= controllerConfig.InstanceCount() {
				return fmt.Errorf("controller %s: instance index %d out of range [0..%d]", id, instance.Index, controllerConfig.InstanceCount()-1)
			}
			if slices.Contains(indices, instance.Index) {
				return fmt.Errorf("controller %s: duplicate instance index %d", id, instance.Index)
			}
			indices = append(indices, instance.Index)
		}

		if controllerConfig.Actuator.File != nil && len(controllerConfig.Actuator.File.Path) <= 0 {
			return fmt.Errorf("controller %s: no actuator file path provided", id)
		}
		if controllerConfig.Actuator.File != nil && controllerConfig.Actuator.Cmd != nil {
			return fmt.Errorf("controller %s: only one actuator type may be configured", id)
		}
		if cmd := controllerConfig.Actuator.Cmd; cmd != nil {
			if len(cmd.Exec) <= 0 {
				return fmt.Errorf("controller %s: no actuator executable provided", id)
			}
			if _, err := util.CheckFilePermissionsForExecution(cmd.Exec); err != nil {
				return fmt.Errorf("controller %s: actuator executable %s: %w", id, cmd.Exec, err)
			}
		}

		for _, sensorId := range referencedSensors(controllerConfig) {
			if len(sensorId) > 0 && !sensorIdExists(sensorId, config) {
				return fmt.Errorf("controller %s: no sensor definition with id '%s' found", id, sensorId)
			}
		}
		for _, tableId := range referencedTables(controllerConfig) {
			if len(tableId) > 0 && !tableIdExists(tableId, config) {
				return fmt.Errorf("controller %s: no table definition with id '%s' found", id, tableId)
			}
		}
	}
	return nil
}

// ValidateGains checks a set of gains for values that must never reach a controller
func ValidateGains(gains GainsConfig) error {
	values := map[string]float64{
		"p":                gains.P,
		"i":                gains.I,
		"d":                gains.D,
		"offset":           gains.Offset,
		"iLimit":           gains.ILimit,
		"derivativeFilter": gains.DerivativeFilter,
	}
	for _, name := range []string{"p", "i", "d", "offset", "iLimit", "derivativeFilter"} {
		v := values[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("gain %s must be a finite number", name)
		}
	}
	if gains.P < 0 || gains.I < 0 || gains.D < 0 {
		return errors.New("gains must not be negative, use instance inversion instead")
	}
	if gains.ILimit < 0 {
		return errors.New("iLimit must not be negative")
	}
	if gains.DerivativeFilter < 0 || gains.DerivativeFilter >= 1 {
		return errors.New("derivativeFilter must be within [0..1)")
	}
	return nil
}

func validateDomainConfig(c ControllerConfig) error {
	subConfigs := 0
	for _, present := range []bool{c.Vvt != nil, c.Idle != nil, c.Etb != nil, c.Alternator != nil, c.Boost != nil} {
		if present {
			subConfigs++
		}
	}
	if subConfigs > 1 {
		return fmt.Errorf("controller %s: only one domain configuration can be used per controller definition block", c.ID)
	}

	missing := func() error {
		return fmt.Errorf("controller %s: missing '%s' configuration block", c.ID, c.Type)
	}

	switch c.Type {
	case ControllerTypeVvt:
		if c.Vvt == nil {
			return missing()
		}
		if len(c.Vvt.TargetTables) > 0 && len(c.Vvt.TargetTables) != c.LanesPerBank {
			return fmt.Errorf("controller %s: expected %d target tables (one per lane), got %d", c.ID, c.LanesPerBank, len(c.Vvt.TargetTables))
		}
		if len(c.Vvt.PositionSensors) > c.InstanceCount() {
			return fmt.Errorf("controller %s: %d position sensors defined, but only %d instances", c.ID, len(c.Vvt.PositionSensors), c.InstanceCount())
		}
	case ControllerTypeIdle:
		if c.Idle == nil {
			return missing()
		}
	case ControllerTypeEtb:
		if c.Etb == nil {
			return missing()
		}
		if len(c.Etb.PositionSensors) > c.InstanceCount() {
			return fmt.Errorf("controller %s: %d position sensors defined, but only %d instances", c.ID, len(c.Etb.PositionSensors), c.InstanceCount())
		}
	case ControllerTypeAlternator:
		if c.Alternator == nil {
			return missing()
		}
		if len(c.Alternator.TargetTable) > 0 && len(c.Alternator.RpmSensor) <= 0 {
			return fmt.Errorf("controller %s: a target table requires an rpm sensor", c.ID)
		}
	case ControllerTypeBoost:
		if c.Boost == nil {
			return missing()
		}
	}
	return nil
}

func referencedSensors(c ControllerConfig) []string {
	var result []string
	switch {
	case c.Vvt != nil:
		result = append(result, c.Vvt.RpmSensor, c.Vvt.LoadSensor)
		result = append(result, c.Vvt.PositionSensors...)
	case c.Idle != nil:
		result = append(result, c.Idle.RpmSensor, c.Idle.CoolantSensor)
	case c.Etb != nil:
		result = append(result, c.Etb.RpmSensor, c.Etb.PedalSensor)
		result = append(result, c.Etb.PositionSensors...)
	case c.Alternator != nil:
		result = append(result, c.Alternator.VoltageSensor, c.Alternator.RpmSensor)
	case c.Boost != nil:
		result = append(result, c.Boost.RpmSensor, c.Boost.TpsSensor, c.Boost.MapSensor)
	}
	return result
}

func referencedTables(c ControllerConfig) []string {
	var result []string
	switch {
	case c.Vvt != nil:
		result = append(result, c.Vvt.TargetTables...)
	case c.Idle != nil:
		result = append(result, c.Idle.TargetRpmTable, c.Idle.OpenLoopTable)
	case c.Etb != nil:
		result = append(result, c.Etb.PedalTable, c.Etb.OpenLoopTable)
	case c.Alternator != nil:
		result = append(result, c.Alternator.TargetTable)
	case c.Boost != nil:
		result = append(result, c.Boost.TargetTable, c.Boost.OpenLoopTable)
	}
	return result
}

func validateTelemetry(config *Configuration) error {
	if !config.Telemetry.Enabled {
		return nil
	}
	for _, controllerConfig := range config.Controllers {
		record := controllerConfig.TelemetryRecord
		if len(record) <= 0 {
			record = controllerConfig.Type
		}
		if _, ok := config.Telemetry.Records[strings.ToLower(record)]; !ok {
			return fmt.Errorf("controller %s: no telemetry record '%s' in the address table", controllerConfig.ID, record)
		}
	}
	if config.Telemetry.File != nil && len(config.Telemetry.File.Path) <= 0 {
		return errors.New("telemetry: no file path provided")
	}
	return nil
}
