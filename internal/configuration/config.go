package configuration

import (
	"fmt"
	"os"
	"time"

	"github.com/markusressel/act2go/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	// default polling rate of sensor monitors
	SensorPollingRate time.Duration `json:"sensorPollingRate"`
	// default maximum age of a sensor reading before it is considered unavailable
	SensorTimeout time.Duration `json:"sensorTimeout"`

	// default interval between two ticks of a controller
	ControllerTickRate time.Duration `json:"controllerTickRate"`

	Sensors     []SensorConfig     `json:"sensors"`
	Tables      []TableConfig      `json:"tables"`
	Controllers []ControllerConfig `json:"controllers"`

	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`
	Telemetry  TelemetryConfig  `json:"telemetry"`
	Profiling  ProfilingConfig  `json:"profiling"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("act2go")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/act2go/")
	}

	viper.SetEnvPrefix("ACT2GO")
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/etc/act2go/act2go.db")
	viper.SetDefault("SensorPollingRate", 50*time.Millisecond)
	viper.SetDefault("SensorTimeout", 1*time.Second)
	viper.SetDefault("ControllerTickRate", 20*time.Millisecond)

	viper.SetDefault("sensors", []SensorConfig{})
	viper.SetDefault("tables", []TableConfig{})
	viper.SetDefault("controllers", []ControllerConfig{})

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.records", DefaultTelemetryRecords)
	viper.SetDefault("telemetry.can.enabled", false)
	viper.SetDefault("telemetry.can.interface", "can0")
	viper.SetDefault("telemetry.can.baseId", 0x600)
	viper.SetDefault("telemetry.can.rate", 100*time.Millisecond)

	viper.SetDefault("profiling.enabled", false)
	viper.SetDefault("profiling.host", "localhost")
	viper.SetDefault("profiling.port", 6060)
}

// DetectConfigFile returns the path of the configuration file viper is going to use
func DetectConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		ui.FatalWithoutStacktrace("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

// DetectAndReadConfigFile reads the configuration file and loads it into CurrentConfig
func DetectAndReadConfigFile() string {
	configPath := DetectConfigFile()
	LoadConfig()
	return configPath
}

// LoadConfig decodes the configuration read by viper into CurrentConfig
func LoadConfig() {
	config, err := decodeConfig()
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
	CurrentConfig = config
}

// ReloadConfig re-reads the configuration file, returning the new configuration
// without touching CurrentConfig when it cannot be read or is invalid.
func ReloadConfig() (*Configuration, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	config, err := decodeConfig()
	if err != nil {
		return nil, err
	}
	if err := validateConfig(&config, viper.ConfigFileUsed()); err != nil {
		return nil, err
	}
	CurrentConfig = config
	return &CurrentConfig, nil
}

func decodeConfig() (Configuration, error) {
	var config Configuration
	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			DefaultTrueBoolHookFunc(),
		),
	))
	if err != nil {
		return Configuration{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return config, nil
}
