package global

import (
	"bytes"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/tomlazar/table"
)

var (
	CfgFile string
	NoColor bool
	NoStyle bool
	Verbose bool
)

// ReadValidatedConfig reads the configuration file into configuration.CurrentConfig
// and exits when it is invalid
func ReadValidatedConfig() string {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	if err := configuration.Validate(configPath); err != nil {
		ui.FatalWithoutStacktrace("%v", err)
	}
	return configPath
}

// FindController returns the configuration of the controller with the given id
func FindController(id string) (configuration.ControllerConfig, bool) {
	for _, c := range configuration.CurrentConfig.Controllers {
		if c.ID == id {
			return c, true
		}
	}
	return configuration.ControllerConfig{}, false
}

// PrintTable renders the given rows using the terminal colors of the current settings
func PrintTable(headers []string, rows [][]string) error {
	tab := table.Table{
		Headers: headers,
		Rows:    rows,
	}
	var buf bytes.Buffer
	err := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           !NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		return err
	}
	ui.Printfln("%s", buf.String())
	return nil
}
