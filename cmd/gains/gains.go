package gains

import (
	"fmt"

	"github.com/markusressel/act2go/cmd/global"
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/gains"
	"github.com/markusressel/act2go/internal/persistence"
	"github.com/markusressel/act2go/internal/ui"
	"github.com/spf13/cobra"
)

var controllerId string

var Command = &cobra.Command{
	Use:   "gains",
	Short: "Tuning related commands",
	Long: `Read and modify the tuning of a controller.
Changes are stored in the database and applied to a running daemon on SIGHUP or restart.`,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&controllerId,
		"id", "i",
		"",
		"Controller ID as specified in the config",
	)
	_ = Command.MarkPersistentFlagRequired("id")
}

// loadRegistry creates a registry holding the effective tuning of the selected controller
func loadRegistry() (configuration.ControllerConfig, persistence.Persistence, *gains.Registry, error) {
	global.ReadValidatedConfig()

	config, ok := global.FindController(controllerId)
	if !ok {
		return config, nil, nil, fmt.Errorf("no controller with id found: %s", controllerId)
	}

	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		return config, nil, nil, err
	}

	registry := gains.NewRegistry(config.LanesPerBank, config.InstanceCount())
	registry.Load(persistence.Overlay(pers, config.ID, config.LanesPerBank, gains.DefaultsFromConfig(config)))
	return config, pers, registry, nil
}

func printApplyHint() {
	ui.Info("Send SIGHUP to a running act2go daemon to apply the change.")
}
