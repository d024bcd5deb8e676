package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/markusressel/act2go/internal/actuators"
	"github.com/markusressel/act2go/internal/api"
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/domains"
	"github.com/markusressel/act2go/internal/gains"
	"github.com/markusressel/act2go/internal/hwmon"
	"github.com/markusressel/act2go/internal/persistence"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/statistics"
	"github.com/markusressel/act2go/internal/table"
	"github.com/markusressel/act2go/internal/telemetry"
	"github.com/markusressel/act2go/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Objects holds everything created from a configuration
type Objects struct {
	Sensors  *sensors.Registry
	Monitors []*sensors.Monitor
	Tables   *table.Registry
	Groups   []*controller.Group
	Gains    map[string]*gains.Registry

	// only set when telemetry is enabled
	Telemetry *telemetry.Buffer
	Layout    telemetry.Layout
}

func RunDaemon() {
	if getProcessOwner() != "root" {
		ui.Warning("act2go is not running as root, writing to actuators may fail")
	}

	config := &configuration.CurrentConfig

	pers := persistence.NewPersistence(config.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence at %s: %v", config.DbPath, err)
	}

	objects, err := InitializeObjects(config, pers)
	if err != nil {
		ui.Fatal("%v", err)
	}
	if len(objects.Groups) == 0 {
		ui.Fatal("No valid controller configurations, exiting.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	{
		if config.Statistics.Enabled {
			// === Prometheus Exporter
			statistics.Register(statistics.NewSensorCollector(objects.Sensors))
			statistics.Register(statistics.NewControllerCollector(objects.Groups))

			port := config.Statistics.Port
			if port <= 0 || port >= 65535 {
				port = 9000
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
			addServer(&g, "statistics", server)
		}
	}
	{
		if config.Api.Enabled {
			// === REST api
			rest := api.CreateRestService(api.Services{
				Groups:    objects.Groups,
				Gains:     objects.Gains,
				Sensors:   objects.Sensors,
				Telemetry: objects.Telemetry,
				Layout:    objects.Layout,
			}, prometheus.DefaultRegisterer)
			addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)

			g.Add(func() error {
				ui.Info("Starting api at %s", addr)
				if err := rest.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("api server: %w", err)
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := rest.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping api server: %v", err)
				}
			})
		}
	}
	{
		if config.Profiling.Enabled {
			// === pprof
			port := config.Profiling.Port
			if port <= 0 {
				port = 6060
			}
			mux := http.NewServeMux()
			mux.HandleFunc("/debug/pprof/", pprof.Index)
			mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
			mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
			mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
			mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
			server := &http.Server{Addr: fmt.Sprintf("%s:%d", config.Profiling.Host, port), Handler: mux}
			addServer(&g, "profiling", server)
		}
	}
	{
		// === sensor monitoring
		for _, monitor := range objects.Monitors {
			mon := monitor
			g.Add(func() error {
				return mon.Run(ctx)
			}, func(err error) {
				cancel()
			})
		}
	}
	{
		// === controllers
		for _, group := range objects.Groups {
			grp := group
			g.Add(func() error {
				err := grp.Run(ctx)
				ui.Info("Controller %s stopped.", grp.GetId())
				return err
			}, func(err error) {
				cancel()
			})
		}
	}
	{
		// === telemetry
		if objects.Telemetry != nil {
			addTelemetry(ctx, cancel, &g, config.Telemetry, objects)
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

		g.Add(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case s := <-sig:
					if s != syscall.SIGHUP {
						ui.Info("Received %v signal, exiting...", s)
						return nil
					}
					ui.Info("Received SIGHUP signal, reloading configuration...")
					newConfig, err := configuration.ReloadConfig()
					if err != nil {
						ui.Error("Unable to reload configuration, keeping the current one: %v", err)
						continue
					}
					Reload(newConfig, objects, pers)
				}
			}
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

func addServer(g *run.Group, name string, server *http.Server) {
	g.Add(func() error {
		ui.Info("Starting %s server at %s", name, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	}, func(err error) {
		ui.Info("Stopping %s server...", name)
		timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			ui.Warning("Error stopping %s server: %v", name, err)
		}
	})
}

func addTelemetry(ctx context.Context, cancel context.CancelFunc, g *run.Group, config configuration.TelemetryConfig, objects *Objects) {
	if config.Can.Enabled {
		sink, err := telemetry.DialSocketCan(ctx, config.Can.Interface)
		if err != nil {
			ui.Error("Unable to open CAN interface %s, telemetry broadcast disabled: %v", config.Can.Interface, err)
		} else {
			broadcaster := telemetry.NewBroadcaster(objects.Telemetry, objects.Layout, config.Can.BaseId, config.Can.Rate, sink)
			g.Add(func() error {
				defer func() {
					_ = sink.Close()
				}()
				return broadcaster.Run(ctx)
			}, func(err error) {
				cancel()
			})
		}
	}

	if config.File != nil {
		exporter := telemetry.NewFileExporter(objects.Telemetry, config.File.Path, config.File.Rate)
		g.Add(func() error {
			return exporter.Run(ctx)
		}, func(err error) {
			cancel()
		})
	}
}

// InitializeObjects creates sensors, tables and controllers of the given configuration.
// Tuning overrides stored in pers are applied on top of the configured tuning, pers may be nil.
func InitializeObjects(config *configuration.Configuration, pers persistence.Persistence) (*Objects, error) {
	objects := &Objects{
		Sensors: sensors.NewRegistry(config.SensorTimeout),
		Gains:   map[string]*gains.Registry{},
	}

	var chips []*hwmon.Chip
	for _, sensorConfig := range config.Sensors {
		hwmonPath := ""
		if sensorConfig.HwMon != nil {
			if chips == nil {
				chips = hwmon.GetChips()
			}
			input, err := hwmon.FindInput(chips, *sensorConfig.HwMon)
			if err != nil {
				return nil, fmt.Errorf("sensor %s: %w. Run 'act2go detect' and correct the configuration", sensorConfig.ID, err)
			}
			hwmonPath = input.Path
		}

		sensor, err := sensors.NewSensor(sensorConfig, hwmonPath, objects.Sensors)
		if err != nil {
			return nil, fmt.Errorf("unable to process sensor configuration %s: %w", sensorConfig.ID, err)
		}
		objects.Sensors.Register(sensor)
		objects.Monitors = append(objects.Monitors, sensors.NewMonitor(objects.Sensors, sensor, config.SensorPollingRate))
	}

	tables, err := table.NewRegistryFromConfig(config.Tables)
	if err != nil {
		return nil, err
	}
	objects.Tables = tables

	if config.Telemetry.Enabled {
		layout, err := telemetry.NewLayout(telemetry.NewAddressTable(config.Telemetry.Records), config.Controllers)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		objects.Layout = layout
		objects.Telemetry = telemetry.NewBuffer(layout.Size)
	}

	for _, controllerConfig := range config.Controllers {
		group, err := createGroup(config, controllerConfig, objects, pers)
		if err != nil {
			return nil, err
		}
		objects.Groups = append(objects.Groups, group)
	}

	return objects, nil
}

func createGroup(config *configuration.Configuration, c configuration.ControllerConfig, objects *Objects, pers persistence.Persistence) (*controller.Group, error) {
	registry := gains.NewRegistry(c.LanesPerBank, c.InstanceCount())
	registry.Load(loadDefaults(c, pers))
	if pers != nil {
		persistence.Track(pers, c.ID, registry)
	}
	objects.Gains[c.ID] = registry

	domain, err := domains.New(c, objects.Sensors, objects.Tables)
	if err != nil {
		return nil, err
	}

	sink, err := actuators.New(c.Actuator, c.InstanceCount())
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", c.ID, err)
	}

	var publisher controller.Publisher
	if objects.Telemetry != nil {
		if slot, ok := objects.Layout.Slot(c.ID); ok {
			publisher = telemetry.NewSlotPublisher(objects.Telemetry, slot)
		}
	}

	tickRate := c.TickRate
	if tickRate <= 0 {
		tickRate = config.ControllerTickRate
	}
	if tickRate <= 0 {
		return nil, fmt.Errorf("controller %s: tick rate must be positive", c.ID)
	}

	return controller.NewGroup(c.ID, c.Banks, c.LanesPerBank, domain, registry, tickRate, sink, publisher), nil
}

func loadDefaults(c configuration.ControllerConfig, pers persistence.Persistence) gains.Defaults {
	defaults := gains.DefaultsFromConfig(c)
	if pers != nil {
		defaults = persistence.Overlay(pers, c.ID, c.LanesPerBank, defaults)
	}
	return defaults
}

// Reload applies the tuning of a new configuration to the running controllers.
// Every instance of a reloaded controller is reset at its next tick.
// Structural changes (new controllers, bank or lane counts) require a restart.
func Reload(config *configuration.Configuration, objects *Objects, pers persistence.Persistence) {
	for _, c := range config.Controllers {
		registry, ok := objects.Gains[c.ID]
		if !ok {
			ui.Warning("Controller %s is new, restart act2go to activate it", c.ID)
			continue
		}
		if registry.LanesPerBank() != max(c.LanesPerBank, 1) || registry.InstanceCount() != c.InstanceCount() {
			ui.Warning("Controller %s changed its layout, restart act2go to apply it", c.ID)
			continue
		}
		registry.Load(loadDefaults(c, pers))
	}
	for _, group := range objects.Groups {
		group.RequestReset()
	}
	ui.Info("Configuration reloaded.")
}

func getProcessOwner() string {
	stdout, err := exec.Command("ps", "-o", "user=", "-p", strconv.Itoa(os.Getpid())).Output()
	if err != nil {
		ui.Fatal("Error checking process owner: %v", err)
		os.Exit(1)
	}
	return strings.TrimSpace(string(stdout))
}
