package statistics

import (
	"strconv"

	"github.com/markusressel/act2go/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "controller"

type ControllerCollector struct {
	groups []*controller.Group

	target         *prometheus.Desc
	observed       *prometheus.Desc
	duty           *prometheus.Desc
	integrator     *prometheus.Desc
	status         *prometheus.Desc
	saturatedCount *prometheus.Desc
	faultCount     *prometheus.Desc
	skippedCount   *prometheus.Desc
}

func NewControllerCollector(groups []*controller.Group) *ControllerCollector {
	labels := []string{"id", "index", "bank", "lane"}
	return &ControllerCollector{
		groups: groups,
		target: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "target"),
			"Current target value of the instance, only reported while available",
			labels, nil,
		),
		observed: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "observed"),
			"Current measured value of the instance, only reported while available",
			labels, nil,
		),
		duty: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "duty_percent"),
			"Current actuator duty of the instance in percent",
			labels, nil,
		),
		integrator: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "integrator"),
			"Current integrator value of the instance",
			labels, nil,
		),
		status: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "status"),
			"Current status of the instance, 1 for the active status",
			append(labels, "status"), nil,
		),
		saturatedCount: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "saturated_count"),
			"Counter for ticks where the output had to be clamped",
			labels, nil,
		),
		faultCount: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "fault_count"),
			"Counter for ticks with invalid input",
			labels, nil,
		),
		skippedCount: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "skipped_count"),
			"Counter for ticks skipped due to a timing anomaly",
			labels, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.target
	ch <- collector.observed
	ch <- collector.duty
	ch <- collector.integrator
	ch <- collector.status
	ch <- collector.saturatedCount
	ch <- collector.faultCount
	ch <- collector.skippedCount
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	for _, group := range collector.groups {
		for _, state := range group.States() {
			labels := []string{
				group.GetId(),
				strconv.Itoa(state.Address.Index),
				strconv.Itoa(state.Address.Bank),
				strconv.Itoa(state.Address.Lane),
			}
			if state.TargetValid {
				ch <- prometheus.MustNewConstMetric(collector.target, prometheus.GaugeValue, state.Target, labels...)
			}
			if state.ObservedValid {
				ch <- prometheus.MustNewConstMetric(collector.observed, prometheus.GaugeValue, state.Observed, labels...)
			}
			ch <- prometheus.MustNewConstMetric(collector.duty, prometheus.GaugeValue, state.DutyPercent, labels...)
			ch <- prometheus.MustNewConstMetric(collector.integrator, prometheus.GaugeValue, state.Integrator, labels...)
			for _, status := range []controller.Status{controller.Uninitialized, controller.Disabled, controller.OpenLoopOnly, controller.ClosedLoopActive, controller.Fault} {
				value := 0.0
				if state.Status == status {
					value = 1
				}
				ch <- prometheus.MustNewConstMetric(collector.status, prometheus.GaugeValue, value, append(labels, status.String())...)
			}
			ch <- prometheus.MustNewConstMetric(collector.saturatedCount, prometheus.CounterValue, float64(state.Counters.Saturated), labels...)
			ch <- prometheus.MustNewConstMetric(collector.faultCount, prometheus.CounterValue, float64(state.Counters.Faults), labels...)
			ch <- prometheus.MustNewConstMetric(collector.skippedCount, prometheus.CounterValue, float64(state.Counters.Skipped), labels...)
		}
	}
}
