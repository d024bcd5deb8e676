package statistics

import (
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystemSensor = "sensor"

type SensorCollector struct {
	registry *sensors.Registry
	value    *prometheus.Desc
	valid    *prometheus.Desc
}

func NewSensorCollector(registry *sensors.Registry) *SensorCollector {
	return &SensorCollector{
		registry: registry,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemSensor, "value"),
			"Current value of the sensor, only reported while available",
			[]string{"id"}, nil,
		),
		valid: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemSensor, "valid"),
			"Whether the sensor currently provides a plausible value",
			[]string{"id"}, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
	ch <- collector.valid
}

// Collect implements required collect function for all prometheus collectors
func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	for _, sensor := range collector.registry.Sensors() {
		sensorId := sensor.GetId()
		value, ok := collector.registry.Get(sensorId).Get()
		valid := 0.0
		if ok {
			valid = 1
			ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, value, sensorId)
		}
		ch <- prometheus.MustNewConstMetric(collector.valid, prometheus.GaugeValue, valid, sensorId)
	}
}
