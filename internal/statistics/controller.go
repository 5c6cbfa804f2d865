package statistics

import (
	"github.com/markusressel/motor2go/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "controller"

type StatusSource interface {
	Status() controller.Status
}

type ControllerCollector struct {
	id     string
	source StatusSource

	setpoint       *prometheus.Desc
	measured       *prometheus.Desc
	avgRpm         *prometheus.Desc
	command        *prometheus.Desc
	tracking       *prometheus.Desc
	avgDt          *prometheus.Desc
	maxDt          *prometheus.Desc
	ticks          *prometheus.Desc
	overruns       *prometheus.Desc
	actuatorErrors *prometheus.Desc
	sinkErrors     *prometheus.Desc
	resets         *prometheus.Desc
}

func NewControllerCollector(id string, source StatusSource) *ControllerCollector {
	desc := func(name string, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, name), help, []string{"id"}, nil)
	}
	return &ControllerCollector{
		id:             id,
		source:         source,
		setpoint:       desc("setpoint_rpm", "Current setpoint of the controller"),
		measured:       desc("measured_rpm", "Speed measured during the last control tick"),
		avgRpm:         desc("avg_rpm", "Moving average of the measured speed"),
		command:        desc("command", "Last command applied to the actuator (0..1)"),
		tracking:       desc("tracking", "1 if the controller is tracking a setpoint, 0 if it is idle"),
		avgDt:          desc("dt_avg_seconds", "Moving average of the time between two control ticks"),
		maxDt:          desc("dt_max_seconds", "Maximum time between two control ticks within the moving window"),
		ticks:          desc("ticks_total", "Number of control ticks"),
		overruns:       desc("overruns_total", "Number of control ticks that took longer than the loop period"),
		actuatorErrors: desc("actuator_errors_total", "Number of failed actuator writes"),
		sinkErrors:     desc("telemetry_errors_total", "Number of telemetry records that could not be emitted"),
		resets:         desc("resets_total", "Number of control loop resets"),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.setpoint
	ch <- collector.measured
	ch <- collector.avgRpm
	ch <- collector.command
	ch <- collector.tracking
	ch <- collector.avgDt
	ch <- collector.maxDt
	ch <- collector.ticks
	ch <- collector.overruns
	ch <- collector.actuatorErrors
	ch <- collector.sinkErrors
	ch <- collector.resets
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	status := collector.source.Status()
	id := collector.id

	tracking := 0.0
	if status.State == controller.StateTracking {
		tracking = 1
	}

	ch <- prometheus.MustNewConstMetric(collector.setpoint, prometheus.GaugeValue, status.Setpoint, id)
	ch <- prometheus.MustNewConstMetric(collector.measured, prometheus.GaugeValue, status.Measured, id)
	ch <- prometheus.MustNewConstMetric(collector.avgRpm, prometheus.GaugeValue, status.AvgRpm, id)
	ch <- prometheus.MustNewConstMetric(collector.command, prometheus.GaugeValue, status.Command, id)
	ch <- prometheus.MustNewConstMetric(collector.tracking, prometheus.GaugeValue, tracking, id)
	ch <- prometheus.MustNewConstMetric(collector.avgDt, prometheus.GaugeValue, status.AvgDt, id)
	ch <- prometheus.MustNewConstMetric(collector.maxDt, prometheus.GaugeValue, status.MaxDt, id)
	ch <- prometheus.MustNewConstMetric(collector.ticks, prometheus.CounterValue, float64(status.Ticks), id)
	ch <- prometheus.MustNewConstMetric(collector.overruns, prometheus.CounterValue, float64(status.Overruns), id)
	ch <- prometheus.MustNewConstMetric(collector.actuatorErrors, prometheus.CounterValue, float64(status.ActuatorErrors), id)
	ch <- prometheus.MustNewConstMetric(collector.sinkErrors, prometheus.CounterValue, float64(status.SinkErrors), id)
	ch <- prometheus.MustNewConstMetric(collector.resets, prometheus.CounterValue, float64(status.Resets), id)
}
