package statistics

import "github.com/prometheus/client_golang/prometheus"

const simulationSubsystem = "simulation"

type SimulationSource interface {
	Rpm() float64
}

// SimulationCollector exposes the true speed of a simulated motor
type SimulationCollector struct {
	source SimulationSource
	rpm    *prometheus.Desc
}

func NewSimulationCollector(source SimulationSource) *SimulationCollector {
	return &SimulationCollector{
		source: source,
		rpm: prometheus.NewDesc(prometheus.BuildFQName(namespace, simulationSubsystem, "true_rpm"),
			"True speed of the simulated motor",
			nil, nil,
		),
	}
}

func (collector *SimulationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.rpm
}

func (collector *SimulationCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(collector.rpm, prometheus.GaugeValue, collector.source.Rpm())
}
