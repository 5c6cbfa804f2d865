package statistics

import "github.com/prometheus/client_golang/prometheus"

const encoderSubsystem = "encoder"

type EncoderSource interface {
	Position() int64
	IllegalTransitions() uint64
}

type EncoderCollector struct {
	id      string
	encoder EncoderSource

	position           *prometheus.Desc
	illegalTransitions *prometheus.Desc
}

func NewEncoderCollector(id string, encoder EncoderSource) *EncoderCollector {
	return &EncoderCollector{
		id:      id,
		encoder: encoder,
		position: prometheus.NewDesc(prometheus.BuildFQName(namespace, encoderSubsystem, "position_counts"),
			"Absolute position of the encoder in counts",
			[]string{"id"}, nil,
		),
		illegalTransitions: prometheus.NewDesc(prometheus.BuildFQName(namespace, encoderSubsystem, "illegal_transitions_total"),
			"Number of transitions that skipped a phase",
			[]string{"id"}, nil,
		),
	}
}

func (collector *EncoderCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.position
	ch <- collector.illegalTransitions
}

// Collect implements required collect function for all prometheus collectors
func (collector *EncoderCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(collector.position, prometheus.GaugeValue, float64(collector.encoder.Position()), collector.id)
	ch <- prometheus.MustNewConstMetric(collector.illegalTransitions, prometheus.CounterValue, float64(collector.encoder.IllegalTransitions()), collector.id)
}
