package statistics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "motor2go"
)

func Register(collector prometheus.Collector) {
	RegisterWith(prometheus.DefaultRegisterer, collector)
}

func RegisterWith(registerer prometheus.Registerer, collector prometheus.Collector) {
	registerer.MustRegister(collector)
}
