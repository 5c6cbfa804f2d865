package statistics

import (
	"testing"

	"github.com/markusressel/motor2go/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockStatusSource struct {
	status controller.Status
}

func (s MockStatusSource) Status() controller.Status {
	return s.status
}

type MockEncoder struct{}

func (MockEncoder) Position() int64           { return -42 }
func (MockEncoder) IllegalTransitions() uint64 { return 3 }

type MockRig struct{}

func (MockRig) Rpm() float64 { return 2999.5 }

func gather(t *testing.T, collector prometheus.Collector) map[string]*dto.Metric {
	registry := prometheus.NewRegistry()
	RegisterWith(registry, collector)
	families, err := registry.Gather()
	require.NoError(t, err)

	result := map[string]*dto.Metric{}
	for _, family := range families {
		require.Len(t, family.GetMetric(), 1)
		result[family.GetName()] = family.GetMetric()[0]
	}
	return result
}

func TestControllerCollector(t *testing.T) {
	// GIVEN
	source := MockStatusSource{status: controller.Status{
		State:          controller.StateTracking,
		Setpoint:       3000,
		Measured:       2990,
		Command:        0.6,
		Ticks:          100,
		Overruns:       2,
		ActuatorErrors: 1,
	}}
	collector := NewControllerCollector("motor", source)

	// WHEN
	metrics := gather(t, collector)

	// THEN
	assert.Len(t, metrics, 12)
	assert.Equal(t, 3000.0, metrics["motor2go_controller_setpoint_rpm"].GetGauge().GetValue())
	assert.Equal(t, 2990.0, metrics["motor2go_controller_measured_rpm"].GetGauge().GetValue())
	assert.Equal(t, 0.6, metrics["motor2go_controller_command"].GetGauge().GetValue())
	assert.Equal(t, 1.0, metrics["motor2go_controller_tracking"].GetGauge().GetValue())
	assert.Equal(t, 100.0, metrics["motor2go_controller_ticks_total"].GetCounter().GetValue())
	assert.Equal(t, 2.0, metrics["motor2go_controller_overruns_total"].GetCounter().GetValue())
	assert.Equal(t, 1.0, metrics["motor2go_controller_actuator_errors_total"].GetCounter().GetValue())

	label := metrics["motor2go_controller_setpoint_rpm"].GetLabel()[0]
	assert.Equal(t, "id", label.GetName())
	assert.Equal(t, "motor", label.GetValue())
}

func TestControllerCollector_Idle(t *testing.T) {
	// GIVEN
	collector := NewControllerCollector("motor", MockStatusSource{})

	// WHEN
	metrics := gather(t, collector)

	// THEN
	assert.Equal(t, 0.0, metrics["motor2go_controller_tracking"].GetGauge().GetValue())
}

func TestEncoderCollector(t *testing.T) {
	// GIVEN
	collector := NewEncoderCollector("motor", MockEncoder{})

	// WHEN
	metrics := gather(t, collector)

	// THEN
	assert.Equal(t, -42.0, metrics["motor2go_encoder_position_counts"].GetGauge().GetValue())
	assert.Equal(t, 3.0, metrics["motor2go_encoder_illegal_transitions_total"].GetCounter().GetValue())
}

func TestSimulationCollector(t *testing.T) {
	// GIVEN
	collector := NewSimulationCollector(MockRig{})

	// WHEN
	metrics := gather(t, collector)

	// THEN
	assert.Equal(t, 2999.5, metrics["motor2go_simulation_true_rpm"].GetGauge().GetValue())
}
