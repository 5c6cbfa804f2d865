package analysis

import (
	"errors"
	"math"
	"time"

	"github.com/markusressel/motor2go/internal/telemetry"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultSettlingBand is the relative distance to the setpoint that counts as settled
	DefaultSettlingBand = 0.05
	// fraction of the records after the step used for steady state statistics
	steadyStateFraction = 0.2
)

var ErrNoStep = errors.New("telemetry does not contain a setpoint step")

// StepMetrics describes the response to a single setpoint step
type StepMetrics struct {
	// time of the step, relative to the first record
	StepTime time.Duration `json:"stepTime"`
	From     float64       `json:"from"`
	To       float64       `json:"to"`

	// time from 10% to 90% of the step
	RiseTime time.Duration `json:"riseTime"`
	Rose     bool          `json:"rose"`
	// peak beyond the target, in percent of the step size
	Overshoot float64 `json:"overshoot"`
	Peak      float64 `json:"peak"`

	// time from the step until the response stays within the settling band
	SettlingTime time.Duration `json:"settlingTime"`
	Settled      bool          `json:"settled"`

	SteadyStateMean   float64 `json:"steadyStateMean"`
	SteadyStateStdDev float64 `json:"steadyStateStdDev"`
	SteadyStateError  float64 `json:"steadyStateError"`
}

// AnalyzeStep computes the response metrics of the first setpoint step in the given records
func AnalyzeStep(records []telemetry.Record, band float64) (*StepMetrics, error) {
	stepIndex := findStep(records)
	if stepIndex < 0 {
		return nil, ErrNoStep
	}

	start := records[0].Timestamp
	stepAt := records[stepIndex].Timestamp
	from := records[stepIndex-1].Setpoint
	to := records[stepIndex].Setpoint
	amplitude := to - from

	// progress of the response, 0 at the old setpoint and 1 at the new one
	progress := func(record telemetry.Record) float64 {
		return (record.Measured - from) / amplitude
	}

	response := records[stepIndex:]
	for i, record := range response {
		if record.Setpoint != to {
			// only the first step is analyzed
			response = response[:i]
			break
		}
	}

	metrics := &StepMetrics{
		StepTime: stepAt.Sub(start),
		From:     from,
		To:       to,
	}

	var t10, t90 *time.Time
	maxProgress := math.Inf(-1)
	for i := range response {
		record := response[i]
		p := progress(record)
		if t10 == nil && p >= 0.1 {
			t10 = &response[i].Timestamp
		}
		if t90 == nil && p >= 0.9 {
			t90 = &response[i].Timestamp
		}
		if p > maxProgress {
			maxProgress = p
			metrics.Peak = record.Measured
		}
	}
	if t10 != nil && t90 != nil {
		metrics.Rose = true
		metrics.RiseTime = t90.Sub(*t10)
	}
	metrics.Overshoot = math.Max(0, (maxProgress-1)*100)

	lastOutside := -1
	for i, record := range response {
		if math.Abs(progress(record)-1) > band {
			lastOutside = i
		}
	}
	switch {
	case lastOutside < 0:
		metrics.Settled = true
	case lastOutside < len(response)-1:
		metrics.Settled = true
		metrics.SettlingTime = response[lastOutside+1].Timestamp.Sub(stepAt)
	}

	steadyCount := int(math.Ceil(float64(len(response)) * steadyStateFraction))
	steady := make([]float64, 0, steadyCount)
	for _, record := range response[len(response)-steadyCount:] {
		steady = append(steady, record.Measured)
	}
	metrics.SteadyStateMean, metrics.SteadyStateStdDev = stat.MeanStdDev(steady, nil)
	if len(steady) < 2 {
		metrics.SteadyStateStdDev = 0
	}
	metrics.SteadyStateError = to - metrics.SteadyStateMean

	return metrics, nil
}

// returns the index of the first record whose setpoint differs from its predecessor, -1 if there is none
func findStep(records []telemetry.Record) int {
	for i := 1; i < len(records); i++ {
		if records[i].Setpoint != records[i-1].Setpoint {
			return i
		}
	}
	return -1
}
