// Package metrics exposes Prometheus counters for the scheduling engine.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink records scheduling activity in Prometheus metrics.
type Sink struct {
	runs        *prometheus.CounterVec
	suggestions prometheus.Counter
	unfilled    prometheus.Counter
	transitions *prometheus.CounterVec
}

// NewSink registers scheduling metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generation_runs_total",
		Help: "Total number of schedule generation runs",
	}, []string{"committed"})
	suggestions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_suggestions_total",
		Help: "Total number of assignment proposals produced",
	})
	unfilled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_unfilled_slots_total",
		Help: "Total number of slots left unfilled by generation runs",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_transitions_total",
		Help: "Total number of assignment lifecycle transitions",
	}, []string{"to"})

	if err := registerCounterVec(reg, &runs); err != nil {
		return nil, err
	}
	if err := reg.Register(suggestions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			suggestions = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(unfilled); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			unfilled = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := registerCounterVec(reg, &transitions); err != nil {
		return nil, err
	}

	return &Sink{runs: runs, suggestions: suggestions, unfilled: unfilled, transitions: transitions}, nil
}

func registerCounterVec(reg prometheus.Registerer, vec **prometheus.CounterVec) error {
	if err := reg.Register(*vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*vec = are.ExistingCollector.(*prometheus.CounterVec)
			return nil
		}
		return err
	}
	return nil
}

// RecordGeneration counts one generation run and its outcomes.
func (s *Sink) RecordGeneration(committed bool, proposals, unfilled int) {
	s.runs.WithLabelValues(strconv.FormatBool(committed)).Inc()
	s.suggestions.Add(float64(proposals))
	s.unfilled.Add(float64(unfilled))
}

// RecordTransition counts one assignment lifecycle transition by its
// target status.
func (s *Sink) RecordTransition(to string) {
	s.transitions.WithLabelValues(to).Inc()
}
