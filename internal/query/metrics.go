package query

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of query execution. A nil *Metrics
// records nothing.
type Metrics struct {
	DocumentsMapped  prometheus.Counter
	Anomalies        *prometheus.CounterVec
	PlanningFailures *prometheus.CounterVec
	MissingIndex     prometheus.Counter
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	documentsMapped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_mapper_documents_mapped_total",
		Help: "Total search hits mapped to records",
	})

	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_mapper_anomalies_total",
		Help: "Non-fatal problems met while mapping hits",
	}, []string{"kind"})

	planningFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_mapper_planning_failures_total",
		Help: "Queries rejected before reading any document",
	}, []string{"reason"})

	missingIndex := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_mapper_missing_index_total",
		Help: "Reads answered with no records because the index was absent",
	})

	reg.MustRegister(documentsMapped, anomalies, planningFailures, missingIndex)

	return &Metrics{
		DocumentsMapped:  documentsMapped,
		Anomalies:        anomalies,
		PlanningFailures: planningFailures,
		MissingIndex:     missingIndex,
	}
}

func (m *Metrics) mapped() {
	if m != nil {
		m.DocumentsMapped.Inc()
	}
}

func (m *Metrics) anomaly(kind string) {
	if m != nil {
		m.Anomalies.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) planningFailure(reason string) {
	if m != nil {
		m.PlanningFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) missingIndex() {
	if m != nil {
		m.MissingIndex.Inc()
	}
}
