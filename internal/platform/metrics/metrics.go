package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics concentra los contadores del servicio. Registry propio para no
// depender del default global (facilita tests con varias instancias).
type Metrics struct {
	registry *prometheus.Registry

	SnapshotsApplied  prometheus.Counter
	EnrichFailures    *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	NotifyPublishErrs prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		SnapshotsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livesync_snapshots_applied_total",
			Help: "Snapshots de bookings aplicados al view merge.",
		}),
		EnrichFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livesync_enrich_failures_total",
			Help: "Joins de enrichment que fallaron y cayeron al default seguro.",
		}, []string{"join"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_status_transitions_total",
			Help: "Transiciones de estado de booking aplicadas.",
		}, []string{"status"}),
		NotifyPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_publish_errors_total",
			Help: "Publicaciones best-effort al broker que fallaron.",
		}),
	}

	reg.MustRegister(m.SnapshotsApplied, m.EnrichFailures, m.StatusTransitions, m.NotifyPublishErrs)
	return m
}

// Handler expone /metrics en formato prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
