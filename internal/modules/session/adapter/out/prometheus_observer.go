package out

import (
	"github.com/prometheus/client_golang/prometheus"

	"tdrill/internal/modules/session/domain"
	sessionout "tdrill/internal/modules/session/port/out"
	"tdrill/internal/platform/metrics"
)

// PrometheusObserver turns run events into training metrics.
type PrometheusObserver struct {
	drawn     *prometheus.CounterVec
	responses *prometheus.CounterVec
	reaction  prometheus.Histogram
	sessions  prometheus.Counter
	accuracy  prometheus.Gauge
}

func NewPrometheusObserver(reg prometheus.Registerer) (sessionout.Observer, error) {
	o := &PrometheusObserver{
		drawn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "session",
			Name:      "items_drawn_total",
			Help:      "Media items presented, by kind.",
		}, []string{"kind"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "session",
			Name:      "responses_total",
			Help:      "Scored responses, by response and outcome.",
		}, []string{"response", "outcome"}),
		reaction: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: "session",
			Name:      "reaction_time_seconds",
			Help:      "Reaction time of timed correct responses.",
			Buckets:   []float64{0.2, 0.3, 0.4, 0.5, 0.75, 1, 1.5, 2, 3, 5},
		}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "session",
			Name:      "finished_total",
			Help:      "Sessions finalized and emitted.",
		}),
		accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: "session",
			Name:      "last_accuracy_ratio",
			Help:      "Correct over total responses of the last finished session.",
		}),
	}
	for _, c := range []prometheus.Collector{o.drawn, o.responses, o.reaction, o.sessions, o.accuracy} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) ItemDrawn(item domain.MediaItem) {
	o.drawn.WithLabelValues(string(item.Kind)).Inc()
}

func (o *PrometheusObserver) ResponseRecorded(_ domain.MediaItem, result domain.ResponseResult) {
	outcome := "incorrect"
	if result.IsCorrect {
		outcome = "correct"
	}
	o.responses.WithLabelValues(string(result.Response), outcome).Inc()
	if result.ReactionTimeMs != nil {
		o.reaction.Observe(float64(*result.ReactionTimeMs) / 1000)
	}
}

func (o *PrometheusObserver) SessionFinished(stats domain.Stats) {
	o.sessions.Inc()
	if stats.TotalResponses > 0 {
		o.accuracy.Set(float64(stats.CorrectResponses) / float64(stats.TotalResponses))
	}
}
