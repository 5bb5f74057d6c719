package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service's Prometheus collectors. A nil *Metrics is valid and records
// nothing, which keeps tests free of registry setup.
type Metrics struct {
	ActiveRooms     prometheus.Gauge
	OpenConnections prometheus.Gauge
	RoomsCreated    prometheus.Counter
	RoomsPurged     prometheus.Counter
	GamesFinished   *prometheus.CounterVec
	Answers         *prometheus.CounterVec
	TimersFired     *prometheus.CounterVec
}

func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of rooms that are waiting or playing",
		}),
		OpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_connections",
			Help:      "Number of open websocket connections",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Total number of rooms created",
		}),
		RoomsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_purged_total",
			Help:      "Total number of finished rooms removed by housekeeping",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total number of rooms that reached the finished state",
		}, []string{"reason"}),
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers recorded, by outcome",
		}, []string{"outcome"}),
		TimersFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timers_fired_total",
			Help:      "Deferred room transitions that ran",
		}, []string{"kind"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ActiveRooms,
			m.OpenConnections,
			m.RoomsCreated,
			m.RoomsPurged,
			m.GamesFinished,
			m.Answers,
			m.TimersFired,
		)
	}
	return m
}

func (m *Metrics) RoomCreated() {
	if m == nil {
		return
	}
	m.RoomsCreated.Inc()
	m.ActiveRooms.Inc()
}

func (m *Metrics) GameFinished(reason string) {
	if m == nil {
		return
	}
	m.GamesFinished.WithLabelValues(reason).Inc()
	m.ActiveRooms.Dec()
}

func (m *Metrics) AnswerRecorded(outcome string) {
	if m == nil {
		return
	}
	m.Answers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TimerFired(kind string) {
	if m == nil {
		return
	}
	m.TimersFired.WithLabelValues(kind).Inc()
}

func (m *Metrics) Purged(n int) {
	if m == nil {
		return
	}
	m.RoomsPurged.Add(float64(n))
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.OpenConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.OpenConnections.Dec()
}
