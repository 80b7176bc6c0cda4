package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the reservation metrics on a private registry.
type Collector struct {
	reg *prometheus.Registry

	Bookings      prometheus.Counter
	Cancellations prometheus.Counter
	Rejections    *prometheus.CounterVec // labels: op, reason
	PersistErrors prometheus.Counter

	Routes         prometheus.Gauge
	AvailableSeats prometheus.Gauge
	Revenue        prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busres_bookings_total",
			Help: "Total seats booked.",
		}),
		Cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busres_cancellations_total",
			Help: "Total bookings cancelled.",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busres_rejected_operations_total",
			Help: "Operations refused by the registry or booking rules.",
		}, []string{"op", "reason"}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busres_persist_errors_total",
			Help: "Store saves that failed after a mutation.",
		}),
		Routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "busres_routes",
			Help: "Number of registered routes.",
		}),
		AvailableSeats: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "busres_available_seats",
			Help: "Empty seats across all routes.",
		}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busres_fares_charged_total",
			Help: "Sum of fares charged by bookings since start.",
		}),
	}

	reg.MustRegister(
		c.Bookings, c.Cancellations, c.Rejections, c.PersistErrors,
		c.Routes, c.AvailableSeats, c.Revenue,
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// The methods below satisfy service.Recorder.

func (c *Collector) BookingInc(fare float32) {
	c.Bookings.Inc()
	c.Revenue.Add(float64(fare))
}

func (c *Collector) CancellationInc() { c.Cancellations.Inc() }

func (c *Collector) RejectionInc(op, reason string) { c.Rejections.WithLabelValues(op, reason).Inc() }

func (c *Collector) PersistErrorInc() { c.PersistErrors.Inc() }

func (c *Collector) SetInventory(routes, available int) {
	c.Routes.Set(float64(routes))
	c.AvailableSeats.Set(float64(available))
}
