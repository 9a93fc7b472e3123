// Package metrics declares the Prometheus collectors exposed on
// /metrics. Collectors are package-level and registered via promauto,
// so importing a package that increments them is enough to export them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingRequests counts booking attempts by final outcome:
	// confirmed, sold_out, seat_conflict, invalid, error.
	BookingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_requests_total",
		Help: "Booking attempts by outcome.",
	}, []string{"outcome"})

	// BookingsCancelled counts successful cancellations.
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Bookings cancelled by their owner.",
	})

	// TicketsReserved tracks tickets currently held across all
	// scheduled showings, incremented on confirm and decremented on
	// cancel.
	TicketsReserved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tickets_reserved",
		Help: "Tickets currently reserved across scheduled showings.",
	})

	// NotifierSubscribers tracks live availability subscriptions.
	NotifierSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifier_subscribers",
		Help: "Open availability subscriptions across all showings.",
	})

	// NotifierDropped counts subscribers disconnected because their
	// delivery buffer stayed full.
	NotifierDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_dropped_subscribers_total",
		Help: "Subscribers dropped for not keeping up with updates.",
	})

	// EventsPublished counts broker messages by routing key.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queue_events_published_total",
		Help: "Messages published to the broker by routing key.",
	}, []string{"routing_key"})
)
