// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuskart_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campuskart_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	SocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campuskart_socket_connections",
			Help: "Currently connected WebSocket clients",
		},
	)

	SocketRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campuskart_socket_rooms",
			Help: "Chat rooms with at least one connected client",
		},
	)

	ChatMessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuskart_chat_messages_relayed_total",
			Help: "Chat messages broadcast to socket rooms",
		},
	)

	SocketClientsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuskart_socket_clients_dropped_total",
			Help: "Socket clients disconnected because their send buffer was full",
		},
	)

	ImagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuskart_images_stored_total",
			Help: "Images written to the image store",
		},
		[]string{"driver", "folder"},
	)

	ImagesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuskart_images_deleted_total",
			Help: "Images removed from the image store",
		},
		[]string{"driver"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuskart_cache_lookups_total",
			Help: "Product cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
