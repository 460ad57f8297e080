package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclass_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitclass_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclass_bookings_total",
			Help: "Total number of bookings created, by initial status",
		},
		[]string{"status"},
	)

	BookingCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclass_booking_cancellations_total",
			Help: "Total number of booking cancellations, by status before cancelling",
		},
		[]string{"from_status"},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitclass_waitlist_promotions_total",
			Help: "Total number of waitlisted bookings promoted to a seat",
		},
	)

	WaitlistDemotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitclass_waitlist_demotions_total",
			Help: "Total number of booked seats moved back to the waitlist after a capacity cut",
		},
	)

	AttendanceMarksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclass_attendance_marks_total",
			Help: "Total number of attendance marks",
		},
		[]string{"present"},
	)

	StoreBusyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclass_store_busy_total",
			Help: "Units of work rejected because the class lock or the store was busy",
		},
		[]string{"operation"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclass_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitclass_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclass_events_published_total",
			Help: "Booking events handed to the broker",
		},
		[]string{"type", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordBookingCancellation(fromStatus string) {
	BookingCancellationsTotal.WithLabelValues(fromStatus).Inc()
}

func RecordPromotion() {
	WaitlistPromotionsTotal.Inc()
}

func RecordDemotion() {
	WaitlistDemotionsTotal.Inc()
}

func RecordAttendance(present bool) {
	label := "false"
	if present {
		label = "true"
	}
	AttendanceMarksTotal.WithLabelValues(label).Inc()
}

func RecordStoreBusy(operation string) {
	StoreBusyTotal.WithLabelValues(operation).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordEvent(eventType, status string) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}
