package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/classes/:classID/seats", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/classes/:classID/seats", "200"))
	assert.Equal(t, float64(1), count)
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/classes/:classID/bookings", "201", 0.1)
	RecordHTTPRequest("POST", "/classes/:classID/bookings", "201", 0.2)
	RecordHTTPRequest("POST", "/classes/:classID/bookings", "409", 0.05)

	created := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/classes/:classID/bookings", "201"))
	conflict := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/classes/:classID/bookings", "409"))

	assert.Equal(t, float64(2), created)
	assert.Equal(t, float64(1), conflict)
}

func TestRecordBooking(t *testing.T) {
	BookingsTotal.Reset()

	RecordBooking("BOOKED")
	RecordBooking("BOOKED")
	RecordBooking("WAITLIST")

	assert.Equal(t, float64(2), testutil.ToFloat64(BookingsTotal.WithLabelValues("BOOKED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(BookingsTotal.WithLabelValues("WAITLIST")))
}

func TestRecordBookingCancellation(t *testing.T) {
	BookingCancellationsTotal.Reset()

	RecordBookingCancellation("BOOKED")
	RecordBookingCancellation("WAITLIST")
	RecordBookingCancellation("WAITLIST")

	assert.Equal(t, float64(1), testutil.ToFloat64(BookingCancellationsTotal.WithLabelValues("BOOKED")))
	assert.Equal(t, float64(2), testutil.ToFloat64(BookingCancellationsTotal.WithLabelValues("WAITLIST")))
}

func TestRecordPromotionAndDemotion(t *testing.T) {
	promotions := prometheus.NewCounter(prometheus.CounterOpts{Name: "fitclass_waitlist_promotions_total_test", Help: "test"})
	demotions := prometheus.NewCounter(prometheus.CounterOpts{Name: "fitclass_waitlist_demotions_total_test", Help: "test"})

	oldPromotions, oldDemotions := WaitlistPromotionsTotal, WaitlistDemotionsTotal
	WaitlistPromotionsTotal, WaitlistDemotionsTotal = promotions, demotions
	defer func() { WaitlistPromotionsTotal, WaitlistDemotionsTotal = oldPromotions, oldDemotions }()

	RecordPromotion()
	RecordPromotion()
	RecordDemotion()

	assert.Equal(t, float64(2), testutil.ToFloat64(promotions))
	assert.Equal(t, float64(1), testutil.ToFloat64(demotions))
}

func TestRecordAttendance(t *testing.T) {
	AttendanceMarksTotal.Reset()

	RecordAttendance(true)
	RecordAttendance(false)
	RecordAttendance(true)

	assert.Equal(t, float64(2), testutil.ToFloat64(AttendanceMarksTotal.WithLabelValues("true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(AttendanceMarksTotal.WithLabelValues("false")))
}

func TestRecordStoreBusy(t *testing.T) {
	StoreBusyTotal.Reset()

	RecordStoreBusy("create")

	assert.Equal(t, float64(1), testutil.ToFloat64(StoreBusyTotal.WithLabelValues("create")))
}

func TestRecordEmailMultipleTypes(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("seat_confirmed", "success")
	RecordEmail("seat_confirmed", "failed")
	RecordEmail("waitlisted", "success")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("seat_confirmed", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("seat_confirmed", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("waitlisted", "success")))
}

func TestRecordEvent(t *testing.T) {
	EventsPublishedTotal.Reset()

	RecordEvent("booking.created", "success")
	RecordEvent("booking.created", "failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("booking.created", "failed")))
}

func TestEmailQueueLength(t *testing.T) {
	EmailQueueLength.Set(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(EmailQueueLength))

	EmailQueueLength.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(EmailQueueLength))
}
