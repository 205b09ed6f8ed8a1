package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BookingAttempt("created")
	m.BookingAttempt("created")
	m.BookingAttempt("overlap")
	m.SchedulerCall("ok")
	m.ScheduleApproved()
	m.PostCommitFailure("archive")
	m.ObserveEvaluation(3 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingAttempts.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingAttempts.WithLabelValues("overlap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.schedulesApproved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.postCommitFailures.WithLabelValues("archive")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestNewWithoutRegistry(t *testing.T) {
	m := New(nil)
	assert.NotPanics(t, func() { m.SchedulerCall("error") })
}
