package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAcquisitionAttempts(t *testing.T) {
	c := AcquisitionAttempts.WithLabelValues("binance", "direct", OutcomeRejected)
	before := testutil.ToFloat64(c)

	c.Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestPairResults(t *testing.T) {
	c := PairResults.WithLabelValues("30d", "overlap")
	before := testutil.ToFloat64(c)

	c.Add(3)

	assert.Equal(t, before+3, testutil.ToFloat64(c))
}
