package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOverlayBuild(t *testing.T) {
	before := testutil.ToFloat64(overlayBuilds.WithLabelValues(ScopeTree))
	warnBefore := testutil.ToFloat64(overlayWarnings.WithLabelValues("DELETED_REFERENCE"))

	RecordOverlayBuild(ScopeTree, 3*time.Millisecond, []string{"DELETED_REFERENCE", "DELETED_REFERENCE"})

	assert.Equal(t, before+1, testutil.ToFloat64(overlayBuilds.WithLabelValues(ScopeTree)))
	assert.Equal(t, warnBefore+2, testutil.ToFloat64(overlayWarnings.WithLabelValues("DELETED_REFERENCE")))
}

func TestRecordRejectedWriteAndMerge(t *testing.T) {
	before := testutil.ToFloat64(writesRejected.WithLabelValues("CYCLE_DETECTED"))
	RecordRejectedWrite("CYCLE_DETECTED")
	assert.Equal(t, before+1, testutil.ToFloat64(writesRejected.WithLabelValues("CYCLE_DETECTED")))

	merged := testutil.ToFloat64(correctionsMerged)
	RecordMerge()
	assert.Equal(t, merged+1, testutil.ToFloat64(correctionsMerged))
}

func TestRecordHTTPRequest_UnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404"))
	RecordHTTPRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}
