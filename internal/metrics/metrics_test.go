package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedia765/a-051853/internal/application/password"
)

func TestPasswordObserver_CountsTerminalResults(t *testing.T) {
	obs := PasswordObserver()

	before := testutil.ToFloat64(passwordChangesTotal.WithLabelValues("success_reauthenticated"))
	failBefore := testutil.ToFloat64(passwordChangesTotal.WithLabelValues("failure"))
	submitting := testutil.ToFloat64(passwordFlowStates.WithLabelValues(string(password.StateSubmitting)))

	obs(password.Event{State: password.StateSubmitting})
	obs(password.Event{State: password.StateTerminal, Reauthenticated: true})
	obs(password.Event{State: password.StateTerminal, Err: errors.New("boom")})

	assert.Equal(t, before+1, testutil.ToFloat64(passwordChangesTotal.WithLabelValues("success_reauthenticated")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(passwordChangesTotal.WithLabelValues("failure")))
	assert.Equal(t, submitting+1, testutil.ToFloat64(passwordFlowStates.WithLabelValues(string(password.StateSubmitting))))
}

func TestReauthAttemptHook(t *testing.T) {
	hook := ReauthAttemptHook()
	ok := testutil.ToFloat64(reauthAttemptsTotal.WithLabelValues("success"))
	bad := testutil.ToFloat64(reauthAttemptsTotal.WithLabelValues("failure"))

	hook(1, errors.New("503"))
	hook(2, nil)

	assert.Equal(t, ok+1, testutil.ToFloat64(reauthAttemptsTotal.WithLabelValues("success")))
	assert.Equal(t, bad+1, testutil.ToFloat64(reauthAttemptsTotal.WithLabelValues("failure")))
}

func TestHandler_ExposesRecordedSeries(t *testing.T) {
	RecordHTTPRequest(http.MethodPost, "/api/v1/password/change", 200, 15*time.Millisecond)
	RecordLogin(true, false)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{endpoint="/api/v1/password/change",method="POST",status="200"}`))
	assert.True(t, strings.Contains(body, `member_logins_total{first_time="false",result="success"}`))
}
