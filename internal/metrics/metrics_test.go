package metrics

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cppe-issia/console/internal/events"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentTransport(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/missing" {
				w.WriteHeader(http.StatusNotFound)
			}
		}),
	)
	defer server.Close()

	m := New()
	client := &http.Client{Transport: m.InstrumentTransport(http.DefaultTransport)}
	for _, path := range []string{"/", "/", "/missing"} {
		resp, err := client.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
	}
	require.Equal(
		t,
		2.0,
		testutil.ToFloat64(m.APIRequests.WithLabelValues("200", "get")),
	)
	require.Equal(
		t,
		1.0,
		testutil.ToFloat64(m.APIRequests.WithLabelValues("404", "get")),
	)
}

func TestRecordLogin(t *testing.T) {
	m := New()
	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordLogin(false)
	require.Equal(
		t,
		1.0,
		testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginOutcomeSuccess)),
	)
	require.Equal(
		t,
		2.0,
		testutil.ToFloat64(m.LoginAttempts.WithLabelValues(LoginOutcomeFailure)),
	)
}

func TestCountInvalidations(t *testing.T) {
	m := New()
	broker := events.NewBroker()
	unsubscribe := m.CountInvalidations(broker)
	broker.Send(events.Event{Type: events.SessionInvalidated})
	broker.Send(events.Event{Type: "something.else"})
	require.Equal(t, 1.0, testutil.ToFloat64(m.SessionInvalidations))
	unsubscribe()
	broker.Send(events.Event{Type: events.SessionInvalidated})
	require.Equal(t, 1.0, testutil.ToFloat64(m.SessionInvalidations))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordLogin(true)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := ioutil.ReadAll(rr.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "cppe_console_login_attempts_total")
}
