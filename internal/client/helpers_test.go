package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/fivetwenty-io/pagedrest/internal/client"
	pagedhttp "github.com/fivetwenty-io/pagedrest/internal/http"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
)

// fakeAPI serves canned JSON bodies keyed by "METHOD path?query" and counts
// the calls it receives per key.
type fakeAPI struct {
	t        *testing.T
	mutex    sync.Mutex
	routes   map[string]route
	calls    map[string]*atomic.Int32
	requests []*http.Request
	delay    time.Duration
}

type route struct {
	status int
	body   interface{}
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{
		t:      t,
		routes: make(map[string]route),
		calls:  make(map[string]*atomic.Int32),
	}

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	return api, server
}

func (f *fakeAPI) handle(method, target string, status int, body interface{}) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	key := method + " " + target
	f.routes[key] = route{status: status, body: body}

	if _, ok := f.calls[key]; !ok {
		f.calls[key] = &atomic.Int32{}
	}
}

func (f *fakeAPI) count(method, target string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	counter, ok := f.calls[method+" "+target]
	if !ok {
		return 0
	}

	return int(counter.Load())
}

func (f *fakeAPI) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	f.mutex.Lock()
	key := request.Method + " " + request.URL.RequestURI()
	r, ok := f.routes[key]
	counter := f.calls[key]
	f.requests = append(f.requests, request)
	delay := f.delay
	f.mutex.Unlock()

	time.Sleep(delay)

	if !ok {
		f.t.Logf("unexpected request: %s", key)
		writer.WriteHeader(http.StatusNotFound)

		return
	}

	counter.Add(1)

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(r.status)

	if r.body != nil {
		_ = json.NewEncoder(writer).Encode(r.body)
	}
}

func newTestClient(serverURL string, opts ...Option) *Client {
	transport := pagedhttp.NewClient(serverURL, pagedhttp.WithBasicAuth("user", "secret"))
	cache := pagedrest.NewCacheManager(pagedrest.NewMemoryCache(0), nil)

	return NewWithTransport(transport, cache, opts...)
}

// recordingLogger is safe for concurrent use.
type recordingLogger struct {
	mutex sync.Mutex
	logs  []map[string]interface{}
}

func (l *recordingLogger) record(level, msg string, fields map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *recordingLogger) messages(level string) []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var out []string

	for _, entry := range l.logs {
		if entry["level"] == level {
			msg, _ := entry["msg"].(string)
			out = append(out, msg)
		}
	}

	return out
}

func statusOf(err error) int {
	return pagedrest.StatusCode(err)
}
