package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/mqtt-sender/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-sender/internal/infrastructure/influxdb"
)

// fakeInflux is a minimal InfluxDB v2 HTTP endpoint capturing line protocol writes.
type fakeInflux struct {
	server *httptest.Server

	mu     sync.Mutex
	lines  []string
	query  []string
	status int
}

func newFakeInflux(t *testing.T) *fakeInflux {
	t.Helper()
	f := &fakeInflux{status: http.StatusNoContent}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v2/write", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.query = append(f.query, r.URL.RawQuery)
		for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
			if line != "" {
				f.lines = append(f.lines, line)
			}
		}
		status := f.status
		f.mu.Unlock()

		if status != http.StatusNoContent {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"code":"invalid","message":"rejected by test"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeInflux) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

// waitForLines polls until at least n lines arrived.
func (f *fakeInflux) waitForLines(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if lines := f.written(); len(lines) >= n {
			return lines
		}
		time.Sleep(10 * time.Millisecond)
	}
	return f.written()
}

func (f *fakeInflux) setStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = code
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "test-token",
		Org:           "sensors",
		Bucket:        "mqtt",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

var testTags = map[string]string{
	"service":   "mqtt-sender",
	"client_id": "mqtt-sender-test",
}

func connect(t *testing.T, f *fakeInflux) *influxdb.Client {
	t.Helper()
	client, err := influxdb.Connect(context.Background(), testConfig(f.server.URL), testTags)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	client, err := influxdb.Connect(context.Background(), cfg, nil)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
	if client != nil {
		t.Error("Connect() returned non-nil client when disabled")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	f := newFakeInflux(t)
	url := f.server.URL
	f.server.Close()

	_, err := influxdb.Connect(context.Background(), testConfig(url), nil)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_CancelledContext(t *testing.T) {
	f := newFakeInflux(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := influxdb.Connect(ctx, testConfig(f.server.URL), nil)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_DefaultsBatching(t *testing.T) {
	f := newFakeInflux(t)
	cfg := testConfig(f.server.URL)
	cfg.BatchSize = 0
	cfg.FlushInterval = 0

	client, err := influxdb.Connect(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	client.WriteAck("a", 1)
	client.Close()

	if got := len(f.waitForLines(t, 1)); got != 1 {
		t.Errorf("written lines = %d, want 1", got)
	}
}

// =============================================================================
// Write Tests
// =============================================================================

func TestWritePublish(t *testing.T) {
	f := newFakeInflux(t)
	client := connect(t, f)

	client.WritePublish("sensors/temp", 1, true, 12)
	client.Close()

	lines := f.waitForLines(t, 1)
	if len(lines) != 1 {
		t.Fatalf("written lines = %d, want 1: %v", len(lines), lines)
	}
	line := lines[0]
	for _, want := range []string{"mqtt_publish,", "qos=1", "topic=sensors/temp", "bytes=12i", "retain=true"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestWriteAck(t *testing.T) {
	f := newFakeInflux(t)
	client := connect(t, f)

	client.WriteAck("sensors/temp", 7)
	client.Close()

	lines := f.waitForLines(t, 1)
	if len(lines) != 1 {
		t.Fatalf("written lines = %d, want 1: %v", len(lines), lines)
	}
	for _, want := range []string{"mqtt_ack,", "topic=sensors/temp", "message_id=7i"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
}

func TestWrite_CarriesDefaultTags(t *testing.T) {
	f := newFakeInflux(t)
	client := connect(t, f)

	client.WritePublish("a", 0, false, 1)
	client.WriteAck("a", 0)
	client.Close()

	lines := f.waitForLines(t, 2)
	if len(lines) != 2 {
		t.Fatalf("written lines = %d, want 2: %v", len(lines), lines)
	}
	for _, line := range lines {
		for _, want := range []string{"service=mqtt-sender", "client_id=mqtt-sender-test"} {
			if !strings.Contains(line, want) {
				t.Errorf("line %q missing default tag %q", line, want)
			}
		}
	}
}

func TestWrite_TargetsConfiguredBucket(t *testing.T) {
	f := newFakeInflux(t)
	client := connect(t, f)

	client.WriteAck("a", 0)
	client.Close()
	f.waitForLines(t, 1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.query) == 0 {
		t.Fatal("no write request received")
	}
	q := f.query[0]
	if !strings.Contains(q, "org=sensors") || !strings.Contains(q, "bucket=mqtt") {
		t.Errorf("write query = %q, want org=sensors and bucket=mqtt", q)
	}
}

func TestWrite_AfterCloseIsNoop(t *testing.T) {
	f := newFakeInflux(t)
	client := connect(t, f)
	client.Close()

	client.WritePublish("a", 0, false, 1)
	client.WriteAck("a", 1)

	time.Sleep(50 * time.Millisecond)
	if got := len(f.written()); got != 0 {
		t.Errorf("written lines after Close = %d, want 0", got)
	}
}

func TestSetOnError(t *testing.T) {
	f := newFakeInflux(t)
	f.setStatus(http.StatusBadRequest)
	client := connect(t, f)

	errCh := make(chan error, 1)
	client.SetOnError(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})

	client.WriteAck("a", 1)
	client.Close()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("onError called with nil error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for write error callback")
	}
}

func TestClose_Idempotent(t *testing.T) {
	client := connect(t, newFakeInflux(t))

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
