package sender

import (
	"errors"
	"sync"
)

// fakeConn is a scripted Connection.
type fakeConn struct {
	mu sync.Mutex

	// liveAt is the poll on which IsConnected starts reporting true; 0 means never.
	liveAt int
	polls  int

	connectErr   error
	connectCalls int

	failOn    string
	failErr   error
	publishes []publishCall

	onPublish func(Ack)
}

type publishCall struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
	props    any
}

var errTransport = errors.New("transport refused publish")

func (f *fakeConn) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	return f.connectErr
}

func (f *fakeConn) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.liveAt > 0 && f.polls >= f.liveAt
}

func (f *fakeConn) Publish(topic string, payload []byte, qos byte, retained bool, props any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishes = append(f.publishes, publishCall{
		topic:    topic,
		payload:  payload,
		qos:      qos,
		retained: retained,
		props:    props,
	})
	if topic == f.failOn {
		return f.failErr
	}
	return nil
}

func (f *fakeConn) SetOnPublish(cb func(Ack)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onPublish = cb
}

func (f *fakeConn) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func (f *fakeConn) calls() []publishCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishCall(nil), f.publishes...)
}

func (f *fakeConn) ackHandler() func(Ack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onPublish
}

// logEntry is one captured log line.
type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any)    { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)     { l.add("info", msg, args) }
func (l *recordingLogger) Critical(msg string, args ...any) { l.add("critical", msg, args) }

func (l *recordingLogger) find(level, msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

// fakeRecorder captures telemetry events.
type fakeRecorder struct {
	mu        sync.Mutex
	published []string
	acks      []Ack
}

func (r *fakeRecorder) RecordPublish(topic string, _ byte, _ bool, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, topic)
}

func (r *fakeRecorder) RecordAck(ack Ack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks = append(r.acks, ack)
}

func (r *fakeRecorder) ackCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.acks)
}
