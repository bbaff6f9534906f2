package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"assignment-helper/internal/metrics"
)

var sampleEvent = AssignmentUploaded{
	AssignmentID:     7,
	Filename:         "abc_essay.pdf",
	FilePath:         "uploads/abc_essay.pdf",
	StudentID:        3,
	OriginalFilename: "essay.pdf",
}

func TestWebhookDeliversPayload(t *testing.T) {
	var got map[string]interface{}
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := metrics.New()
	n := NewWebhookNotifier(srv.URL, time.Second, zap.NewNop(), m)
	n.AssignmentUploaded(sampleEvent)
	n.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, float64(7), got["assignment_id"])
	assert.Equal(t, "abc_essay.pdf", got["filename"])
	assert.Equal(t, "uploads/abc_essay.pdf", got["file_path"])
	assert.Equal(t, float64(3), got["student_id"])
	assert.Equal(t, "essay.pdf", got["original_filename"])
	assert.Contains(t, scrape(t, m), `webhook_notifications_total{outcome="success"} 1`)
}

func TestWebhookFailuresAreAbsorbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := metrics.New()
	n := NewWebhookNotifier(srv.URL, time.Second, zap.NewNop(), m)
	assert.Error(t, n.Send(context.Background(), sampleEvent))

	n.AssignmentUploaded(sampleEvent)
	n.Wait()
	assert.Contains(t, scrape(t, m), `webhook_notifications_total{outcome="failure"} 2`)
}

func TestWebhookUnreachableAndTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	n := NewWebhookNotifier(srv.URL, 50*time.Millisecond, zap.NewNop(), nil)
	start := time.Now()
	n.AssignmentUploaded(sampleEvent)
	n.Wait()
	assert.Less(t, time.Since(start), 5*time.Second)

	down := NewWebhookNotifier("http://127.0.0.1:1/webhook", time.Second, zap.NewNop(), nil)
	assert.Error(t, down.Send(context.Background(), sampleEvent))
}

func TestWebhookWithoutURLIsSkipped(t *testing.T) {
	m := metrics.New()
	n := NewWebhookNotifier("", time.Second, zap.NewNop(), m)
	n.AssignmentUploaded(sampleEvent)
	n.Wait()
	assert.Contains(t, scrape(t, m), `webhook_notifications_total{outcome="skipped"} 1`)
}

type fakePublisher struct {
	mu     sync.Mutex
	queues []string
	events []interface{}
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, queueName string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queues = append(p.queues, queueName)
	p.events = append(p.events, event)
	return p.err
}

func TestMultiFansOutToBroker(t *testing.T) {
	okPub := &fakePublisher{}
	badPub := &fakePublisher{err: errors.New("channel closed")}
	m := metrics.New()

	multi := Multi{
		NewBrokerNotifier(okPub, "assignment.uploaded", zap.NewNop(), m),
		NewBrokerNotifier(badPub, "assignment.uploaded", zap.NewNop(), m),
	}
	multi.AssignmentUploaded(sampleEvent)
	multi.Wait()

	assert.Equal(t, []string{"assignment.uploaded"}, okPub.queues)
	assert.Equal(t, sampleEvent, okPub.events[0])
	assert.Len(t, badPub.events, 1)
	assert.Contains(t, scrape(t, m), `event_publish_total{outcome="failure"} 1`)
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
