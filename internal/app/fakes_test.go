package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"assignment-helper/internal/ai"
	"assignment-helper/internal/notify"
	"assignment-helper/internal/repository"
)

var errEmbeddingDown = errors.New("embedding api unavailable")

type fakeEmbedder struct {
	mu    sync.Mutex
	calls []string
	// failOn makes Embed fail for texts containing this substring.
	failOn string
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errEmbeddingDown
	}
	return []float32{float32(len(text)), 1}, nil
}

type fakeSearcher struct {
	rows    []repository.SourceMatchRow
	err     error
	called  int
	gotTopK int
	gotVec  []float32
}

func (f *fakeSearcher) SearchNearest(_ context.Context, vec []float32, topK int) ([]repository.SourceMatchRow, error) {
	f.called++
	f.gotTopK = topK
	f.gotVec = vec
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeCompleter struct {
	reply    string
	err      error
	messages []ai.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.messages = messages
	return f.reply, f.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.AssignmentUploaded
}

func (n *recordingNotifier) AssignmentUploaded(event notify.AssignmentUploaded) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []notify.AssignmentUploaded {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.AssignmentUploaded(nil), n.events...)
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
func ptrUint(v uint) *uint        { return &v }
func ptrString(v string) *string  { return &v }
