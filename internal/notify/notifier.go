// Package notify is the best-effort side channel that tells the analysis
// workflow about new assignments. Delivery outcomes are logged and counted,
// never returned to the upload path.
package notify

import "sync"

// AssignmentUploaded is the payload sent to the workflow after an upload.
type AssignmentUploaded struct {
	AssignmentID     uint   `json:"assignment_id"`
	Filename         string `json:"filename"`
	FilePath         string `json:"file_path"`
	StudentID        uint   `json:"student_id"`
	OriginalFilename string `json:"original_filename"`
}

type Notifier interface {
	// AssignmentUploaded schedules delivery and returns immediately.
	AssignmentUploaded(event AssignmentUploaded)
}

// Multi fans an event out to every notifier.
type Multi []Notifier

func (m Multi) AssignmentUploaded(event AssignmentUploaded) {
	for _, n := range m {
		n.AssignmentUploaded(event)
	}
}

// Wait blocks until in-flight deliveries of all members finish.
func (m Multi) Wait() {
	for _, n := range m {
		if w, ok := n.(interface{ Wait() }); ok {
			w.Wait()
		}
	}
}

// inflight tracks background deliveries so shutdown and tests can wait on them.
type inflight struct {
	wg sync.WaitGroup
}

func (f *inflight) spawn(fn func()) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		fn()
	}()
}

func (f *inflight) Wait() {
	f.wg.Wait()
}
