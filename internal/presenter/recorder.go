package presenter

import (
	"sync"

	"github.com/i474232898/weather-now/internal/permission"
	"github.com/i474232898/weather-now/internal/pipeline"
	"github.com/i474232898/weather-now/internal/store"
)

// Recorder keeps rendered outcomes in a store and buffers notices and the
// pending rationale dialog until a client collects them.
type Recorder struct {
	store *store.MemoryStore

	mu        sync.Mutex
	notices   []string
	rationale *permission.Dialog
	progress  bool
}

func NewRecorder(s *store.MemoryStore) *Recorder {
	return &Recorder{store: s}
}

func (r *Recorder) Render(out pipeline.Outcome) {
	r.store.Save(out)
}

func (r *Recorder) ShowProgress(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = visible
}

func (r *Recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, msg)
}

func (r *Recorder) ShowRationale(d permission.Dialog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rationale = &d
}

// Busy reports whether the progress indicator is currently shown.
func (r *Recorder) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// DrainNotices returns and clears the buffered notices.
func (r *Recorder) DrainNotices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.notices
	r.notices = nil
	return n
}

// PendingRationale returns the rationale dialog currently showing, if any.
func (r *Recorder) PendingRationale() (permission.Dialog, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rationale == nil {
		return permission.Dialog{}, false
	}
	return *r.rationale, true
}

// TakeRationale returns and clears the pending rationale dialog.
func (r *Recorder) TakeRationale() (permission.Dialog, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rationale == nil {
		return permission.Dialog{}, false
	}
	d := *r.rationale
	r.rationale = nil
	return d, true
}

// Multi fans every call out to several presenters in order.
type Multi []pipeline.Presenter

func (m Multi) Render(out pipeline.Outcome) {
	for _, p := range m {
		p.Render(out)
	}
}

func (m Multi) ShowProgress(visible bool) {
	for _, p := range m {
		p.ShowProgress(visible)
	}
}

func (m Multi) Notify(msg string) {
	for _, p := range m {
		p.Notify(msg)
	}
}

// ShowRationale hands the dialog only to the first presenter so that its
// actions run at most once.
func (m Multi) ShowRationale(d permission.Dialog) {
	if len(m) > 0 {
		m[0].ShowRationale(d)
	}
}
