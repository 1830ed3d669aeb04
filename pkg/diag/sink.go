package diag

import (
	"sync"

	"github.com/charmbracelet/log"
)

// LogSink writes each record as one warning line on a charmbracelet logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a sink writing to logger, or to log.Default() if logger is nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger}
}

// Emit logs r at warn level with its structured fields.
func (s *LogSink) Emit(r Record) {
	kv := []any{"event", string(r.Kind)}
	if r.Section != "" {
		kv = append(kv, "section", r.Section)
	}
	if r.Top != "" {
		kv = append(kv, "top", r.Top)
	}
	s.logger.Warn(r.Message(), kv...)
}

// Recorder is a Sink that keeps every record in memory.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// Emit appends r.
func (r *Recorder) Emit(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of the recorded records in emission order.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Kinds returns the kinds of the recorded records in emission order.
func (r *Recorder) Kinds() []Kind {
	recs := r.Records()
	kinds := make([]Kind, len(recs))
	for i, rec := range recs {
		kinds[i] = rec.Kind
	}
	return kinds
}

// Reset discards all recorded records.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

// Tee fans records out to several sinks.
type Tee []Sink

// Emit forwards r to every sink in order.
func (t Tee) Emit(r Record) {
	for _, s := range t {
		if s != nil {
			s.Emit(r)
		}
	}
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = (*Recorder)(nil)
	_ Sink = Tee(nil)
	_ Sink = Nop{}
)
