package middleware

import "net/http"

// statusRecorder captures the status code and runs an optional hook before the
// header is written.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wrote       bool
	beforeWrite func(http.ResponseWriter)
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func newBeforeWriteRecorder(w http.ResponseWriter, hook func(http.ResponseWriter)) *statusRecorder {
	rec := newStatusRecorder(w)
	rec.beforeWrite = hook
	return rec
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.flushHook()
	if !rw.wrote {
		rw.status = code
		rw.wrote = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.wrote {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *statusRecorder) flushHook() {
	if rw.beforeWrite != nil {
		hook := rw.beforeWrite
		rw.beforeWrite = nil
		hook(rw.ResponseWriter)
	}
}

// Status returns the recorded status code.
func (rw *statusRecorder) Status() int { return rw.status }

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *statusRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
