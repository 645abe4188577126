package hook

import (
	"net/http"
)

// ResponseWriter is a wrapper around http.ResponseWriter that calls a function
// with the response headers right before they are written.
// The function is called exactly once, on the first WriteHeader, Write or Flush.
type ResponseWriter struct {
	rw          http.ResponseWriter
	before      func(http.Header)
	wroteHeader bool
	status      int
	written     int64
}

// NewResponseWriter returns a new ResponseWriter wrapping w.
// before may modify the headers it is given; it is never called more than once.
func NewResponseWriter(w http.ResponseWriter, before func(http.Header)) *ResponseWriter {
	return &ResponseWriter{
		rw:     w,
		before: before,
	}
}

// Implementation of http.ResponseWriter
func (h *ResponseWriter) Header() http.Header {
	return h.rw.Header()
}

// Implementation of http.ResponseWriter
func (h *ResponseWriter) WriteHeader(statusCode int) {
	// informational responses do not finalize the headers
	if statusCode >= 100 && statusCode < 200 && statusCode != http.StatusSwitchingProtocols {
		h.rw.WriteHeader(statusCode)
		return
	}
	if h.wroteHeader {
		// let the underlying writer complain about superfluous calls
		h.rw.WriteHeader(statusCode)
		return
	}
	h.callBefore()
	h.status = statusCode
	h.rw.WriteHeader(statusCode)
}

// Implementation of http.ResponseWriter
func (h *ResponseWriter) Write(b []byte) (int, error) {
	if !h.wroteHeader {
		h.WriteHeader(http.StatusOK)
	}
	n, err := h.rw.Write(b)
	h.written += int64(n)
	return n, err
}

// Flush implements http.Flusher if the wrapped writer does.
// Flushing commits the headers, so the hook runs first.
func (h *ResponseWriter) Flush() {
	if !h.wroteHeader {
		h.WriteHeader(http.StatusOK)
	}
	if f, ok := h.rw.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the wrapped writer, for use by http.ResponseController.
func (h *ResponseWriter) Unwrap() http.ResponseWriter {
	return h.rw
}

// StatusCode returns the status code of the response, or 0 if nothing was written yet.
func (h *ResponseWriter) StatusCode() int {
	return h.status
}

// Written returns the number of body bytes written.
func (h *ResponseWriter) Written() int64 {
	return h.written
}

func (h *ResponseWriter) callBefore() {
	h.wroteHeader = true
	if h.before != nil {
		h.before(h.rw.Header())
	}
}
