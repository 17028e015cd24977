package a2a

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ============================================================================
// SERVER-SENT EVENTS - wire framing for streamed responses
// ============================================================================

// maxSSETokenSize bounds a single SSE line; oversized events abort the
// stream rather than the process.
const maxSSETokenSize = 10 * 1024 * 1024

const contentTypeEventStream = "text/event-stream"

// sseWriter frames JSON payloads as SSE data events and flushes after each
// write so clients observe increments as they are produced.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) writeHeaders() {
	h := s.w.Header()
	h.Set("Content-Type", contentTypeEventStream)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	// Disable proxy buffering so events are not held back.
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
}

func (s *sseWriter) writeData(payload []byte) error {
	if _, err := fmt.Fprintf(s.w, "id: %s\n", uuid.NewString()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) writeKeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": keep-alive\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// parseDataStream yields the payload of each SSE data event read from r.
// Lines are buffered until a line boundary, so payloads split across read
// chunks are reassembled; "data:" is accepted with or without the following
// space. Non-data lines (ids, comments, event names) are skipped.
func parseDataStream(r io.Reader) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxSSETokenSize)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimPrefix(line, "data:")
			payload = strings.TrimPrefix(payload, " ")
			if payload == "" {
				continue
			}
			if !yield([]byte(payload), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, &ProtocolError{Reason: "reading event stream", Err: err})
		}
	}
}

// isEventStream reports whether an HTTP response carries an SSE body.
func isEventStream(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct) == contentTypeEventStream
}

// drainAndClose discards any unread body so the connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64*1024))
	_ = body.Close()
}
