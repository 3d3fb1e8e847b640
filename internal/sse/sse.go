// Package sse implements the data:-line streaming convention used by the chat
// endpoints: every event is "data: <json>\n\n" and the stream ends with
// "data: [DONE]\n\n".
package sse

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DoneSentinel terminates a stream.
const DoneSentinel = "[DONE]"

// SSE header constants.
const (
	headerContentType     = "Content-Type"
	headerCacheControl    = "Cache-Control"
	headerConnection      = "Connection"
	headerXAccelBuffering = "X-Accel-Buffering"

	ContentType = "text/event-stream"
)

// Chunk is one event payload.
type Chunk struct {
	Content        string         `json:"content,omitempty"`
	ShowScheduler  bool           `json:"showScheduler,omitempty"`
	MeetingDetails map[string]any `json:"meetingDetails,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// SetHeaders sets the standard SSE headers on a response writer.
func SetHeaders(w http.ResponseWriter) {
	w.Header().Set(headerContentType, ContentType)
	w.Header().Set(headerCacheControl, "no-cache")
	w.Header().Set(headerConnection, "keep-alive")
	w.Header().Set(headerXAccelBuffering, "no")
}

// Writer streams chunks to an HTTP response. Headers are written with the
// first event so callers can still answer with a plain error before that.
type Writer struct {
	w       http.ResponseWriter
	started bool
	done    bool
}

func NewWriter(w http.ResponseWriter) *Writer {
	return &Writer{w: w}
}

// Started reports whether any event has been written.
func (w *Writer) Started() bool { return w.started }

func (w *Writer) start() {
	if w.started {
		return
	}
	SetHeaders(w.w)
	w.w.WriteHeader(http.StatusOK)
	w.started = true
}

// Send writes one chunk and flushes it.
func (w *Writer) Send(ch Chunk) error {
	if w.done {
		return errors.New("sse: send after done")
	}
	b, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}
	return w.writeData(string(b))
}

// Done writes the [DONE] sentinel. Further calls are no-ops.
func (w *Writer) Done() error {
	if w.done {
		return nil
	}
	w.done = true
	return w.writeData(DoneSentinel)
}

func (w *Writer) writeData(payload string) error {
	w.start()
	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event data: %w", err)
	}
	if f, ok := w.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Reader parses a data:-line stream. Each data line is one chunk; blank
// lines, ":" comments and other fields (event, id, retry) are skipped.
type Reader struct {
	br   *bufio.Reader
	done bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next returns the next chunk, or io.EOF after [DONE] or at end of input.
// Payloads that are not a JSON object are returned as Content.
func (r *Reader) Next() (Chunk, error) {
	for !r.done {
		line, err := r.br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return Chunk{}, err
		}
		atEOF := errors.Is(err, io.EOF)
		if atEOF {
			r.done = true
		}

		line = strings.TrimRight(line, "\r\n")
		payload, ok := dataPayload(line)
		if !ok {
			continue
		}
		if payload == DoneSentinel {
			r.done = true
			return Chunk{}, io.EOF
		}
		return parsePayload(payload), nil
	}
	return Chunk{}, io.EOF
}

func dataPayload(line string) (string, bool) {
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	p := strings.TrimPrefix(line, "data:")
	p = strings.TrimPrefix(p, " ")
	if strings.TrimSpace(p) == "" {
		return "", false
	}
	return p, true
}

func parsePayload(p string) Chunk {
	trimmed := strings.TrimSpace(p)
	if strings.HasPrefix(trimmed, "{") {
		var ch Chunk
		if err := json.Unmarshal([]byte(trimmed), &ch); err == nil {
			return ch
		}
	}
	return Chunk{Content: p}
}
