package sse

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []Chunk {
	t.Helper()
	var out []Chunk
	for {
		ch, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, ch)
	}
}

func TestWriter_FormatsAndHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)
	require.False(t, w.Started())

	require.NoError(t, w.Send(Chunk{Content: "Hel"}))
	require.NoError(t, w.Send(Chunk{ShowScheduler: true, MeetingDetails: map[string]any{"topic": "demo"}}))
	require.NoError(t, w.Done())
	require.NoError(t, w.Done())
	require.Error(t, w.Send(Chunk{Content: "late"}))

	assert.True(t, w.Started())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.True(t, rec.Flushed)
	assert.Equal(t,
		"data: {\"content\":\"Hel\"}\n\n"+
			"data: {\"showScheduler\":true,\"meetingDetails\":{\"topic\":\"demo\"}}\n\n"+
			"data: [DONE]\n\n",
		rec.Body.String())
}

func TestReader_RoundTripWithWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)
	require.NoError(t, w.Send(Chunk{Content: "a"}))
	require.NoError(t, w.Send(Chunk{Error: "boom"}))
	require.NoError(t, w.Done())

	chunks := readAll(t, NewReader(strings.NewReader(rec.Body.String())))
	require.Equal(t, []Chunk{{Content: "a"}, {Error: "boom"}}, chunks)
}

func TestReader_SkipsNoiseAndStopsAtDone(t *testing.T) {
	in := ": keep-alive\n" +
		"event: message\n" +
		"id: 7\n" +
		"\n" +
		"data: {\"content\":\"one\"}\r\n" +
		"data:\n" +
		"data:plain text\n" +
		"data: [DONE]\n" +
		"data: {\"content\":\"after\"}\n"
	chunks := readAll(t, NewReader(strings.NewReader(in)))
	require.Equal(t, []Chunk{{Content: "one"}, {Content: "plain text"}}, chunks)
}

func TestReader_ToleratesSplitReads(t *testing.T) {
	in := "data: {\"content\":\"hello \"}\n\ndata: {\"content\":\"world\"}\n\ndata: [DONE]\n\n"
	chunks := readAll(t, NewReader(iotest.OneByteReader(strings.NewReader(in))))
	require.Equal(t, []Chunk{{Content: "hello "}, {Content: "world"}}, chunks)
}

func TestReader_EOFWithoutDoneAndTrailingLine(t *testing.T) {
	chunks := readAll(t, NewReader(strings.NewReader("data: {\"content\":\"x\"}\ndata: {\"content\":\"y\"}")))
	require.Equal(t, []Chunk{{Content: "x"}, {Content: "y"}}, chunks)

	r := NewReader(strings.NewReader(""))
	_, err := r.Next()
	require.ErrorIs(t, err, io.EOF)
}
