package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-chordbox/config"
	"go-chordbox/sequencer"
	"go-chordbox/theory"
)

// countingInstrument counts triggers without making sound
type countingInstrument struct {
	mu       sync.Mutex
	triggers int
}

func (c *countingInstrument) TriggerNote(freq float64, dur time.Duration, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggers++
}

func (c *countingInstrument) Cancel() {}

func (c *countingInstrument) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggers
}

func newTestServer(t *testing.T) (*Server, *sequencer.Session) {
	t.Helper()
	seq := sequencer.NewSequencer(&countingInstrument{})
	session := sequencer.NewSession(seq, theory.NewSeededGenerator(1))
	t.Cleanup(func() { session.Stop() })
	return New(session, config.DefaultConfig().Server, nil), session
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// sessionBody mirrors the JSON shape of a session snapshot
type sessionBody struct {
	Entries []struct {
		ID   string `json:"id"`
		Root string `json:"root"`
		Type string `json:"type"`
	} `json:"entries"`
	Selected string `json:"selected"`
	State    struct {
		Playing bool `json:"playing"`
		Repeat  bool `json:"repeat"`
		Current int  `json:"current"`
	} `json:"state"`
}

func TestChords(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/chords", "")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[chordsResponse](t, rec)
	assert.Len(t, res.Notes, 12)
	assert.Equal(t, noteInfo{Name: "eb", Label: "Eb"}, res.Notes[3])
	require.Len(t, res.Types, 13)
	assert.Equal(t, []int{0, 4, 7, 11, 14}, res.Types[8].Intervals)
	assert.Equal(t, "No Chord", res.Types[12].Label)
}

func TestResolve(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
		freqs  []float64
	}{
		{"c major", "root=c&type=major", http.StatusOK, []float64{261.63, 329.63, 392.00}},
		{"default type", "root=a", http.StatusOK, []float64{440.00, 554.37, 659.26}},
		{"alias", "root=c&type=m7", http.StatusOK, []float64{261.63, 311.13, 392.00, 466.16}},
		{"unknown type falls back", "root=c&type=bogus", http.StatusOK, []float64{261.63}},
		{"missing root", "type=major", http.StatusBadRequest, nil},
		{"bad root", "root=h", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/api/resolve?"+tt.query, "")
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			if tt.status != http.StatusOK {
				assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
				return
			}
			res := decode[resolveResponse](t, rec)
			require.Len(t, res.Frequencies, len(tt.freqs))
			for i, f := range tt.freqs {
				assert.InDelta(t, f, res.Frequencies[i], 0.01)
			}
		})
	}
}

func TestAddChord(t *testing.T) {
	s, session := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/session/chords", `{"root":"eb"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/session/chords", `{"root":"f#","type":"maj9"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode[sessionBody](t, rec)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "eb", body.Entries[0].Root)
	assert.Equal(t, "major", body.Entries[0].Type)
	assert.Equal(t, "gb", body.Entries[1].Root)
	assert.Equal(t, "major 9th", body.Entries[1].Type)
	assert.Equal(t, 2, session.Len())
}

func TestAddChordBadInput(t *testing.T) {
	s, session := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{root`},
		{"bad root", `{"root":"x"}`},
		{"empty root", `{}`},
		{"unknown type", `{"root":"c","type":"bogus"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/session/chords", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, session.Len())
}

func TestRemoveChord(t *testing.T) {
	s, session := newTestServer(t)
	session.AddChord(theory.C)
	session.AddChord(theory.D)

	rec := do(t, s, http.MethodDelete, "/api/session/chords/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theory.D, session.Entries()[0].Root)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/session/chords/5", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/session/chords/abc", "").Code)
	assert.Equal(t, 1, session.Len())
}

func TestRandom(t *testing.T) {
	s, session := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/session/random", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, session.Len())
	assert.Equal(t, session.Entries()[0].Type, session.Selected())
}

func TestSelectType(t *testing.T) {
	s, session := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/session/type", `{"type":"dim7"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, theory.Diminished7, session.Selected())
	assert.Equal(t, "diminished 7th", decode[sessionBody](t, rec).Selected)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/api/session/type", `{"type":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/api/session/type", `{}`).Code)
	assert.Equal(t, theory.Diminished7, session.Selected())
}

func TestPlayAndRejectedEdits(t *testing.T) {
	s, session := newTestServer(t)

	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, "/api/session/play", "").Code)

	session.AddChord(theory.C)
	session.AddChord(theory.G)
	rec := do(t, s, http.MethodPost, "/api/session/play", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[sessionBody](t, rec).State.Playing)

	rec = do(t, s, http.MethodPost, "/api/session/chords", `{"root":"a"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, decode[sessionBody](t, rec).Entries, 2)

	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodDelete, "/api/session/chords/0", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, "/api/session/random", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPut, "/api/session/type", `{"type":"minor"}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, "/api/session/repeat", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, "/api/session/play", "").Code)
	assert.Equal(t, 2, session.Len())

	rec = do(t, s, http.MethodPost, "/api/session/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[sessionBody](t, rec).State.Playing)
	assert.Equal(t, -1, decode[sessionBody](t, rec).State.Current)
}

func TestRepeat(t *testing.T) {
	s, session := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/session/repeat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[sessionBody](t, rec).State.Repeat)

	rec = do(t, s, http.MethodPost, "/api/session/repeat", `{"repeat":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, session.Sequencer().Repeat())

	rec = do(t, s, http.MethodPost, "/api/session/repeat", `{"repeat":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, session.Sequencer().Repeat())
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventStream(t *testing.T) {
	s, session := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	session.AddChord(theory.A)

	var event, data string
	for event == "" || data == "" {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}

	assert.Equal(t, "sequence_changed", event)
	var payload struct {
		Kind  string `json:"kind"`
		Index int    `json:"index"`
		Entry struct {
			Root string `json:"root"`
		} `json:"entry"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, "sequence_changed", payload.Kind)
	assert.Equal(t, 0, payload.Index)
	assert.Equal(t, "a", payload.Entry.Root)
}

func TestPlayTriggersInstrument(t *testing.T) {
	inst := &countingInstrument{}
	session := sequencer.NewSession(sequencer.NewSequencer(inst), theory.NewSeededGenerator(1))
	t.Cleanup(func() { session.Stop() })
	s := New(session, config.DefaultConfig().Server, nil)

	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/session/chords", `{"root":"c","type":"major 7th"}`).Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/session/play", "").Code)

	// first tick fires immediately, one trigger per note
	assert.Eventually(t, func() bool { return inst.count() == 4 }, time.Second, 5*time.Millisecond)
}
