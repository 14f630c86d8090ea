package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/gorilla/mux"

	"go-chordbox/theory"
)

type noteInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type typeInfo struct {
	Name      theory.ChordType `json:"name"`
	Label     string           `json:"label"`
	Intervals []int            `json:"intervals"`
}

type chordsResponse struct {
	Notes []noteInfo `json:"notes"`
	Types []typeInfo `json:"types"`
}

type resolveResponse struct {
	Root        theory.Note      `json:"root"`
	Type        theory.ChordType `json:"type"`
	Label       string           `json:"label"`
	Frequencies []float64        `json:"frequencies"`
}

type addChordRequest struct {
	Root string `json:"root"`
	Type string `json:"type,omitempty"`
}

type selectTypeRequest struct {
	Type string `json:"type"`
}

type repeatRequest struct {
	Repeat *bool `json:"repeat"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChords(w http.ResponseWriter, r *http.Request) {
	var res chordsResponse
	for _, n := range theory.Notes() {
		res.Notes = append(res.Notes, noteInfo{Name: n.String(), Label: n.Label()})
	}
	for _, t := range theory.ChordTypes() {
		res.Types = append(res.Types, typeInfo{Name: t, Label: t.Label(), Intervals: t.Intervals()})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("root") == "" {
		writeError(w, fault.New("missing root",
			fmsg.WithDesc("missing root", "Query parameter root is required"),
			ftag.With(ftag.InvalidArgument)))
		return
	}
	root, err := theory.ParseNote(q.Get("root"))
	if err != nil {
		writeError(w, err)
		return
	}
	t := theory.DefaultType
	if name := q.Get("type"); name != "" {
		t = theory.ParseChordType(name)
	}

	c := theory.Chord{Root: root, Type: t}
	writeJSON(w, http.StatusOK, resolveResponse{
		Root:        root,
		Type:        t,
		Label:       c.String(),
		Frequencies: c.Frequencies(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleAddChord(w http.ResponseWriter, r *http.Request) {
	var req addChordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	root, err := theory.ParseNote(req.Root)
	if err != nil {
		writeError(w, err)
		return
	}

	var ok bool
	if req.Type == "" {
		ok = s.session.AddChord(root)
	} else {
		t, err := parseType(req.Type)
		if err != nil {
			writeError(w, err)
			return
		}
		ok = s.session.AddChordOf(theory.Chord{Root: root, Type: t})
	}
	s.writeEdit(w, ok, http.StatusCreated)
}

func (s *Server) handleRemoveChord(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, fault.Wrap(err, fmsg.WithDesc("parse index", "Index must be a number"), ftag.With(ftag.InvalidArgument)))
		return
	}

	if s.session.RemoveChordAt(i) {
		writeJSON(w, http.StatusOK, s.session.Snapshot())
		return
	}
	if s.session.Sequencer().IsPlaying() {
		writeJSON(w, http.StatusConflict, s.session.Snapshot())
		return
	}
	writeError(w, fault.New("index out of range",
		fmsg.WithDesc("remove "+strconv.Itoa(i), "No chord at position "+strconv.Itoa(i)),
		ftag.With(ftag.NotFound)))
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	_, ok := s.session.AddRandom()
	s.writeEdit(w, ok, http.StatusCreated)
}

func (s *Server) handleSelectType(w http.ResponseWriter, r *http.Request) {
	var req selectTypeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := parseType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeEdit(w, s.session.SelectType(t), http.StatusOK)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.writeEdit(w, s.session.Play(), http.StatusOK)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.session.Stop()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleRepeat(w http.ResponseWriter, r *http.Request) {
	var req repeatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var ok bool
	if req.Repeat == nil {
		ok = s.session.ToggleRepeat()
	} else {
		ok = s.session.SetRepeat(*req.Repeat)
	}
	s.writeEdit(w, ok, http.StatusOK)
}

// writeEdit answers with the session, 409 when the edit was refused
func (s *Server) writeEdit(w http.ResponseWriter, ok bool, status int) {
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, s.session.Snapshot())
}

// parseType accepts names and aliases; unknown names are rejected here even
// though resolving them would fall back to the root.
func parseType(name string) (theory.ChordType, error) {
	t := theory.ParseChordType(name)
	if strings.TrimSpace(name) == "" || !t.Known() {
		return "", fault.New("unknown chord type "+name,
			fmsg.WithDesc("parse type", "Unknown chord type \""+name+"\""),
			ftag.With(ftag.InvalidArgument))
	}
	return t, nil
}

// decodeBody decodes JSON into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fault.Wrap(err, fmsg.WithDesc("decode body", "Request body is not valid JSON"), ftag.With(ftag.InvalidArgument))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch ftag.Get(err) {
	case ftag.InvalidArgument:
		status = http.StatusBadRequest
	case ftag.NotFound:
		status = http.StatusNotFound
	}

	msg := fmsg.GetIssue(err)
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

