package session

import (
	"time"

	"poster-backend/internal/records"
	"poster-backend/internal/report"
)

const (
	StatusIdle      = "idle"
	StatusAnalyzing = "analyzing"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Result is the outcome of one successful diagnosis.
type Result struct {
	ReportText string         `json:"reportText"`
	Outcome    report.Outcome `json:"outcome"`
	Payload    map[string]any `json:"payload,omitempty"`
	Poster     *report.Poster `json:"poster,omitempty"`
}

// State is everything one user sees: the uploaded records, the selected
// record and the live analysis. It is only changed through the methods below.
type State struct {
	ID              string           `json:"sessionId"`
	Records         []records.Record `json:"records"`
	UploadSucceeded bool             `json:"uploadSucceeded"`
	Current         *records.Record  `json:"currentRecord,omitempty"`
	Status          string           `json:"status"`
	Error           string           `json:"error,omitempty"`
	Result          *Result          `json:"result,omitempty"`
	AnalysisID      string           `json:"analysisId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// NewState returns an idle session with an empty record store.
func NewState(id string, now time.Time) State {
	return State{
		ID:        id,
		Records:   []records.Record{},
		Status:    StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyUpload replaces the record store. The analysis status is not touched.
func (s *State) ApplyUpload(recs []records.Record) {
	if recs == nil {
		recs = []records.Record{}
	}
	s.Records = recs
	s.UploadSucceeded = true
}

// ApplyUploadError records a rejected upload; the existing store is kept.
func (s *State) ApplyUploadError(err error) {
	s.Error = err.Error()
}

// Select looks id up in the store. On a miss only the error message changes
// and false is returned. On a hit the previous result is cleared, the record
// becomes current and the state moves to analyzing under analysisID.
func (s *State) Select(id, analysisID string) (records.Record, bool) {
	rec, ok := records.Find(s.Records, id)
	if !ok {
		s.Error = NotFoundMessage(id)
		return records.Record{}, false
	}
	current := rec
	s.Current = &current
	s.Status = StatusAnalyzing
	s.Result = nil
	s.Error = ""
	s.AnalysisID = analysisID
	return rec, true
}

// Complete stores the result of analysisID. Completions of a superseded
// analysis are ignored and false is returned.
func (s *State) Complete(analysisID string, res Result) bool {
	if s.AnalysisID != analysisID || s.Status != StatusAnalyzing {
		return false
	}
	s.Result = &res
	s.Status = StatusCompleted
	s.Error = ""
	return true
}

// Fail moves analysisID to the error state with msg. Stale failures are ignored.
func (s *State) Fail(analysisID, msg string) bool {
	if s.AnalysisID != analysisID || s.Status != StatusAnalyzing {
		return false
	}
	s.Result = nil
	s.Status = StatusError
	s.Error = msg
	return true
}

func (s State) clone() State {
	out := s
	if s.Records != nil {
		out.Records = append([]records.Record(nil), s.Records...)
	}
	if s.Current != nil {
		current := *s.Current
		out.Current = &current
	}
	if s.Result != nil {
		res := *s.Result
		out.Result = &res
	}
	return out
}
