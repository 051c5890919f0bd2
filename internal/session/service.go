package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"poster-backend/internal/records"
	"poster-backend/internal/report"
	"poster-backend/internal/shared/metrics"
	"poster-backend/internal/shared/telemetry"
)

// fallbackFailureMessage is used when a diagnosis error carries no text.
const fallbackFailureMessage = "分析请求失败，请稍后重试"

// Analyzer produces the raw model report for one image reference.
type Analyzer interface {
	Analyze(ctx context.Context, imageReference string) (string, error)
}

// Service drives session state through uploads and diagnoses.
type Service struct {
	Store    Store
	Analyzer Analyzer
	Now      func() time.Time
	NewID    func() string

	wg sync.WaitGroup
}

// NewService constructs a Service.
func NewService(store Store, analyzer Analyzer) *Service {
	return &Service{Store: store, Analyzer: analyzer}
}

// Create starts an empty, idle session.
func (s *Service) Create(ctx context.Context) (State, error) {
	st := NewState(s.newID(), s.now())
	if err := s.Store.Create(ctx, st); err != nil {
		return State{}, err
	}
	telemetry.Info("session.created", map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
		"session_id": st.ID,
	})
	return st, nil
}

// Get returns the current state of a session.
func (s *Service) Get(ctx context.Context, sessionID string) (State, error) {
	if sessionID == "" {
		return State{}, ErrNotFound
	}
	return s.Store.Get(ctx, sessionID)
}

// Upload parses csvText and replaces the session's record store. A schema
// error is recorded on the session and returned; the old store is kept.
func (s *Service) Upload(ctx context.Context, sessionID, csvText string) (State, error) {
	recs, parseErr := records.Parse(csvText)
	st, err := s.Store.Update(ctx, sessionID, func(st *State) error {
		if parseErr != nil {
			st.ApplyUploadError(parseErr)
			return nil
		}
		st.ApplyUpload(recs)
		return nil
	})
	if err != nil {
		return State{}, err
	}

	fields := map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
		"session_id": sessionID,
	}
	if parseErr != nil {
		metrics.IncUploadRejected()
		fields["error"] = parseErr
		telemetry.Warn("records.upload_rejected", fields)
		return st, parseErr
	}
	metrics.IncRecordsUploaded()
	fields["records"] = len(recs)
	telemetry.Info("records.uploaded", fields)
	return st, nil
}

// Submit looks meetingID up and, on a hit, starts a diagnosis in the
// background. A miss only sets the session's error message and returns
// ErrRecordNotFound.
func (s *Service) Submit(ctx context.Context, sessionID, meetingID string) (State, error) {
	analysisID := s.newID()
	var (
		rec        records.Record
		found      bool
		transition string
	)
	st, err := s.Store.Update(ctx, sessionID, func(st *State) error {
		from := st.Status
		rec, found = st.Select(meetingID, analysisID)
		if found {
			transition = from + "->" + StatusAnalyzing
		}
		return nil
	})
	if err != nil {
		return State{}, err
	}
	if !found {
		metrics.IncLookupMiss()
		telemetry.Info("analysis.lookup_miss", map[string]any{
			"request_id": telemetry.RequestIDFromContext(ctx),
			"session_id": sessionID,
			"meeting_id": meetingID,
		})
		return st, fmt.Errorf("%w: %s", ErrRecordNotFound, meetingID)
	}

	telemetry.Info("analysis.status", map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"session_id":        sessionID,
		"analysis_id":       analysisID,
		"meeting_id":        rec.ID,
		"status":            StatusAnalyzing,
		"status_transition": transition,
	})

	s.wg.Add(1)
	go s.completeAsync(telemetry.Detach(ctx), sessionID, analysisID, rec)
	return st, nil
}

// Wait blocks until every background diagnosis has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) completeAsync(ctx context.Context, sessionID, analysisID string, rec records.Record) {
	defer s.wg.Done()
	startedAt := s.now()
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, sessionID, analysisID, startedAt, fmt.Errorf("panic: %v", r))
		}
	}()
	metrics.IncDiagnosisStarted()

	if s.Analyzer == nil {
		s.fail(ctx, sessionID, analysisID, startedAt, errors.New("analyzer not configured"))
		return
	}
	raw, err := s.Analyzer.Analyze(ctx, rec.ImageReference)
	if err != nil {
		s.fail(ctx, sessionID, analysisID, startedAt, err)
		return
	}

	split := report.Split(raw)
	metrics.IncReportOutcome(string(split.Outcome))
	res := Result{
		ReportText: split.DisplayText,
		Outcome:    split.Outcome,
		Payload:    split.Payload,
		Poster:     split.Poster,
	}

	var applied bool
	_, err = s.Store.Update(ctx, sessionID, func(st *State) error {
		applied = st.Complete(analysisID, res)
		return nil
	})
	durationMs := msSince(startedAt, s.now())
	fields := map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"session_id":  sessionID,
		"analysis_id": analysisID,
		"outcome":     string(split.Outcome),
		"duration_ms": durationMs,
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("analysis.store_failed", fields)
		return
	}
	if !applied {
		metrics.IncDiagnosisDiscarded()
		telemetry.Info("analysis.discarded", fields)
		return
	}
	metrics.IncDiagnosisCompleted()
	metrics.ObserveDiagnosisDurationMs(durationMs)
	fields["status"] = StatusCompleted
	fields["status_transition"] = StatusAnalyzing + "->" + StatusCompleted
	telemetry.Info("analysis.status", fields)
}

func (s *Service) fail(ctx context.Context, sessionID, analysisID string, startedAt time.Time, cause error) {
	msg := cause.Error()
	if msg == "" {
		msg = fallbackFailureMessage
	}
	var applied bool
	_, err := s.Store.Update(ctx, sessionID, func(st *State) error {
		applied = st.Fail(analysisID, msg)
		return nil
	})
	durationMs := msSince(startedAt, s.now())
	fields := map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"session_id":  sessionID,
		"analysis_id": analysisID,
		"error":       msg,
		"duration_ms": durationMs,
	}
	if err != nil {
		fields["store_error"] = err
		telemetry.Error("analysis.store_failed", fields)
		return
	}
	if !applied {
		metrics.IncDiagnosisDiscarded()
		telemetry.Info("analysis.discarded", fields)
		return
	}
	metrics.IncDiagnosisFailed()
	metrics.ObserveDiagnosisDurationMs(durationMs)
	fields["status"] = StatusError
	fields["status_transition"] = StatusAnalyzing + "->" + StatusError
	telemetry.Info("analysis.status", fields)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func msSince(start, end time.Time) float64 {
	return float64(end.Sub(start).Microseconds()) / 1000.0
}
