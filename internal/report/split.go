package report

import (
	"encoding/json"
	"errors"
	"strings"

	"poster-backend/internal/shared/telemetry"
)

// Sentinel tokens the diagnostic prompt asks the model to wrap its JSON block in.
const (
	StartMarker = "JSON_DATA_START"
	EndMarker   = "JSON_DATA_END"
)

// Outcome tells whether Split recovered a structured payload.
type Outcome string

const (
	OutcomeParsed   Outcome = "parsed"
	OutcomeFallback Outcome = "fallback"
)

var (
	errMarkersMissing    = errors.New("json markers missing")
	errMarkersOutOfOrder = errors.New("end marker precedes start marker")
	errNotObject         = errors.New("json block is not an object")
)

// Result is the split of one raw model response.
type Result struct {
	DisplayText string
	Outcome     Outcome
	// Payload is the JSON object exactly as decoded; nil on fallback.
	Payload map[string]any
	// Poster is the typed, defensively decoded view of Payload; nil on fallback.
	Poster *Poster
	// Reason explains a fallback.
	Reason error
}

// Parsed reports whether a structured payload was recovered.
func (r Result) Parsed() bool {
	return r.Outcome == OutcomeParsed
}

// Split separates the human-readable report from the delimited JSON block.
// Any problem with the block yields a fallback carrying the raw text unchanged.
func Split(raw string) Result {
	start := strings.Index(raw, StartMarker)
	end := strings.Index(raw, EndMarker)
	if start == -1 || end == -1 {
		return fallback(raw, errMarkersMissing)
	}
	bodyStart := start + len(StartMarker)
	if end < bodyStart {
		return fallback(raw, errMarkersOutOfOrder)
	}

	body := strings.TrimSpace(raw[bodyStart:end])
	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return fallback(raw, err)
	}
	if payload == nil {
		return fallback(raw, errNotObject)
	}

	poster, err := decodePoster([]byte(body))
	if err != nil {
		return fallback(raw, err)
	}

	return Result{
		DisplayText: strings.TrimSpace(raw[:start]),
		Outcome:     OutcomeParsed,
		Payload:     payload,
		Poster:      poster,
	}
}

func fallback(raw string, reason error) Result {
	fields := map[string]any{"reason": reason.Error()}
	if errors.Is(reason, errMarkersMissing) {
		telemetry.Debug("report.split_fallback", fields)
	} else {
		telemetry.Warn("report.split_fallback", fields)
	}
	return Result{
		DisplayText: raw,
		Outcome:     OutcomeFallback,
		Reason:      reason,
	}
}
