package session

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"poster-backend/internal/records"
	"poster-backend/internal/report"
	"poster-backend/internal/shared/server/middleware"
	"poster-backend/internal/shared/server/respond"
)

const maxUploadBytes = 5 << 20

// Handler wires HTTP handlers to the session service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.createSession)
	rg.GET("/session", h.getSession)
	rg.POST("/records", h.uploadRecords)
	rg.GET("/records", h.listRecords)
	rg.POST("/analyses", h.startAnalysis)
	rg.GET("/analyses/current", h.currentAnalysis)
}

type startAnalysisRequest struct {
	MeetingID string `json:"meetingId"`
}

func (h *Handler) createSession(c *gin.Context) {
	st, err := h.Svc.Create(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}
	c.Header(middleware.SessionHeader, st.ID)
	respond.JSON(c, http.StatusCreated, gin.H{
		"sessionId": st.ID,
		"status":    st.Status,
	})
}

func (h *Handler) getSession(c *gin.Context) {
	st, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, sessionView(st))
}

func (h *Handler) uploadRecords(c *gin.Context) {
	text, err := readUpload(c)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "csv file is too large", gin.H{"maxBytes": maxUploadBytes})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "csv file is required", nil)
		return
	}

	st, err := h.Svc.Upload(c.Request.Context(), middleware.SessionIDFromContext(c), text)
	if err != nil {
		switch {
		case errors.Is(err, records.ErrMalformedSchema):
			respond.Error(c, http.StatusBadRequest, "malformed_schema", err.Error(), []map[string]string{
				{"field": records.ColumnMeetingID, "issue": "required"},
				{"field": records.ColumnContent, "issue": "required"},
			})
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "session_not_found", "session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store records", nil)
		}
		return
	}

	respond.OK(c, gin.H{
		"uploadSucceeded": st.UploadSucceeded,
		"count":           len(st.Records),
		"records":         st.Records,
	})
}

func (h *Handler) listRecords(c *gin.Context) {
	st, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, gin.H{
		"uploadSucceeded": st.UploadSucceeded,
		"count":           len(st.Records),
		"records":         st.Records,
	})
}

func (h *Handler) startAnalysis(c *gin.Context) {
	var req startAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set("meetingId", req.MeetingID)

	prevStatus := ""
	if prev, err := h.Svc.Get(c.Request.Context(), middleware.SessionIDFromContext(c)); err == nil {
		prevStatus = prev.Status
	}

	st, err := h.Svc.Submit(c.Request.Context(), middleware.SessionIDFromContext(c), req.MeetingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", NotFoundMessage(req.MeetingID), []map[string]string{
				{"field": "meetingId", "issue": "not_found"},
			})
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "session_not_found", "session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	c.Set("analysisId", st.AnalysisID)
	c.Set("statusTransition", prevStatus+"->"+st.Status)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"analysisId": st.AnalysisID,
		"status":     st.Status,
	})
}

func (h *Handler) currentAnalysis(c *gin.Context) {
	st, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, analysisView(st))
}

func (h *Handler) load(c *gin.Context) (State, bool) {
	st, err := h.Svc.Get(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "session_not_found", "session not found", nil)
		} else {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
		}
		return State{}, false
	}
	return st, true
}

var errUploadTooLarge = errors.New("upload exceeds size limit")

// readUpload accepts either a multipart "file" field or a raw CSV body.
func readUpload(c *gin.Context) (string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", err
		}
		if fh.Size > maxUploadBytes {
			return "", errUploadTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		return readLimited(f)
	}
	return readLimited(c.Request.Body)
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxUploadBytes {
		return "", errUploadTooLarge
	}
	return string(data), nil
}

func sessionView(st State) gin.H {
	return gin.H{
		"sessionId":       st.ID,
		"status":          st.Status,
		"error":           st.Error,
		"uploadSucceeded": st.UploadSucceeded,
		"recordCount":     len(st.Records),
		"currentRecord":   st.Current,
		"analysis":        analysisView(st),
	}
}

func analysisView(st State) gin.H {
	resp := gin.H{
		"analysisId":    st.AnalysisID,
		"status":        st.Status,
		"error":         st.Error,
		"currentRecord": st.Current,
	}
	if st.Status == StatusCompleted && st.Result != nil {
		imageURL := ""
		if st.Current != nil {
			imageURL = st.Current.ImageReference
		}
		resp["result"] = gin.H{
			"reportText": st.Result.ReportText,
			"outcome":    st.Result.Outcome,
			"payload":    st.Result.Payload,
		}
		resp["preview"] = report.BuildPreview(st.Result.Poster, imageURL)
	}
	return resp
}
