package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sabitutor/sabi/internal/prompt"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20 // 1MB

// TutorHandler serves the teach and quiz endpoints.
type TutorHandler struct {
	tutor     Answerer
	modelName string
	logger    *slog.Logger
}

// NewTutorHandler creates a tutoring handler.
func NewTutorHandler(t Answerer, modelName string, logger *slog.Logger) *TutorHandler {
	return &TutorHandler{tutor: t, modelName: modelName, logger: logger}
}

// RegisterRoutes registers tutoring routes on the mux.
func (h *TutorHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/teach", h.teach)
	mux.HandleFunc("POST /api/v1/quiz", h.quiz)
}

// TeachRequest is the teach endpoint's body. Language selects the tone
// register ("english" or "pidgin"); Mode selects the narrative ("tutor"
// or "griot"). Both default when empty or unrecognized.
type TeachRequest struct {
	Subject  string `json:"subject"`
	Language string `json:"language"`
	Mode     string `json:"mode"`
}

// TeachResponse mirrors the original service's reply shape.
type TeachResponse struct {
	Response   string `json:"response"`
	SourceData string `json:"source_data"`
	VisualAid  string `json:"visual_aid,omitempty"`
	ModelUsed  string `json:"model_used"`
}

func (h *TutorHandler) teach(w http.ResponseWriter, r *http.Request) {
	var req TeachRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "subject is required")
		return
	}

	profile := prompt.Profile{
		Audience:  prompt.AudienceWeb,
		Tone:      prompt.ParseTone(req.Language),
		Narrative: prompt.ParseNarrative(req.Mode),
	}
	reply := h.tutor.Answer(r.Context(), req.Subject, profile)

	writeJSON(w, http.StatusOK, TeachResponse{
		Response:   reply.Text,
		SourceData: reply.ContextNarrative,
		VisualAid:  reply.VisualURL,
		ModelUsed:  h.modelName,
	})
}

// QuizRequest is the quiz endpoint's body.
type QuizRequest struct {
	Subject string `json:"subject"`
}

// QuizResponse carries the quiz text in its line-oriented grammar,
// unparsed.
type QuizResponse struct {
	Quiz string `json:"quiz"`
}

func (h *TutorHandler) quiz(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "subject is required")
		return
	}

	writeJSON(w, http.StatusOK, QuizResponse{Quiz: h.tutor.Quiz(r.Context(), req.Subject)})
}

// decodeJSON decodes a bounded JSON body, writing a 400 and returning
// false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return false
	}
	return true
}
