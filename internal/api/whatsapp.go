package api

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sabitutor/sabi/internal/prompt"
	"github.com/sabitutor/sabi/internal/tutor"
)

// emptyBodyReply is sent when the webhook carries no usable text. The
// webhook must still answer with a valid envelope, so this is a reply,
// not a 400.
const emptyBodyReply = "How far! Send me a science topic and I go explain am for you. No wahala!"

// WhatsAppHandler serves the messaging webhook. It answers with a TwiML
// envelope the way messaging gateways expect.
type WhatsAppHandler struct {
	tutor  Answerer
	logger *slog.Logger
}

// NewWhatsAppHandler creates a messaging webhook handler.
func NewWhatsAppHandler(t Answerer, logger *slog.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{tutor: t, logger: logger}
}

// RegisterRoutes registers the webhook route on the mux.
func (h *WhatsAppHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/whatsapp", h.receive)
}

// twimlResponse is the messaging gateway envelope.
type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Message twimlMessage `xml:"Message"`
}

type twimlMessage struct {
	Body  string `xml:"Body"`
	Media string `xml:"Media,omitempty"`
}

// receive handles one inbound message. The free-text Body form field is
// the subject; replies use the messaging audience with the vernacular
// register.
func (h *WhatsAppHandler) receive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	body := strings.TrimSpace(r.PostFormValue("Body"))
	if body == "" {
		h.writeTwiML(w, twimlMessage{Body: emptyBodyReply})
		return
	}

	profile := prompt.Profile{
		Audience:  prompt.AudienceWhatsApp,
		Tone:      prompt.TonePidgin,
		Narrative: prompt.NarrativeTutor,
	}
	reply := h.tutor.Answer(r.Context(), body, profile)

	msg := twimlMessage{Body: reply.Text}
	// Degraded replies carry no visual; skip the media element rather than
	// pointing the gateway at nothing.
	if reply.VisualURL != "" && reply.ContextNarrative != tutor.ErrorNarrative {
		msg.Media = reply.VisualURL
	}
	h.writeTwiML(w, msg)
}

func (h *WhatsAppHandler) writeTwiML(w http.ResponseWriter, msg twimlMessage) {
	body, err := xml.Marshal(twimlResponse{Message: msg})
	if err != nil {
		h.logger.Error("failed to encode TwiML response", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}
