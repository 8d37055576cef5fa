package httpadapter

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/calmlinehq/calmline/internal/app/chat"
	"github.com/calmlinehq/calmline/internal/domain"
	"github.com/calmlinehq/calmline/internal/observability"
)

// Carrier webhooks: Twilio posts form fields From and Body and expects a
// TwiML document whose <Message> is sent back to the user.

const whatsappPrefix = "whatsapp:"

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func (s *Server) handleSMSWebhook(w http.ResponseWriter, r *http.Request) {
	s.handleCarrierWebhook(w, r, domain.ChannelSMS)
}

func (s *Server) handleWhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	s.handleCarrierWebhook(w, r, domain.ChannelWhatsApp)
}

func (s *Server) handleCarrierWebhook(w http.ResponseWriter, r *http.Request, channel domain.Channel) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")
	if from == "" || strings.TrimSpace(body) == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	userID := s.resolveUser(r, from, channel)

	out, err := s.chatSvc.ProcessTurn(r.Context(), chat.ProcessTurnInput{
		UserID:  userID,
		Message: body,
		Channel: channel,
	})
	if err != nil {
		// only validation can fail here, and the form was already checked
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	writeTwiML(w, out.Reply)
}

// resolveUser maps a carrier phone number to a user ID, registering a
// directory record on first contact. A failing directory never drops the
// turn: the message is handled under a throwaway user id instead.
func (s *Server) resolveUser(r *http.Request, from string, channel domain.Channel) domain.UserID {
	phone := strings.TrimPrefix(from, whatsappPrefix)
	log := observability.LoggerFromContext(r.Context()).With("channel", channel)

	id, ok, err := s.directory.UserIDByPhone(phone)
	if err != nil {
		log.Error("phone lookup failed", "error", err)
	} else if ok {
		return id
	}

	id, err = s.directory.CreateUserForPhone(phone, channel)
	if err != nil {
		log.Error("failed to create user for phone, using temporary id", "error", err)
		return domain.UserID("temp-" + uuid.NewString())
	}

	log.Info("registered new user for phone number", "user_id", id)
	return id
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")

	out, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
