package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calmlinehq/calmline/internal/app/chat"
	"github.com/calmlinehq/calmline/internal/app/mood"
	"github.com/calmlinehq/calmline/internal/domain"
	"github.com/calmlinehq/calmline/internal/observability"
)

type Server struct {
	chatSvc   *chat.Service
	moodSvc   *mood.Service
	directory domain.UserDirectory
}

func NewServer(chatSvc *chat.Service, moodSvc *mood.Service, directory domain.UserDirectory) http.Handler {
	s := &Server{
		chatSvc:   chatSvc,
		moodSvc:   moodSvc,
		directory: directory,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(withRequestLogging)
	r.Use(withCORS)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())

	r.Route("/api", func(api chi.Router) {
		api.Route("/chat", func(c chi.Router) {
			c.Post("/send", s.handleSendMessage)
			c.Get("/history/{userID}", s.handleChatHistory)
			c.Delete("/clear/{userID}", s.handleClearHistory)
		})

		api.Route("/mood", func(m chi.Router) {
			m.Post("/log", s.handleLogMood)
			m.Get("/history/{userID}", s.handleMoodHistory)
		})

		api.Post("/sms/webhook", s.handleSMSWebhook)
		api.Post("/whatsapp/webhook", s.handleWhatsAppWebhook)
	})

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type sendMessageRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Response         string                  `json:"response"`
	CrisisAssessment domain.CrisisAssessment `json:"crisis_assessment"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Channel   string    `json:"channel,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type chatHistoryResponse struct {
	History []messageResponse `json:"history"`
}

type clearHistoryResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

type logMoodRequest struct {
	UserID string `json:"userId"`
	Score  any    `json:"score"`
	Label  string `json:"label,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type logMoodResponse struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	Insights domain.MoodInsight `json:"insights"`
}

type moodHistoryResponse struct {
	Entries    []*domain.MoodEntry   `json:"entries"`
	Statistics domain.MoodStatistics `json:"statistics"`
}

// ─────────────────────────────────────────────
// Chat handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" || strings.TrimSpace(req.Message) == "" {
		badRequest(w, "Missing required parameters")
		return
	}

	out, err := s.chatSvc.ProcessTurn(r.Context(), chat.ProcessTurnInput{
		UserID:  domain.UserID(req.UserID),
		Message: req.Message,
		Channel: domain.ChannelWeb,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		Response:         out.Reply,
		CrisisAssessment: out.Assessment,
	})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		badRequest(w, "User ID is required")
		return
	}

	msgs, err := s.chatSvc.History(r.Context(), domain.UserID(userID))
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve chat history")
		return
	}

	history := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, messageResponse{
			ID:        string(m.ID),
			Sender:    string(m.Sender),
			Content:   m.Content,
			Channel:   string(m.Channel),
			Timestamp: m.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, chatHistoryResponse{History: history})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		badRequest(w, "User ID is required")
		return
	}

	deleted, err := s.chatSvc.ClearHistory(r.Context(), domain.UserID(userID))
	if err != nil {
		writeServiceError(w, err, "Failed to clear chat history")
		return
	}

	writeJSON(w, http.StatusOK, clearHistoryResponse{Success: true, Deleted: deleted})
}

// ─────────────────────────────────────────────
// Mood handlers
// ─────────────────────────────────────────────

func (s *Server) handleLogMood(w http.ResponseWriter, r *http.Request) {
	var req logMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" || req.Score == nil {
		badRequest(w, "User ID and mood score are required")
		return
	}

	score, err := parseScore(req.Score)
	if err != nil {
		badRequest(w, "Invalid mood score format")
		return
	}

	insight, err := s.moodSvc.Log(r.Context(), mood.LogInput{
		UserID: domain.UserID(req.UserID),
		Score:  score,
		Label:  req.Label,
		Notes:  req.Notes,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to log mood")
		return
	}

	writeJSON(w, http.StatusOK, logMoodResponse{
		Success:  true,
		Message:  "Mood logged successfully",
		Insights: *insight,
	})
}

func (s *Server) handleMoodHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		badRequest(w, "User ID is required")
		return
	}

	q, err := parseMoodHistoryQuery(r)
	if err != nil {
		badRequest(w, "Invalid date format")
		return
	}

	entries, stats, err := s.moodSvc.History(r.Context(), domain.UserID(userID), q)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve mood history")
		return
	}

	if entries == nil {
		entries = []*domain.MoodEntry{}
	}
	writeJSON(w, http.StatusOK, moodHistoryResponse{Entries: entries, Statistics: stats})
}

// parseMoodHistoryQuery reads the optional days= or start=/end= filters.
// days takes precedence, matching the original API.
func parseMoodHistoryQuery(r *http.Request) (mood.HistoryQuery, error) {
	var q mood.HistoryQuery

	if days := r.URL.Query().Get("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid days: %q", days)
		}
		q.Days = n
		return q, nil
	}

	if start := r.URL.Query().Get("start"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return q, err
		}
		q.Since = t

		if end := r.URL.Query().Get("end"); end != "" {
			t, err := time.Parse(time.RFC3339, end)
			if err != nil {
				return q, err
			}
			q.Until = t
		}
	}

	return q, nil
}

// parseScore accepts a JSON number or a numeric string, but only whole
// values: 7 and "7" pass, 7.5 is rejected rather than truncated.
func parseScore(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("score is not an integer: %v", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("score is not an integer: %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("score has unsupported type %T", v)
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

// writeServiceError maps the error taxonomy onto HTTP statuses: validation
// errors are the client's fault, everything else is a 500 with a stable
// message (internals never leak to the caller).
func writeServiceError(w http.ResponseWriter, err error, fallbackMsg string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		badRequest(w, verr.Error())
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": fallbackMsg,
	})
}
