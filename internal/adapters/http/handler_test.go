package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	httpadapter "github.com/calmlinehq/calmline/internal/adapters/http"
	"github.com/calmlinehq/calmline/internal/adapters/llm"
	"github.com/calmlinehq/calmline/internal/adapters/storage/memory"
	"github.com/calmlinehq/calmline/internal/app/chat"
	"github.com/calmlinehq/calmline/internal/app/mood"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	llmClient := llm.NewMockLLM()
	conversationStore := memory.NewConversationStore()
	moodStore := memory.NewMoodStore()
	directory := memory.NewUserDirectory()

	chatSvc := chat.NewService(llmClient, conversationStore, nil, 0)
	moodSvc := mood.NewService(moodStore, nil)

	return httpadapter.NewServer(chatSvc, moodSvc, directory)
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSendMessage(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/chat/send", map[string]string{
		"userId":  "u1",
		"message": "I had a hard week",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Response         string `json:"response"`
		CrisisAssessment struct {
			CrisisRisk        int    `json:"crisis_risk"`
			CrisisType        string `json:"crisis_type"`
			RecommendedAction string `json:"recommended_action"`
		} `json:"crisis_assessment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Response == "" {
		t.Fatal("expected a non-empty reply")
	}
	if resp.CrisisAssessment.CrisisType == "" {
		t.Fatal("expected a crisis assessment in the response")
	}
}

func TestSendMessageMissingParameters(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []map[string]string{
		{"message": "hi"},
		{"userId": "u1"},
		{"userId": "u1", "message": "  "},
	} {
		w := doJSON(t, srv, http.MethodPost, "/api/chat/send", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d", body, w.Code)
		}
	}
}

func TestChatHistoryRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/chat/send", map[string]string{"userId": "u1", "message": "hello"})

	w := doJSON(t, srv, http.MethodGet, "/api/chat/history/u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		History []struct {
			Sender  string `json:"sender"`
			Content string `json:"content"`
		} `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.History) != 2 {
		t.Fatalf("expected 2 messages (turn has both sides), got %d", len(resp.History))
	}
	if resp.History[0].Sender != "user" || resp.History[1].Sender != "bot" {
		t.Fatalf("unexpected order: %+v", resp.History)
	}
}

func TestClearHistory(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/chat/send", map[string]string{"userId": "u1", "message": "hello"})

	w := doJSON(t, srv, http.MethodDelete, "/api/chat/clear/u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Deleted int  `json:"deleted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success || resp.Deleted != 2 {
		t.Fatalf("unexpected clear result: %+v", resp)
	}

	// clearing an already-empty conversation reports deleted=0
	w = doJSON(t, srv, http.MethodDelete, "/api/chat/clear/u1", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success || resp.Deleted != 0 {
		t.Fatalf("unexpected repeat clear result: %+v", resp)
	}
}

func TestLogMood(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/mood/log", map[string]any{
		"userId": "u1",
		"score":  6,
		"label":  "okay",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Success  bool `json:"success"`
		Insights struct {
			Message string `json:"message"`
		} `json:"insights"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success || resp.Insights.Message == "" {
		t.Fatalf("unexpected log response: %s", w.Body.String())
	}
}

func TestLogMoodAcceptsNumericString(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/mood/log", map[string]any{
		"userId": "u1",
		"score":  "7",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestLogMoodRejectsBadScores(t *testing.T) {
	srv := newTestServer(t)

	for _, score := range []any{0, 11, 7.5, "7.5", "high", true} {
		w := doJSON(t, srv, http.MethodPost, "/api/mood/log", map[string]any{
			"userId": "u1",
			"score":  score,
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("score %v: expected 400, got %d", score, w.Code)
		}
	}

	// nothing was persisted by the rejected logs
	w := doJSON(t, srv, http.MethodGet, "/api/mood/history/u1", nil)
	var resp struct {
		Statistics struct {
			Count int `json:"count"`
		} `json:"statistics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Statistics.Count != 0 {
		t.Fatalf("expected no persisted entries, got %d", resp.Statistics.Count)
	}
}

func TestMoodHistoryStatistics(t *testing.T) {
	srv := newTestServer(t)

	for _, score := range []int{2, 8} {
		doJSON(t, srv, http.MethodPost, "/api/mood/log", map[string]any{"userId": "u1", "score": score})
	}

	w := doJSON(t, srv, http.MethodGet, "/api/mood/history/u1?days=7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Entries    []json.RawMessage `json:"entries"`
		Statistics struct {
			Average *float64 `json:"average"`
			Highest *int     `json:"highest"`
			Lowest  *int     `json:"lowest"`
			Count   int      `json:"count"`
		} `json:"statistics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Entries) != 2 || resp.Statistics.Count != 2 {
		t.Fatalf("unexpected history: %s", w.Body.String())
	}
	if resp.Statistics.Average == nil || *resp.Statistics.Average != 5 {
		t.Fatalf("expected average 5, got %v", resp.Statistics.Average)
	}
}

func TestMoodHistoryRejectsBadDates(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/mood/history/u1?start=yesterday", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func postForm(t *testing.T, srv http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestSMSWebhookRespondsWithTwiML(t *testing.T) {
	srv := newTestServer(t)

	w := postForm(t, srv, "/api/sms/webhook", url.Values{
		"From": {"+15551234567"},
		"Body": {"feeling anxious today"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/xml") {
		t.Fatalf("expected text/xml, got %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Response>") || !strings.Contains(body, "<Message>") {
		t.Fatalf("expected TwiML response, got %s", body)
	}
}

func TestWhatsAppWebhookStripsPrefixAndKeepsHistory(t *testing.T) {
	srv := newTestServer(t)

	// two messages from the same WhatsApp sender land on the same user
	for i := 0; i < 2; i++ {
		w := postForm(t, srv, "/api/whatsapp/webhook", url.Values{
			"From": {"whatsapp:+15551234567"},
			"Body": {"hello again"},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}

	// an SMS from the bare number resolves to the same directory entry,
	// so its history now holds both earlier turns
	w := postForm(t, srv, "/api/sms/webhook", url.Values{
		"From": {"+15551234567"},
		"Body": {"now by text"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t)

	for _, form := range []url.Values{
		{"Body": {"no sender"}},
		{"From": {"+15551234567"}},
		{"From": {"+15551234567"}, "Body": {"   "}},
	} {
		w := postForm(t, srv, "/api/sms/webhook", form)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("form %v: expected 400, got %d", form, w.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/send", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS headers on preflight")
	}
}
