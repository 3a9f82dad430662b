package telegram

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDeliversMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(func() Credentials {
		return Credentials{BotToken: "test-token", ChatID: "123456"}
	})
	n.apiURL = srv.URL + "/bot%s/sendMessage"

	n.Send("привет оператор")

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "123456", gotBody.ChatID)
	assert.Equal(t, "привет оператор", gotBody.Text)
	assert.Equal(t, "HTML", gotBody.ParseMode)
}

func TestSendSkipsWithoutCredentials(t *testing.T) {
	requested := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer srv.Close()

	n := NewNotifier(func() Credentials { return Credentials{} })
	n.apiURL = srv.URL + "/bot%s/sendMessage"

	n.Send("сообщение в никуда")
	assert.False(t, requested)
}

func TestCredentialsReadPerSend(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// Реквизиты появляются между отправками - вторая должна пройти
	creds := Credentials{}
	n := NewNotifier(func() Credentials { return creds })
	n.apiURL = srv.URL + "/bot%s/sendMessage"

	n.Send("первое")
	assert.Equal(t, 0, requests)

	creds = Credentials{BotToken: "t", ChatID: "c"}
	n.Send("второе")
	assert.Equal(t, 1, requests)
}

func TestNewLogMessageFormat(t *testing.T) {
	at := time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	msg := NewLogMessage("شروع چت موفق", "09121234567", "C4821-093", at)

	assert.Contains(t, msg, "#New_Log")
	assert.Contains(t, msg, "📀Name : <code>شروع چت موفق</code>")
	assert.Contains(t, msg, "💿Phone : <code>09121234567</code>")
	assert.Contains(t, msg, "🪀#Code_meli : <code>C4821-093</code>")
	// Дата по солнечной хиджре персидскими цифрами, как fa-IR toLocaleString
	assert.Contains(t, msg, "🕰Time : ۱۴۰۴/۳/۱۱, ۱۵:۰۴:۰۵")
}
