package telegram

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken  = "123:abc"
	getMeReply = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"monitor","username":"staking_monitor_bot"}}`
	sentReply  = `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`
)

func newBotServer(t *testing.T, sendMessage http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/bot"+testToken+"/"))
		switch strings.TrimPrefix(r.URL.Path, "/bot"+testToken+"/") {
		case "getMe":
			w.Write([]byte(getMeReply))
		case "sendMessage":
			sendMessage(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&config.TelegramConfig{
		BotToken:    testToken,
		APIEndpoint: server.URL + "/bot%s/%s",
	})
	require.NoError(t, err)
	return client
}

func TestSend(t *testing.T) {
	t.Run("chat id", func(t *testing.T) {
		client := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "42", r.PostForm.Get("chat_id"))
			assert.Equal(t, "HTML", r.PostForm.Get("parse_mode"))
			assert.Equal(t, "<b>hi</b>", r.PostForm.Get("text"))
			w.Write([]byte(sentReply))
		})

		assert.Equal(t, "staking_monitor_bot", client.Username())
		require.NoError(t, client.Send(t.Context(), "42", "<b>hi</b>"))
	})
	t.Run("channel username", func(t *testing.T) {
		client := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "@alerts", r.PostForm.Get("chat_id"))
			w.Write([]byte(sentReply))
		})

		require.NoError(t, client.Send(t.Context(), "@alerts", "hi"))
	})
	t.Run("invalid destination", func(t *testing.T) {
		var calls atomic.Int32
		client := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})

		require.Error(t, client.Send(t.Context(), "alerts", "hi"))
		assert.Zero(t, calls.Load())
	})
	t.Run("rate limited", func(t *testing.T) {
		client := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 5","parameters":{"retry_after":5}}`))
		})

		err := client.Send(t.Context(), "42", "hi")
		require.Error(t, err)
		retryAfter, ok := types.RetryAfter(err)
		require.True(t, ok)
		assert.Equal(t, 5*time.Second, retryAfter)
	})
	t.Run("other api error", func(t *testing.T) {
		client := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
		})

		err := client.Send(t.Context(), "42", "hi")
		require.Error(t, err)
		assert.False(t, types.IsRateLimited(err))
	})
}

func TestNewClientRejectsBadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	_, err := NewClient(&config.TelegramConfig{BotToken: "bad", APIEndpoint: server.URL + "/bot%s/%s"})
	require.Error(t, err)
}
