package push_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tagauto/tagauto/internal/app/system/push"
	"go.uber.org/zap"
)

func TestSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=server-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := push.New(srv.URL, "server-key", zap.NewNop())
	s.Send(context.Background(), "device-token-1", "Group invitation", "You were invited to Family", map[string]string{"groupId": "g-1"})

	assert.Equal(t, "device-token-1", got["to"])
	notif := got["notification"].(map[string]any)
	assert.Equal(t, "Group invitation", notif["title"])
}

func TestSend_NeverPanicsOrFails(t *testing.T) {
	// nil sender (push disabled)
	var s *push.Sender
	s.Send(context.Background(), "tok", "t", "b", nil)

	// unreachable endpoint: logged, not surfaced
	s = push.New("http://127.0.0.1:1", "", zap.NewNop())
	s.Send(context.Background(), "tok", "t", "b", nil)

	// empty token: skipped
	s.Send(context.Background(), "", "t", "b", nil)
}

func TestNew_DisabledWhenNoEndpoint(t *testing.T) {
	assert.Nil(t, push.New("", "key", zap.NewNop()))
}
