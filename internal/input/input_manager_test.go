package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/auth"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/realtime"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/service"
)

func newTestServer(t *testing.T) (*InputManager, *httptest.Server) {
	t.Helper()

	db, err := repository.OpenDatabase(":memory:")
	require.NoError(t, err)

	users := repository.NewSQLiteUserRepository(db)
	chats := repository.NewSQLiteChatRepository(db)
	memberships := repository.NewSQLiteMembershipRepository(db)
	messages := repository.NewSQLiteMessageRepository(db)

	tokens := auth.NewTokenIssuer("test-access", "test-refresh")

	registry := realtime.NewRegistry(logging.Nop())
	resolver := realtime.NewResolver(memberships, logging.Nop())
	fanout := realtime.NewFanout(registry, resolver, chats, logging.Nop())

	messageService := service.NewMessageService(messages, memberships, chats, fanout, logging.Nop())
	connections := realtime.NewConnectionManager(registry, chats, messageService, 4096, logging.Nop())

	manager := NewInputManager()
	manager.SetLogger(logging.Nop())
	manager.SetTokenIssuer(tokens)
	manager.SetAuthService(service.NewAuthService(users, tokens, logging.Nop()))
	manager.SetUserService(service.NewUserService(users, logging.Nop()))
	manager.SetChatService(service.NewChatService(chats, memberships, users, logging.Nop()))
	manager.SetMessageService(messageService)
	manager.SetConnectionManager(connections)
	require.True(t, manager.IsReady())

	server := httptest.NewServer(manager.Router())
	t.Cleanup(server.Close)
	return manager, server
}

type account struct {
	id    string
	token string
}

func postJSON(t *testing.T, server *httptest.Server, path, token string, body any) (int, map[string]any) {
	t.Helper()
	return doJSON(t, server, "POST", path, token, body)
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func registerAccount(t *testing.T, server *httptest.Server, name string) account {
	t.Helper()
	status, body := postJSON(t, server, "/api/register", "", map[string]any{
		"email":    name + "@example.com",
		"name":     name,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)

	user := body["user"].(map[string]any)
	return account{
		id:    user["id"].(string),
		token: body["accessToken"].(string),
	}
}

func dialSocket(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// A ping round trip proves the connection is registered and both
	// pumps are running before the test proceeds.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	frame := readFrame(t, conn)
	require.Equal(t, "pong", frame["type"])
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func TestRegisterLoginRefresh(t *testing.T) {
	_, server := newTestServer(t)

	alice := registerAccount(t, server, "alice")
	require.NotEmpty(t, alice.token)

	status, _ := postJSON(t, server, "/api/register", "", map[string]any{
		"email":    "alice@example.com",
		"name":     "alice2",
		"password": "secret1",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, body := postJSON(t, server, "/api/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = postJSON(t, server, "/api/token", "", map[string]any{
		"refreshToken": body["refreshToken"],
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["accessToken"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, server := newTestServer(t)

	resp, err := http.Get(server.URL + "/chats")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPrivateChatMessageReachesBothSockets(t *testing.T) {
	_, server := newTestServer(t)

	alice := registerAccount(t, server, "alice")
	bob := registerAccount(t, server, "bob")

	status, body := postJSON(t, server, "/api/chat/private", alice.token, map[string]any{
		"userId": bob.id,
	})
	require.Equal(t, http.StatusOK, status)
	chatID := body["chat"].(map[string]any)["id"].(string)

	aliceConn := dialSocket(t, server, alice.id)
	bobConn := dialSocket(t, server, bob.id)

	status, _ = postJSON(t, server, "/api/message", alice.token, map[string]any{
		"chatId":  chatID,
		"message": map[string]any{"text": "hello bob"},
	})
	require.Equal(t, http.StatusOK, status)

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		frame := readFrame(t, conn)
		require.Equal(t, "message", frame["type"])
		require.Equal(t, chatID, frame["chatId"])

		message := frame["message"].(map[string]any)
		require.Equal(t, "hello bob", message["text"])
		require.Equal(t, alice.id, message["user"])
	}
}

func TestSoftLeftMemberReceivesNothingUntilRestored(t *testing.T) {
	_, server := newTestServer(t)

	alice := registerAccount(t, server, "alice")
	bob := registerAccount(t, server, "bob")

	status, body := postJSON(t, server, "/api/chat/private", alice.token, map[string]any{
		"userId": bob.id,
	})
	require.Equal(t, http.StatusOK, status)
	chatID := body["chat"].(map[string]any)["id"].(string)

	status, _ = doJSON(t, server, "DELETE", "/api/chats/"+chatID, bob.token, nil)
	require.Equal(t, http.StatusOK, status)

	bobConn := dialSocket(t, server, bob.id)

	status, _ = postJSON(t, server, "/api/message", alice.token, map[string]any{
		"chatId":  chatID,
		"message": map[string]any{"text": "anyone there?"},
	})
	require.Equal(t, http.StatusOK, status)

	bobConn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err := bobConn.ReadMessage()
	require.Error(t, err)

	status, _ = doJSON(t, server, "PATCH", "/api/chats/"+chatID, bob.token, nil)
	require.Equal(t, http.StatusOK, status)

	bobConn = dialSocket(t, server, bob.id)
	status, _ = postJSON(t, server, "/api/message", alice.token, map[string]any{
		"chatId":  chatID,
		"message": map[string]any{"text": "welcome back"},
	})
	require.Equal(t, http.StatusOK, status)

	frame := readFrame(t, bobConn)
	require.Equal(t, "message", frame["type"])
}

func TestSendingOverSocketRevivesMembership(t *testing.T) {
	_, server := newTestServer(t)

	alice := registerAccount(t, server, "alice")
	bob := registerAccount(t, server, "bob")

	status, body := postJSON(t, server, "/api/chat/private", alice.token, map[string]any{
		"userId": bob.id,
	})
	require.Equal(t, http.StatusOK, status)
	chatID := body["chat"].(map[string]any)["id"].(string)

	status, _ = doJSON(t, server, "DELETE", "/api/chats/"+chatID, bob.token, nil)
	require.Equal(t, http.StatusOK, status)

	aliceConn := dialSocket(t, server, alice.id)
	bobConn := dialSocket(t, server, bob.id)

	frame := fmt.Sprintf(`{"type":"chat_message","chatId":"%s","content":"back"}`, chatID)
	require.NoError(t, bobConn.WriteMessage(websocket.TextMessage, []byte(frame)))

	// Both ends hear the message once the sender's membership revives.
	got := readFrame(t, aliceConn)
	require.Equal(t, "message", got["type"])
	got = readFrame(t, bobConn)
	require.Equal(t, "message", got["type"])

	status, body = doJSON(t, server, "GET", "/api/chat/"+chatID, alice.token, nil)
	require.Equal(t, http.StatusOK, status)
	chat := body["chat"].(map[string]any)
	require.Empty(t, chat["usersDeleted"])
}

func TestGroupLifecycle(t *testing.T) {
	_, server := newTestServer(t)

	alice := registerAccount(t, server, "alice")
	bob := registerAccount(t, server, "bob")
	carol := registerAccount(t, server, "carol")

	status, body := postJSON(t, server, "/api/chat/group", alice.token, map[string]any{
		"name":  "party",
		"users": []string{alice.id, bob.id},
	})
	require.Equal(t, http.StatusOK, status)
	chatID := body["chat"].(map[string]any)["id"].(string)

	// Only the creator can touch the group.
	status, _ = doJSON(t, server, "PATCH", "/api/chats/group/addUser/"+chatID, bob.token, map[string]any{
		"userId": carol.id,
	})
	require.Equal(t, http.StatusForbidden, status)

	status, body = doJSON(t, server, "PATCH", "/api/chats/group/addUser/"+chatID, alice.token, map[string]any{
		"userId": carol.id,
	})
	require.Equal(t, http.StatusOK, status)
	users := body["chat"].(map[string]any)["users"].([]any)
	require.Len(t, users, 3)

	status, _ = doJSON(t, server, "PATCH", "/api/chats/group/addUser/"+chatID, alice.token, map[string]any{
		"userId": carol.id,
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, body = doJSON(t, server, "PATCH", "/api/chats/group/edit/"+chatID, alice.token, map[string]any{
		"name": "renamed",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "renamed", body["chat"].(map[string]any)["name"])
}

func TestPauseTurnsRequestsAway(t *testing.T) {
	manager, server := newTestServer(t)

	manager.SetPause(true)
	resp, err := http.Get(server.URL + "/chats")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	manager.SetPause(false)
	resp, err = http.Get(server.URL + "/chats")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
