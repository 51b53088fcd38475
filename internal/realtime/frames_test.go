package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
)

func TestDecodePing(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	require.IsType(t, PingFrame{}, frame)
}

func TestDecodeChatMessage(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"type":"chat_message","chatId":"c1","content":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, ChatMessageFrame{ChatID: "c1", Content: "hi"}, frame)
}

func TestDecodeChatMessageMissingFields(t *testing.T) {
	cases := []string{
		`{"type":"chat_message","content":"hi"}`,
		`{"type":"chat_message","chatId":"c1"}`,
		`{"type":"chat_message"}`,
	}
	for _, raw := range cases {
		_, err := DecodeFrame([]byte(raw))
		require.ErrorIs(t, err, apperr.ErrInvalidFrame, raw)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeFrame([]byte(`not json`))
	require.ErrorIs(t, err, apperr.ErrInvalidFrame)
}

func TestDecodeUnknownType(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"type":"typing"}`))
	require.NoError(t, err)
	require.Equal(t, UnknownFrame{Type: "typing"}, frame)
}

func TestEncodePong(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var pong PongFrame
	require.NoError(t, json.Unmarshal(encodePong(now), &pong))
	require.Equal(t, "pong", pong.Type)
	require.Equal(t, "2025-03-01T12:00:00Z", pong.Timestamp)
}

func TestEncodeMessage(t *testing.T) {
	message := &entity.Message{
		ID:        "m1",
		ChatID:    "c1",
		AuthorID:  "alice",
		Text:      "hello",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	payload, err := encodeMessage("c1", message)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, "message", decoded["type"])
	require.Equal(t, "c1", decoded["chatId"])

	inner := decoded["message"].(map[string]any)
	require.Equal(t, "m1", inner["id"])
	require.Equal(t, "alice", inner["user"])
	require.Equal(t, "hello", inner["text"])
}

func TestEncodeError(t *testing.T) {
	var frame ErrorFrame
	require.NoError(t, json.Unmarshal(encodeError("boom"), &frame))
	require.Equal(t, "error", frame.Type)
	require.Equal(t, "boom", frame.Message)
}
