package realtime

import (
	"encoding/json"
	"time"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
)

// Frame types carried over the channel, discriminated by the "type"
// field. Inbound frames decode into one variant each so dispatch is a
// type switch rather than a bag of string comparisons.
const (
	frameTypePing        = "ping"
	frameTypePong        = "pong"
	frameTypeChatMessage = "chat_message"
	frameTypeMessage     = "message"
	frameTypeError       = "error"
)

type PingFrame struct{}

type ChatMessageFrame struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

// UnknownFrame carries a type the server does not handle. Kept as a
// variant so the dispatch switch stays exhaustive; unknown types are
// logged and dropped, which keeps old servers compatible with newer
// clients.
type UnknownFrame struct {
	Type string
}

type PongFrame struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

type MessageFrame struct {
	Type    string          `json:"type"`
	ChatID  string          `json:"chatId"`
	Message *entity.Message `json:"message"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type frameEnvelope struct {
	Type    string `json:"type"`
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

// DecodeFrame parses a raw inbound frame into one of PingFrame,
// ChatMessageFrame or UnknownFrame.
func DecodeFrame(raw []byte) (any, error) {
	var envelope frameEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperr.ErrInvalidFrame
	}

	switch envelope.Type {
	case frameTypePing:
		return PingFrame{}, nil
	case frameTypeChatMessage:
		if envelope.ChatID == "" || envelope.Content == "" {
			return nil, apperr.ErrInvalidFrame
		}
		return ChatMessageFrame{ChatID: envelope.ChatID, Content: envelope.Content}, nil
	default:
		return UnknownFrame{Type: envelope.Type}, nil
	}
}

func encodePong(now time.Time) []byte {
	payload, _ := json.Marshal(PongFrame{
		Type:      frameTypePong,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	return payload
}

func encodeMessage(chatID string, message *entity.Message) ([]byte, error) {
	return json.Marshal(MessageFrame{
		Type:    frameTypeMessage,
		ChatID:  chatID,
		Message: message,
	})
}

func encodeError(message string) []byte {
	payload, _ := json.Marshal(ErrorFrame{
		Type:    frameTypeError,
		Message: message,
	})
	return payload
}
