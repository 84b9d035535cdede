package websocket

import (
	"encoding/json"

	"library-assistant-be/pkg/rag/stream"
)

const (
	FrameText  = "text"
	FrameBooks = "books"
	FrameDone  = "done"
	FrameError = "error"
)

// Frame is one outbound websocket message.
type Frame struct {
	Type   string            `json:"type"`
	TurnId string            `json:"turn_id,omitempty"`
	Text   string            `json:"text,omitempty"`
	Books  []stream.BookCard `json:"books,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// EncodeEvent maps a pipeline event to its wire frame.
func EncodeEvent(e stream.Event) ([]byte, error) {
	switch e.Kind {
	case stream.KindBooks:
		books := e.Books
		if books == nil {
			books = []stream.BookCard{}
		}
		// books must be present even when empty
		return json.Marshal(struct {
			Type  string            `json:"type"`
			Books []stream.BookCard `json:"books"`
		}{Type: FrameBooks, Books: books})
	default:
		return json.Marshal(Frame{Type: FrameText, Text: e.Text})
	}
}

func EncodeDone(turnID string) ([]byte, error) {
	return json.Marshal(Frame{Type: FrameDone, TurnId: turnID})
}

func EncodeError(message string) ([]byte, error) {
	return json.Marshal(Frame{Type: FrameError, Error: message})
}
