package live

import "time"

type MessageType string

const (
	// client to server
	MessageTypeQuery MessageType = "query"
	MessageTypePage  MessageType = "page"

	// server to client
	MessageTypeWelcome      MessageType = "welcome"
	MessageTypeResults      MessageType = "results"
	MessageTypeBooks        MessageType = "books"
	MessageTypeInvalid      MessageType = "invalid"
	MessageTypeError        MessageType = "error"
	MessageTypeUnauthorized MessageType = "unauthorized"
)

// ClientMessage is what the browser sends. Query carries the search box
// text; on the dashboard channel it is the book list filter.
type ClientMessage struct {
	Type     MessageType `json:"type"`
	Query    string      `json:"query,omitempty"`
	Scenario string      `json:"scenario,omitempty"`
	Page     int         `json:"page,omitempty"`
}

type PageInfo struct {
	Current int      `json:"current"`
	Total   int      `json:"total"`
	Count   int      `json:"count"`
	Tokens  []string `json:"tokens"`
}

type ServerMessage struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Seq       uint64      `json:"seq,omitempty"`
	Query     string      `json:"query,omitempty"`
	Scenario  string      `json:"scenario,omitempty"`
	Page      *PageInfo   `json:"page,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Redirect  string      `json:"redirect,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
