package domain

import "encoding/json"

// Envelope wraps every successful API payload.
type Envelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}
