package domain

import (
	"context"
	"fmt"
)

// Address is a named mailbox.
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Message is one transactional email as handed to a delivery API.
type Message struct {
	From    Address
	To      Address
	Subject string
	HTML    string
	Text    string
	Headers map[string]string
	Params  map[string]string
	Tags    []string
}

// Sender delivers a message and returns the provider's message id.
// Errors are either *APIError or *NetworkError.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// APIError is a non-success response from the delivery API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string { return fmt.Sprintf("API Error %d: %s", e.Status, e.Body) }

// NetworkError is a transport failure before any response was read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "Network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }
