package domain

import (
	"context"
	"errors"
)

var (
	ErrTemplateNotFound       = errors.New("template not found")
	ErrUnresolvedPlaceholders = errors.New("template has unresolved placeholders")
)

// Info describes an available template.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Recipient is who a template is rendered for.
type Recipient struct {
	Name  string
	Email string
}

// Rendered is the output of one render.
type Rendered struct {
	HTML string
	Text string
}

// Store reads raw template bodies by name.
type Store interface {
	// Read returns the body of <name>.html or ErrTemplateNotFound.
	Read(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]Info, error)
}

// Renderer substitutes variables into a named template.
type Renderer interface {
	Render(ctx context.Context, name string, to Recipient, vars map[string]any) (Rendered, error)
	List(ctx context.Context) ([]Info, error)
}
