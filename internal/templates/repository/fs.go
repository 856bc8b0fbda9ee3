package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	domain "github.com/corvusHold/courier/internal/templates/domain"
)

const ext = ".html"

var descriptions = map[string]string{
	"welcome_email":      "Welcome email for new clients",
	"notification_email": "General notification email",
}

const defaultDescription = "Custom email template"

// FSStore serves templates from a flat directory of <name>.html files.
type FSStore struct {
	fsys fs.FS
}

// NewDir returns a store rooted at dir on the local filesystem.
func NewDir(dir string) *FSStore { return &FSStore{fsys: os.DirFS(dir)} }

// NewFS returns a store over an arbitrary fs.FS, e.g. an embed.FS or fstest.MapFS.
func NewFS(fsys fs.FS) *FSStore { return &FSStore{fsys: fsys} }

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

func (s *FSStore) Read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !validName(name) {
		return "", fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, name)
	}
	b, err := fs.ReadFile(s.fsys, name+ext)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(b), nil
}

func (s *FSStore) List(ctx context.Context) ([]domain.Info, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := []domain.Info{}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ext {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		desc, ok := descriptions[name]
		if !ok {
			desc = defaultDescription
		}
		out = append(out, domain.Info{Name: name, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
