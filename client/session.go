package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fieldpro-backend/models"

	"gopkg.in/yaml.v3"
)

// Session is what a signed-in user keeps between runs.
type Session struct {
	APIURL string          `yaml:"api_url,omitempty"`
	Token  string          `yaml:"token,omitempty"`
	User   *models.Profile `yaml:"user,omitempty"`
}

func (s *Session) LoggedIn() bool { return s != nil && s.Token != "" }

// SessionStore persists a Session as a YAML file.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is ~/.fieldpro/session.yaml.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fieldpro-session.yaml"
	}
	return filepath.Join(home, ".fieldpro", "session.yaml")
}

func (s *SessionStore) Path() string { return s.path }

// Load returns an empty session when the file does not exist yet.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(sess *Session) error {
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
