package usercheck

import (
	"strings"
	"sync/atomic"
)

// DefaultBaseURL is the public UserCheck API endpoint.
const DefaultBaseURL = "https://api.usercheck.com"

// Settings is the credential and endpoint a lookup runs with. It is treated
// as an immutable value: changes go through Store.Update with a new value.
type Settings struct {
	// APIKey is sent as a bearer token. When empty, requests are
	// unauthenticated and limited by UserCheck to 60 per hour.
	APIKey  string
	BaseURL string
}

// NewSettings returns settings with the base url normalized.
func NewSettings(apiKey, baseURL string) Settings {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Settings{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: baseURL,
	}
}

// Authenticated reports whether an api key is configured.
func (s Settings) Authenticated() bool {
	return s.APIKey != ""
}

// Store holds the current settings. Readers always observe a complete
// snapshot; the api key and base url of one Update are never mixed with
// another's.
type Store struct {
	current atomic.Pointer[Settings]
}

func NewStore(s Settings) *Store {
	st := &Store{}
	st.Update(s)
	return st
}

// Load returns the current settings snapshot.
func (st *Store) Load() Settings {
	if s := st.current.Load(); s != nil {
		return *s
	}
	return NewSettings("", "")
}

// Update replaces the current settings.
func (st *Store) Update(s Settings) {
	s = NewSettings(s.APIKey, s.BaseURL)
	st.current.Store(&s)
}
