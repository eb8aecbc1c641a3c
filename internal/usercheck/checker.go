// Package usercheck queries the UserCheck domain reputation API to flag
// disposable email domains.
package usercheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sendgrid/rest"
)

// DefaultTimeout bounds a single lookup when no timeout is configured.
const DefaultTimeout = 3 * time.Second

// Reputation is the outcome of a domain lookup. The zero value is Unknown.
type Reputation int

const (
	Unknown Reputation = iota
	NotDisposable
	Disposable
)

func (r Reputation) String() string {
	switch r {
	case NotDisposable:
		return "not_disposable"
	case Disposable:
		return "disposable"
	default:
		return "unknown"
	}
}

var errNoDisposableField = errors.New("response has no boolean disposable field")

// Checker decides whether an email address stays valid after consulting
// the reputation of its domain. It is safe for concurrent use.
type Checker struct {
	settings *Store
	client   *rest.Client
	sink     Sink
}

func NewChecker(settings *Store, timeout time.Duration, sink Sink) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Checker{
		settings: settings,
		client:   &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
		sink:     sink,
	}
}

// Check returns the validity of email given its current validity. It only
// ever lowers validity, and only when the api reports the domain as
// disposable. Every failure leaves isValid unchanged.
func (c *Checker) Check(ctx context.Context, isValid bool, email string) bool {
	if !isValid {
		return false
	}

	domain := DomainFromEmail(email)
	if domain == "" {
		return isValid
	}

	if c.Lookup(ctx, domain) == Disposable {
		return false
	}
	return isValid
}

// Lookup performs a single request for domain. Failures are recorded on the
// sink and reported as Unknown.
func (c *Checker) Lookup(ctx context.Context, domain string) Reputation {
	s := c.settings.Load()

	headers := map[string]string{"Accept": "application/json"}
	if s.Authenticated() {
		headers["Authorization"] = "Bearer " + s.APIKey
	}

	req := rest.Request{
		Method:  rest.Get,
		BaseURL: s.BaseURL + "/domain/" + url.PathEscape(domain),
		Headers: headers,
	}

	resp, err := c.client.SendWithContext(ctx, req)
	if err != nil {
		c.sink.Record(ctx, Event{Kind: EventTransportError, Domain: domain, Err: err})
		return Unknown
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.sink.Record(ctx, Event{
			Kind:       EventTransportError,
			Domain:     domain,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		})
		return Unknown
	}

	rep, err := parseReputation(resp.Body)
	if err != nil {
		c.sink.Record(ctx, Event{Kind: EventDecodeError, Domain: domain, StatusCode: resp.StatusCode, Err: err})
		return Unknown
	}
	return rep
}

func parseReputation(body string) (Reputation, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return Unknown, fmt.Errorf("decode response: %w", err)
	}

	disposable, ok := payload["disposable"].(bool)
	if !ok {
		return Unknown, errNoDisposableField
	}
	if disposable {
		return Disposable, nil
	}
	return NotDisposable, nil
}

// DomainFromEmail returns the part of email after its last "@", or an
// empty string when email has none.
func DomainFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at == -1 {
		return ""
	}
	return email[at+1:]
}
