// Package events publishes verification outcomes to an external stream for
// analytics. Publishing is best effort and never blocks a verification
// response.
package events

import (
	"context"
	"time"
)

// VerificationEvent is the payload emitted for every decided verification.
type VerificationEvent struct {
	TeamSID    string    `json:"team_sid"`
	Endpoint   string    `json:"endpoint"`
	Status     string    `json:"status"`
	Valid      bool      `json:"valid"`
	IPAddress  string    `json:"ip_address"`
	Country    string    `json:"country,omitempty"`
	ProductSID string    `json:"product_sid,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher delivers verification events to the configured stream.
type Publisher interface {
	PublishVerification(ctx context.Context, event VerificationEvent) error
	Close() error
}

// NoopPublisher is used when the event stream is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishVerification(ctx context.Context, event VerificationEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
