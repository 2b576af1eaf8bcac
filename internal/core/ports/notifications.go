package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// EmailMessage is a single HTML email.
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
}

// EmailSender delivers one email per call, without retries.
type EmailSender interface {
	// Send returns the provider message id on success.
	Send(ctx context.Context, msg EmailMessage) (messageID string, err error)
}

// PushMessage is the payload fanned out to every device of a user.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushTokenResult is the provider outcome for one device token.
type PushTokenResult struct {
	Token   string
	Success bool
	// Unregistered is set when the provider reports the token as no longer valid.
	Unregistered bool
	Err          error
}

// PushSender fans a message out to device tokens in a single provider call.
// The returned results are aligned with tokens.
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, msg PushMessage) ([]PushTokenResult, error)
}

// DeviceTokenStore is the registry of push tokens per user.
type DeviceTokenStore interface {
	Tokens(ctx context.Context, userID kernel.UserID) ([]string, error)
	Register(ctx context.Context, userID kernel.UserID, token string) error
	Remove(ctx context.Context, userID kernel.UserID, tokens ...string) error
}

// Recipient is the contact data of a user as known to the identity provider.
type Recipient struct {
	ID    kernel.UserID
	Email string
	Name  string
}

// UserDirectory resolves recipients. It is read-only for this service.
type UserDirectory interface {
	// Get returns errs.ObjectNotFoundError for unknown users.
	Get(ctx context.Context, userID kernel.UserID) (Recipient, error)
}
