// Package fcm implements ports.PushSender with Firebase Cloud Messaging.
package fcm

import (
	"context"
	"fmt"

	"fulfillment/internal/core/ports"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// maxBatch is the FCM limit of tokens per multicast request.
const maxBatch = 500

type multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Sender struct {
	client multicaster
}

// New creates a messaging client. An empty credentialsFile falls back to
// application default credentials.
func New(ctx context.Context, projectID, credentialsFile string) (*Sender, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &Sender{client: client}, nil
}

// SendMulticast sends msg to tokens in batches of at most 500. Results are
// aligned with tokens. A failed batch fails the whole call.
func (s *Sender) SendMulticast(ctx context.Context, tokens []string, msg ports.PushMessage) ([]ports.PushTokenResult, error) {
	results := make([]ports.PushTokenResult, 0, len(tokens))

	for start := 0; start < len(tokens); start += maxBatch {
		end := min(start+maxBatch, len(tokens))
		batch := tokens[start:end]

		resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("fcm multicast: %w", err)
		}

		for i, token := range batch {
			r := ports.PushTokenResult{Token: token}
			if i < len(resp.Responses) && resp.Responses[i] != nil {
				r.Success = resp.Responses[i].Success
				r.Err = resp.Responses[i].Error
				r.Unregistered = r.Err != nil && messaging.IsUnregistered(r.Err)
			} else {
				r.Err = fmt.Errorf("no response for token")
			}
			results = append(results, r)
		}
	}

	return results, nil
}
