// Package notify defines the push-notification gateway the dashboard layer
// sends admin alerts through. The messaging core owns the token registry;
// the gateway itself is an external collaborator.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Result reports the outcome of one token delivery.
type Result struct {
	Token string
	Err   error
}

// Gateway delivers a notification to a batch of device tokens and reports
// per-token success or failure.
type Gateway interface {
	SendBulk(ctx context.Context, tokens []string, title, body string) ([]Result, error)
}

// LogGateway is the stand-in used when no provider is configured: it logs
// each delivery and reports success.
type LogGateway struct {
	log zerolog.Logger
}

// NewLogGateway constructs a LogGateway.
func NewLogGateway(logger zerolog.Logger) *LogGateway {
	return &LogGateway{log: logger}
}

// SendBulk logs the batch and reports every token as delivered.
func (g *LogGateway) SendBulk(_ context.Context, tokens []string, title, body string) ([]Result, error) {
	g.log.Info().Int("tokens", len(tokens)).Str("title", title).Str("body", body).
		Msg("push gateway not configured, logging notification")

	results := make([]Result, 0, len(tokens))
	for _, token := range tokens {
		results = append(results, Result{Token: token})
	}
	return results, nil
}
