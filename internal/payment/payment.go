// Package payment defines the boundary to the external payment-session
// provider. The provider's wire format is out of scope for this service:
// tips are recorded against the opaque reference the provider hands back.
package payment

import (
	"context"
	"fmt"

	"github.com/rs/xid"
)

// Session is a checkout session created with the provider. Reference is the
// provider's identifier for the eventual payment (a card session id or an
// on-chain tx hash) and becomes the tip's unique payment reference.
type Session struct {
	Reference   string
	RedirectURL string
}

// SessionProvider creates checkout sessions for tips.
type SessionProvider interface {
	CreateSession(ctx context.Context, creatorID string, amount int64, currency string) (*Session, error)
}

// StubProvider is the dev/test implementation: it fabricates unique
// references without contacting any provider.
type StubProvider struct{}

var _ SessionProvider = (*StubProvider)(nil)

func (StubProvider) CreateSession(_ context.Context, creatorID string, amount int64, currency string) (*Session, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment: amount must be positive, got %d", amount)
	}

	ref := "stub_" + xid.New().String()
	return &Session{
		Reference:   ref,
		RedirectURL: fmt.Sprintf("https://checkout.invalid/%s?creator=%s&amount=%d&currency=%s", ref, creatorID, amount, currency),
	}, nil
}
