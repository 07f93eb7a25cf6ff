package authguard

import (
	"context"
	"encoding/json"
)

type identityContextKey struct{}

type messageCarrier struct {
	token    string
	ctx      context.Context
	attached context.Context
}

func (m *messageCarrier) Token() (string, bool) {
	return m.token, m.token != ""
}

func (m *messageCarrier) Attach(identity *Identity) {
	m.attached = WithIdentity(m.ctx, identity)
}

// AllowMessage authenticates an inbound message whose JSON body carries
// the bearer token in an "authentication" field. On success it returns
// a context with the identity attached.
func (g *Guard) AllowMessage(ctx context.Context, body []byte) (context.Context, error) {
	var payload struct {
		Authentication string `json:"authentication"`
	}
	// An unparseable body is treated as a missing token.
	_ = json.Unmarshal(body, &payload)

	carrier := &messageCarrier{token: payload.Authentication, ctx: ctx}
	if err := g.Allow(ctx, carrier); err != nil {
		return ctx, err
	}
	return carrier.attached, nil
}

// WithIdentity returns a context carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity attached by AllowMessage.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	return identity, ok
}
