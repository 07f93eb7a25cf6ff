package authguard

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/orderhub/backend/services/common/errors"
	"go.uber.org/zap"
)

// Identity is the caller resolved by the credential authority for the
// duration of one request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Requester is the request/reply capability the guard needs from the
// broker client.
type Requester interface {
	SendRequest(ctx context.Context, queueURL string, payload interface{}, timeout time.Duration) ([]byte, error)
}

// Carrier adapts one kind of execution context (an HTTP request, an
// inbound message) to the guard: where the bearer token is read from
// and where the resolved identity is written to.
type Carrier interface {
	// Token returns the bearer token, or ok=false when none is present.
	Token() (token string, ok bool)
	// Attach makes the identity visible to downstream handlers.
	Attach(identity *Identity)
}

type validationRequest struct {
	Authentication string `json:"authentication"`
}

type validationReply struct {
	Identity
	Error string `json:"error,omitempty"`
}

// Guard delegates credential validation to the auth service over the
// broker's request/reply channel.
type Guard struct {
	requester Requester
	queueURL  string
	timeout   time.Duration
	logger    *zap.Logger
}

// DefaultTimeout bounds how long a caller may be suspended waiting for
// the credential authority.
const DefaultTimeout = 5 * time.Second

func New(requester Requester, validateQueueURL string, timeout time.Duration, logger *zap.Logger) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		requester: requester,
		queueURL:  validateQueueURL,
		timeout:   timeout,
		logger:    logger,
	}
}

// Allow authenticates the call represented by carrier. On success the
// resolved identity is attached to the carrier and nil is returned;
// every failure mode (missing token, invalid token, authority error or
// timeout) collapses into ErrUnauthorized.
func (g *Guard) Allow(ctx context.Context, carrier Carrier) error {
	token, ok := carrier.Token()
	if !ok || token == "" {
		return apperrors.ErrUnauthorized
	}

	identity, err := g.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	carrier.Attach(identity)
	return nil
}

// Authenticate validates token against the credential authority and
// returns the identity it encodes.
func (g *Guard) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	reply, err := g.requester.SendRequest(ctx, g.queueURL, validationRequest{Authentication: token}, g.timeout)
	if err != nil {
		// Timeouts and transport errors look the same to the caller.
		g.logger.Warn("credential validation failed", zap.Error(err))
		return nil, apperrors.ErrUnauthorized
	}

	var result validationReply
	if err := json.Unmarshal(reply, &result); err != nil {
		g.logger.Warn("unparseable validation reply", zap.Error(err))
		return nil, apperrors.ErrUnauthorized
	}
	if result.Error != "" || result.ID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	return &result.Identity, nil
}
