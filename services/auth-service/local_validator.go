package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/orderhub/backend/services/auth-service/services"
)

// localValidator satisfies the guard's Requester by validating tokens
// in-process instead of over the broker.
type localValidator struct {
	auth *services.AuthService
}

func (l localValidator) SendRequest(ctx context.Context, _ string, payload interface{}, _ time.Duration) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var req struct {
		Authentication string `json:"authentication"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}

	identity, err := l.auth.Validate(ctx, req.Authentication)
	if err != nil {
		return json.Marshal(map[string]string{"error": "Unauthorized"})
	}
	return json.Marshal(identity)
}
