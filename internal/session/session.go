// Package session keeps short-lived conversational state for the bots, such as a user
// who was asked for an access code and has not answered yet.
package session

import (
	"context"
	"time"
)

// Awaiting names the input a bot is waiting for.
type Awaiting string

const (
	AwaitingAccessCode     Awaiting = "access_code"
	AwaitingSupportMessage Awaiting = "support_message"
	AwaitingReinvestOK     Awaiting = "reinvest_confirmation"
)

// State is the pending conversation for one user.
type State struct {
	Awaiting Awaiting          `json:"awaiting"`
	Data     map[string]string `json:"data,omitempty"`
}

// Store holds per-user State with a TTL. Entries past their TTL are gone.
type Store interface {
	Get(ctx context.Context, userID string) (State, bool, error)
	Set(ctx context.Context, userID string, state State) error
	Clear(ctx context.Context, userID string) error
}

// DefaultTTL is how long an unanswered prompt is remembered.
const DefaultTTL = 15 * time.Minute
