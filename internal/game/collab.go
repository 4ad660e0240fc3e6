package game

import "context"

// IdentityResolver turns a typed @username into a participant identifier.
// Unknown names are an expected miss, reported as an error; the surrounding
// system only knows users who have interacted with it before.
type IdentityResolver interface {
	ResolveByUsername(ctx context.Context, username string) (int64, error)
}

// RewardLedger records engagement rewards. Grants happen on game resolution
// and must never block it: callers fire them on their own goroutine and log
// failures.
type RewardLedger interface {
	Grant(ctx context.Context, userID int64, amount int64, reason string) error
}
