package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// grantTimeout bounds how long a reward grant may take before being abandoned.
const grantTimeout = 10 * time.Second

// GrantAsync fires a reward grant on its own goroutine. A failing ledger must
// never block or fail game resolution, so errors are logged and swallowed.
func GrantAsync(ledger RewardLedger, userID, amount int64, reason string) {
	if ledger == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), grantTimeout)
		defer cancel()
		if err := ledger.Grant(ctx, userID, amount, reason); err != nil {
			log.Warn().
				Err(err).
				Int64("user_id", userID).
				Int64("amount", amount).
				Str("reason", reason).
				Msg("Reward grant failed")
		}
	}()
}
