// Package model defines the data models for the shadow bot.
package model

import "time"

// User represents a known chat member with their engagement ledger totals.
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	FirstName  string    `db:"first_name"`
	XP         int64     `db:"xp"`
	Level      int       `db:"level"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// XPEvent is a single append-only entry in the reward ledger.
type XPEvent struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Amount    int64     `db:"amount"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

// Reward reasons for categorizing XP grants.
const (
	RewardShadowJoin = "shadow_join" // Joined a Shadow Game
	RewardShadowWin  = "shadow_win"  // Won a Shadow Game
	RewardClashWin   = "clash_win"   // Survived a Cult Clash
	RewardAdminGrant = "admin_grant" // Manually granted by an admin
)

// XPToReachLevel returns the cumulative XP needed to reach a level.
// Level 2 = 10 XP, level 3 = 30 XP, level 4 = 60 XP.
func XPToReachLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(5 * level * (level - 1))
}

// LevelForXP maps a cumulative XP total to a level. Level 1 is the floor.
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	level := 1
	for xp >= XPToReachLevel(level+1) {
		level++
	}
	return level
}
