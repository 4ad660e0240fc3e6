package game

import "math/rand"

// PickRandom returns a uniformly random key of the roster. Selection is
// always over the live player set at call time, never a cached snapshot:
// rosters only shrink during a game, and a stale snapshot could resurrect an
// eliminated player.
func PickRandom[V any](roster map[int64]V) int64 {
	if len(roster) == 0 {
		return 0
	}
	n := rand.Intn(len(roster))
	for id := range roster {
		if n == 0 {
			return id
		}
		n--
	}
	return 0
}
