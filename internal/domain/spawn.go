package domain

// Rand is the randomness capability used for map and spawn selection.
// *math/rand.Rand satisfies it.
type Rand interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
}

// SelectMap draws a map index from the pool.
func SelectMap(rng Rand) int {
	return rng.Intn(MapCount)
}

// SelectSpawns picks distinct plain tiles for hunter and prey at least
// MinSpawnDistance apart. It keeps sampling until a pair qualifies; every
// map in the pool has such a pair.
func SelectSpawns(mapIndex int, rng Rand) (hunter, prey Coord) {
	plains := PlainTiles(mapIndex)
	n := len(plains)
	for {
		a := rng.Intn(n)
		b := rng.Intn(n)
		if a == b {
			continue
		}
		if plains[a].Manhattan(plains[b]) >= MinSpawnDistance {
			return plains[a], plains[b]
		}
	}
}
