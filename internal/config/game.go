package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LuckFactor is the default luck for new sessions, 1.0 unless
// GAME_LUCK_FACTOR says otherwise.
func LuckFactor() (float64, error) {
	s, ok := os.LookupEnv("GAME_LUCK_FACTOR")
	if !ok {
		return 1.0, nil
	}
	luck, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse GAME_LUCK_FACTOR: %w", err)
	}
	return luck, nil
}

// ScoresSQLitePath is set when scores live in a local SQLite file rather than
// in PostgreSQL.
func ScoresSQLitePath() (string, bool) {
	return os.LookupEnv("SCORES_SQLITE_PATH")
}

// SessionCache reads SESSION_CACHE_SIZE and SESSION_IDLE_TTL. Zero values
// leave the manager defaults in place.
func SessionCache() (size int, idleTTL time.Duration, err error) {
	if s, ok := os.LookupEnv("SESSION_CACHE_SIZE"); ok {
		if size, err = strconv.Atoi(s); err != nil || size <= 0 {
			return 0, 0, fmt.Errorf("invalid SESSION_CACHE_SIZE: %q", s)
		}
	}
	if s, ok := os.LookupEnv("SESSION_IDLE_TTL"); ok {
		if idleTTL, err = time.ParseDuration(s); err != nil || idleTTL <= 0 {
			return 0, 0, fmt.Errorf("invalid SESSION_IDLE_TTL: %q", s)
		}
	}
	return size, idleTTL, nil
}
