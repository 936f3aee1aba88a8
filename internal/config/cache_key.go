package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ParticipationLockKey returns the lock key held while checking and
// recording a participation for a (user, quiz) pair.
func (r *CacheKeyStruct) ParticipationLockKey(userID, quizID int) string {
	return fmt.Sprintf("participation:lock:%d:%d", userID, quizID)
}

// LeaderboardKey returns the cache key for the global leaderboard.
func (r *CacheKeyStruct) LeaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:average:%d", limit)
}

// MostActiveKey returns the cache key for the most-active ranking.
func (r *CacheKeyStruct) MostActiveKey(limit int) string {
	return fmt.Sprintf("leaderboard:active:%d", limit)
}

var CacheKey = NewCacheKeyStruct()
