package db

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"spendwise-server/src/models"
)

const dashboardCacheTTL = 5 * time.Minute

// Storing cache keys in a concurrent data structure to allow for clearing all caches of a certain type
// If you're reading this and you know a better way to do this, please let me know!
var (
	Cache             *ristretto.Cache
	DashboardCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

func dashboardCacheKey(userID int) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

// Dashboard Cache Functions
func SetDashboardCache(userID int, stats *models.DashboardStats) {
	if Cache == nil {
		return
	}
	key := dashboardCacheKey(userID)
	DashboardCacheKeys.Lock()
	DashboardCacheKeys.m[key] = struct{}{}
	DashboardCacheKeys.Unlock()
	Cache.SetWithTTL(key, stats, 1, dashboardCacheTTL)
}

func GetDashboardCache(userID int) (*models.DashboardStats, bool) {
	if Cache == nil {
		return nil, false
	}
	value, found := Cache.Get(dashboardCacheKey(userID))
	if !found {
		return nil, false
	}
	stats, ok := value.(*models.DashboardStats)
	return stats, ok
}

// DelDashboardCache drops a user's cached dashboard. Called by every
// expense/category mutation so the next dashboard read recomputes.
func DelDashboardCache(userID int) {
	if Cache == nil {
		return
	}
	key := dashboardCacheKey(userID)
	DashboardCacheKeys.Lock()
	delete(DashboardCacheKeys.m, key)
	DashboardCacheKeys.Unlock()
	Cache.Del(key)
}

func ClearAllDashboardCaches() {
	DashboardCacheKeys.Lock()
	for key := range DashboardCacheKeys.m {
		Cache.Del(key)
	}
	DashboardCacheKeys.m = make(map[string]struct{})
	DashboardCacheKeys.Unlock()
}
