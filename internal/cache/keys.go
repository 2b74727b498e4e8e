package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	SportsCatalogKey    = "sports:catalog"
	UserSportsKeyPrefix = "user:%d:sports"
)

const (
	UserTTL          = 5 * time.Minute
	SportsCatalogTTL = 30 * time.Minute
	UserSportsTTL    = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserSportsKey(userID uint) string {
	return fmt.Sprintf(UserSportsKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, UserSportsKey(userID))
}

func InvalidateSportsCatalog(ctx context.Context) {
	Invalidate(ctx, SportsCatalogKey)
}
