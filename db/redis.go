// api/db/redis.go
package db

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/model"
)

var (
	RedisClient   *redis.Client
	encryptionKey []byte
)

const (
	locationHistoryMax = 10
	locationHistoryTTL = 30 * 24 * time.Hour
	activeUsersKey     = "permissions:active"
	activeUsersTTL     = time.Hour
)

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	encryptionKey = []byte(viper.GetString("redis.encryptionKey"))
	if len(encryptionKey) != 32 {
		return fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// CacheEffectivePermissions stores a user's merged permission snapshot. The
// payload is encrypted at rest; the TTL is the aggregator's refresh interval,
// so expiry doubles as the staleness bound.
func CacheEffectivePermissions(ctx context.Context, userID string, perms *model.EffectivePermissions, ttl time.Duration) error {
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	encryptedPerms, err := encrypt(permsJSON)
	if err != nil {
		return fmt.Errorf("failed to encrypt permissions: %w", err)
	}

	key := fmt.Sprintf("permissions:%s", userID)
	err = RedisClient.Set(ctx, key, base64.StdEncoding.EncodeToString(encryptedPerms), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache permissions: %w", err)
	}

	logger.Debug("Permissions cached successfully", zap.String("userID", userID))
	return nil
}

// GetCachedEffectivePermissions returns nil without error on a cache miss; an
// entry whose TTL has passed is a miss by construction (Redis expiry).
func GetCachedEffectivePermissions(ctx context.Context, userID string) (*model.EffectivePermissions, error) {
	key := fmt.Sprintf("permissions:%s", userID)
	encryptedPermsStr, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Permissions not found in cache", zap.String("userID", userID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get permissions from cache: %w", err)
	}

	encryptedPerms, err := base64.StdEncoding.DecodeString(encryptedPermsStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	permsJSON, err := decrypt(encryptedPerms)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt permissions: %w", err)
	}

	var perms model.EffectivePermissions
	err = json.Unmarshal(permsJSON, &perms)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}

	logger.Debug("Permissions retrieved from cache", zap.String("userID", userID))
	return &perms, nil
}

func DeleteCachedEffectivePermissions(ctx context.Context, userID string) error {
	key := fmt.Sprintf("permissions:%s", userID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete permissions from cache: %w", err)
	}
	logger.Debug("Permissions deleted from cache", zap.String("userID", userID))
	return nil
}

func CacheUserRole(ctx context.Context, userID, role string) error {
	key := fmt.Sprintf("role:%s", userID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err := RedisClient.Set(ctx, key, role, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache role: %w", err)
	}
	logger.Debug("Role cached successfully", zap.String("userID", userID), zap.String("role", role))
	return nil
}

func GetCachedUserRole(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf("role:%s", userID)
	role, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get role from cache: %w", err)
	}
	return role, nil
}

// AppendLocationHistory records the country a user's allowed request resolved
// to. The list is capped so risk scoring only ever sees the most recent
// locations.
func AppendLocationHistory(ctx context.Context, userID string, location model.GeoLocation) error {
	locationJSON, err := json.Marshal(location)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}

	key := fmt.Sprintf("geo:history:%s", userID)
	pipe := RedisClient.Pipeline()
	pipe.LPush(ctx, key, locationJSON)
	pipe.LTrim(ctx, key, 0, locationHistoryMax-1)
	pipe.Expire(ctx, key, locationHistoryTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append location history: %w", err)
	}

	logger.Debug("Location history appended", zap.String("userID", userID), zap.String("country", location.CountryCode))
	return nil
}

// RecentLocationHistory returns up to n locations, most recent first.
func RecentLocationHistory(ctx context.Context, userID string, n int) ([]model.GeoLocation, error) {
	key := fmt.Sprintf("geo:history:%s", userID)
	entries, err := RedisClient.LRange(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read location history: %w", err)
	}

	locations := make([]model.GeoLocation, 0, len(entries))
	for _, entry := range entries {
		var location model.GeoLocation
		if err := json.Unmarshal([]byte(entry), &location); err != nil {
			logger.Warn("Skipping malformed location history entry", zap.String("userID", userID), zap.Error(err))
			continue
		}
		locations = append(locations, location)
	}
	return locations, nil
}

// MarkUserActive registers a user for proactive permission refresh.
func MarkUserActive(ctx context.Context, userID string) error {
	pipe := RedisClient.Pipeline()
	pipe.SAdd(ctx, activeUsersKey, userID)
	pipe.Expire(ctx, activeUsersKey, activeUsersTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark user active: %w", err)
	}
	return nil
}

func ActiveUsers(ctx context.Context) ([]string, error) {
	users, err := RedisClient.SMembers(ctx, activeUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return users, nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
