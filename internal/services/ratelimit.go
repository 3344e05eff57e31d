package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/pkg/models"
)

type RateLimitService struct {
	config      config.RateLimitConfig
	logger      *logrus.Logger
	redisClient *redis.Client
}

// NewRateLimitService accepts a nil client, in which case every request is
// allowed.
func NewRateLimitService(cfg config.RateLimitConfig, logger *logrus.Logger, redisClient *redis.Client) *RateLimitService {
	return &RateLimitService{
		config:      cfg,
		logger:      logger,
		redisClient: redisClient,
	}
}

func (s *RateLimitService) Enabled() bool {
	return s.config.Enabled && s.redisClient != nil && s.config.Requests > 0
}

func (s *RateLimitService) CheckLimit(ctx context.Context, clientKey string) *models.RateLimitInfo {
	limit := s.config.Requests
	window := s.config.Window
	if window <= 0 {
		window = time.Minute
	}

	key := fmt.Sprintf("rate_limit:gift_engine:%s", clientKey)

	// Use sliding window rate limiting
	now := time.Now()
	windowStart := now.Add(-window)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Redis pipeline for atomic operations
	pipe := s.redisClient.Pipeline()

	// Remove expired entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixMilli(), 10))

	// Count current requests in window
	countCmd := pipe.ZCard(ctx, key)

	// Add current request
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})

	// Set expiration
	pipe.Expire(ctx, key, window)

	resetTime := now.Add(window).Unix()

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to execute rate limit pipeline")
		// Return permissive result if Redis is down
		return &models.RateLimitInfo{
			Limit:     limit,
			Remaining: limit,
			ResetTime: resetTime,
		}
	}

	remaining := limit - int(countCmd.Val())
	if remaining < 0 {
		remaining = 0
	}

	return &models.RateLimitInfo{
		Limit:     limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}
}

// IsAllowed reports whether clientKey may make another request. The count is
// taken before the current request is recorded, so the request that finds
// Remaining == 0 is the first one rejected.
func (s *RateLimitService) IsAllowed(ctx context.Context, clientKey string) (bool, *models.RateLimitInfo) {
	if !s.Enabled() {
		return true, nil
	}

	info := s.CheckLimit(ctx, clientKey)
	allowed := info.Remaining > 0
	if allowed {
		info.Remaining--
	}
	return allowed, info
}
