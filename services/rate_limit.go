package services

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/model"
	"github.com/pathlight-learn/pathlight_api/shared"
	log "github.com/sirupsen/logrus"
)

// RateLimitService is the throttling half of the access gate. Budgets come
// in two tiers: a generous one for read/learner-facing calls and a strict
// one for catalog mutations. Counters live in the store, not the process,
// so the budget survives restarts and is shared across replicas.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	sqlSvc *PostgresService
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	BlockTime    time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const (
	TierGeneral         = "api_general"
	TierCatalogMutation = "catalog_mutation"
)

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.initDefaultConfigs()

	go svc.startCleanupJob()

	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		TierGeneral: {
			EndpointType: TierGeneral,
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "General budget for read and learner-facing calls",
			IsActive:     true,
		},
		TierCatalogMutation: {
			EndpointType: TierCatalogMutation,
			MaxRequests:  60,
			WindowSize:   10 * time.Minute,
			BlockTime:    time.Hour,
			Description:  "Strict budget for catalog mutations",
			IsActive:     true,
		},
	}
}

// ==================== CORE RATE LIMITING LOGIC ====================

// CheckAndConsume charges one request against the caller's budget for the
// tier and reports whether it was allowed.
func (svc *RateLimitService) CheckAndConsume(identifier, tier string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[tier]
	svc.mutex.RUnlock()

	if !exists || !config.IsActive {
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: -1,
		}, nil
	}

	now := time.Now()
	windowStart := now.Add(-config.WindowSize)

	rateLimit, err := svc.sqlSvc.GetRateLimit(identifier, tier)
	if err != nil {
		return false, nil, err
	}

	// Currently blocked
	if rateLimit != nil && rateLimit.BlockedUntil != nil && now.Before(*rateLimit.BlockedUntil) {
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    rateLimit.BlockedUntil,
			BlockedUntil: rateLimit.BlockedUntil,
		}, nil
	}

	// No record yet, or the window has passed: create/reset
	if rateLimit == nil || rateLimit.WindowStart.Before(windowStart) {
		rateLimit = &model.RateLimit{
			Identifier:   identifier,
			EndpointType: tier,
			RequestCount: 1,
			WindowStart:  now,
			BlockedUntil: nil,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := svc.sqlSvc.SaveRateLimit(rateLimit); err != nil {
			return false, nil, err
		}

		resetTime := now.Add(config.WindowSize)
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: config.MaxRequests - 1,
			ResetTime: &resetTime,
		}, nil
	}

	// Budget exhausted: block the identifier
	if rateLimit.RequestCount >= config.MaxRequests {
		blockedUntil := now.Add(config.BlockTime)
		rateLimit.BlockedUntil = &blockedUntil
		rateLimit.UpdatedAt = now

		if err := svc.sqlSvc.UpdateRateLimit(rateLimit); err != nil {
			return false, nil, err
		}

		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	rateLimit.RequestCount++
	rateLimit.UpdatedAt = now

	if err := svc.sqlSvc.UpdateRateLimit(rateLimit); err != nil {
		return false, nil, err
	}

	resetTime := rateLimit.WindowStart.Add(config.WindowSize)
	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - rateLimit.RequestCount,
		ResetTime: &resetTime,
	}, nil
}

// ==================== MIDDLEWARE ====================

// Tier applies the named budget to a route group, keyed by client IP.
func (svc *RateLimitService) Tier(tier string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := getClientIP(c)

		allowed, info, err := svc.CheckAndConsume(identifier, tier)
		if err != nil {
			log.Printf("Rate limit check error for %s: %v", tier, err)
			// Continue on error to avoid blocking callers on a storage hiccup
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, tier, info)
		}

		return c.Next()
	}
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}

	if info.BlockedUntil != nil {
		retryAfter := int(time.Until(*info.BlockedUntil).Seconds())
		if retryAfter > 0 {
			c.Set("Retry-After", strconv.Itoa(retryAfter))
		}
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, tier string, info *dto.RateLimitInfo) error {
	message := "Too many requests. Please try again later."
	if tier == TierCatalogMutation {
		message = "Catalog mutation budget exceeded. Please slow down."
	}

	response := map[string]interface{}{
		"error":   "Rate limit exceeded",
		"message": message,
	}

	if info.BlockedUntil != nil {
		response["blocked_until"] = info.BlockedUntil.Unix()
		response["retry_after"] = int(time.Until(*info.BlockedUntil).Seconds())
	}

	return shared.ResponseJSON(c, http.StatusTooManyRequests, message, response)
}

// ==================== ADMIN FUNCTIONS ====================

func (svc *RateLimitService) GetRateLimitStats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc.mutex.RLock()
		configs := make(map[string]*RateLimitConfig)
		for k, v := range svc.configs {
			configs[k] = v
		}
		svc.mutex.RUnlock()

		var totalRecords int64
		svc.sqlSvc.Db().Model(&model.RateLimit{}).Count(&totalRecords)

		var blockedRecords int64
		svc.sqlSvc.Db().Model(&model.RateLimit{}).
			Where("blocked_until > ?", time.Now()).
			Count(&blockedRecords)

		stats := map[string]interface{}{
			"configs":         configs,
			"total_records":   totalRecords,
			"blocked_records": blockedRecords,
			"timestamp":       time.Now(),
		}

		return shared.ResponseJSON(c, http.StatusOK, "Rate limit statistics", stats)
	}
}

func (svc *RateLimitService) ResetRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")
		tier := c.Params("tier")

		if identifier == "" || tier == "" {
			return shared.ResponseJSON(c, http.StatusBadRequest, "Missing identifier or tier", nil)
		}

		err := svc.sqlSvc.Db().Where("identifier = ? AND endpoint_type = ?", identifier, tier).
			Delete(&model.RateLimit{}).Error
		if err != nil {
			return shared.ResponseJSON(c, http.StatusInternalServerError, "Failed to reset rate limit", err.Error())
		}

		return shared.ResponseJSON(c, http.StatusOK, "Rate limit reset", nil)
	}
}

// ==================== BACKGROUND JOBS ====================

func (svc *RateLimitService) startCleanupJob() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := svc.sqlSvc.CleanupOldRecords(); err != nil {
			log.Printf("Rate limit cleanup error: %v", err)
		}
	}
}

// ==================== UTILITY FUNCTIONS ====================

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}
