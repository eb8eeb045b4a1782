package services

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/dto"
	"github.com/ze-parceiro/simulator_api/shared"
)

// WindowCounter is the counter backend of the rate limiter. RedisService implements it.
type WindowCounter interface {
	Enabled() bool
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
}

type RateLimitService struct {
	appContext.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	counter WindowCounter
	now     func() time.Time
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	BlockTime    time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const rateLimitKeyPrefix = "ze-simulator:ratelimit:"

func NewRateLimitService(counter WindowCounter) *RateLimitService {
	svc := &RateLimitService{counter: counter, now: time.Now}
	svc.initDefaultConfigs()
	return svc
}

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.counter = svc.Service(REDIS_SVC).(*RedisService)
	svc.initDefaultConfigs()

	if !svc.counter.Enabled() {
		log.Warn("Rate limiting disabled, no redis configured")
	}
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"login": {
			EndpointType: "login",
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			BlockTime:    30 * time.Minute,
			Description:  "Login attempts rate limit",
			IsActive:     true,
		},
		"answer": {
			EndpointType: "answer",
			MaxRequests:  60,
			WindowSize:   time.Minute,
			BlockTime:    5 * time.Minute,
			Description:  "Checkpoint answers rate limit",
			IsActive:     true,
		},
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "General API rate limit per IP",
			IsActive:     true,
		},
	}
}

// IsAllowed counts one request for identifier. Without a counter backend every request is allowed.
func (svc *RateLimitService) IsAllowed(ctx context.Context, identifier, endpointType string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists || !config.IsActive || svc.counter == nil || !svc.counter.Enabled() {
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: -1,
		}, nil
	}

	now := svc.now()
	blockKey := fmt.Sprintf("%sblock:%s:%s", rateLimitKeyPrefix, endpointType, identifier)

	var blockedUntil time.Time
	found, err := svc.counter.GetJSON(ctx, blockKey, &blockedUntil)
	if err != nil {
		return false, nil, err
	}
	if found && now.Before(blockedUntil) {
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Limit:        config.MaxRequests,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	countKey := fmt.Sprintf("%scount:%s:%s", rateLimitKeyPrefix, endpointType, identifier)
	count, ttl, err := svc.counter.IncrementWindow(ctx, countKey, config.WindowSize)
	if err != nil {
		return false, nil, err
	}
	if ttl < 0 {
		ttl = config.WindowSize
	}
	resetTime := now.Add(ttl)

	if int(count) > config.MaxRequests {
		until := now.Add(config.BlockTime)
		if err := svc.counter.SetJSON(ctx, blockKey, until, config.BlockTime); err != nil {
			return false, nil, err
		}
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Limit:        config.MaxRequests,
			Remaining:    0,
			ResetTime:    &until,
			BlockedUntil: &until,
		}, nil
	}

	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Limit:     config.MaxRequests,
		Remaining: config.MaxRequests - int(count),
		ResetTime: &resetTime,
	}, nil
}

// RateLimit creates a rate limiting middleware for specific endpoint types
func (svc *RateLimitService) RateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := svc.getIdentifier(c, endpointType)

		allowed, info, err := svc.IsAllowed(c.UserContext(), identifier, endpointType)
		if err != nil {
			log.WithFields(log.Fields{
				"endpoint_type": endpointType,
				"identifier":    identifier,
				"error":         err.Error(),
			}).Warn("Rate limit check failed")
			// Continue with request on error to avoid blocking users due to system issues
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, endpointType, info)
		}

		return c.Next()
	}
}

// IPRateLimit applies general rate limiting by IP address
func (svc *RateLimitService) IPRateLimit() fiber.Handler {
	return svc.RateLimit("api_general")
}

func (svc *RateLimitService) getIdentifier(c *fiber.Ctx, endpointType string) string {
	switch endpointType {
	case "login":
		// IP + participant code when present
		if code := getCodeFromRequest(c); code != "" {
			return fmt.Sprintf("%s:%s", getClientIP(c), code)
		}
		return getClientIP(c)

	case "answer":
		if playID, ok := c.Locals(shared.PlayID).(string); ok && playID != "" {
			return playID
		}
		return getClientIP(c)

	default:
		return getClientIP(c)
	}
}

func getCodeFromRequest(c *fiber.Ctx) string {
	if len(c.Body()) == 0 {
		return ""
	}
	var reqBody map[string]interface{}
	if err := shared.JSONAPI.Unmarshal(c.Body(), &reqBody); err != nil {
		return ""
	}
	if code, ok := reqBody["code"].(string); ok {
		return SanitizeCode(code)
	}
	return ""
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Limit > 0 {
		c.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}

	if info.BlockedUntil != nil {
		retryAfter := int(info.BlockedUntil.Sub(svc.now()).Seconds())
		if retryAfter > 0 {
			c.Set("Retry-After", strconv.Itoa(retryAfter))
		}
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, endpointType string, info *dto.RateLimitInfo) error {
	message := svc.getRateLimitMessage(endpointType)
	return shared.ResponseJSON(c, http.StatusTooManyRequests, message, info)
}

func (svc *RateLimitService) getRateLimitMessage(endpointType string) string {
	messages := map[string]string{
		"login":       "Too many login attempts. Please try again later.",
		"answer":      "Too many answers. Take a moment to read the situation.",
		"api_general": "Too many requests. Please slow down.",
	}

	if message, exists := messages[endpointType]; exists {
		return message
	}

	return "Too many requests. Please try again later."
}

func getClientIP(c *fiber.Ctx) string {
	// Check for forwarded IP first (for load balancers/proxies)
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

	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		return cfIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}
