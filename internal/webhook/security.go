package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const signaturePrefix = "sha256="

// VerifySignature reports whether header carries the HMAC-SHA256 of payload
// under secret, formatted as "sha256=<lowercase hex>". It never panics.
func VerifySignature(payload []byte, header string, secret string) bool {
	if secret == "" || !strings.HasPrefix(header, signaturePrefix) {
		return false
	}

	sigHex := header[len(signaturePrefix):]
	expected, err := hex.DecodeString(sigHex)
	if err != nil || len(expected) != sha256.Size {
		return false
	}
	// only the canonical lowercase form is accepted
	if hex.EncodeToString(expected) != sigHex {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(expected, mac.Sum(nil))
}

// Sign returns the signature header value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// SecurityValidator validates webhook requests
type SecurityValidator struct {
	config      SecurityConfig
	allowed     []*net.IPNet
	rateLimiter *rateLimiter

	mu         sync.Mutex
	deliveries *expirable.LRU[string, struct{}]
}

func NewSecurityValidator(config SecurityConfig) *SecurityValidator {
	if config.DedupeTTL <= 0 {
		config.DedupeTTL = time.Hour
	}
	return &SecurityValidator{
		config:      config,
		allowed:     parseAllowList(config.AllowedIPs),
		rateLimiter: newRateLimiter(config.RateLimitPerMin),
		deliveries:  expirable.NewLRU[string, struct{}](10000, nil, config.DedupeTTL),
	}
}

// ValidateGitHubSignature verifies GitHub webhook signature
func (v *SecurityValidator) ValidateGitHubSignature(payload []byte, signature string) bool {
	return VerifySignature(payload, signature, v.config.Secret)
}

// ValidateIPAddress checks the client IP against the allow-list. An empty
// list allows everyone.
func (v *SecurityValidator) ValidateIPAddress(ip string) error {
	if len(v.config.AllowedIPs) == 0 {
		return nil
	}
	parsed := net.ParseIP(ip)
	if parsed != nil {
		for _, n := range v.allowed {
			if n.Contains(parsed) {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrIPNotAllowed, ip)
}

// CheckRateLimit enforces rate limiting
func (v *SecurityValidator) CheckRateLimit(source string) error {
	return v.rateLimiter.Allow(source)
}

// SeenDelivery records id and reports whether it was already recorded.
// Empty ids are never considered seen. A delivery whose pipeline ends Failed
// is released again through ForgetDelivery.
func (v *SecurityValidator) SeenDelivery(id string) bool {
	if id == "" {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deliveries.Contains(id) {
		return true
	}
	v.deliveries.Add(id, struct{}{})
	return false
}

// ForgetDelivery drops id so a redelivery of it is processed again.
func (v *SecurityValidator) ForgetDelivery(id string) {
	if id == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deliveries.Remove(id)
}

// parseAllowList accepts bare IPs and CIDR ranges; invalid entries are skipped.
func parseAllowList(entries []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				continue
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			e = fmt.Sprintf("%s/%d", e, bits)
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// rateLimiter keeps one token bucket per source with auto-cleanup
type rateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newRateLimiter(requestsPerMin int) *rateLimiter {
	if requestsPerMin <= 0 {
		requestsPerMin = 60
	}
	burst := requestsPerMin / 10
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](
			1000,          // Max 1000 unique sources
			nil,           // No eviction callback
			time.Minute*5, // TTL: 5 minutes
		),
		rate:  rate.Limit(float64(requestsPerMin) / 60.0), // Per second
		burst: burst,
	}
}

func (rl *rateLimiter) Allow(key string) error {
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}

	if !limiter.Allow() {
		return fmt.Errorf("%w for %s", ErrRateLimited, key)
	}
	return nil
}
