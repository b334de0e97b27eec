package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/ratelimit"
)

const claimsContextKey = "claims"

// Claims are the JWT claims carried by every API token. TenantID scopes
// all data access.
type Claims struct {
	TenantID int64  `json:"tenant_id"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// authMiddleware validates the Bearer token and stores the claims in the
// request context.
func authMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid || claims.TenantID <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// GetClaims extracts the authenticated claims from the gin context.
func GetClaims(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}

// tenantID returns the authenticated tenant, or aborts with 401. Routes
// behind authMiddleware always have claims set.
func tenantID(c *gin.Context) (int64, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		c.Abort()
		return 0, false
	}
	return claims.TenantID, true
}

// clientIP honors X-Forwarded-For and X-Real-IP before falling back to
// the connection address.
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	return c.ClientIP()
}

// rateLimitMiddleware applies the shared sliding-window limiter per
// client IP, and per tenant once the request is authenticated.
func rateLimitMiddleware(limiter *ratelimit.Limiter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + clientIP(c)
		if claims, ok := GetClaims(c); ok {
			key = fmt.Sprintf("tenant:%d", claims.TenantID)
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Fail open: a Redis outage must not take the API down.
			log.Warn("rate limiter unavailable", logger.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))

		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds()) + 1
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request with latency and status.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", clientIP(c)),
		)
	}
}
