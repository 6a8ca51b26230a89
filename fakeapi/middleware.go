package fakeapi

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limiterGin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

const claimsKey = "claims"

func SecurityMiddleware() gin.HandlerFunc {
	return secure.New(secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'self';",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	})
}

func CORSMiddleware(allowedOriginExp string, log *zap.SugaredLogger) gin.HandlerFunc {
	lg := log.With("middleware", "cors")
	originExp := regexp.MustCompile(allowedOriginExp)
	return func(c *gin.Context) {
		requestOrigin := c.Request.Header.Get("Origin")
		if requestOrigin != "" {
			if originExp.MatchString(requestOrigin) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", requestOrigin)
			} else {
				lg.Warnw("cors request blocked", "origin", requestOrigin, "method", c.Request.Method)
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func TmpCORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: false,
	})
}

// RequestLogger logs one line per request.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// RateLimiterMiddleware limits requests per client IP, e.g. "5-M" for five per minute.
func RateLimiterMiddleware(limit string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(limit)
	if err != nil {
		return nil, err
	}
	store := memory.NewStore()
	instance := limiter.New(store, rate)
	return limiterGin.NewMiddleware(instance, limiterGin.WithLimitReachedHandler(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests, try again later"})
	})), nil
}

// AuthRequired rejects requests without a valid, unrevoked bearer token.
func AuthRequired(w *JwtWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, w)
		if !ok {
			abortDetail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func bearerClaims(c *gin.Context, w *JwtWrapper) (*jwtClaims, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return nil, false
	}
	claims, err := w.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
