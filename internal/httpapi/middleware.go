package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"golang.org/x/time/rate"
)

// RouteAccessLoggerMiddleware logs every request before and after it runs.
func RouteAccessLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		defer LogRouteAccess(c, tl.Info1, "Route accessed", palette.Green)
		LogRouteAccess(c, tl.Info, "Accessing route", palette.Blue)
		return next(c)
	}
}

// LogRouteAccess logs one line describing the request in c.
func LogRouteAccess(c echo.Context, logLevel tl.LogLevel, actionName string, colorizer palette.Colorizer) {
	if c.Path() == healthPath {
		logLevel = tl.Verbose
		colorizer = palette.CyanDim
	}
	tl.Log(logLevel, colorizer, "%s: Method='%s', Path='%s', ClientIP='%s', Status='%d'",
		actionName, c.Request().Method, c.Path(), c.RealIP(), c.Response().Status)
}

// limiterTTL is how long an idle client keeps its bucket.
const limiterTTL = time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per client IP token bucket.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	rateLimit rate.Limit // requests per second
	burst     int        // requests allowed instantly
	now       func() time.Time
}

// NewRateLimiter allows each client IP rps requests per second with the
// given burst.
func NewRateLimiter(rps, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*clientLimiter),
		rateLimit: rate.Limit(rps),
		burst:     burst,
		now:       time.Now,
	}
}

// getLimiter returns the rate limiter for the given IP address and drops
// buckets idle for longer than limiterTTL.
func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, client := range l.clients {
		if now.Sub(client.lastSeen) > limiterTTL {
			delete(l.clients, key)
		}
	}

	client, exists := l.clients[ip]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(l.rateLimit, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter
}

// Len reports how many clients currently hold a bucket.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects requests over the client's limit with 429.
func (l *RateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		if !l.getLimiter(ip).Allow() {
			LogRouteAccess(c, tl.Warning, "Rate limited", palette.PurpleBright)
			return c.JSON(http.StatusTooManyRequests, errorBody{Error: "too many requests"})
		}
		return next(c)
	}
}
