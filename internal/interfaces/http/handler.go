package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"moex-client/internal/application/service/quotes"
	"moex-client/internal/domain/entity/market"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	marketsBasePath = "/api/v1/markets"
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

type Handler struct {
	router   *gin.Engine
	quotes   *quotes.Service
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *logrus.Entry
}

func NewHandler(svc *quotes.Service, cache *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:   router,
		quotes:   svc,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.WithField("component", "http"),
	}
	router.Use(h.requestIDMiddleware())
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET(marketsBasePath, h.listMarkets)

	mk := h.router.Group(marketsBasePath + "/:market")
	mk.GET("/resolve/:property", h.resolveProperty)

	sec := mk.Group("/securities/:secid")
	if h.cache != nil {
		sec.Use(h.cacheMiddleware())
	}
	{
		sec.GET("/metrics/:metric", h.getMetric)
		sec.GET("/properties/:property", h.getProperty)
	}
}

func (h *Handler) listMarkets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"markets": h.quotes.Markets()})
}

// resolveProperty reports which exchange field a generic property name reads.
func (h *Handler) resolveProperty(c *gin.Context) {
	category, err := market.ParseCategory(c.Query("category"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	field, err := h.quotes.Resolve(c.Param("market"), c.Param("property"), category)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"market":   c.Param("market"),
		"property": c.Param("property"),
		"category": category.String(),
		"field":    field,
	})
}

// getMetric evaluates a metric. Positional arguments come from repeated arg
// query params, e.g. ?arg=usd or ?arg=day&arg=%25.
func (h *Handler) getMetric(c *gin.Context) {
	args := market.Args(c.QueryArray("arg"))
	value, err := h.quotes.Metric(c.Request.Context(), c.Param("market"), c.Param("secid"), c.Param("metric"), args)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, value)
}

func (h *Handler) getProperty(c *gin.Context) {
	value, err := h.quotes.Property(c.Request.Context(), c.Param("market"), c.Param("secid"), c.Param("property"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, value)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField(requestIDKey, c.GetString(requestIDKey)).Error("request failed")
	}
	writeError(c, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrInvalidArgument),
		errors.Is(err, market.ErrUnknownCategory),
		errors.Is(err, quotes.ErrEmptyMarket),
		errors.Is(err, quotes.ErrEmptySecID),
		errors.Is(err, quotes.ErrEmptyMetric):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrUnknownMarket),
		errors.Is(err, market.ErrSecurityNotFound),
		errors.Is(err, market.ErrMissingField):
		return http.StatusNotFound
	case errors.Is(err, market.ErrParse):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// requestIDMiddleware propagates or assigns X-Request-ID and writes one access
// log line per request.
func (h *Handler) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			requestIDKey: id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"took_ms":    time.Since(start).Milliseconds(),
		}).Info("request")
	}
}

// cacheMiddleware caches successful GET responses in Redis.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			c.Abort()
			return
		} else if !errors.Is(err, redis.Nil) {
			h.logger.WithError(err).Warn("cache read failed")
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			if err := h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err(); err != nil {
				h.logger.WithError(err).Warn("cache write failed")
			}
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

// cacheKey uses the concrete path so different securities never share an entry.
func cacheKey(c *gin.Context) string {
	return fmt.Sprintf("quotes:%s:%s?%s", c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery)
}
