package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/crm-service/internal/config"
	"github.com/iliyamo/crm-service/internal/metrics"
)

// relatedResources lists the resources whose cached reads embed documents
// of the key resource. Writing to the key resource invalidates them too.
var relatedResources = map[string][]string{
	"customers":     {"interactions"},
	"interactions":  {"customers"},
	"leads":         {"opportunities"},
	"opportunities": {"leads"},
	"users":         {"leads"},
}

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size+int64(len(b)) <= cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// ResponseCache stores successful reads in Redis per resource and caller
// and drops them when the resource (or a related one) is written.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewRedisCache returns nil when caching is disabled or Redis is absent;
// a nil cache's For is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

// For returns the middleware for one resource group. It must run after
// Authenticate so that entries are keyed by caller.
func (rc *ResponseCache) For(resource string) echo.MiddlewareFunc {
	if rc == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return rc.serve(c, resource, next)
			}
			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status < http.StatusBadRequest {
				rc.Invalidate(context.WithoutCancel(c.Request().Context()), resource)
			}
			return nil
		}
	}
}

func (rc *ResponseCache) serve(c echo.Context, resource string, next echo.HandlerFunc) error {
	ctx := c.Request().Context()
	key := rc.key(resource, c)

	if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
		if status, hdr, body, ok := decodePayload(bs); ok {
			metrics.RecordCacheLookup(true)
			for k, vals := range hdr {
				if strings.EqualFold(k, echo.HeaderContentLength) {
					continue
				}
				for _, v := range vals {
					c.Response().Header().Add(k, v)
				}
			}
			c.Response().Header().Set("X-Cache", "HIT")
			c.Response().WriteHeader(status)
			if len(body) > 0 {
				_, _ = c.Response().Write(body)
			}
			return nil
		}
	}
	metrics.RecordCacheLookup(false)

	cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(rc.cfg.MaxBodyBytes)}
	c.Response().Writer = cw
	c.Response().Header().Set("X-Cache", "MISS")

	if err := next(c); err != nil {
		return err
	}
	if cw.status != http.StatusOK || (cw.limit > 0 && cw.size > cw.limit) {
		return nil
	}
	hdr := c.Response().Header().Clone()
	hdr.Del("X-Cache")
	payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
	if err != nil {
		return nil
	}
	if err := rc.rdb.SetEx(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
		slog.Warn("cache store failed", "key", key, "err", err)
	}
	return nil
}

// Invalidate removes every cached entry of resource and its related
// resources.
func (rc *ResponseCache) Invalidate(ctx context.Context, resource string) {
	if rc == nil {
		return
	}
	for _, r := range append([]string{resource}, relatedResources[resource]...) {
		pattern := rc.cfg.Prefix + ":" + r + ":*"
		iter := rc.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			slog.Warn("cache invalidation scan failed", "resource", r, "err", err)
			continue
		}
		if len(keys) > 0 {
			if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("cache invalidation failed", "resource", r, "err", err)
			}
		}
	}
}

// key is <prefix>:<resource>:<sha1(caller, path, query)>.
func (rc *ResponseCache) key(resource string, c echo.Context) string {
	r := c.Request()
	tail := strings.Join([]string{userID(c), r.Method, r.URL.Path, r.URL.RawQuery}, "|")
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%s:%x", rc.cfg.Prefix, resource, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}
