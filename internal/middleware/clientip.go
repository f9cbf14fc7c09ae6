package middleware

import "github.com/labstack/echo/v4"

// IPExtractor decides which address c.RealIP reports, and so which bucket
// the rate limiter charges. Without a trusted proxy the socket address is
// used and forwarding headers are ignored. Behind one, X-Forwarded-For is
// walked from the right past private-network hops, so entries a client
// prepends itself never become the key.
func IPExtractor(trustProxy bool) echo.IPExtractor {
	if trustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}
