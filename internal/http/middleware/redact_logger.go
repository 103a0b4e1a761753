// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, a structured HTTP logger that scrubs
// caller identifiers before emitting logs. Every webhook this service ingests
// carries two phone numbers, so raw request metadata is PII by default.
//
// Design goals:
//   - Default-safe: never logs request or response bodies
//   - Redacts phone numbers (spaced/dashed national forms and raw E.164 runs),
//     emails, and UUID-like identifiers
//   - Masks sensitive headers (Authorization, Cookie, Set-Cookie, plus custom
//     ones such as the webhook token header)
//   - Produces structured JSON logs via zerolog
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Webhook-Token"},
//	}))
//
// Security note: scrubbing reduces but does not eliminate leak risk. Telephony
// providers should still be configured to deliver numbers in the JSON body,
// never in query strings.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Scrub patterns, compiled once. UUIDs must be replaced before phone numbers:
// the phone pattern is loose enough to swallow the digit/hyphen segments of a
// UUID otherwise.
var (
	redactUUIDRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Matches separated national forms ("(212) 555-1212", "212 555 1212") and
	// unbroken E.164-style digit runs ("+919876543210", "09631084471").
	redactPhoneRE = regexp.MustCompile(`(?:\+?\d{10,15}\b)|(?:\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b)`)
)

// Headers whose values are always fully masked, regardless of options.
var alwaysMaskedHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"set-cookie":    {},
}

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values will be fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with the
// built-in sensitive headers.
type RedactOptions struct {
	MaskHeaders []string
}

// redactPII applies the scrub patterns to s. Call ids and other opaque tokens
// that carry no digits survive untouched.
func redactPII(s string) string {
	if s == "" {
		return s
	}
	out := redactUUIDRE.ReplaceAllString(s, "[REDACTED:id]")
	out = redactEmailRE.ReplaceAllString(out, "[REDACTED:email]")
	out = redactPhoneRE.ReplaceAllString(out, "[REDACTED:phone]")
	return out
}

// RedactingLogger returns a Gin middleware that logs HTTP requests with
// sensitive values scrubbed.
//
// Behavior:
//   - Logs method, path, query string, status, response size, latency, and
//     request headers (with scrubbing applied).
//   - Applies redactPII to query strings and non-masked header values.
//   - Fully masks built-in sensitive headers and any additional headers from
//     opts.MaskHeaders.
//   - Emits at INFO for 2xx/3xx, WARN for 4xx, ERROR for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := make(map[string]struct{}, len(alwaysMaskedHeaders)+len(opts.MaskHeaders))
	for h := range alwaysMaskedHeaders {
		maskHeaders[h] = struct{}{}
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := redactPII(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redactPII(val)
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
