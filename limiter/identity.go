package limiter

import (
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/agrosud-co/site-service/types"
)

// Header precedence mirrors a standard reverse-proxy chain: the left-most
// x-forwarded-for token is the original client, the rest are CDN fallbacks.
var identityHeaders = []string{
	"x-real-ip",
	"cf-connecting-ip",
	"true-client-ip",
}

func Identify(ctx *fasthttp.RequestCtx) string {
	if forwarded := string(ctx.Request.Header.Peek("x-forwarded-for")); forwarded != "" {
		first := forwarded
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			first = forwarded[:idx]
		}
		first = strings.TrimSpace(first)
		if isValidIP(first) {
			return first
		}
	}

	for _, header := range identityHeaders {
		candidate := strings.TrimSpace(string(ctx.Request.Header.Peek(header)))
		if candidate != "" && isValidIP(candidate) {
			return candidate
		}
	}

	return types.IdentityUnknown
}

func isValidIP(candidate string) bool {
	if candidate == "" {
		return false
	}
	if strings.Contains(candidate, ":") {
		return isValidIPv6(candidate)
	}
	return isValidIPv4(candidate)
}

func isValidIPv4(candidate string) bool {
	groups := strings.Split(candidate, ".")
	if len(groups) != 4 {
		return false
	}
	for _, group := range groups {
		if group == "" || len(group) > 3 {
			return false
		}
		for _, c := range group {
			if c < '0' || c > '9' {
				return false
			}
		}
		octet, err := strconv.Atoi(group)
		if err != nil || octet > 255 {
			return false
		}
	}
	return true
}

// isValidIPv6 is deliberately loose: 2 to 8 colon-separated groups of
// 0-4 hex digits, which admits "::" shorthand without full RFC 4291
// bookkeeping. Good enough for bucketing, not for routing.
func isValidIPv6(candidate string) bool {
	groups := strings.Split(candidate, ":")
	if len(groups) < 2 || len(groups) > 8 {
		return false
	}
	for _, group := range groups {
		if len(group) > 4 {
			return false
		}
		for _, c := range group {
			if !isHexDigit(c) {
				return false
			}
		}
	}
	return true
}

func isHexDigit(c rune) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}
