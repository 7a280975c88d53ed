package trigger

import (
	"strings"
)

const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderSharedSecret  = "X-Shared-Secret"
)

// ParseHeaders turns "Key:Value" strings into a header map. The split
// happens on the first colon only and both sides are trimmed. Strings
// without a colon or with an empty name are dropped. Names match
// case-insensitively and the later entry wins.
func ParseHeaders(headerStrings []string) map[string]string {
	result := make(map[string]string)
	for _, h := range headerStrings {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		setHeader(result, key, strings.TrimSpace(parts[1]))
	}
	return result
}

// BuildHeaders layers the request headers: JSON content type, then the
// bearer token, then the shared secret, then the explicit extras. Later
// layers win on key collision.
func BuildHeaders(bearer, secret string, extra map[string]string) map[string]string {
	headers := map[string]string{
		HeaderContentType: "application/json",
	}
	if bearer != "" {
		headers[HeaderAuthorization] = "Bearer " + bearer
	}
	if secret != "" {
		headers[HeaderSharedSecret] = secret
	}
	for k, v := range extra {
		setHeader(headers, k, v)
	}
	return headers
}

// setHeader stores value under key, replacing any entry whose name differs
// only in case. HTTP header names are case-insensitive.
func setHeader(headers map[string]string, key, value string) {
	for existing := range headers {
		if strings.EqualFold(existing, key) {
			delete(headers, existing)
		}
	}
	headers[key] = value
}
