package fallback

import (
	"encoding/base64"
	"log"
	"strconv"
	"strings"
)

const transparentPixelBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mP8/x8AAwMB/6X+ZQAAAABJRU5ErkJggg=="

var transparentPixelBytes []byte

func init() {
	data, err := base64.StdEncoding.DecodeString(transparentPixelBase64)
	if err != nil {
		log.Printf("⚠️ Failed to decode placeholder pixel: %v", err)
		return
	}
	transparentPixelBytes = data
}

// PlaceholderBase64 returns a 1x1 transparent PNG in base64 for slots that have no source image.
func PlaceholderBase64() string {
	return transparentPixelBase64
}

// PlaceholderBytes returns a copy of the transparent PNG bytes.
func PlaceholderBytes() []byte {
	if len(transparentPixelBytes) == 0 {
		return []byte{}
	}
	out := make([]byte, len(transparentPixelBytes))
	copy(out, transparentPixelBytes)
	return out
}

// StringOr runs a fallible string-producing operation and substitutes the
// fallback on failure. Used for optional enhancements (planner, palette) that
// must never fail the primary flow.
func StringOr(label string, fn func() (string, error), fallback string) string {
	value, err := fn()
	if err != nil {
		log.Printf("⚠️ [%s] Degrading to fallback: %v", label, err)
		return fallback
	}
	if strings.TrimSpace(value) == "" {
		log.Printf("⚠️ [%s] Empty result, degrading to fallback", label)
		return fallback
	}
	return value
}

// Do runs a best-effort operation, logging the failure and moving on.
// Used for history persistence and push events after a successful generation.
func Do(label string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("⚠️ [%s] Ignored failure: %v", label, err)
	}
}

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return fallback
}

// SafeInt converts common number shapes into int with a fallback.
func SafeInt(value interface{}, fallback int) int {
	switch v := value.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case float32:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	case int64:
		if v > 0 {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
