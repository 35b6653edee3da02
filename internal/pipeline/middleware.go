package pipeline

import (
	"html"
	"regexp"
	"strings"

	"github.com/IshaanNene/BreedStalk/internal/types"
)

// SanitizeMiddleware strips markup left in field values, decodes HTML
// entities and collapses runs of whitespace to a single space.
type SanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewSanitizeMiddleware() *SanitizeMiddleware {
	return &SanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *SanitizeMiddleware) Name() string { return "sanitize" }

func (m *SanitizeMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for _, key := range rec.Keys() {
		if s := rec.GetString(key); s != "" {
			cleaned := m.stripRe.ReplaceAllString(s, "")
			cleaned = html.UnescapeString(cleaned)
			cleaned = strings.Join(strings.Fields(cleaned), " ")
			rec.Set(key, cleaned)
		}
	}
	return rec, nil
}
