package postgres

import (
	"encoding/json"

	"github.com/deskline/billing/internal/domain"
)

// nullIfEmpty maps the domain's empty-string convention to SQL NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func marshalMetadata(metadata domain.JSON) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	return json.Marshal(metadata)
}
