package server

import (
	"fmt"
	"strings"
)

// normalizeProviderName is the name the score server sink and catalog report under in
// metrics and logs. Without a configured name it is derived from the provider type.
func normalizeProviderName(raw string, provider any) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	if provider != nil {
		return strings.ToLower(fmt.Sprintf("%T", provider))
	}
	return "provider"
}
