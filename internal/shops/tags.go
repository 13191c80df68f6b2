package shops

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// TagFormat identifies which encoding a stored draft-order tag value used.
// The column is free-form text and has historically held a JSON array
// literal, a comma-separated list, or a single tag.
type TagFormat string

const (
	TagFormatJSON    TagFormat = "json"
	TagFormatCSV     TagFormat = "csv"
	TagFormatSingle  TagFormat = "single"
	TagFormatDefault TagFormat = "default"
)

// DefaultDraftOrderTags is applied when a shop has no usable tag config.
var DefaultDraftOrderTags = []string{"International-Quote"}

// ParseDraftOrderTags resolves the stored tag value into an ordered tag
// list, reporting which encoding branch fired. Unset or unparseable
// values fall back to DefaultDraftOrderTags.
func ParseDraftOrderTags(raw string) ([]string, TagFormat) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return append([]string(nil), DefaultDraftOrderTags...), TagFormatDefault
	}

	if strings.HasPrefix(value, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			tags := make([]string, 0, len(parsed))
			for _, tag := range parsed {
				if tag = strings.TrimSpace(tag); tag != "" {
					tags = append(tags, tag)
				}
			}
			if len(tags) > 0 {
				return tags, TagFormatJSON
			}
		}
		return append([]string(nil), DefaultDraftOrderTags...), TagFormatDefault
	}

	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		tags := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
		if len(tags) > 0 {
			return tags, TagFormatCSV
		}
		return append([]string(nil), DefaultDraftOrderTags...), TagFormatDefault
	}

	return []string{value}, TagFormatSingle
}

// ResolveTags returns the draft-order tags for a shop, logging which
// parse branch was taken so format migrations can be tracked in the
// wild.
func (s *ShopSettings) ResolveTags(ctx context.Context, logg *logger.Logger) []string {
	raw := ""
	if s != nil {
		raw = s.DraftOrderTags
	}
	tags, format := ParseDraftOrderTags(raw)
	if logg != nil {
		logg.Debug(logg.WithFields(ctx, map[string]any{
			"tag_format": string(format),
			"tag_count":  len(tags),
		}), "resolved draft order tags")
	}
	return tags
}
