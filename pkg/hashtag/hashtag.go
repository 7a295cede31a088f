// Package hashtag parses hashtags out of free-text captions.
package hashtag

import (
	"regexp"
	"strings"

	"igcrawler/pkg/models"
)

// pattern matches a '#' followed by either a bracketed run (which may hold
// spaces) or a run of non-whitespace. The leading \S* makes the last '#' of
// a glued token win, so "a#b#c" yields "c".
var pattern = regexp.MustCompile(`(?i)\S*#(\[[^\]]+\]|\S+)`)

// Extract returns the distinct hashtags of caption in order of first
// occurrence. A bracketed run is kept as written, brackets included.
// Duplicates are detected case-insensitively and the first spelling is kept.
// Counts are zero since a caption says nothing about tag popularity. The
// result is never nil.
func Extract(caption string) []models.Tag {
	tags := make([]models.Tag, 0)
	if caption == "" {
		return tags
	}

	seen := make(map[string]struct{})
	for _, match := range pattern.FindAllStringSubmatch(caption, -1) {
		name := match[1]
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, models.Tag{Name: name})
	}

	return tags
}
