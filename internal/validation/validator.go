package validation

import (
	"fmt"
	"regexp"
	"strings"

	"vidquiz/internal/domain"
)

// videoURLPatterns covers the supported YouTube URL shapes. The capture group
// is the video ID in every pattern.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([\w-]+)`),
	regexp.MustCompile(`youtu\.be/([\w-]+)`),
	regexp.MustCompile(`youtube\.com/embed/([\w-]+)`),
	regexp.MustCompile(`youtube\.com/v/([\w-]+)`),
}

// ParseVideoURL validates rawURL against the supported video host patterns and
// returns a normalized VideoReference. It fails with an INVALID_URL domain
// error; no network access happens here.
func ParseVideoURL(rawURL string) (domain.VideoReference, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return domain.VideoReference{}, domain.NewInvalidURLError(rawURL)
	}

	for _, pattern := range videoURLPatterns {
		if match := pattern.FindStringSubmatch(trimmed); match != nil {
			videoID := match[1]
			return domain.VideoReference{
				URL:     fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
				VideoID: videoID,
			}, nil
		}
	}

	return domain.VideoReference{}, domain.NewInvalidURLError(rawURL)
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}

// ValidateQuizID validates a quiz ID path parameter.
func ValidateQuizID(id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewInvalidInputError("quiz id is required")
	}
	if !isValidULID(id) {
		return domain.NewInvalidInputError(fmt.Sprintf("invalid quiz id format: %s", id))
	}
	return nil
}
