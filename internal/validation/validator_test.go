package validation

import (
	"testing"

	"vidquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVideoURL_SupportedShapes(t *testing.T) {
	cases := []struct {
		name   string
		rawURL string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"legacy v url", "https://www.youtube.com/v/dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ"},
		{"surrounding whitespace", "  https://youtu.be/dQw4w9WgXcQ  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := ParseVideoURL(tc.rawURL)
			require.NoError(t, err)
			assert.Equal(t, "dQw4w9WgXcQ", ref.VideoID)
			assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", ref.URL)
		})
	}
}

func TestParseVideoURL_RejectsUnsupportedInput(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not a url at all",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://vimeo.com/123456789",
		"https://www.youtube.com/",
		"https://www.youtube.com/watch",
	}

	for _, rawURL := range cases {
		_, err := ParseVideoURL(rawURL)
		require.Error(t, err, "input: %q", rawURL)
		assert.Equal(t, domain.CodeInvalidURL, domain.CodeOf(err), "input: %q", rawURL)
	}
}

func TestValidateQuizID(t *testing.T) {
	assert.NoError(t, ValidateQuizID("01ARZ3NDEKTSV4RRFFQ69G5FAV"))

	for _, id := range []string{
		"",
		"   ",
		"too-short",
		"01ARZ3NDEKTSV4RRFFQ69G5FA",   // 25 chars
		"01ARZ3NDEKTSV4RRFFQ69G5FAVX", // 27 chars
		"01arz3ndektsv4rrffq69g5fav",  // lowercase
		"01ARZ3NDEKTSV4RRFFQ69G5FAI",  // I is outside the ULID alphabet
	} {
		err := ValidateQuizID(id)
		require.Error(t, err, "id: %q", id)
		assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err), "id: %q", id)
	}
}
