package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRubrics(t *testing.T) {
	for _, key := range []string{"screening", "technical", "video"} {
		t.Run(key, func(t *testing.T) {
			prompt, err := Get("rubrics.json", key)
			require.NoError(t, err)
			assert.NotEmpty(t, prompt)
			assert.Contains(t, prompt, "{{.Transcript}}")
		})
	}
}

func TestGetMissingKey(t *testing.T) {
	_, err := Get("rubrics.json", "nonexistent")
	assert.Error(t, err)
}

func TestGetMissingFile(t *testing.T) {
	_, err := Get("missing.json", "screening")
	assert.Error(t, err)
}

func TestMustGetPanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("rubrics.json", "nonexistent")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.CandidateName}}, your link: {{.ConversationURL}}"
	result := Format(template, map[string]string{
		"CandidateName":   "Jane",
		"ConversationURL": "https://example.com/conv",
	})
	assert.Equal(t, "Hello Jane, your link: https://example.com/conv", result)
}

func TestFormatLeavesUnknownPlaceholders(t *testing.T) {
	result := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "x"})
	assert.Equal(t, "x and {{.Unknown}}", result)
}

func TestInviteEmailTemplate(t *testing.T) {
	subject := MustGet("email.json", "invite_subject")
	body := MustGet("email.json", "invite_body")

	assert.Contains(t, subject, "Video Interview")
	assert.Contains(t, body, "{{.CandidateName}}")
	assert.Contains(t, body, "{{.ConversationURL}}")
	// The body is the literal email text; it must not leak template syntax
	// beyond the two placeholders.
	assert.Equal(t, 2, strings.Count(body, "{{."))
}
