package semantic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotejobs-engine/internal/domain"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantRem  bool
		wantConf float64
	}{
		{
			name:     "plain json",
			content:  `{"is_remote": true, "confidence": 0.9, "reason": "télétravail explicite"}`,
			wantRem:  true,
			wantConf: 0.9,
		},
		{
			name:     "markdown fenced",
			content:  "```json\n{\"is_remote\": false, \"confidence\": 0.7, \"reason\": \"présence requise\"}\n```",
			wantRem:  false,
			wantConf: 0.7,
		},
		{
			name:     "prose around json",
			content:  `Here is my analysis: {"is_remote": true, "confidence": 0.85, "reason": "ok"} Hope that helps!`,
			wantRem:  true,
			wantConf: 0.85,
		},
		{
			name:     "string confidence tier",
			content:  `{"is_remote": true, "confidence": "high", "reason": "ok"}`,
			wantRem:  true,
			wantConf: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdict(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRem, got.IsRemote)
			assert.Equal(t, tt.wantConf, got.Confidence)
			assert.NotEmpty(t, got.Reason)
			assert.Equal(t, domain.StageSemanticLive, got.Stage)
		})
	}
}

func TestParseVerdictGarbageIsServiceError(t *testing.T) {
	_, err := parseVerdict("sorry, I cannot help with that")
	require.Error(t, err)
	assert.False(t, retryable(err), "a malformed response is not worth retrying")
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`0.75`, 0.75},
		{`"medium"`, 0.6},
		{`"low"`, 0.3},
		{`"whatever"`, 0.5},
		{`-3`, 0},
		{`17`, 1},
		{``, 0.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseConfidence(json.RawMessage(tt.raw)), "raw=%s", tt.raw)
	}
}

func TestIsRateLimitText(t *testing.T) {
	assert.True(t, isRateLimitText("Error 429 Too Many Requests"))
	assert.True(t, isRateLimitText(`{"error":{"type":"rate_limit_exceeded"}}`))
	assert.False(t, isRateLimitText("invalid api key"))
}
