package generativeAI

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveModel(t *testing.T) {
	t.Setenv("GOOGLE_GEMINI_MODEL", "")
	assert.Equal(t, "gemini-2.5-pro", resolveModel("gemini-2.5-pro"))
	assert.Equal(t, defaultModel, resolveModel(""))

	t.Setenv("GOOGLE_GEMINI_MODEL", "gemini-override")
	assert.Equal(t, "gemini-override", resolveModel("gemini-2.5-pro"))
}

func TestNewAIClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")

	_, err := NewAIClient(context.Background(), "gemini-2.0-flash")
	assert.Error(t, err)
}

func TestCleanJSONResponse(t *testing.T) {
	raw := "```json\n{\"places\": []}\n```"
	assert.Equal(t, `{"places": []}`, CleanJSONResponse(raw))

	noisy := "Here you go: {\"places\": [{\"name\":\"x\"}]} hope that helps"
	assert.Equal(t, `{"places": [{"name":"x"}]}`, CleanJSONResponse(noisy))

	assert.Equal(t, "no json here", CleanJSONResponse("no json here"))
}
