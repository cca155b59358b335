package gemini

import (
	"context"
	"testing"

	"kondate-planner/internal/core/ai/provider"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Text("**2024-03-01 (金):**\n"),
				genai.Blob{MIMEType: "image/png"},
				genai.Text("朝食: 1.目玉焼き"),
			}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "**2024-03-01 (金):**\n朝食: 1.目玉焼き", text)
}

func TestResponseTextEmpty(t *testing.T) {
	tests := []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
	}
	for _, resp := range tests {
		_, err := responseText(resp)
		assert.ErrorIs(t, err, ErrNoContent)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "gemini-1.5-flash", provider.Params{})
	assert.Error(t, err)
}
