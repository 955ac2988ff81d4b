package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestCandidateToResponse(t *testing.T) {
	t.Run("インライン・URL・テキストが正規化される", func(t *testing.T) {
		candidate := &genai.Candidate{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "生成しました"},
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("binary")}},
					{FileData: &genai.FileData{FileURI: "https://files.example.com/gen.png"}},
				},
			},
		}

		resp := candidateToResponse(candidate)

		require.Len(t, resp.Parts, 3)
		assert.Equal(t, "生成しました", resp.Parts[0].Text)
		require.NotNil(t, resp.Parts[1].Inline)
		assert.Equal(t, "image/png", resp.Parts[1].Inline.MIMEType)
		assert.Equal(t, "https://files.example.com/gen.png", resp.Parts[2].ImageURL)
	})

	t.Run("Contentが無ければ空の正規化形", func(t *testing.T) {
		resp := candidateToResponse(&genai.Candidate{})
		assert.Empty(t, resp.Parts)
	})

	t.Run("空のインラインデータは無視される", func(t *testing.T) {
		candidate := &genai.Candidate{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{InlineData: &genai.Blob{MIMEType: "image/png"}},
				},
			},
		}
		assert.Empty(t, candidateToResponse(candidate).Parts)
	})
}

func TestThinkingConfig(t *testing.T) {
	t.Run("予算0以下では推論モードを構成しない", func(t *testing.T) {
		assert.Nil(t, thinkingConfig(0))
		assert.Nil(t, thinkingConfig(-1))
	})

	t.Run("正の予算ではThinkingBudgetが設定される", func(t *testing.T) {
		cfg := thinkingConfig(1024)
		require.NotNil(t, cfg)
		require.NotNil(t, cfg.ThinkingConfig)
		require.NotNil(t, cfg.ThinkingConfig.ThinkingBudget)
		assert.Equal(t, int32(1024), *cfg.ThinkingConfig.ThinkingBudget)
	})
}
