package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/slide-gen-kit/pkg/config"
)

func openAISettings() config.Settings {
	s := config.Defaults()
	s.ProviderFormat = config.FormatOpenAI
	s.APIKey = "test-key"
	s.TextModel = "gpt-test"
	s.ImageModel = "gpt-image-test"
	return s
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("設定が同じ間はキャッシュ済みの組を返す", func(t *testing.T) {
		store := config.NewStore(openAISettings())
		factory, err := NewFactory(store, &mockFetcher{})
		require.NoError(t, err)

		text1, image1, err := factory.Providers(ctx)
		require.NoError(t, err)
		text2, image2, err := factory.Providers(ctx)
		require.NoError(t, err)

		assert.Same(t, text1, text2)
		assert.Same(t, image1, image2)
	})

	t.Run("設定の指紋が変われば作り直される", func(t *testing.T) {
		store := config.NewStore(openAISettings())
		factory, err := NewFactory(store, &mockFetcher{})
		require.NoError(t, err)

		text1, err := factory.TextProvider(ctx)
		require.NoError(t, err)

		store.Update(func(s *config.Settings) { s.TextModel = "gpt-other" })

		text2, err := factory.TextProvider(ctx)
		require.NoError(t, err)
		assert.NotSame(t, text1, text2)
	})

	t.Run("Invalidate後は同じ設定でも作り直される", func(t *testing.T) {
		store := config.NewStore(openAISettings())
		factory, err := NewFactory(store, &mockFetcher{})
		require.NoError(t, err)

		text1, err := factory.TextProvider(ctx)
		require.NoError(t, err)

		factory.Invalidate()

		text2, err := factory.TextProvider(ctx)
		require.NoError(t, err)
		assert.NotSame(t, text1, text2)
	})

	t.Run("キャプションプロバイダも同じキャッシュを共有する", func(t *testing.T) {
		store := config.NewStore(openAISettings())
		factory, err := NewFactory(store, &mockFetcher{})
		require.NoError(t, err)

		caption1, err := factory.CaptionProvider(ctx)
		require.NoError(t, err)
		caption2, err := factory.CaptionProvider(ctx)
		require.NoError(t, err)
		assert.Same(t, caption1, caption2)

		text, err := factory.TextProvider(ctx)
		require.NoError(t, err)
		assert.NotSame(t, text, caption1, "キャプションは別モデルの別プロバイダ")
	})

	t.Run("キャプションモデル未設定時はテキストモデルを使う", func(t *testing.T) {
		s := openAISettings()
		s.CaptionModel = ""
		store := config.NewStore(s)
		factory, err := NewFactory(store, &mockFetcher{})
		require.NoError(t, err)

		caption, err := factory.CaptionProvider(ctx)
		require.NoError(t, err)
		assert.NotNil(t, caption)
	})

	t.Run("未知のプロバイダ形式はエラー", func(t *testing.T) {
		s := openAISettings()
		s.ProviderFormat = config.ProviderFormat("unknown")
		store := config.NewStore(s)
		factory, err := NewFactory(store, &mockFetcher{})
		require.NoError(t, err)

		_, _, err = factory.Providers(ctx)
		assert.Error(t, err)
	})

	t.Run("依存が欠けていれば生成できない", func(t *testing.T) {
		_, err := NewFactory(nil, &mockFetcher{})
		assert.Error(t, err)

		_, err = NewFactory(config.NewStore(config.Defaults()), nil)
		assert.Error(t, err)
	})
}
