package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/slide-gen-kit/pkg/config"
	"github.com/shouni/slide-gen-kit/pkg/extract"
)

// Factory はプロバイダ形式スイッチに従って TextProvider / ImageProvider
// の組を構築します。プロバイダはネットワーククライアントを抱えるため
// 高価で、解決済み設定タプルの指紋をキーにメモ化します。
//
// 設定は呼び出しごとに Source から読み直すため、指紋が変われば次の
// 取得時に自動で作り直されます。加えて設定変更コラボレーターが
// Invalidate を呼べば即座にキャッシュを破棄します。無効化後に古い
// プロバイダが観測されることはありません。
type Factory struct {
	source  config.Source
	fetcher extract.Fetcher

	mu          sync.Mutex
	cached      *providerPair
	fingerprint string
}

type providerPair struct {
	text    TextProvider
	caption TextProvider
	image   ImageProvider
}

// NewFactory は Factory を初期化します。fetcher は応答中のURLから
// 画像を取得するコラボレーターで、チャット補完形式では必須です。
func NewFactory(source config.Source, fetcher extract.Fetcher) (*Factory, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &Factory{source: source, fetcher: fetcher}, nil
}

// Providers は現在の設定に対応するプロバイダの組を返します。
// 設定が前回と同じならキャッシュ済みの組をそのまま返します。
func (f *Factory) Providers(ctx context.Context) (TextProvider, ImageProvider, error) {
	cfg := ConfigFromSettings(f.source.Current())
	fp := cfg.fingerprint()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != nil && f.fingerprint == fp {
		return f.cached.text, f.cached.image, nil
	}

	pair, err := f.build(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("プロバイダを構築しました", "format", cfg.Format,
		"text_model", cfg.TextModel, "image_model", cfg.ImageModel)

	f.cached = pair
	f.fingerprint = fp
	return pair.text, pair.image, nil
}

// TextProvider は現在有効なテキストプロバイダを返します。
func (f *Factory) TextProvider(ctx context.Context) (TextProvider, error) {
	text, _, err := f.Providers(ctx)
	return text, err
}

// ImageProvider は現在有効な画像プロバイダを返します。
func (f *Factory) ImageProvider(ctx context.Context) (ImageProvider, error) {
	_, image, err := f.Providers(ctx)
	return image, err
}

// CaptionProvider は画像キャプション用のテキストプロバイダを返します。
// テキスト生成とは別のモデルを設定できます。
func (f *Factory) CaptionProvider(ctx context.Context) (TextProvider, error) {
	cfg := ConfigFromSettings(f.source.Current())
	fp := cfg.fingerprint()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != nil && f.fingerprint == fp {
		return f.cached.caption, nil
	}

	pair, err := f.build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	f.cached = pair
	f.fingerprint = fp
	return pair.caption, nil
}

// Invalidate はキャッシュ済みのプロバイダを破棄します。認証情報や
// 接続先に影響する設定変更の直後に呼んでください。
func (f *Factory) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cached = nil
	f.fingerprint = ""
}

func (f *Factory) build(ctx context.Context, cfg Config) (*providerPair, error) {
	switch cfg.Format {
	case config.FormatGemini, config.FormatVertex:
		client, err := NewGenAIClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		text, err := NewGenAITextProvider(client, cfg.TextModel, cfg.MaxRetries)
		if err != nil {
			return nil, err
		}
		caption, err := NewGenAITextProvider(client, captionModel(cfg), cfg.MaxRetries)
		if err != nil {
			return nil, err
		}
		image, err := NewGenAIImageProvider(client, cfg.ImageModel, cfg.MaxRetries, f.fetcher)
		if err != nil {
			return nil, err
		}
		return &providerPair{text: text, caption: caption, image: image}, nil

	case config.FormatOpenAI:
		client := NewOpenAIClient(cfg)
		text, err := NewOpenAITextProvider(client, cfg.TextModel)
		if err != nil {
			return nil, err
		}
		caption, err := NewOpenAITextProvider(client, captionModel(cfg))
		if err != nil {
			return nil, err
		}
		image, err := NewOpenAIImageProvider(client, cfg.ImageModel, f.fetcher)
		if err != nil {
			return nil, err
		}
		return &providerPair{text: text, caption: caption, image: image}, nil

	default:
		return nil, fmt.Errorf("未知のプロバイダ形式です: %s", cfg.Format)
	}
}

// captionModel はキャプションモデル未設定時にテキストモデルへ
// フォールバックします。
func captionModel(cfg Config) string {
	if cfg.CaptionModel != "" {
		return cfg.CaptionModel
	}
	return cfg.TextModel
}
