// Package provider は異種のモデルAPI（ネイティブマルチモーダル形式と
// チャット補完互換形式）を共通のインターフェースに正規化します。
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/slide-gen-kit/pkg/config"
	"github.com/shouni/slide-gen-kit/pkg/domain"
)

// Resolution は画像の解像度ティアです。バックエンドが対応しない
// ティアは黙って上限に丸められます（互換性のための仕様です）。
type Resolution string

const (
	Resolution1K Resolution = "1K"
	Resolution2K Resolution = "2K"
	Resolution4K Resolution = "4K"
)

// TextProvider はテキスト生成バックエンドの共通契約です。
// thinkingBudget = 0 は拡張推論モードの無効化を意味し、対応しない
// バックエンドは値を黙って無視します（エラーにはしません）。
type TextProvider interface {
	GenerateText(ctx context.Context, prompt string, thinkingBudget int32) (string, error)
	// GenerateWithImage は画像つきテキスト生成です。SupportsImageInput が
	// false の実装では UnsupportedCapabilityError を返します。
	GenerateWithImage(ctx context.Context, prompt, imagePath string, thinkingBudget int32) (string, error)
	// SupportsImageInput は画像入力の可否を返します。構築時に確定し、
	// 呼び出しごとのリフレクション判定はしません。
	SupportsImageInput() bool
}

// ImageRequest は画像生成1回分の要求です。RefImages の順序は末端まで
// 保持されます。先頭が主参照として扱われるバックエンドがあるためです。
type ImageRequest struct {
	Prompt         string
	RefImages      []domain.Image
	AspectRatio    string
	Resolution     Resolution
	EnableThinking bool
	ThinkingBudget int32
}

// ImageProvider は画像生成バックエンドの共通契約です。
// 戻り値が (nil, nil) になるのはバックエンドが明示的に空の結果を
// 返した場合だけで、通信・解析の失敗は必ず型付きエラーになります。
type ImageProvider interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*domain.Image, error)
}

// Config はプロバイダ構築に使う解決済みの設定タプルです。構築後は不変です。
type Config struct {
	Format         config.ProviderFormat
	APIKey         string
	APIBase        string
	TextModel      string
	ImageModel     string
	CaptionModel   string
	VertexProject  string
	VertexLocation string
	Timeout        time.Duration
	MaxRetries     int
}

// ConfigFromSettings は実行時設定からプロバイダ設定を切り出します。
// 推論トグルは呼び出し時に解決されるため、ここには含めません。
func ConfigFromSettings(s config.Settings) Config {
	return Config{
		Format:         s.ProviderFormat,
		APIKey:         s.APIKey,
		APIBase:        s.APIBase,
		TextModel:      s.TextModel,
		ImageModel:     s.ImageModel,
		CaptionModel:   s.CaptionModel,
		VertexProject:  s.VertexProject,
		VertexLocation: s.VertexLocation,
		Timeout:        s.Timeout,
		MaxRetries:     s.MaxRetries,
	}
}

// fingerprint はキャッシュキーとして使う設定タプルの指紋です。
// プロバイダの挙動に影響する項目をすべて含みます。
func (c Config) fingerprint() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%d",
		c.Format, c.APIKey, c.APIBase, c.TextModel, c.ImageModel, c.CaptionModel,
		c.VertexProject, c.VertexLocation, c.Timeout, c.MaxRetries)
}
