// Package extract は形の定まらないモデル応答（インラインバイナリ、
// 構造化マルチモーダルパーツ、markdown画像リンクやURLを含むプレーン
// テキスト）から単一の画像を掘り出します。抽出ロジックは純粋関数の
// 集まりで、URL取得は差し替え可能な Fetcher に委ねます。
package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/shouni/slide-gen-kit/pkg/domain"
)

// Fetcher は抽出時のURL取得コラボレーターです。go-http-kit の
// ClientInterface と互換のシグネチャにしてあります。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Part は構造化マルチモーダル応答の1要素です。
type Part struct {
	Inline   *domain.Image
	ImageURL string
	Text     string
}

// Response はプロバイダ応答の正規化形です。各プロバイダがSDK固有の
// 応答オブジェクトからこの形に写してから Image に渡します。
type Response struct {
	Parts []Part
	Text  string
}

var (
	markdownImageRe = regexp.MustCompile(`!\[.*?\]\((https?://[^\s)]+)\)`)
	bareImageURLRe  = regexp.MustCompile(`(?i)(https?://[^\s)\]]+\.(?:png|jpg|jpeg|gif|webp|bmp)(?:\?[^\s)\]]*)?)`)
	dataURLRe       = regexp.MustCompile(`data:image/[^;]+;base64,([A-Za-z0-9+/=]+)`)
)

// Image は抽出優先順位に従って応答から画像を1枚取り出します。
//  1. インラインバイナリを持つパーツ
//  2. URL（data または http(s)）を持つパーツ
//  3. テキストの掘り出し: markdown画像 → 拡張子つき素のURL → base64 data URL
//
// markdown一致のURL取得に失敗した場合は次の規則へ落ちます。全規則で
// 何も得られなければ NoImageFoundError を返します。
func Image(ctx context.Context, resp Response, fetcher Fetcher) (*domain.Image, error) {
	// 規則1: インラインバイナリ優先
	for _, part := range resp.Parts {
		if part.Inline != nil && !part.Inline.Empty() {
			return part.Inline, nil
		}
	}

	// 規則2: 構造化パーツ内のURL
	for _, part := range resp.Parts {
		if part.ImageURL == "" {
			continue
		}
		if img, err := imageFromURL(ctx, part.ImageURL, fetcher); err == nil {
			return img, nil
		} else {
			slog.WarnContext(ctx, "構造化パーツの画像URL取得に失敗しました。次の規則へ進みます",
				"url", part.ImageURL, "error", err)
		}
	}

	// 規則3: テキストの掘り出し
	text := resp.Text
	if text == "" {
		text = joinPartTexts(resp.Parts)
	}
	if img := mineText(ctx, text, fetcher); img != nil {
		return img, nil
	}

	return nil, &NoImageFoundError{Shape: shape(resp)}
}

// mineText はプレーン文字列からの抽出です。markdown画像、素の画像URL、
// 埋め込みdata URLの順に最初の一致を使います。
func mineText(ctx context.Context, text string, fetcher Fetcher) *domain.Image {
	if text == "" {
		return nil
	}

	if m := markdownImageRe.FindStringSubmatch(text); m != nil {
		if img, err := imageFromURL(ctx, m[1], fetcher); err == nil {
			return img
		} else {
			slog.WarnContext(ctx, "markdown画像URLの取得に失敗しました。次の規則へ進みます",
				"url", m[1], "error", err)
		}
	}

	if m := bareImageURLRe.FindStringSubmatch(text); m != nil {
		if img, err := imageFromURL(ctx, m[1], fetcher); err == nil {
			return img
		} else {
			slog.WarnContext(ctx, "素の画像URLの取得に失敗しました。次の規則へ進みます",
				"url", m[1], "error", err)
		}
	}

	if m := dataURLRe.FindString(text); m != "" {
		if img, err := DecodeDataURL(m); err == nil {
			return img
		} else {
			slog.WarnContext(ctx, "埋め込みdata URLのデコードに失敗しました", "error", err)
		}
	}

	return nil
}

// imageFromURL は data URL のデコードまたは http(s) URL の取得を行います。
func imageFromURL(ctx context.Context, rawURL string, fetcher Fetcher) (*domain.Image, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return DecodeDataURL(rawURL)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("URL取得が構成されていません: %s", rawURL)
	}
	data, err := fetcher.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("取得したデータが画像ではありません (mime: %s)", mimeType)
	}
	return &domain.Image{Data: data, MIMEType: mimeType}, nil
}

// DecodeDataURL は data:image/...;base64,... 形式の文字列を画像にします。
func DecodeDataURL(rawURL string) (*domain.Image, error) {
	rest, ok := strings.CutPrefix(rawURL, "data:")
	if !ok {
		return nil, fmt.Errorf("data URL ではありません")
	}
	mimeType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, fmt.Errorf("base64 エンコードの data URL ではありません")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("画像以外の data URL です (mime: %s)", mimeType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64 デコードに失敗しました: %w", err)
	}
	return &domain.Image{Data: data, MIMEType: mimeType}, nil
}

func joinPartTexts(parts []Part) string {
	var b strings.Builder
	for _, part := range parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// shape は診断用に応答の形状を要約します。
func shape(resp Response) string {
	inline, urls, texts := 0, 0, 0
	for _, p := range resp.Parts {
		if p.Inline != nil {
			inline++
		}
		if p.ImageURL != "" {
			urls++
		}
		if p.Text != "" {
			texts++
		}
	}
	return fmt.Sprintf("parts=%d inline=%d urls=%d text_parts=%d text_len=%d",
		len(resp.Parts), inline, urls, texts, len(resp.Text))
}
