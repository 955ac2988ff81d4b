package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/slide-gen-kit/pkg/domain"
	"github.com/shouni/slide-gen-kit/pkg/prompt"
	"github.com/shouni/slide-gen-kit/pkg/provider"
)

// ImageParams は画像生成1回分の要求です。RefImagePath は主参照で、
// 解決後は常に参照リストの先頭に置かれます。AdditionalRefs の各要素は
// ローカルパス・http(s) URL・data URL・内部ファイル参照のいずれかで、
// 解決できないものは警告を残してスキップされます。
type ImageParams struct {
	Prompt         string
	RefImagePath   string
	AspectRatio    string
	Resolution     provider.Resolution
	AdditionalRefs []string
}

// GenerateImage は参照画像を解決し、有効な画像プロバイダで画像を
// 生成します。
func (s *Service) GenerateImage(ctx context.Context, p ImageParams) (*domain.Image, error) {
	st := s.settings.Current()
	if p.AspectRatio == "" {
		p.AspectRatio = st.DefaultAspectRatio
	}
	if p.Resolution == "" {
		p.Resolution = provider.Resolution(st.DefaultResolution)
	}

	refImages := make([]domain.Image, 0, len(p.AdditionalRefs)+1)
	if p.RefImagePath != "" {
		// 主参照は省略できません。解決失敗はエラーです。
		mainRef, err := s.refs.Resolve(ctx, p.RefImagePath)
		if err != nil {
			return nil, fmt.Errorf("主参照画像を読み込めませんでした: %w", err)
		}
		refImages = append(refImages, *mainRef)
	}
	refImages = append(refImages, s.refs.ResolveAll(ctx, p.AdditionalRefs)...)

	imageProvider, err := s.factory.ImageProvider(ctx)
	if err != nil {
		return nil, err
	}

	enableThinking, thinkingBudget := s.imageThinking()
	slog.DebugContext(ctx, "画像生成を開始します",
		"ref_count", len(refImages), "aspect_ratio", p.AspectRatio,
		"resolution", p.Resolution, "thinking", enableThinking)

	img, err := imageProvider.GenerateImage(ctx, provider.ImageRequest{
		Prompt:         p.Prompt,
		RefImages:      refImages,
		AspectRatio:    p.AspectRatio,
		Resolution:     p.Resolution,
		EnableThinking: enableThinking,
		ThinkingBudget: thinkingBudget,
	})
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗しました: %w", err)
	}
	return img, nil
}

// EditImage は既存のスライド画像を自然言語の指示で編集します。現在の
// 画像を主参照として、元の説明文（あれば）を埋め込んだ編集プロンプト
// を組み立てた上で GenerateImage に委譲します。
func (s *Service) EditImage(ctx context.Context, editInstruction, currentImagePath string, aspectRatio string, resolution provider.Resolution, originalDescription string, additionalRefs []string) (*domain.Image, error) {
	if currentImagePath == "" {
		return nil, fmt.Errorf("編集対象の画像パスが指定されていません")
	}
	return s.GenerateImage(ctx, ImageParams{
		Prompt:         prompt.ImageEdit(editInstruction, originalDescription),
		RefImagePath:   currentImagePath,
		AspectRatio:    aspectRatio,
		Resolution:     resolution,
		AdditionalRefs: additionalRefs,
	})
}

// CaptionImage は資料画像の内容説明をキャプションモデルで生成します。
// 有効なプロバイダが画像入力をサポートしない場合は
// UnsupportedCapabilityError を返します。
func (s *Service) CaptionImage(ctx context.Context, imagePath, language string) (string, error) {
	captionProvider, err := s.factory.CaptionProvider(ctx)
	if err != nil {
		return "", err
	}
	if !captionProvider.SupportsImageInput() {
		return "", &provider.UnsupportedCapabilityError{Capability: "画像キャプション生成"}
	}

	caption, err := captionProvider.GenerateWithImage(ctx, prompt.ImageCaption(language), imagePath, s.textThinkingBudget())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(caption), nil
}

// ImagePromptParams は GenerateImagePrompt の入力です。
type ImagePromptParams struct {
	Outline           []domain.OutlineItem
	Page              domain.PageOutline
	PageDesc          string
	PageIndex         int
	HasMaterialImages bool
	ExtraRequirements string
	Language          string
	HasTemplate       bool
}

// GenerateImagePrompt はページの説明文からスライドレンダリング用の
// プロンプトを組み立てます。説明文中の markdown 画像リンクは除去
// されます。画像は参照画像として別経路で渡すため、テキストとして
// 重複させません。
func (s *Service) GenerateImagePrompt(p ImagePromptParams) string {
	currentSection := p.Page.Part
	if currentSection == "" {
		currentSection = p.Page.Title
	}

	return prompt.ImageGeneration(prompt.ImageGenerationParams{
		PageDesc:          prompt.RemoveMarkdownImages(p.PageDesc),
		OutlineText:       prompt.OutlineText(p.Outline),
		CurrentSection:    currentSection,
		PageIndex:         p.PageIndex,
		HasMaterialImages: p.HasMaterialImages,
		ExtraRequirements: p.ExtraRequirements,
		Language:          p.Language,
		HasTemplate:       p.HasTemplate,
	})
}
