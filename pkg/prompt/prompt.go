// Package prompt はプロジェクト文脈・大綱・ページ状態をプロバイダに
// 渡せるプロンプト文字列へ組み立てる純粋関数群です。I/O は行いません。
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shouni/slide-gen-kit/pkg/domain"
)

// outlineFormatSpec はモデルに要求する大綱のワイヤ形式です。
const outlineFormatSpec = `Return a JSON array. Each element is either
a part: {"part": "<section name>", "pages": [{"title": "<page title>", ...descriptive fields...}, ...]}
or a direct page: {"title": "<page title>", ...descriptive fields...}.
Return ONLY the JSON array, no commentary.`

// OutlineGeneration はアイデアから大綱を発案させるプロンプトです。
func OutlineGeneration(pctx domain.ProjectContext, language string) string {
	var b strings.Builder
	b.WriteString("You are an expert presentation planner. Create a slide deck outline for the following request.\n\n")
	fmt.Fprintf(&b, "Request:\n%s\n\n", pctx.SourceText())
	writeReferenceFiles(&b, pctx.ReferenceFiles)
	b.WriteString("Group related pages into parts where it improves the structure. Keep every page focused on one message.\n\n")
	b.WriteString(outlineFormatSpec)
	b.WriteString("\n")
	b.WriteString(languageInstruction(language))
	return b.String()
}

// OutlineParsing はユーザー提供の大綱テキストを、内容を変えずに
// 構造化させるプロンプトです。
func OutlineParsing(pctx domain.ProjectContext, language string) string {
	var b strings.Builder
	b.WriteString("The user has already written a slide outline. Split it into structured pages WITHOUT changing, adding, or removing any content.\n\n")
	fmt.Fprintf(&b, "Outline text:\n%s\n\n", pctx.OutlineText)
	writeReferenceFiles(&b, pctx.ReferenceFiles)
	b.WriteString(outlineFormatSpec)
	b.WriteString("\n")
	b.WriteString(languageInstruction(language))
	return b.String()
}

// PageDescription は1ページ分の内容説明を書かせるプロンプトです。
func PageDescription(pctx domain.ProjectContext, outline []domain.OutlineItem, page domain.PageOutline, pageIndex int, language string) string {
	var b strings.Builder
	b.WriteString("You are writing the content for one slide of a presentation.\n\n")
	fmt.Fprintf(&b, "Overall context:\n%s\n\n", pctx.SourceText())
	fmt.Fprintf(&b, "Full outline:\n%s\n\n", OutlineText(outline))
	fmt.Fprintf(&b, "Current page (page %d): %s", pageIndex, page.Title)
	if page.Part != "" {
		fmt.Fprintf(&b, "\nThis page belongs to: %s", page.Part)
	}
	if len(page.Fields) > 0 {
		if data, err := json.Marshal(page.Fields); err == nil {
			fmt.Fprintf(&b, "\nPage outline details: %s", data)
		}
	}
	b.WriteString("\n\n")
	writeReferenceFiles(&b, pctx.ReferenceFiles)
	b.WriteString("Write the concrete content of this slide: a headline, the key points, and any figures or data worth visualizing. Plain text or markdown, no JSON.\n")
	b.WriteString(languageInstruction(language))
	return b.String()
}

// ImageGenerationParams は画像生成プロンプト組み立ての入力です。
type ImageGenerationParams struct {
	PageDesc          string
	OutlineText       string
	CurrentSection    string
	PageIndex         int
	HasMaterialImages bool
	ExtraRequirements string
	Language          string
	HasTemplate       bool
}

// ImageGeneration はスライド1枚のレンダリングを指示するプロンプトです。
func ImageGeneration(p ImageGenerationParams) string {
	var b strings.Builder
	b.WriteString("Render a single presentation slide as one image.\n\n")
	fmt.Fprintf(&b, "Deck outline:\n%s\n\n", p.OutlineText)
	fmt.Fprintf(&b, "Current section: %s (page %d)\n\n", p.CurrentSection, p.PageIndex)
	fmt.Fprintf(&b, "Slide content:\n%s\n\n", p.PageDesc)
	if p.HasTemplate {
		b.WriteString("The first reference image is the design template. Follow its layout language, colors, and typography exactly.\n")
	} else {
		b.WriteString("No template is provided. Use a clean, modern, consistent slide design.\n")
	}
	if p.HasMaterialImages {
		b.WriteString("The remaining reference images are content materials. Incorporate them into the slide where the content calls for them.\n")
	}
	if p.ExtraRequirements != "" {
		fmt.Fprintf(&b, "Additional requirements for every slide: %s\n", p.ExtraRequirements)
	}
	b.WriteString("Render all slide text accurately and legibly.\n")
	b.WriteString(languageInstruction(p.Language))
	return b.String()
}

// ImageEdit は既存スライド画像の編集指示プロンプトです。継続性のため
// 元ページの説明文を添えます。
func ImageEdit(editInstruction, originalDescription string) string {
	var b strings.Builder
	b.WriteString("Edit the provided slide image. Keep the overall design, layout, and style unchanged except for the requested edit.\n\n")
	fmt.Fprintf(&b, "Edit instruction:\n%s\n", editInstruction)
	if originalDescription != "" {
		fmt.Fprintf(&b, "\nOriginal slide content, for continuity:\n%s\n", originalDescription)
	}
	return b.String()
}

// ImageCaption は資料画像の内容を短く説明させるプロンプトです。
// 抽出したテキストはスライド素材として markdown に埋め込まれます。
func ImageCaption(language string) string {
	var b strings.Builder
	b.WriteString("Describe this image in one or two sentences so it can be used as a caption in presentation material. ")
	b.WriteString("Mention any data, chart type, or key figures visible. Return only the caption text.\n")
	b.WriteString(languageInstruction(language))
	return b.String()
}

// DescriptionToOutline は説明文全体から大綱を復元させるプロンプトです。
func DescriptionToOutline(pctx domain.ProjectContext, language string) string {
	var b strings.Builder
	b.WriteString("The user has written the full content of a presentation. Derive the slide outline from it WITHOUT inventing new content.\n\n")
	fmt.Fprintf(&b, "Content:\n%s\n\n", pctx.DescriptionText)
	writeReferenceFiles(&b, pctx.ReferenceFiles)
	b.WriteString(outlineFormatSpec)
	b.WriteString("\n")
	b.WriteString(languageInstruction(language))
	return b.String()
}

// DescriptionSplit は説明文全体を大綱のページ数どおりに切り分けさせる
// プロンプトです。
func DescriptionSplit(pctx domain.ProjectContext, outline []domain.OutlineItem, language string) string {
	var b strings.Builder
	b.WriteString("Split the user's presentation content into per-page descriptions matching the outline below. Preserve the original wording; do not rewrite.\n\n")
	fmt.Fprintf(&b, "Content:\n%s\n\n", pctx.DescriptionText)
	fmt.Fprintf(&b, "Outline:\n%s\n\n", OutlineText(outline))
	b.WriteString("Return a JSON array of strings, one per page, in outline order. Return ONLY the JSON array.\n")
	b.WriteString(languageInstruction(language))
	return b.String()
}

// OutlineRefinement は既存大綱へのユーザー要望を反映させるプロンプトです。
func OutlineRefinement(currentOutline []domain.OutlineItem, userRequirement string, pctx domain.ProjectContext, previousRequirements []string, language string) string {
	var b strings.Builder
	b.WriteString("Revise the slide outline below according to the user's new requirement. Keep everything the requirement does not touch.\n\n")
	if data, err := json.MarshalIndent(currentOutline, "", "  "); err == nil {
		fmt.Fprintf(&b, "Current outline:\n%s\n\n", data)
	}
	fmt.Fprintf(&b, "Project context:\n%s\n\n", pctx.SourceText())
	writePreviousRequirements(&b, previousRequirements)
	fmt.Fprintf(&b, "New requirement:\n%s\n\n", userRequirement)
	b.WriteString(outlineFormatSpec)
	b.WriteString("\n")
	b.WriteString(languageInstruction(language))
	return b.String()
}

// DescriptionsRefinement は既存のページ説明群へのユーザー要望を
// 反映させるプロンプトです。
func DescriptionsRefinement(current []domain.PageDescription, userRequirement string, pctx domain.ProjectContext, outline []domain.OutlineItem, previousRequirements []string, language string) string {
	var b strings.Builder
	b.WriteString("Revise the per-page slide descriptions below according to the user's new requirement. Keep pages the requirement does not touch unchanged.\n\n")
	if data, err := json.MarshalIndent(current, "", "  "); err == nil {
		fmt.Fprintf(&b, "Current descriptions:\n%s\n\n", data)
	}
	if len(outline) > 0 {
		fmt.Fprintf(&b, "Outline:\n%s\n\n", OutlineText(outline))
	}
	fmt.Fprintf(&b, "Project context:\n%s\n\n", pctx.SourceText())
	writePreviousRequirements(&b, previousRequirements)
	fmt.Fprintf(&b, "New requirement:\n%s\n\n", userRequirement)
	b.WriteString("Return a JSON array of strings, one per page, in the same order and count as the input. Return ONLY the JSON array.\n")
	b.WriteString(languageInstruction(language))
	return b.String()
}

// OutlineText は大綱を番号つきの見出しテキストに整形します。
func OutlineText(outline []domain.OutlineItem) string {
	lines := make([]string, 0, len(outline))
	for i, item := range outline {
		title := item.Title()
		if title == "" {
			title = "Untitled"
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, title))
	}
	return strings.Join(lines, "\n")
}

func writeReferenceFiles(b *strings.Builder, refs []domain.ReferenceFile) {
	if len(refs) == 0 {
		return
	}
	b.WriteString("Reference materials:\n")
	for _, ref := range refs {
		fmt.Fprintf(b, "--- %s ---\n%s\n", ref.Filename, ref.Content)
	}
	b.WriteString("\n")
}

func writePreviousRequirements(b *strings.Builder, reqs []string) {
	if len(reqs) == 0 {
		return
	}
	b.WriteString("Requirements already applied in earlier revisions:\n")
	for _, req := range reqs {
		fmt.Fprintf(b, "- %s\n", req)
	}
	b.WriteString("\n")
}

// languageInstruction は出力言語の指定行を返します。auto は入力言語に
// 合わせる指示になります。
func languageInstruction(language string) string {
	switch language {
	case "", "zh":
		return "Respond in Simplified Chinese."
	case "ja":
		return "Respond in Japanese."
	case "en":
		return "Respond in English."
	case "auto":
		return "Respond in the same language as the user's input."
	default:
		return fmt.Sprintf("Respond in %s.", language)
	}
}
