package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shouni/slide-gen-kit/pkg/domain"
	"github.com/shouni/slide-gen-kit/pkg/prompt"
)

// GenerateOutline はアイデアプロンプトからスライドの大綱を発案します。
func (s *Service) GenerateOutline(ctx context.Context, pctx domain.ProjectContext, language string) ([]domain.OutlineItem, error) {
	var outline []domain.OutlineItem
	if err := s.GenerateJSON(ctx, prompt.OutlineGeneration(pctx, language), &outline); err != nil {
		return nil, err
	}
	return outline, nil
}

// ParseOutlineText はユーザー提供の大綱テキストを、内容を変えずに
// 構造化します。
func (s *Service) ParseOutlineText(ctx context.Context, pctx domain.ProjectContext, language string) ([]domain.OutlineItem, error) {
	var outline []domain.OutlineItem
	if err := s.GenerateJSON(ctx, prompt.OutlineParsing(pctx, language), &outline); err != nil {
		return nil, err
	}
	return outline, nil
}

// ParseDescriptionToOutline は説明文全体から大綱構造を復元します。
func (s *Service) ParseDescriptionToOutline(ctx context.Context, pctx domain.ProjectContext, language string) ([]domain.OutlineItem, error) {
	var outline []domain.OutlineItem
	if err := s.GenerateJSON(ctx, prompt.DescriptionToOutline(pctx, language), &outline); err != nil {
		return nil, err
	}
	return outline, nil
}

// ParseDescriptionToPageDescriptions は説明文全体を大綱のページ数に
// 合わせて切り分けます。
func (s *Service) ParseDescriptionToPageDescriptions(ctx context.Context, pctx domain.ProjectContext, outline []domain.OutlineItem, language string) ([]string, error) {
	var raw []any
	if err := s.GenerateJSON(ctx, prompt.DescriptionSplit(pctx, outline, language), &raw); err != nil {
		return nil, err
	}
	return toStringSlice(raw)
}

// FlattenOutline は大綱をページの平坦なリストに展開します。順序は
// 元のまま保持され、パート配下のページにはパート名が焼き込まれます。
func FlattenOutline(outline []domain.OutlineItem) []domain.PageOutline {
	pages := make([]domain.PageOutline, 0, len(outline))
	for _, item := range outline {
		if item.Part != nil {
			for _, page := range item.Part.Pages {
				pages = append(pages, page.WithPart(item.Part.Name))
			}
			continue
		}
		if item.Page != nil {
			pages = append(pages, *item.Page)
		}
	}
	return pages
}

// GeneratePageDescription は1ページ分の内容説明を生成します。
func (s *Service) GeneratePageDescription(ctx context.Context, pctx domain.ProjectContext, outline []domain.OutlineItem, page domain.PageOutline, pageIndex int, language string) (string, error) {
	textProvider, err := s.factory.TextProvider(ctx)
	if err != nil {
		return "", err
	}

	descPrompt := prompt.PageDescription(pctx, outline, page, pageIndex, language)
	return textProvider.GenerateText(ctx, descPrompt, s.textThinkingBudget())
}

// RefineOutline はユーザー要望に従って既存の大綱を修正します。
func (s *Service) RefineOutline(ctx context.Context, currentOutline []domain.OutlineItem, userRequirement string, pctx domain.ProjectContext, previousRequirements []string, language string) ([]domain.OutlineItem, error) {
	var outline []domain.OutlineItem
	p := prompt.OutlineRefinement(currentOutline, userRequirement, pctx, previousRequirements, language)
	if err := s.GenerateJSON(ctx, p, &outline); err != nil {
		return nil, err
	}
	return outline, nil
}

// RefineDescriptions はユーザー要望に従って既存のページ説明群を
// 修正します。
func (s *Service) RefineDescriptions(ctx context.Context, current []domain.PageDescription, userRequirement string, pctx domain.ProjectContext, outline []domain.OutlineItem, previousRequirements []string, language string) ([]string, error) {
	var raw []any
	p := prompt.DescriptionsRefinement(current, userRequirement, pctx, outline, previousRequirements, language)
	if err := s.GenerateJSON(ctx, p, &raw); err != nil {
		return nil, err
	}
	return toStringSlice(raw)
}

// toStringSlice はモデルが文字列以外を混ぜて返した場合もJSON表現に
// 落として文字列リストに揃えます。
func toStringSlice(raw []any) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("ページ説明を文字列に変換できませんでした: %w", err)
		}
		out = append(out, string(data))
	}
	return out, nil
}
