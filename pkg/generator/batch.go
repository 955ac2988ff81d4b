package generator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/slide-gen-kit/pkg/domain"
)

// GenerateAllDescriptions は大綱の全ページ分の説明を固定サイズの
// ワーカープールで並行生成します。プール幅は呼び出し時点の設定
// （DescriptionWorkers）から取り、結果はページ順のまま返します。
func (s *Service) GenerateAllDescriptions(ctx context.Context, pctx domain.ProjectContext, outline []domain.OutlineItem, language string) ([]string, error) {
	pages := FlattenOutline(outline)
	results := make([]string, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(s.settings.Current().DescriptionWorkers))

	for i, page := range pages {
		g.Go(func() error {
			desc, err := s.GeneratePageDescription(gctx, pctx, outline, page, i+1, language)
			if err != nil {
				return err
			}
			results[i] = desc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GenerateAllImages は複数ページの画像生成を固定サイズのワーカー
// プールで並行実行します。結果は要求順のまま返します。
func (s *Service) GenerateAllImages(ctx context.Context, requests []ImageParams) ([]*domain.Image, error) {
	results := make([]*domain.Image, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(s.settings.Current().ImageWorkers))

	for i, req := range requests {
		g.Go(func() error {
			img, err := s.GenerateImage(gctx, req)
			if err != nil {
				return err
			}
			results[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func workerLimit(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
