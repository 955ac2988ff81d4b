// Package generator は生成オーケストレーターです。プロンプト組み立て →
// プロバイダ呼び出し → 応答の検証・修復 → 成果物の返却を順に行います。
// 呼び出しをまたぐ可変状態を持たないため、各操作は複数ゴルーチンから
// 同時に呼んでも安全です。
package generator

import (
	"context"
	"fmt"

	"github.com/shouni/slide-gen-kit/pkg/config"
	"github.com/shouni/slide-gen-kit/pkg/provider"
	"github.com/shouni/slide-gen-kit/pkg/refimage"
)

// ProviderSource は現在有効なプロバイダを引く窓口です。通常は
// provider.Factory をそのまま渡します。
type ProviderSource interface {
	TextProvider(ctx context.Context) (provider.TextProvider, error)
	CaptionProvider(ctx context.Context) (provider.TextProvider, error)
	ImageProvider(ctx context.Context) (provider.ImageProvider, error)
}

// Service はスライド生成の高レベル操作（大綱生成、ページ説明生成、
// 画像生成・編集、リファイン）をまとめた窓口です。
type Service struct {
	factory  ProviderSource
	settings config.Source
	refs     *refimage.Resolver
}

// New は Service を初期化します。
func New(factory ProviderSource, settings config.Source, refs *refimage.Resolver) (*Service, error) {
	if factory == nil {
		return nil, fmt.Errorf("factory is required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings is required")
	}
	if refs == nil {
		return nil, fmt.Errorf("refs (refimage.Resolver) is required")
	}
	return &Service{factory: factory, settings: settings, refs: refs}, nil
}

// textThinkingBudget はテキスト生成の思考予算を呼び出し時点の設定から
// 解決します。トグルが無効なら 0（推論モード無効の明示）です。
func (s *Service) textThinkingBudget() int32 {
	st := s.settings.Current()
	if st.EnableTextReasoning {
		return st.TextThinkingBudget
	}
	return 0
}

// imageThinking は画像生成の思考トグルと予算を呼び出し時点の設定から
// 解決します。
func (s *Service) imageThinking() (bool, int32) {
	st := s.settings.Current()
	if st.EnableImageReasoning {
		return true, st.ImageThinkingBudget
	}
	return false, 0
}
