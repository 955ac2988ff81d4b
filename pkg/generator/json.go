package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/shouni/slide-gen-kit/pkg/provider"
)

// jsonAttempts は構造化出力の検証ループの総試行回数です。プロンプトは
// 変えずに 生成 → 整形 → 解析 のサイクル全体をやり直します。
const jsonAttempts = 3

// 診断用に保持する生応答の最大長。
const rawExcerptLen = 200

// MalformedOutputError はJSONを要求した応答が全試行で解析不能だった
// ことを示します。最後の生応答の抜粋を診断用に保持します。
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("モデル応答をJSONとして解析できませんでした: %v (raw: %s)", e.Err, e.Raw)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// GenerateJSON はテキストプロバイダの応答をJSONとして out にデコード
// します。解析に失敗したら同じプロンプトで生成からやり直し、計
// jsonAttempts 回で打ち切ります。部分的に解析できたデータを返すことは
// ありません。プロバイダのエラー（通信・能力）は再試行せずそのまま
// 返します。トランスポート層の再試行はプロバイダ内部の別予算です。
func (s *Service) GenerateJSON(ctx context.Context, prompt string, out any) error {
	textProvider, err := s.factory.TextProvider(ctx)
	if err != nil {
		return err
	}

	var lastErr error
	var lastRaw string
	for attempt := 1; attempt <= jsonAttempts; attempt++ {
		response, err := textProvider.GenerateText(ctx, prompt, s.textThinkingBudget())
		if err != nil {
			return err
		}

		cleaned := stripCodeFence(response)
		if err := decodeStrict(cleaned, out); err != nil {
			lastErr = err
			lastRaw = excerpt(cleaned)
			slog.WarnContext(ctx, "JSON解析に失敗したため再生成します",
				"attempt", attempt, "error", err, "raw", lastRaw)
			continue
		}
		return nil
	}
	return &MalformedOutputError{Raw: lastRaw, Err: lastErr}
}

// GenerateJSONWithImage は画像つき入力でのJSON生成です。有効なテキスト
// プロバイダが画像入力をサポートしない場合は再試行せず
// UnsupportedCapabilityError を返します。
func (s *Service) GenerateJSONWithImage(ctx context.Context, prompt, imagePath string, out any) error {
	textProvider, err := s.factory.TextProvider(ctx)
	if err != nil {
		return err
	}
	if !textProvider.SupportsImageInput() {
		return &provider.UnsupportedCapabilityError{Capability: "画像つきテキスト生成"}
	}

	var lastErr error
	var lastRaw string
	for attempt := 1; attempt <= jsonAttempts; attempt++ {
		response, err := textProvider.GenerateWithImage(ctx, prompt, imagePath, s.textThinkingBudget())
		if err != nil {
			return err
		}

		cleaned := stripCodeFence(response)
		if err := decodeStrict(cleaned, out); err != nil {
			lastErr = err
			lastRaw = excerpt(cleaned)
			slog.WarnContext(ctx, "JSON解析に失敗したため再生成します（画像つき）",
				"attempt", attempt, "error", err, "raw", lastRaw)
			continue
		}
		return nil
	}
	return &MalformedOutputError{Raw: lastRaw, Err: lastErr}
}

// decodeStrict はいったん新しい値にデコードし、成功したときだけ out へ
// 書き戻します。json.Unmarshal は型エラーでも途中まで書き込むため、
// 失敗した試行の残骸が後続の成功結果に混ざらないようにします。
func decodeStrict(data string, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("デコード先は非nilのポインタである必要があります")
	}

	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal([]byte(data), fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// stripCodeFence は応答の前後にあるフェンスつきコードブロック記号を
// 取り除きます。中身のJSONには手を入れません。
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// excerpt は診断用に応答を切り詰めます。マルチバイト文字を途中で
// 割らないよう、ルーン境界まで戻してから切ります。
func excerpt(text string) string {
	if len(text) <= rawExcerptLen {
		return text
	}
	cut := rawExcerptLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
