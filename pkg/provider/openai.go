package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/shouni/slide-gen-kit/pkg/domain"
	"github.com/shouni/slide-gen-kit/pkg/extract"
	"github.com/shouni/slide-gen-kit/pkg/imgutil"
)

// 参照画像を data URL 化する際のJPEG品質。
const refImageJPEGQuality = 95

// NewOpenAIClient はチャット補完互換バックエンド用のクライアントを
// 構築します。タイムアウトとSDKレベルの再試行は設定値から取ります。
func NewOpenAIClient(cfg Config) openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIBase != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIBase))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	return openai.NewClient(opts...)
}

// OpenAITextProvider はチャット補完互換APIによるテキスト生成です。
// 思考予算はこの形式では表現できないため黙って無視します。
type OpenAITextProvider struct {
	client openai.Client
	model  string
}

// NewOpenAITextProvider は OpenAITextProvider を初期化します。
func NewOpenAITextProvider(client openai.Client, model string) (*OpenAITextProvider, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &OpenAITextProvider{client: client, model: model}, nil
}

// GenerateText はプロンプトからテキストを生成します。
func (p *OpenAITextProvider) GenerateText(ctx context.Context, prompt string, thinkingBudget int32) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", &TransportError{Op: "チャット補完テキスト生成", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &extract.NoValidResponseError{Detail: "choices が空です"}
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateWithImage はこの形式では未実装です。呼び出し側は
// SupportsImageInput で事前に判定してください。
func (p *OpenAITextProvider) GenerateWithImage(ctx context.Context, prompt, imagePath string, thinkingBudget int32) (string, error) {
	return "", &UnsupportedCapabilityError{Capability: "画像つきテキスト生成"}
}

// SupportsImageInput は常に false です。
func (p *OpenAITextProvider) SupportsImageInput() bool { return false }

// OpenAIImageProvider はチャット補完互換APIによる画像生成です。
// 応答はテキスト形で返るため、抽出層で画像を掘り出します。
// 解像度ティアはこの形式では 1K 固定で、要求値は黙って無視されます
// （呼び出し側が分岐せずに済ませるための互換仕様です）。
type OpenAIImageProvider struct {
	client  openai.Client
	model   string
	fetcher extract.Fetcher
}

// NewOpenAIImageProvider は OpenAIImageProvider を初期化します。
// fetcher は応答中のURLから画像を取得するために必須です。
func NewOpenAIImageProvider(client openai.Client, model string, fetcher extract.Fetcher) (*OpenAIImageProvider, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &OpenAIImageProvider{client: client, model: model, fetcher: fetcher}, nil
}

// GenerateImage は参照画像を data URL として埋め込み、チャット補完
// APIに画像生成を要求します。
func (p *OpenAIImageProvider) GenerateImage(ctx context.Context, req ImageRequest) (*domain.Image, error) {
	params := buildImageParams(p.model, req)

	slog.DebugContext(ctx, "チャット補完形式で画像生成を要求します",
		"model", p.model, "ref_count", len(req.RefImages), "aspect_ratio", req.AspectRatio)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &TransportError{Op: "チャット補完画像生成", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &extract.NoValidResponseError{Detail: "choices が空です"}
	}

	message := resp.Choices[0].Message
	return extract.Image(ctx, messageToResponse(message), p.fetcher)
}

// buildImageParams はリクエストパラメータを組み立てる純粋関数です。
// 参照画像は宣言順のまま先に並べ、プロンプトを最後に置きます。
func buildImageParams(model string, req ImageRequest) openai.ChatCompletionNewParams {
	content := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.RefImages)+1)
	for _, ref := range req.RefImages {
		if ref.Empty() {
			continue
		}
		dataURL, err := imgutil.JPEGDataURL(ref.Data, refImageJPEGQuality)
		if err != nil {
			// 再エンコードできない形式は元のバイト列のまま埋め込みます。
			dataURL = imgutil.DataURL(ref.MIMEType, ref.Data)
		}
		content = append(content, openai.ImageContentPart(
			openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL},
		))
	}
	content = append(content, openai.TextContentPart(req.Prompt))

	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf("aspect_ratio=%s", req.AspectRatio)),
			openai.UserMessage(content),
		},
		Modalities: []string{"text", "image"},
	}
}

// messageToResponse は応答メッセージを抽出用の正規化形に写します。
// プロキシ固有の multi_mod_content / images 拡張フィールドも拾います。
func messageToResponse(message openai.ChatCompletionMessage) extract.Response {
	resp := extract.Response{Text: message.Content}

	if field, ok := message.JSON.ExtraFields["multi_mod_content"]; ok {
		for _, part := range gjson.Parse(field.Raw()).Array() {
			if data := part.Get("inline_data.data"); data.Exists() {
				decoded, err := base64.StdEncoding.DecodeString(data.String())
				if err != nil {
					slog.Warn("multi_mod_content のインラインデータをデコードできませんでした", "error", err)
					continue
				}
				mimeType := part.Get("inline_data.mime_type").String()
				if mimeType == "" {
					mimeType = "image/png"
				}
				resp.Parts = append(resp.Parts, extract.Part{
					Inline: &domain.Image{Data: decoded, MIMEType: mimeType},
				})
				continue
			}
			if url := part.Get("image_url.url"); url.Exists() {
				resp.Parts = append(resp.Parts, extract.Part{ImageURL: url.String()})
				continue
			}
			if text := part.Get("text"); text.Exists() {
				resp.Parts = append(resp.Parts, extract.Part{Text: text.String()})
			}
		}
	}

	if field, ok := message.JSON.ExtraFields["images"]; ok {
		for _, entry := range gjson.Parse(field.Raw()).Array() {
			if url := entry.Get("image_url.url"); url.Exists() {
				resp.Parts = append(resp.Parts, extract.Part{ImageURL: url.String()})
			}
		}
	}

	return resp
}
