package provider

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/slide-gen-kit/pkg/config"
	"github.com/shouni/slide-gen-kit/pkg/domain"
	"github.com/shouni/slide-gen-kit/pkg/extract"
)

// NewGenAIClient は genai クライアントを構築します。gemini 形式では
// APIキー認証（api_base によるプロキシ経由を含む）、vertex 形式では
// アンビエント認証に切り替わり project ID が必須になります。
func NewGenAIClient(ctx context.Context, cfg Config) (*genai.Client, error) {
	cc := &genai.ClientConfig{}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	if cfg.Format == config.FormatVertex {
		if cfg.VertexProject == "" {
			return nil, fmt.Errorf("vertex モードでは VertexProject が必須です")
		}
		location := cfg.VertexLocation
		if location == "" {
			location = "us-central1"
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.VertexProject
		cc.Location = location
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
		if cfg.APIBase != "" {
			cc.HTTPOptions.BaseURL = cfg.APIBase
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの構築に失敗しました: %w", err)
	}
	return client, nil
}

// GenAITextProvider は genai SDK によるテキスト生成です。思考予算と
// 画像つき入力の両方をネイティブにサポートします。
type GenAITextProvider struct {
	client     *genai.Client
	model      string
	maxRetries int
}

// NewGenAITextProvider は GenAITextProvider を初期化します。
func NewGenAITextProvider(client *genai.Client, model string, maxRetries int) (*GenAITextProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &GenAITextProvider{client: client, model: model, maxRetries: maxRetries}, nil
}

// GenerateText はプロンプトからテキストを生成します。
func (p *GenAITextProvider) GenerateText(ctx context.Context, prompt string, thinkingBudget int32) (string, error) {
	var resp *genai.GenerateContentResponse
	err := retryTransport(ctx, "genaiテキスト生成", p.maxRetries, func() error {
		r, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), thinkingConfig(thinkingBudget))
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GenerateWithImage は画像を添えたマルチモーダルなテキスト生成です。
func (p *GenAITextProvider) GenerateWithImage(ctx context.Context, prompt, imagePath string, thinkingBudget int32) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("入力画像の読み込みに失敗しました: %w", err)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("入力ファイルが画像ではありません (mime: %s)", mimeType)
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var resp *genai.GenerateContentResponse
	err = retryTransport(ctx, "genai画像つきテキスト生成", p.maxRetries, func() error {
		r, err := p.client.Models.GenerateContent(ctx, p.model, contents, thinkingConfig(thinkingBudget))
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// SupportsImageInput は常に true です。
func (p *GenAITextProvider) SupportsImageInput() bool { return true }

// GenAIImageProvider は genai SDK による画像生成です。参照画像は
// インラインバイナリとして、宣言順のままリクエストに載せます。
type GenAIImageProvider struct {
	client     *genai.Client
	model      string
	maxRetries int
	fetcher    extract.Fetcher
}

// NewGenAIImageProvider は GenAIImageProvider を初期化します。
// fetcher は応答にURLしか含まれない稀なケースの取得に使うため nil を許容します。
func NewGenAIImageProvider(client *genai.Client, model string, maxRetries int, fetcher extract.Fetcher) (*GenAIImageProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &GenAIImageProvider{client: client, model: model, maxRetries: maxRetries, fetcher: fetcher}, nil
}

// GenerateImage はプロンプトと参照画像から画像を生成します。
// バックエンドが明示的に空の結果を返したときだけ (nil, nil) になります。
func (p *GenAIImageProvider) GenerateImage(ctx context.Context, req ImageRequest) (*domain.Image, error) {
	parts := make([]*genai.Part, 0, len(req.RefImages)+1)
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	for _, ref := range req.RefImages {
		if ref.Empty() {
			continue
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: ref.MIMEType, Data: ref.Data}})
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	gcfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if req.AspectRatio != "" || req.Resolution != "" {
		gcfg.ImageConfig = &genai.ImageConfig{
			AspectRatio: req.AspectRatio,
			ImageSize:   string(req.Resolution),
		}
	}
	if req.EnableThinking && req.ThinkingBudget > 0 {
		gcfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(req.ThinkingBudget)}
	}

	var resp *genai.GenerateContentResponse
	err := retryTransport(ctx, "genai画像生成", p.maxRetries, func() error {
		r, err := p.client.Models.GenerateContent(ctx, p.model, contents, gcfg)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 明示的に空の結果。ここだけが nil, nil を返す唯一の経路です。
	if len(resp.Candidates) == 0 {
		return nil, nil
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}

	return extract.Image(ctx, candidateToResponse(candidate), p.fetcher)
}

// candidateToResponse は genai の候補を抽出用の正規化形に写します。
func candidateToResponse(candidate *genai.Candidate) extract.Response {
	var resp extract.Response
	if candidate.Content == nil {
		return resp
	}
	for _, part := range candidate.Content.Parts {
		switch {
		case part.InlineData != nil && len(part.InlineData.Data) > 0:
			resp.Parts = append(resp.Parts, extract.Part{
				Inline: &domain.Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType},
			})
		case part.FileData != nil && part.FileData.FileURI != "":
			resp.Parts = append(resp.Parts, extract.Part{ImageURL: part.FileData.FileURI})
		case part.Text != "":
			resp.Parts = append(resp.Parts, extract.Part{Text: part.Text})
		}
	}
	return resp
}

// thinkingConfig は思考予算が正のときだけ推論モードを有効にします。
// 0 は無効化の明示です。
func thinkingConfig(budget int32) *genai.GenerateContentConfig {
	if budget <= 0 {
		return nil
	}
	return &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(budget)},
	}
}
