package generator

import (
	"context"
	"net/http"

	"github.com/shouni/slide-gen-kit/pkg/domain"
	"github.com/shouni/slide-gen-kit/pkg/provider"
)

// --- Mocks ---

type mockTextProvider struct {
	generateTextFunc      func(ctx context.Context, prompt string, thinkingBudget int32) (string, error)
	generateWithImageFunc func(ctx context.Context, prompt, imagePath string, thinkingBudget int32) (string, error)
	supportsImage         bool
}

func (m *mockTextProvider) GenerateText(ctx context.Context, prompt string, thinkingBudget int32) (string, error) {
	return m.generateTextFunc(ctx, prompt, thinkingBudget)
}

func (m *mockTextProvider) GenerateWithImage(ctx context.Context, prompt, imagePath string, thinkingBudget int32) (string, error) {
	if m.generateWithImageFunc == nil {
		return "", &provider.UnsupportedCapabilityError{Capability: "画像つきテキスト生成"}
	}
	return m.generateWithImageFunc(ctx, prompt, imagePath, thinkingBudget)
}

func (m *mockTextProvider) SupportsImageInput() bool { return m.supportsImage }

type mockImageProvider struct {
	generateImageFunc func(ctx context.Context, req provider.ImageRequest) (*domain.Image, error)
}

func (m *mockImageProvider) GenerateImage(ctx context.Context, req provider.ImageRequest) (*domain.Image, error) {
	return m.generateImageFunc(ctx, req)
}

// mockProviderSource は ProviderSource を固定のモックで満たします。
// caption 未指定時は text を使い回します。
type mockProviderSource struct {
	text    provider.TextProvider
	caption provider.TextProvider
	image   provider.ImageProvider
	err     error
}

func (m *mockProviderSource) TextProvider(ctx context.Context) (provider.TextProvider, error) {
	return m.text, m.err
}

func (m *mockProviderSource) CaptionProvider(ctx context.Context) (provider.TextProvider, error) {
	if m.caption != nil {
		return m.caption, m.err
	}
	return m.text, m.err
}

func (m *mockProviderSource) ImageProvider(ctx context.Context) (provider.ImageProvider, error) {
	return m.image, m.err
}

// mockHTTPClient は httpkit.ClientInterface を実装します。
type mockHTTPClient struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if m.fetchFunc == nil {
		return nil, nil
	}
	return m.fetchFunc(ctx, url)
}

func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) { return nil, nil }

func (m *mockHTTPClient) FetchAndDecodeJSON(ctx context.Context, url string, v any) error {
	return nil
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) PostRawBodyAndFetchBytes(ctx context.Context, url string, body []byte, contentType string) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) { return nil, nil }

func (m *mockHTTPClient) IsSafeURL(urlStr string) (bool, error) { return true, nil }

func (m *mockHTTPClient) IsSecureServiceURL(serviceURL string) bool { return true }

// pngBytes は http.DetectContentType が image/png と判定する最小の
// バイト列です。
func pngBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
}
