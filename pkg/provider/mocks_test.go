package provider

import "context"

// --- Mocks ---

// mockFetcher は extract.Fetcher を実装します。
type mockFetcher struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if m.fetchFunc == nil {
		return nil, nil
	}
	return m.fetchFunc(ctx, url)
}
