// Package refimage は参照画像の指定（ローカルパス、http(s) URL、gs://
// オブジェクト、data URL、内部ファイル参照スキーム）をメモリ上の画像に
// 解決します。解決できない参照は警告ログを残してスキップし、生成処理
// 自体は止めません。
package refimage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/slide-gen-kit/pkg/domain"
	"github.com/shouni/slide-gen-kit/pkg/extract"
)

// 内部ファイル参照スキームのプレフィックス。
const mineruPrefix = "/files/mineru/"

// FileResolver は内部ファイル参照を実ファイルパスへ解決する
// コラボレーターです。id セグメントの前方一致を許容します。
type FileResolver interface {
	Resolve(ref string) (string, bool)
}

// Resolver は参照画像の解決器です。
type Resolver struct {
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	files      FileResolver
}

// NewResolver は Resolver を初期化します。reader（gs:// 用）と
// files（内部参照用）は nil を許容し、その場合は該当スキームの参照が
// 解決不能として扱われます。
func NewResolver(httpClient httpkit.ClientInterface, reader remoteio.InputReader, files FileResolver) (*Resolver, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &Resolver{httpClient: httpClient, reader: reader, files: files}, nil
}

// Resolve は1件の参照をメモリ上の画像へ解決します。
func (r *Resolver) Resolve(ctx context.Context, ref string) (*domain.Image, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return extract.DecodeDataURL(ref)

	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if safe, err := isSafeURL(ref); err != nil || !safe {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
		}
		data, err := r.httpClient.FetchBytes(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("参照画像のダウンロードに失敗しました: %w", err)
		}
		return toImage(data)

	case strings.HasPrefix(ref, "gs://"):
		if r.reader == nil {
			return nil, fmt.Errorf("gs:// 参照のリーダーが構成されていません")
		}
		rc, err := r.reader.Open(ctx, ref)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		return toImage(data)

	case strings.HasPrefix(ref, mineruPrefix):
		if r.files == nil {
			return nil, fmt.Errorf("内部ファイル参照のリゾルバが構成されていません")
		}
		localPath, ok := r.files.Resolve(ref)
		if !ok {
			return nil, fmt.Errorf("内部ファイル参照を解決できませんでした: %s", ref)
		}
		return loadLocal(localPath)

	default:
		return loadLocal(ref)
	}
}

// ResolveAll は複数の参照を宣言順のまま解決します。解決に失敗した
// 参照は警告を残してスキップし、残りで続行します。
func (r *Resolver) ResolveAll(ctx context.Context, refs []string) []domain.Image {
	images := make([]domain.Image, 0, len(refs))
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		img, err := r.Resolve(ctx, ref)
		if err != nil {
			slog.WarnContext(ctx, "参照画像を解決できないためスキップします", "ref", ref, "error", err)
			continue
		}
		images = append(images, *img)
	}
	return images
}

func loadLocal(path string) (*domain.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("参照画像ファイルを読み込めませんでした: %w", err)
	}
	return toImage(data)
}

func toImage(data []byte) (*domain.Image, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("参照データが画像ではありません (mime: %s)", mimeType)
	}
	return &domain.Image{Data: data, MIMEType: mimeType}, nil
}

// isSafeURL は SSRF 対策として URL を検証します。名前解決された
// すべての IP アドレスに対してプライベート IP チェックを行います。
func isSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("名前解決失敗: %w", err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
