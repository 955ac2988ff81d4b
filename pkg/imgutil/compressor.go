package imgutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JPEGDataURL は画像をJPEGに再エンコードした上で data URL にします。
// チャット補完形式のAPIに参照画像を埋め込むときのワイヤ形式です。
func JPEGDataURL(data []byte, quality int) (string, error) {
	jpegData, err := CompressToJPEG(data, quality)
	if err != nil {
		return "", fmt.Errorf("JPEG再エンコードに失敗しました: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData), nil
}

// DataURL は画像バイト列をそのままの MIME タイプで data URL にします。
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
