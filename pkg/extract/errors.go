package extract

import "fmt"

// NoImageFoundError は応答の全抽出規則を試しても画像が得られなかった
// ことを示します。診断のために応答の形状サマリを保持します。
type NoImageFoundError struct {
	Shape string
}

func (e *NoImageFoundError) Error() string {
	return fmt.Sprintf("応答から画像を抽出できませんでした (shape: %s)", e.Shape)
}

// NoValidResponseError はトランスポートとしては成功したものの、
// 解釈可能なマルチモーダル応答が存在しなかったことを示します。
type NoValidResponseError struct {
	Detail string
}

func (e *NoValidResponseError) Error() string {
	return fmt.Sprintf("有効なマルチモーダル応答を受信できませんでした: %s", e.Detail)
}
