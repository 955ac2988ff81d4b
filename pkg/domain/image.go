package domain

// Image はメモリ上の生成画像・参照画像です。永続化は呼び出し側の責務です。
type Image struct {
	Data     []byte
	MIMEType string
}

// Empty はデータを持たない画像かどうかを返します。
func (i Image) Empty() bool { return len(i.Data) == 0 }
