package provider

import "fmt"

// TransportError はプロバイダ呼び出しのネットワーク・タイムアウト・HTTP
// 障害です。トランスポート層の再試行を使い切った後に呼び出し元へ届きます。
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: 通信エラー（再試行上限到達）: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnsupportedCapabilityError は有効なプロバイダが要求された操作を
// 実装していない場合のエラーです。再試行しても解決しないため、
// そのまま呼び出し元へ伝播します。
type UnsupportedCapabilityError struct {
	Capability string
}

func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf("プロバイダは %s をサポートしていません", e.Capability)
}
