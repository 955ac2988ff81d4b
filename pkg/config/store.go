package config

import "sync"

// Store は実行中に書き換えられる Source 実装です。設定画面などの
// 変更コラボレーターが Update を呼び、登録されたフック（プロバイダ
// キャッシュの無効化など）がその場で実行されます。
type Store struct {
	mu       sync.RWMutex
	settings Settings
	onChange []func()
}

// NewStore は初期設定を持つ Store を作ります。
func NewStore(initial Settings) *Store {
	return &Store{settings: initial}
}

// Current は現在の設定スナップショットを返します。
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update は設定を書き換え、変更フックを同期的に呼び出します。
// フックの実行が終わるまで次の Current は新しい値を返します。
func (s *Store) Update(mutate func(*Settings)) {
	s.mu.Lock()
	mutate(&s.settings)
	hooks := make([]func(), len(s.onChange))
	copy(hooks, s.onChange)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// OnChange は設定変更時に呼ばれるフックを登録します。
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}
