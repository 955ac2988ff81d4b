package refimage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirResolver は /files/mineru/{id}/{relpath} 形式の内部参照を
// ルートディレクトリ配下の実ファイルへ解決する FileResolver 実装です。
// 旧形式の参照との互換のため、id セグメントは前方一致を許容します。
type DirResolver struct {
	Root string
}

// Resolve は参照を実ファイルパスへ解決します。id と完全一致する
// ディレクトリを優先し、なければ id を前方に持つディレクトリを
// 名前順で探します。
func (d DirResolver) Resolve(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, mineruPrefix)
	if !ok {
		return "", false
	}
	id, relPath, ok := strings.Cut(rest, "/")
	if !ok || id == "" || relPath == "" {
		return "", false
	}

	// 完全一致を先に試します。
	exact := filepath.Join(d.Root, id, filepath.FromSlash(relPath))
	if fileExists(exact) {
		return exact, true
	}

	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return "", false
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), id) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		candidate := filepath.Join(d.Root, name, filepath.FromSlash(relPath))
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
