package prompt

import (
	"regexp"
	"strings"
)

var (
	markdownImageWithAltRe = regexp.MustCompile(`!\[(.*?)\]\([^)]+\)`)
	markdownImageURLRe     = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	excessBlankLinesRe     = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// RemoveMarkdownImages は markdown 画像リンクを説明文字列（alt text）
// だけに置き換えます。alt が空ならリンクごと消します。画像そのものは
// 参照画像として別経路で渡されるため、プロンプトには重複させません。
func RemoveMarkdownImages(text string) string {
	if text == "" {
		return text
	}

	cleaned := markdownImageWithAltRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := markdownImageWithAltRe.FindStringSubmatch(match)
		return strings.TrimSpace(sub[1])
	})

	// 置換で生じた3行以上の空行は2行に詰めます。
	return excessBlankLinesRe.ReplaceAllString(cleaned, "\n\n")
}

// ExtractImageURLs は markdown テキストから画像URLを取り出します。
// http(s) URL と /files/ で始まる内部パスだけを対象にします。
func ExtractImageURLs(text string) []string {
	if text == "" {
		return nil
	}

	var urls []string
	for _, match := range markdownImageURLRe.FindAllStringSubmatch(text, -1) {
		url := strings.TrimSpace(match[1])
		if url == "" {
			continue
		}
		if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "/files/") {
			urls = append(urls, url)
		}
	}
	return urls
}
