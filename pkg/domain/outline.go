package domain

import (
	"encoding/json"
	"fmt"
)

// PageOutline は1ページ分の大綱です。Title 以外の説明的なフィールドは
// モデル出力ごとに揺れるため Fields にそのまま保持します。
type PageOutline struct {
	Title  string
	Part   string
	Fields map[string]any
}

// UnmarshalJSON は title / part を取り出し、残りを Fields に退避します。
func (p *PageOutline) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Fields = make(map[string]any)
	for k, v := range raw {
		switch k {
		case "title":
			if s, ok := v.(string); ok {
				p.Title = s
				continue
			}
			p.Title = fmt.Sprint(v)
		case "part":
			if s, ok := v.(string); ok {
				p.Part = s
				continue
			}
			p.Part = fmt.Sprint(v)
		default:
			p.Fields[k] = v
		}
	}
	return nil
}

// MarshalJSON は Fields を展開した上で title / part を重ねます。
func (p PageOutline) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(p.Fields)+2)
	for k, v := range p.Fields {
		raw[k] = v
	}
	if p.Title != "" {
		raw["title"] = p.Title
	}
	if p.Part != "" {
		raw["part"] = p.Part
	}
	return json.Marshal(raw)
}

// WithPart は所属パート名を焼き込んだコピーを返します。
func (p PageOutline) WithPart(part string) PageOutline {
	clone := PageOutline{Title: p.Title, Part: part}
	if len(p.Fields) > 0 {
		clone.Fields = make(map[string]any, len(p.Fields))
		for k, v := range p.Fields {
			clone.Fields[k] = v
		}
	}
	return clone
}

// OutlinePart は複数ページを束ねる章（パート）です。
type OutlinePart struct {
	Name  string
	Pages []PageOutline
}

// OutlineItem は大綱の1要素で、パートか単独ページのどちらか一方だけを
// 保持するタグ付きユニオンです。キーの有無で分岐する生のマップは
// ここより外には出しません。
type OutlineItem struct {
	Part *OutlinePart
	Page *PageOutline
}

// NewPartItem はパート要素を作ります。
func NewPartItem(name string, pages []PageOutline) OutlineItem {
	return OutlineItem{Part: &OutlinePart{Name: name, Pages: pages}}
}

// NewPageItem は単独ページ要素を作ります。
func NewPageItem(page PageOutline) OutlineItem {
	return OutlineItem{Page: &page}
}

// IsPart はパート要素かどうかを返します。
func (it OutlineItem) IsPart() bool { return it.Part != nil }

// UnmarshalJSON は "part" と "pages" が揃っている要素をパートとして、
// それ以外を単独ページとして読み取ります。
func (it *OutlineItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		Part  *string           `json:"part"`
		Pages []json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.Part != nil && probe.Pages != nil {
		part := OutlinePart{Name: *probe.Part, Pages: make([]PageOutline, 0, len(probe.Pages))}
		for _, rawPage := range probe.Pages {
			var page PageOutline
			if err := json.Unmarshal(rawPage, &page); err != nil {
				return fmt.Errorf("パート %q のページ解析に失敗しました: %w", *probe.Part, err)
			}
			part.Pages = append(part.Pages, page)
		}
		it.Part = &part
		it.Page = nil
		return nil
	}

	var page PageOutline
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	it.Page = &page
	it.Part = nil
	return nil
}

// MarshalJSON はタグ付きユニオンを元のワイヤ形式に戻します。
func (it OutlineItem) MarshalJSON() ([]byte, error) {
	if it.Part != nil {
		pages := it.Part.Pages
		if pages == nil {
			pages = []PageOutline{}
		}
		return json.Marshal(map[string]any{
			"part":  it.Part.Name,
			"pages": pages,
		})
	}
	if it.Page != nil {
		return it.Page.MarshalJSON()
	}
	return nil, fmt.Errorf("空の大綱要素はシリアライズできません")
}

// Title は要素の見出し（パート名またはページタイトル）を返します。
func (it OutlineItem) Title() string {
	if it.Part != nil {
		return it.Part.Name
	}
	if it.Page != nil {
		return it.Page.Title
	}
	return ""
}

// PageDescription は既存ページの説明文をリファイン入力として渡すための組です。
type PageDescription struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description_content"`
}
