package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlineItemUnmarshalJSON(t *testing.T) {
	t.Run("partとpagesが揃っていればパートとして読む", func(t *testing.T) {
		data := `{"part": "第1部", "pages": [{"title": "背景", "summary": "市場動向"}]}`

		var item OutlineItem
		require.NoError(t, json.Unmarshal([]byte(data), &item))

		require.True(t, item.IsPart())
		assert.Equal(t, "第1部", item.Part.Name)
		require.Len(t, item.Part.Pages, 1)
		assert.Equal(t, "背景", item.Part.Pages[0].Title)
		assert.Equal(t, "市場動向", item.Part.Pages[0].Fields["summary"])
	})

	t.Run("pagesの無い要素は単独ページとして読む", func(t *testing.T) {
		data := `{"title": "表紙", "summary": "導入"}`

		var item OutlineItem
		require.NoError(t, json.Unmarshal([]byte(data), &item))

		require.False(t, item.IsPart())
		require.NotNil(t, item.Page)
		assert.Equal(t, "表紙", item.Page.Title)
		assert.Equal(t, "導入", item.Page.Fields["summary"])
	})

	t.Run("partキーだけでpagesが無ければページ扱い", func(t *testing.T) {
		data := `{"title": "背景", "part": "第1部"}`

		var item OutlineItem
		require.NoError(t, json.Unmarshal([]byte(data), &item))

		require.False(t, item.IsPart())
		assert.Equal(t, "第1部", item.Page.Part)
	})

	t.Run("大綱全体を混在したまま読める", func(t *testing.T) {
		data := `[
			{"title": "表紙"},
			{"part": "第1部", "pages": [{"title": "背景"}, {"title": "課題"}]},
			{"title": "まとめ"}
		]`

		var outline []OutlineItem
		require.NoError(t, json.Unmarshal([]byte(data), &outline))

		require.Len(t, outline, 3)
		assert.False(t, outline[0].IsPart())
		assert.True(t, outline[1].IsPart())
		assert.False(t, outline[2].IsPart())
	})
}

func TestOutlineItemMarshalJSON(t *testing.T) {
	t.Run("パートは元のワイヤ形式に戻る", func(t *testing.T) {
		item := NewPartItem("第1部", []PageOutline{{Title: "背景"}})

		data, err := json.Marshal(item)

		require.NoError(t, err)
		assert.JSONEq(t, `{"part": "第1部", "pages": [{"title": "背景"}]}`, string(data))
	})

	t.Run("ページは補足フィールドごと往復できる", func(t *testing.T) {
		original := `{"title": "背景", "summary": "市場動向", "key_points": ["成長率", "競合"]}`

		var item OutlineItem
		require.NoError(t, json.Unmarshal([]byte(original), &item))

		data, err := json.Marshal(item)
		require.NoError(t, err)
		assert.JSONEq(t, original, string(data))
	})

	t.Run("空の要素はエラーになる", func(t *testing.T) {
		_, err := json.Marshal(OutlineItem{})
		assert.Error(t, err)
	})
}

func TestPageOutlineWithPart(t *testing.T) {
	page := PageOutline{Title: "背景", Fields: map[string]any{"summary": "市場動向"}}

	clone := page.WithPart("第1部")

	assert.Equal(t, "第1部", clone.Part)
	assert.Equal(t, "背景", clone.Title)
	assert.Equal(t, "市場動向", clone.Fields["summary"])
	assert.Empty(t, page.Part, "元のページは変更されない")

	clone.Fields["summary"] = "書き換え"
	assert.Equal(t, "市場動向", page.Fields["summary"], "Fieldsは共有されない")
}

func TestOutlineItemTitle(t *testing.T) {
	assert.Equal(t, "第1部", NewPartItem("第1部", nil).Title())
	assert.Equal(t, "表紙", NewPageItem(PageOutline{Title: "表紙"}).Title())
	assert.Equal(t, "", OutlineItem{}.Title())
}

func TestPageDescriptionJSON(t *testing.T) {
	data, err := json.Marshal(PageDescription{Index: 1, Title: "表紙", Description: "導入の説明"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index": 1, "title": "表紙", "description_content": "導入の説明"}`, string(data))
}
