package domain

// CreationType はプロジェクトの作成起点を表します。
// どのテキストが正となるかは作成起点によって一意に決まります。
type CreationType string

const (
	CreationIdea        CreationType = "idea"
	CreationOutline     CreationType = "outline"
	CreationDescription CreationType = "description"
)

// ReferenceFile はユーザーがアップロードした参考資料の抽出テキストです。
type ReferenceFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ProjectContext は生成処理1回分に必要なプロジェクト情報のスナップショットです。
// 構築後は不変として扱います。
type ProjectContext struct {
	IdeaPrompt      string
	OutlineText     string
	DescriptionText string
	CreationType    CreationType
	ReferenceFiles  []ReferenceFile
}

// NewProjectContext は作成起点が未指定の場合に idea を補ってコンテキストを作ります。
func NewProjectContext(idea, outline, description string, creationType CreationType, refs []ReferenceFile) ProjectContext {
	if creationType == "" {
		creationType = CreationIdea
	}
	return ProjectContext{
		IdeaPrompt:      idea,
		OutlineText:     outline,
		DescriptionText: description,
		CreationType:    creationType,
		ReferenceFiles:  refs,
	}
}

// SourceText は作成起点に対応する正のテキストを返します。
func (c ProjectContext) SourceText() string {
	switch c.CreationType {
	case CreationOutline:
		return c.OutlineText
	case CreationDescription:
		return c.DescriptionText
	default:
		return c.IdeaPrompt
	}
}
