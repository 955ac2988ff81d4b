// Package config は実行時に変更されうる生成設定のスナップショットと、
// その供給元（Source）を提供します。オーケストレーターとファクトリは
// 設定を呼び出しごとに読み直し、キャッシュしません。
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ProviderFormat はプロバイダ実装の切り替えスイッチです。
type ProviderFormat string

const (
	FormatGemini ProviderFormat = "gemini"
	FormatOpenAI ProviderFormat = "openai"
	FormatVertex ProviderFormat = "vertex"
)

// Settings は生成に関わる設定値の不変スナップショットです。
type Settings struct {
	ProviderFormat ProviderFormat

	APIKey  string
	APIBase string

	TextModel    string
	ImageModel   string
	CaptionModel string

	// Vertex モード専用。ProviderFormat が vertex のとき必須です。
	VertexProject  string
	VertexLocation string

	Timeout    time.Duration
	MaxRetries int

	EnableTextReasoning  bool
	TextThinkingBudget   int32
	EnableImageReasoning bool
	ImageThinkingBudget  int32

	DescriptionWorkers int
	ImageWorkers       int

	DefaultAspectRatio string
	DefaultResolution  string
	OutputLanguage     string
}

// Source は現在有効な設定を返す供給元です。実装は並行呼び出しに
// 安全でなければなりません。
type Source interface {
	Current() Settings
}

// Defaults は設定の既定値を返します。
func Defaults() Settings {
	return Settings{
		ProviderFormat:      FormatGemini,
		TextModel:           "gemini-3-flash-preview",
		ImageModel:          "gemini-3-pro-image-preview",
		CaptionModel:        "gemini-3-flash-preview",
		VertexLocation:      "us-central1",
		Timeout:             300 * time.Second,
		MaxRetries:          2,
		TextThinkingBudget:  1024,
		ImageThinkingBudget: 1024,
		DescriptionWorkers:  5,
		ImageWorkers:        8,
		DefaultAspectRatio:  "16:9",
		DefaultResolution:   "2K",
		OutputLanguage:      "zh",
	}
}

// FromEnv は .env（存在すれば）と環境変数から設定を読み込みます。
// 未設定の項目は Defaults の値のままです。
func FromEnv() Settings {
	_ = godotenv.Load()

	s := Defaults()
	if v := os.Getenv("AI_PROVIDER_FORMAT"); v != "" {
		s.ProviderFormat = ProviderFormat(v)
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		s.APIKey = v
	}
	if v := os.Getenv("GOOGLE_API_BASE"); v != "" {
		s.APIBase = v
	}
	if s.ProviderFormat == FormatOpenAI {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			s.APIKey = v
		}
		if v := os.Getenv("OPENAI_API_BASE"); v != "" {
			s.APIBase = v
		}
	}
	if v := os.Getenv("TEXT_MODEL"); v != "" {
		s.TextModel = v
	}
	if v := os.Getenv("IMAGE_MODEL"); v != "" {
		s.ImageModel = v
	}
	if v := os.Getenv("IMAGE_CAPTION_MODEL"); v != "" {
		s.CaptionModel = v
	}
	if v := os.Getenv("VERTEX_PROJECT_ID"); v != "" {
		s.VertexProject = v
	}
	if v := os.Getenv("VERTEX_LOCATION"); v != "" {
		s.VertexLocation = v
	}
	if v, ok := lookupFloat("GENAI_TIMEOUT"); ok {
		s.Timeout = time.Duration(v * float64(time.Second))
	}
	if s.ProviderFormat == FormatOpenAI {
		if v, ok := lookupFloat("OPENAI_TIMEOUT"); ok {
			s.Timeout = time.Duration(v * float64(time.Second))
		}
	}
	if v, ok := lookupInt("GENAI_MAX_RETRIES"); ok {
		s.MaxRetries = v
	}
	if s.ProviderFormat == FormatOpenAI {
		if v, ok := lookupInt("OPENAI_MAX_RETRIES"); ok {
			s.MaxRetries = v
		}
	}
	if v, ok := lookupInt("MAX_DESCRIPTION_WORKERS"); ok {
		s.DescriptionWorkers = v
	}
	if v, ok := lookupInt("MAX_IMAGE_WORKERS"); ok {
		s.ImageWorkers = v
	}
	if v := os.Getenv("OUTPUT_LANGUAGE"); v != "" {
		s.OutputLanguage = v
	}
	return s
}

func lookupInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
