// Package i18n holds the user-facing strings of the studio in Japanese and
// English and resolves request hints to one of those locales.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported locales, in preference order.
const (
	Japanese = "ja"
	English  = "en"
)

// DefaultLocale is used when no hint matches.
const DefaultLocale = Japanese

// Message keys.
const (
	PromptRequired    = "prompt_required"
	ImageRequired     = "image_required"
	ImageInvalid      = "image_invalid"
	MessageRequired   = "message_required"
	InvalidBody       = "invalid_body"
	GenerationFailed  = "generation_failed"
	ChatUnavailable   = "chat_unavailable"
	ConfigurationErr  = "configuration_error"
	RateLimited       = "rate_limited"
	InternalError     = "internal_error"
	NotFound          = "not_found"
	ConvertNote       = "convert_note"
	HistoryEmpty      = "history_empty"
	HistoryCleared    = "history_cleared"
	Saved             = "saved"
	Exported          = "exported"
	NothingToDownload = "nothing_to_download"
	Generated         = "generated"
)

var tags = []language.Tag{language.Japanese, language.English}

var matcher = language.NewMatcher(tags)

var messages = map[string][2]string{
	PromptRequired:    {"プロンプトを入力してください", "Please enter a prompt"},
	ImageRequired:     {"画像データが必要です", "Image data is required"},
	ImageInvalid:      {"画像データを読み取れませんでした", "The image data could not be read"},
	MessageRequired:   {"メッセージを入力してください", "Please enter a message"},
	InvalidBody:       {"リクエストの形式が正しくありません", "The request body is malformed"},
	GenerationFailed:  {"画像の生成に失敗しました。もう一度お試しください", "Image generation failed. Please try again"},
	ChatUnavailable:   {"チャット機能は現在利用できません", "Chat is currently unavailable"},
	ConfigurationErr:  {"サーバーの設定に問題があります", "The server is misconfigured"},
	RateLimited:       {"リクエストが多すぎます。しばらくしてからお試しください", "Too many requests. Please wait a moment"},
	InternalError:     {"サーバーエラーが発生しました", "An internal server error occurred"},
	NotFound:          {"見つかりません", "Not found"},
	ConvertNote:       {"AIによる切り絵スタイル変換", "AI-powered paper-cut style transformation"},
	HistoryEmpty:      {"履歴はまだありません", "No history yet"},
	HistoryCleared:    {"履歴を削除しました", "History cleared"},
	Saved:             {"保存しました: %s", "Saved: %s"},
	Exported:          {"%d 件の画像を書き出しました: %s", "Exported %d images: %s"},
	NothingToDownload: {"ダウンロードできる画像がありません", "There is no image to download"},
	Generated:         {"生成完了 (%s / %s)", "Generated (%s / %s)"},
}

var cat = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for key, pair := range messages {
		_ = b.SetString(language.Japanese, key, pair[0])
		_ = b.SetString(language.English, key, pair[1])
	}
	return b
}

// Match picks the supported locale for the first usable hint. Hints may be
// bare tags ("en-US") or full Accept-Language values. Empty hints are skipped.
func Match(hints ...string) (string, bool) {
	for _, hint := range hints {
		hint = strings.TrimSpace(hint)
		if hint == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(hint)
		if err != nil || len(parsed) == 0 {
			continue
		}
		_, idx, conf := matcher.Match(parsed...)
		if conf == language.No {
			continue
		}
		return base(tags[idx]), true
	}
	return "", false
}

// Normalize maps any tag onto a supported locale, falling back to
// DefaultLocale.
func Normalize(locale string) string {
	if v, ok := Match(locale); ok {
		return v
	}
	return DefaultLocale
}

// ForCountry returns the locale implied by an ISO country code.
func ForCountry(country string) string {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "":
		return ""
	case "JP":
		return Japanese
	default:
		return English
	}
}

// T renders the message for key in locale. Unknown keys are returned as is.
func T(locale, key string, args ...any) string {
	p := message.NewPrinter(language.Make(Normalize(locale)), message.Catalog(cat))
	return p.Sprintf(key, args...)
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}
