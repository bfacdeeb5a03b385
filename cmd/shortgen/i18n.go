// Package main provides localization for the shortgen CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Generate and publish vertical short videos": "縦型ショート動画を生成して公開",
		"shortgen renders 1080x1920 text videos, validates them against short-form platform limits and uploads them on a daily schedule.": "shortgenは1080x1920のテキスト動画を生成し、ショート動画プラットフォームの制限に対して検証し、毎日決まった時刻にアップロードします。",

		// Global flags
		"Configuration file (YAML or TOML)":    "設定ファイル（YAMLまたはTOML）",
		"Environment file with overrides":      "上書き用の環境変数ファイル",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",
		"Enable debug output":                  "デバッグ出力を有効化",

		// Generate command
		"Generate one video": "動画を1本生成",
		"Template (simple_text, title_card, slideshow)":       "テンプレート（simple_text, title_card, slideshow）",
		"Slide text for the slideshow template (repeatable)": "スライドショーのスライド文字列（複数指定可）",
		"Duration in seconds (10-60)":                         "再生時間（秒、10-60）",
		"Background color (hex, e.g., #1E1E1E)":               "背景色（16進数、例: #1E1E1E）",
		"Text color (hex, e.g., #FFFFFF)":                     "文字色（16進数、例: #FFFFFF）",
		"Font size in pixels":                                 "フォントサイズ（ピクセル）",
		"Audio track to attach":                               "付与する音声トラック",
		"Output directory":                                    "出力ディレクトリ",

		// Validate command
		"Validate an existing video file": "既存の動画ファイルを検証",

		// Batch command
		"Generate every video listed in a YAML file":         "YAMLファイルに列挙された動画を全て生成",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",

		// Schedule command
		"Publish one video per platform every day": "毎日プラットフォームごとに動画を1本公開",
		"Run once immediately and exit":            "即座に1回実行して終了",

		// Upload command
		"Upload an existing video file":        "既存の動画ファイルをアップロード",
		"Target platform (youtube, mock)":      "アップロード先（youtube, mock）",
		"Video title":                          "動画タイトル",
		"Video description":                    "動画の説明",
		"Tag (repeatable)":                     "タグ（複数指定可）",
		"Privacy (public, private, unlisted)":  "公開範囲（public, private, unlisted）",

		// Version command
		"Show version information":  "バージョン情報を表示",
		"shortgen (Go) version %s":  "shortgen (Go版) バージョン %s",

		// Runtime messages
		"Output saved to %s":            "出力を %s に保存しました",
		"Summary saved to %s":           "サマリーを %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Decode check disabled: %s":     "デコード検査を無効化しました: %s",
		"Skipping %s: %s":               "%s をスキップします: %s",
		"Failed to write summary: %s":   "サマリーの書き込みに失敗しました: %s",
		"Metrics server stopped: %s":    "メトリクスサーバーが停止しました: %s",

		// Error messages
		"Title argument is required":       "タイトル引数が必要です",
		"File argument is required":        "ファイル引数が必要です",
		"Specs file argument is required":  "仕様ファイル引数が必要です",
		"Unknown platform %s":              "不明なプラットフォーム %s",
		"Video is not production ready: %s": "動画は公開基準を満たしていません: %s",
	})
}
