package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Generating %s (%s, %ds)...":         "%s を生成中 (%s, %d 秒)...",
		"Validation: %s":                     "検証結果: %s",
		"Batch completed: %d succeeded, %d failed": "バッチ完了: 成功 %d 件, 失敗 %d 件",
		"Overwriting existing file %s":       "既存のファイル %s を上書きします",

		// Overlay stage
		"Rendering overlay %q at %dpx":       "オーバーレイ %q を %dpx で描画中",
		"Overlay rendered: %dx%d":            "オーバーレイ描画完了: %dx%d",

		// Encode stage
		"Encoding %d frames at %d fps":       "%d フレームを %d fps でエンコード中",
		"Encoded frame %d/%d":                "フレームをエンコード中 %d/%d",
		"Attaching audio track %s":           "音声トラック %s を追加中",
		"Video encoded: %d packets, %d bytes": "動画エンコード完了: %d パケット, %d バイト",

		// Encoder component
		"Starting encoder: %s":               "エンコーダを起動中: %s",
		"Parameter sets captured: SPS %d bytes, PPS %d bytes": "パラメータセット取得: SPS %d バイト, PPS %d バイト",
		"Audio prepared: %d frames at %d Hz": "音声準備完了: %d フレーム, %d Hz",

		// Validator
		"Validated %s: %s":                 "%s を検証しました: %s",
		"Decode check failed for %s: %s":   "%s のデコード確認に失敗しました: %s",

		// Publisher
		"Scheduled daily run at %s (%s)":     "毎日 %s (%s) に実行を予定しました",
		"Selected content %s for %s":         "%s のコンテンツ %s を選択しました",
		"No content available for %s":        "%s で利用可能なコンテンツがありません",
		"Uploaded to %s: %s":                 "%s にアップロードしました: %s",
		"Daily upload limit reached for %s":  "%s の1日のアップロード上限に達しました",
		"Removed %s after upload":            "アップロード後に %s を削除しました",
		"Metrics listening on %s":            "メトリクスを %s で公開中",
		"Daily run finished: %d uploads":     "定期実行が完了しました: %d 件アップロード",
		"Accepted %s as %s":                  "%s を %s として受け付けました",
		"Uploading %s (%.2f MB)":             "%s をアップロード中 (%.2f MB)",
		"Applied migration %s":               "マイグレーション %s を適用しました",

		// Warnings
		"Video is not production ready: %s":  "動画は公開基準を満たしていません: %s",
		"Failed to save debug output: %s":    "デバッグ出力の保存に失敗しました: %s",
		"Previous run still in progress, skipping": "前回の実行が継続中のためスキップします",
		"Failed to remove %s: %s":            "%s の削除に失敗しました: %s",
		"Simulating %s failure for %s":       "%s 障害をシミュレート中 (%s)",

		// Errors
		"Failed to generate %s: %s":          "%s の生成に失敗しました: %s",
		"Failed to upload to %s: %s":         "%s へのアップロードに失敗しました: %s",
		"Daily run failed: %s":               "定期実行に失敗しました: %s",
	})
}
