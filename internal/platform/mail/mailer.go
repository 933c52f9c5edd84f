package mail

import (
	"context"
	"log"
)

// Mailer はサインアップ時のウェルカムメール送信の差し替え点。
// 本物のSMTP/メールAPI実装はデプロイ側の関心事なのでここには置かない。
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, username, name string) error
}

// LogMailer は送信キュー投入をログに残すだけの実装。
// パスワード等の秘密情報は絶対にログへ出さないこと。
type LogMailer struct{}

func (LogMailer) SendWelcomeEmail(_ context.Context, username, name string) error {
	log.Printf("[INFO] mail: queued welcome email for %s (%s)", username, name)
	return nil
}
