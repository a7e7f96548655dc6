// Package entity はprofileフィーチャーのエンティティを定義します。
package entity

// StorageKey は保存先で使うプロフィールのキーです。
const StorageKey = "userProfile"

// Profile はユーザーが保存する連絡先です。保存のたびに丸ごと上書きされます。
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// 保存・メール送信の結果として表示するメッセージ。
const (
	MsgDetailsSaved = "Details saved!"
	MsgEmailSent    = "Welcome email sent successfully!"
	MsgEmailFailed  = "Failed to send welcome email."
)
