package usecase

import "errors"

var (
	// ErrProfileNotFound はプロフィールがまだ保存されていない場合に返されます。
	ErrProfileNotFound = errors.New("profile not found")

	// ErrMailerNotConfigured はメール送信先の設定が無い場合にメール結果として返されます。
	ErrMailerNotConfigured = errors.New("mailer not configured")
)
