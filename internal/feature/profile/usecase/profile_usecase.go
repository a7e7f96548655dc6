// Package usecase はプロフィール保存とウェルカムメール送信のビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"time"

	"stock_dashboard/internal/feature/profile/domain/entity"
)

// DefaultEmailTimeout はメール送信1回あたりの既定タイムアウトです。
const DefaultEmailTimeout = 10 * time.Second

// ProfileRepository はプロフィールの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ProfileRepository interface {
	// Get は保存済みのプロフィールを返します。無ければ ErrProfileNotFound です。
	Get(ctx context.Context) (*entity.Profile, error)
	// Save はプロフィールを上書き保存します。
	Save(ctx context.Context, p entity.Profile) error
}

// Mailer はウェルカムメールを送信します。
type Mailer interface {
	SendWelcome(ctx context.Context, p entity.Profile) error
}

// Submission は保存済みプロフィールと、非同期に届くメール送信結果を持ちます。
type Submission struct {
	Profile entity.Profile

	done chan struct{}
	err  error
}

func newSubmission(p entity.Profile) *Submission {
	return &Submission{Profile: p, done: make(chan struct{})}
}

func (s *Submission) finish(err error) {
	s.err = err
	close(s.done)
}

// Done はメール送信が終わると閉じられます。
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// EmailResult はメール送信の完了を待ち、その結果を返します。
// ctx が先に終わった場合は ctx.Err() を返しますが、送信自体は継続します。
func (s *Submission) EmailResult(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProfileUsecase はプロフィールの読み込みと保存を行います。
type ProfileUsecase struct {
	repo         ProfileRepository
	mailer       Mailer
	emailTimeout time.Duration
}

// NewProfileUsecase はProfileUsecaseの新しいインスタンスを生成します。
// mailer が nil の場合、メール結果は常に ErrMailerNotConfigured になります。
func NewProfileUsecase(repo ProfileRepository, mailer Mailer, emailTimeout time.Duration) *ProfileUsecase {
	if emailTimeout <= 0 {
		emailTimeout = DefaultEmailTimeout
	}
	return &ProfileUsecase{repo: repo, mailer: mailer, emailTimeout: emailTimeout}
}

// Load は保存済みのプロフィールを返します。
func (u *ProfileUsecase) Load(ctx context.Context) (*entity.Profile, error) {
	return u.repo.Get(ctx)
}

// Save はプロフィールを保存してからウェルカムメールの送信を開始します。
// 保存に失敗した場合のみエラーを返します。メール送信の失敗で保存は取り消されません。
func (u *ProfileUsecase) Save(ctx context.Context, p entity.Profile) (*Submission, error) {
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	slog.Info("profile saved", "name", p.Name)

	sub := newSubmission(p)
	if u.mailer == nil {
		sub.finish(ErrMailerNotConfigured)
		return sub, nil
	}

	// 呼び出し元のリクエストが終わっても送信は続ける
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.emailTimeout)
	go func() {
		defer cancel()
		err := u.mailer.SendWelcome(sendCtx, p)
		if err != nil {
			slog.Warn("welcome email failed", "error", err)
		}
		sub.finish(err)
	}()
	return sub, nil
}
