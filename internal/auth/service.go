// Package auth はユーザー名・パスワード認証とトークン発行を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/repository"
)

// TokenIssuer はトークン発行のインターフェース。
// token.Serviceの部分集合として定義する。
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// LoginResult はログイン成功時の結果を表す。
type LoginResult struct {
	Token    string
	Username string
}

// Service は認証に関するビジネスロジックを提供する。
// セッション状態はサーバー側に持たない（トークンは自己完結型）。
type Service struct {
	userRepo repository.UserRepository
	issuer   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, issuer TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		issuer:   issuer,
	}
}

// Login は資格情報を検証し、トークンを発行する。
// ユーザー名は前後の空白を除去してから完全一致で照合する。
// ユーザー不存在とパスワード不一致はどちらも同じ認証失敗エラーを返す
// （ユーザー列挙のシグナルを与えないため）。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	tokenString, err := s.issuer.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.String("username", user.Username))

	return &LoginResult{
		Token:    tokenString,
		Username: user.Username,
	}, nil
}
