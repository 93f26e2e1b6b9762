// Package token は署名付きトークンの発行と検証を提供する。
// トークンは自己完結型（サーバー側の状態参照なし）で、
// 有効性は署名と有効期限のみで判定する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired はトークンの有効期限が切れている場合のエラー。
var ErrTokenExpired = errors.New("token is expired")

// ErrTokenInvalid は署名不一致やフォーマット不正の場合のエラー。
var ErrTokenInvalid = errors.New("token is invalid")

// Service はHS256署名のJWTを発行・検証する。
// 署名鍵は生成時に1回だけ導出し、プロセスの生存期間中共有する。
type Service struct {
	key []byte
	ttl time.Duration
}

// NewService はServiceを生成する。
// secretは対称署名鍵の素材、ttlはトークンの有効期間。
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		key: []byte(secret),
		ttl: ttl,
	}
}

// Issue はsubjectを埋め込んだ署名付きトークンを発行する。
// 有効期限は現在時刻 + 設定されたTTL。
func (s *Service) Issue(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、subjectを返す。
// 署名不一致はErrTokenInvalid、期限切れはErrTokenExpiredを返す。
// それ以外のクレームは検証しない。時刻はサーバーローカル時刻で比較し、猶予は設けない。
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !parsed.Valid {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
