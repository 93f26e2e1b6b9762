// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptで生成された不可逆なパスワード検証値。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
