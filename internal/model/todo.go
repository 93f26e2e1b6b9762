package model

import "time"

// Todo はユーザーが所有するタスクを表す。
// UserIDは作成時に確定し、以降変更されない（所有権は移転しない）。
type Todo struct {
	ID        string
	UserID    string
	Title     string
	Completed bool
	CreatedAt time.Time
}
