// Package repository はデータ永続化層のインターフェースと実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/taskdeck/internal/model"
)

// UserRepository はユーザーの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// Create はユーザーを新規作成する。
	Create(ctx context.Context, user *model.User) error
}

// TodoRepository はTodoの永続化インターフェース。
type TodoRepository interface {
	// ListByUserID は指定ユーザーのTodoを作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error)
	// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Todo, error)
	// Create はTodoを新規作成する。
	Create(ctx context.Context, todo *model.Todo) error
	// Update はTodoのタイトルと完了状態を更新する。
	Update(ctx context.Context, todo *model.Todo) error
	// DeleteByID は指定IDのTodoを削除する。
	DeleteByID(ctx context.Context, id string) error
}
