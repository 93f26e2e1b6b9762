// Package todo はTodo管理のドメインロジックを提供する。
// すべての操作は認証済みサブジェクト（ユーザー名）をユーザーIDに解決してから、
// 所有者本人のTodoに対してのみ実行される。
package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/repository"
	"github.com/hitoshi/taskdeck/internal/security"
)

// UpdateInput は部分更新の入力を表す。
// nilフィールドは変更しない。
type UpdateInput struct {
	Title     *string
	Completed *bool
}

// Service はTodo管理のサービス層。
// 所有権の判定は常に「Todoの所有者ID == 解決済み呼び出し元ID」で行い、
// クライアントから与えられたユーザーIDを信用しない。
type Service struct {
	todoRepo  repository.TodoRepository
	userRepo  repository.UserRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	todoRepo repository.TodoRepository,
	userRepo repository.UserRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		todoRepo:  todoRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
	}
}

// List は呼び出し元が所有するTodoを作成日時の降順で返す。
// サブジェクトがユーザーに解決できない場合はエラーではなく空リストを返す。
// （get/update/deleteでは同じ状況で認証エラーになる。既存システムの挙動を踏襲している。）
func (s *Service) List(ctx context.Context, username string) ([]*model.Todo, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []*model.Todo{}, nil
	}

	todos, err := s.todoRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Create は呼び出し元を所有者とするTodoを新規作成する。
// タイトルは前後の空白を除去し、マークアップを取り除いてから保存する。
// 空白のみのタイトル、またはサブジェクトが解決できない場合はバリデーションエラー。
func (s *Service) Create(ctx context.Context, username, title string) (*model.Todo, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewInvalidRequestError("ユーザーを特定できません")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.NewTitleRequiredError()
	}
	title = s.sanitizer.Sanitize(title)

	todo := &model.Todo{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Title:     title,
		Completed: false,
		CreatedAt: time.Now(),
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// Get は指定IDのTodoを返す。
// 存在しない場合と他ユーザーの所有物の場合はどちらも同じ未検出エラーになる。
func (s *Service) Get(ctx context.Context, username, todoID string) (*model.Todo, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return s.findOwned(ctx, user.ID, todoID)
}

// Update は指定IDのTodoに部分更新を適用する。
// 指定されたフィールドのみを変更し、空白のみのタイトルはエラーにせず無視する。
// 更新は全フィールド適用か無適用かのどちらかで、部分的に適用されることはない。
func (s *Service) Update(ctx context.Context, username, todoID string, input UpdateInput) (*model.Todo, error) {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	todo, err := s.findOwned(ctx, user.ID, todoID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != "" {
			todo.Title = s.sanitizer.Sanitize(title)
		}
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return todo, nil
}

// Delete は指定IDのTodoを削除する。
// すでに削除済みのIDに対する2回目の呼び出しは、存在しなかった場合と
// 同じ未検出エラーになる。
func (s *Service) Delete(ctx context.Context, username, todoID string) error {
	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return model.NewUnauthorizedError()
	}

	if _, err := s.findOwned(ctx, user.ID, todoID); err != nil {
		return err
	}

	if err := s.todoRepo.DeleteByID(ctx, todoID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// resolveUser はトークンのサブジェクト（ユーザー名）をユーザー行に解決する。
// トークンはユーザー名を運ぶため、安定したIDへの変換がここで必要になる。
// 見つからない場合はnilを返し、扱いは各操作に委ねる。
func (s *Service) resolveUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

// findOwned は指定IDのTodoを取得し、所有者を検証する。
// 不存在と非所有は区別せずに未検出エラーを返す。
func (s *Service) findOwned(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	if todo == nil || todo.UserID != userID {
		return nil, model.NewTodoNotFoundError(todoID)
	}
	return todo, nil
}
