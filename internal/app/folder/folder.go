/*
Package folder persists the shared unit of collaboration: a named collection of
exam questions. The collaboration layer never touches this store; folder
contents change only through the HTTP API, and clients refetch them when an
update event tells them to.
*/
package folder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paperboard/internal/app/db"
	"paperboard/internal/pkg/randx"
)

// MaxNameLength caps folder names.
const MaxNameLength = 120

// ErrNotFound is returned when a folder or question does not exist.
var ErrNotFound = errors.New("not found")

// Folder is one shared question collection.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	ShareCode string    `json:"shareCode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Question is one entry in a folder.
type Question struct {
	ID        string    `json:"id"`
	FolderID  string    `json:"folderId"`
	Body      string    `json:"body"`
	Marks     int       `json:"marks"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the folder persistence contract the HTTP handlers depend on.
type Store interface {
	CreateFolder(ctx context.Context, name, ownerID string) (*Folder, error)
	GetFolder(ctx context.Context, id string) (*Folder, error)
	ListFolders(ctx context.Context, ownerID string) ([]Folder, error)
	RenameFolder(ctx context.Context, id, name string) error
	ListQuestions(ctx context.Context, folderID string) ([]Question, error)
	AddQuestion(ctx context.Context, folderID, body string, marks, position int) (*Question, error)
	RemoveQuestion(ctx context.Context, folderID, questionID string) error
}

// PGStore implements Store on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// CreateFolder inserts a folder with a fresh UUID and share code. On the
// unlikely share-code collision it retries once with a new code.
func (s *PGStore) CreateFolder(ctx context.Context, name, ownerID string) (*Folder, error) {
	for attempt := 0; attempt < 2; attempt++ {
		code, err := randx.ShareCode()
		if err != nil {
			return nil, err
		}

		f := &Folder{
			ID:        randx.FolderID(),
			Name:      name,
			OwnerID:   ownerID,
			ShareCode: code,
		}

		err = s.pool.QueryRow(ctx,
			`INSERT INTO folders (id, name, owner_id, share_code)
			 VALUES ($1, $2, $3, $4)
			 RETURNING created_at, updated_at`,
			f.ID, f.Name, f.OwnerID, f.ShareCode,
		).Scan(&f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("failed to insert folder: %w", err)
		}
		return f, nil
	}

	return nil, fmt.Errorf("failed to allocate a unique share code")
}

// GetFolder loads one folder by ID.
func (s *PGStore) GetFolder(ctx context.Context, id string) (*Folder, error) {
	f := &Folder{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, share_code, created_at, updated_at
		 FROM folders WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.OwnerID, &f.ShareCode, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	return f, nil
}

// ListFolders returns the folders owned by ownerID, most recently updated first.
func (s *PGStore) ListFolders(ctx context.Context, ownerID string) ([]Folder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, owner_id, share_code, created_at, updated_at
		 FROM folders WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.OwnerID, &f.ShareCode, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// RenameFolder updates the folder name and bumps updated_at.
func (s *PGStore) RenameFolder(ctx context.Context, id, name string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE folders SET name = $2, updated_at = now() WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListQuestions returns the folder's questions in position order.
func (s *PGStore) ListQuestions(ctx context.Context, folderID string) ([]Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, folder_id, body, marks, position, created_at
		 FROM questions WHERE folder_id = $1 ORDER BY position, created_at`, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.FolderID, &q.Body, &q.Marks, &q.Position, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AddQuestion inserts a question and bumps the folder's updated_at in the same
// transaction, so a refetch triggered by an update event observes the change.
func (s *PGStore) AddQuestion(ctx context.Context, folderID, body string, marks, position int) (*Question, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := &Question{
		ID:       uuid.New().String(),
		FolderID: folderID,
		Body:     body,
		Marks:    marks,
		Position: position,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (id, folder_id, body, marks, position)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		q.ID, q.FolderID, q.Body, q.Marks, q.Position,
	).Scan(&q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE folders SET updated_at = now() WHERE id = $1`, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to touch folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit question insert: %w", err)
	}
	return q, nil
}

// RemoveQuestion deletes a question and bumps the folder's updated_at.
func (s *PGStore) RemoveQuestion(ctx context.Context, folderID, questionID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM questions WHERE id = $1 AND folder_id = $2`, questionID, folderID)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `UPDATE folders SET updated_at = now() WHERE id = $1`, folderID); err != nil {
		return fmt.Errorf("failed to touch folder: %w", err)
	}

	return tx.Commit(ctx)
}
