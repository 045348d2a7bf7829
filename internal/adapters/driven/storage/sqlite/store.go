package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/monster2z/llm-rag-pro/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/monster2z/llm-rag-pro/internal/core/domain"
	"github.com/monster2z/llm-rag-pro/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// registry and conversation store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragpro/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragpro", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Registry returns a DocumentRegistry interface backed by this store.
func (s *Store) Registry() driven.DocumentRegistry {
	return &registryStore{store: s}
}

// Conversations returns a ConversationStore interface backed by this store.
func (s *Store) Conversations() driven.ConversationStore {
	return &conversationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Registry ====================

// registryStore implements driven.DocumentRegistry.
type registryStore struct {
	store *Store
}

var _ driven.DocumentRegistry = (*registryStore)(nil)

const documentColumns = `doc_id, filename, category, file_type, version,
	chunk_count, uploaded_by, upload_time, description, is_active, index_path`

// The family high-water mark spans live rows and the version_log, so
// version numbers are never reused after a permanent delete.
const familyMaxVersionQuery = `
	SELECT COALESCE(MAX(v), 0) FROM (
		SELECT MAX(version) AS v FROM document_versions
			WHERE filename = ? AND category = ?
		UNION ALL
		SELECT MAX(previous_version) FROM version_log
			WHERE filename = ? AND category = ?
		UNION ALL
		SELECT MAX(new_version) FROM version_log
			WHERE filename = ? AND category = ?
	)`

// RegisterVersion writes a new version row, deactivates the family's prior
// active version, and appends the transition log entry - one transaction.
func (r *registryStore) RegisterVersion(ctx context.Context, reg domain.Registration) (*domain.DocumentVersion, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var maxVersion int
	row := tx.QueryRowContext(ctx, familyMaxVersionQuery,
		reg.Filename, reg.Category, reg.Filename, reg.Category,
		reg.Filename, reg.Category)
	if err := row.Scan(&maxVersion); err != nil {
		return nil, fmt.Errorf("finding family max version: %w", err)
	}

	// Locate the currently active predecessor, if any
	var priorID string
	var priorVersion int
	row = tx.QueryRowContext(ctx, `
		SELECT doc_id, version FROM document_versions
		WHERE filename = ? AND category = ? AND is_active = 1
	`, reg.Filename, reg.Category)
	switch err := row.Scan(&priorID, &priorVersion); {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		priorID = ""
	default:
		return nil, fmt.Errorf("finding active predecessor: %w", err)
	}

	docID := reg.DocID
	if docID == "" {
		docID = uuid.New().String()
	}
	doc := domain.DocumentVersion{
		DocID:       docID,
		Filename:    reg.Filename,
		Category:    reg.Category,
		FileType:    reg.FileType,
		Version:     maxVersion + 1,
		ChunkCount:  reg.ChunkCount,
		UploadedBy:  reg.UploadedBy,
		UploadTime:  time.Now().UTC(),
		Description: reg.Description,
		IsActive:    true,
		IndexPath:   reg.IndexPath,
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO document_versions (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.DocID, doc.Filename, doc.Category, doc.FileType, doc.Version,
		doc.ChunkCount, doc.UploadedBy, doc.UploadTime, doc.Description,
		doc.IsActive, doc.IndexPath); err != nil {
		return nil, fmt.Errorf("inserting version: %w", err)
	}

	if priorID != "" {
		if _, err := tx.ExecContext(ctx, `
			UPDATE document_versions SET is_active = 0 WHERE doc_id = ?
		`, priorID); err != nil {
			return nil, fmt.Errorf("deactivating prior version: %w", err)
		}

		changeDesc := "new version upload"
		if reg.Description != "" {
			changeDesc += ": " + reg.Description
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO version_log (doc_id, filename, category,
				previous_version, new_version, change_description,
				changed_by, changed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.DocID, doc.Filename, doc.Category, priorVersion, doc.Version,
			changeDesc, doc.UploadedBy, doc.UploadTime); err != nil {
			return nil, fmt.Errorf("appending version log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing version registration: %w", err)
	}
	return &doc, nil
}

// FamilyMaxVersion returns the highest version a family has ever held,
// counting both live rows and the version log.
func (r *registryStore) FamilyMaxVersion(ctx context.Context, filename, category string) (int, error) {
	var max int
	row := r.store.db.QueryRowContext(ctx, familyMaxVersionQuery,
		filename, category, filename, category, filename, category)
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("finding family max version: %w", err)
	}
	return max, nil
}

// GetActive returns active versions, optionally filtered by category.
func (r *registryStore) GetActive(ctx context.Context, category string) ([]domain.DocumentVersion, error) {
	query := "SELECT " + documentColumns + " FROM document_versions WHERE is_active = 1"
	args := []any{}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY upload_time"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying active versions: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// GetFamilyHistory returns every version of a family, newest first.
func (r *registryStore) GetFamilyHistory(ctx context.Context, filename, category string) ([]domain.DocumentVersion, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM document_versions
		WHERE filename = ? AND category = ?
		ORDER BY version DESC
	`, filename, category)
	if err != nil {
		return nil, fmt.Errorf("querying family history: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Get retrieves a single version by doc ID.
func (r *registryStore) Get(ctx context.Context, docID string) (*domain.DocumentVersion, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM document_versions WHERE doc_id = ?
	`, docID)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Deactivate flips IsActive off for a version.
func (r *registryStore) Deactivate(ctx context.Context, docID string) error {
	res, err := r.store.db.ExecContext(ctx, `
		UPDATE document_versions SET is_active = 0 WHERE doc_id = ?
	`, docID)
	if err != nil {
		return fmt.Errorf("deactivating version: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deactivation: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a version. Permanent delete drops the row and appends the
// NewVersion=0 sentinel log entry; soft delete is a deactivation.
func (r *registryStore) Delete(ctx context.Context, docID string, permanent bool, deletedBy string) error {
	if !permanent {
		return r.Deactivate(ctx, docID)
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var version int
	var filename, category string
	row := tx.QueryRowContext(ctx,
		"SELECT version, filename, category FROM document_versions WHERE doc_id = ?", docID)
	if err := row.Scan(&version, &filename, &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("finding version to delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM document_versions WHERE doc_id = ?", docID); err != nil {
		return fmt.Errorf("deleting version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO version_log (doc_id, filename, category,
			previous_version, new_version, change_description,
			changed_by, changed_at)
		VALUES (?, ?, ?, ?, 0, 'permanently deleted', ?, ?)
	`, docID, filename, category, version, deletedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("appending deletion log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deletion: %w", err)
	}
	return nil
}

// ListCategories returns distinct categories across active documents.
func (r *registryStore) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM document_versions
		WHERE is_active = 1 ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// VersionLog returns the log entries for a doc ID, oldest first.
func (r *registryStore) VersionLog(ctx context.Context, docID string) ([]domain.VersionLogEntry, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, doc_id, filename, category, previous_version, new_version,
			change_description, changed_by, changed_at
		FROM version_log WHERE doc_id = ? ORDER BY id
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying version log: %w", err)
	}
	defer rows.Close()

	var entries []domain.VersionLogEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.VersionLogEntry
		if err := rows.Scan(&e.ID, &e.DocID, &e.Filename, &e.Category,
			&e.PreviousVersion, &e.NewVersion, &e.ChangeDescription,
			&e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("scanning version log entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating version log: %w", err)
	}
	return entries, nil
}

// scanDocument scans a version from *sql.Row.
func scanDocument(row *sql.Row) (*domain.DocumentVersion, error) {
	var doc domain.DocumentVersion
	if err := row.Scan(&doc.DocID, &doc.Filename, &doc.Category, &doc.FileType,
		&doc.Version, &doc.ChunkCount, &doc.UploadedBy, &doc.UploadTime,
		&doc.Description, &doc.IsActive, &doc.IndexPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning version: %w", err)
	}
	return &doc, nil
}

// scanDocuments scans versions from *sql.Rows.
func scanDocuments(rows *sql.Rows) ([]domain.DocumentVersion, error) {
	var docs []domain.DocumentVersion //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.DocumentVersion
		if err := rows.Scan(&doc.DocID, &doc.Filename, &doc.Category, &doc.FileType,
			&doc.Version, &doc.ChunkCount, &doc.UploadedBy, &doc.UploadTime,
			&doc.Description, &doc.IsActive, &doc.IndexPath); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return docs, nil
}

// ==================== Conversation Store ====================

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// SaveConversation stores or updates a conversation.
func (s *conversationStore) SaveConversation(ctx context.Context, conv *domain.Conversation) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversations (conversation_id, username, title, created_at, updated_at, is_archived)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at,
			is_archived = excluded.is_archived
	`, conv.ID, conv.Username, conv.Title, conv.CreatedAt, conv.UpdatedAt, conv.Archived)

	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *conversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT conversation_id, username, title, created_at, updated_at, is_archived
		FROM conversations WHERE conversation_id = ?
	`, id)

	var conv domain.Conversation
	if err := row.Scan(&conv.ID, &conv.Username, &conv.Title,
		&conv.CreatedAt, &conv.UpdatedAt, &conv.Archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}
	return &conv, nil
}

// ListConversations returns a user's conversations, newest update first.
func (s *conversationStore) ListConversations(ctx context.Context, username string) ([]domain.Conversation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT conversation_id, username, title, created_at, updated_at, is_archived
		FROM conversations
		WHERE username = ? AND is_archived = 0
		ORDER BY updated_at DESC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(&conv.ID, &conv.Username, &conv.Title,
			&conv.CreatedAt, &conv.UpdatedAt, &conv.Archived); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return convs, nil
}

// AppendTurn records one turn at the end of a conversation.
func (s *conversationStore) AppendTurn(ctx context.Context, turn *domain.ConversationTurn) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (turn_id, conversation_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, turn.ID, turn.ConversationID, turn.Role, turn.Content, turn.Timestamp)

	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

// GetTurns returns a conversation's turns ordered by timestamp.
func (s *conversationStore) GetTurns(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT turn_id, conversation_id, role, content, timestamp
		FROM conversation_turns
		WHERE conversation_id = ?
		ORDER BY timestamp, turn_id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var turn domain.ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.ConversationID, &turn.Role,
			&turn.Content, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return turns, nil
}
