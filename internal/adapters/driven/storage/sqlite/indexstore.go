// Package sqlite persists vector index snapshots in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/webrag-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore persists one index snapshot in SQLite.
// Save replaces the previous snapshot in a single transaction, so a
// reader never observes a half-written index.
type IndexStore struct {
	db   *sql.DB
	path string
}

// NewIndexStore creates a SQLite index store under the given data
// directory. If dataDir is empty, defaults to ~/.webrag/data/index.db.
func NewIndexStore(dataDir string) (*IndexStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".webrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode lets concurrent readers coexist with the replace transaction
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &IndexStore{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *IndexStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *IndexStore) Path() string {
	return s.path
}

// Save writes the snapshot, replacing any previous one wholesale.
func (s *IndexStore) Save(ctx context.Context, snap *driven.IndexSnapshot) error {
	if snap == nil {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM passages"); err != nil {
		return fmt.Errorf("clearing passages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return fmt.Errorf("clearing index meta: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, format_version, dimensions, model)
		VALUES (1, ?, ?, ?)
	`, snap.FormatVersion, snap.Dimensions, snap.Model)
	if err != nil {
		return fmt.Errorf("inserting index meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (position, passage_id, source_url, content, sequence_index, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range snap.Passages {
		_, err := stmt.ExecContext(ctx,
			i,
			p.Passage.ID,
			p.Passage.SourceURL,
			p.Passage.Content,
			p.Passage.SequenceIndex,
			float32SliceToBytes(p.Vector),
		)
		if err != nil {
			return fmt.Errorf("inserting passage %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Load reads the most recently saved snapshot.
// A missing snapshot, an unrecognised format version, or a vector blob
// inconsistent with the recorded dimension all fail with
// domain.ErrIndexUnavailable. A snapshot with zero passages is valid.
func (s *IndexStore) Load(ctx context.Context) (*driven.IndexSnapshot, error) {
	snap := &driven.IndexSnapshot{}

	row := s.db.QueryRowContext(ctx, `
		SELECT format_version, dimensions, model FROM index_meta WHERE id = 1
	`)
	if err := row.Scan(&snap.FormatVersion, &snap.Dimensions, &snap.Model); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no snapshot saved", domain.ErrIndexUnavailable)
		}
		return nil, fmt.Errorf("%w: reading index meta: %v", domain.ErrIndexUnavailable, err)
	}

	if snap.FormatVersion != driven.IndexSnapshotVersion {
		return nil, fmt.Errorf("%w: unrecognised format version %d",
			domain.ErrIndexUnavailable, snap.FormatVersion)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT passage_id, source_url, content, sequence_index, embedding
		FROM passages
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: reading passages: %v", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.EmbeddedPassage
		var blob []byte
		err := rows.Scan(&p.Passage.ID, &p.Passage.SourceURL, &p.Passage.Content,
			&p.Passage.SequenceIndex, &blob)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning passage: %v", domain.ErrIndexUnavailable, err)
		}

		if len(blob) != snap.Dimensions*4 {
			return nil, fmt.Errorf("%w: passage %s has corrupt vector",
				domain.ErrIndexUnavailable, p.Passage.ID)
		}

		p.Vector = bytesToFloat32Slice(blob)
		snap.Passages = append(snap.Passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating passages: %v", domain.ErrIndexUnavailable, err)
	}

	return snap, nil
}

// migrate runs all pending migrations.
func (s *IndexStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		version, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if version <= currentVersion {
			continue
		}

		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration transaction: %w", err)
		}
		if _, err := tx.Exec(string(script)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// migrationVersion extracts the numeric prefix from a migration filename.
func migrationVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("malformed migration filename %q", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("malformed migration filename %q: %w", name, err)
	}
	return version, nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice
// for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
