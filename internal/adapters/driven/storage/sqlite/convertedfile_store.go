package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// convertedFileStore implements driven.ConvertedFileStore.
type convertedFileStore struct {
	store *Store
}

var _ driven.ConvertedFileStore = (*convertedFileStore)(nil)

// Upsert stores or replaces the entry keyed by (OriginalPath, Platform).
func (s *convertedFileStore) Upsert(ctx context.Context, file domain.ConvertedFile) error {
	if file.ConvertedAt.IsZero() {
		file.ConvertedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO converted_files (original_path, platform, local_path, file_name, format, checksum, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(original_path, platform) DO UPDATE SET
			local_path = excluded.local_path,
			file_name = excluded.file_name,
			format = excluded.format,
			checksum = excluded.checksum,
			converted_at = excluded.converted_at
	`, file.OriginalPath, string(file.Platform), file.LocalPath, file.FileName,
		file.Format, file.Checksum, file.ConvertedAt)

	if err != nil {
		return fmt.Errorf("upserting converted file: %w", err)
	}
	return nil
}

// Get retrieves the entry for a remote file.
func (s *convertedFileStore) Get(ctx context.Context, originalPath string, platform domain.Platform) (*domain.ConvertedFile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT original_path, platform, local_path, file_name, format, checksum, converted_at
		FROM converted_files WHERE original_path = ? AND platform = ?
	`, originalPath, string(platform))

	file, err := scanConvertedFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return file, nil
}

// ListByPlatform returns all index entries for a platform.
func (s *convertedFileStore) ListByPlatform(ctx context.Context, platform domain.Platform) ([]domain.ConvertedFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT original_path, platform, local_path, file_name, format, checksum, converted_at
		FROM converted_files WHERE platform = ?
	`, string(platform))
	if err != nil {
		return nil, fmt.Errorf("querying converted files: %w", err)
	}
	defer rows.Close()

	var files []domain.ConvertedFile //nolint:prealloc // size unknown from query
	for rows.Next() {
		file, err := scanConvertedFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating converted files: %w", err)
	}
	return files, nil
}

func scanConvertedFile(row scanner) (*domain.ConvertedFile, error) {
	var file domain.ConvertedFile
	var platform string
	var convertedAt sql.NullTime

	if err := row.Scan(&file.OriginalPath, &platform, &file.LocalPath,
		&file.FileName, &file.Format, &file.Checksum, &convertedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning converted file: %w", err)
	}

	file.Platform = domain.Platform(platform)
	if convertedAt.Valid {
		file.ConvertedAt = convertedAt.Time
	}
	return &file, nil
}
