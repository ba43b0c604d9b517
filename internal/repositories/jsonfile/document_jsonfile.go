// Package jsonfile stores quiz documents as indented JSON files in one directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

const (
	fileExt     = ".json"
	backupDir   = ".backup"
	statsSuffix = ".stats"
	filePerm    = 0o644
	dirPerm     = 0o755
)

type documentRepository struct {
	dir    string
	logger *slog.Logger

	// writes to one document are serialized
	mu sync.Mutex

	writeFile func(path string, data []byte) error
}

// NewDocumentRepository creates the directory layout under dir if needed.
func NewDocumentRepository(dir string, logger *slog.Logger) (repositories.DocumentRepository, error) {
	if err := os.MkdirAll(filepath.Join(dir, backupDir), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{
		dir:       dir,
		logger:    logger,
		writeFile: writeFileAtomic,
	}, nil
}

func (r *documentRepository) path(name string) string {
	return filepath.Join(r.dir, name+fileExt)
}

func (r *documentRepository) backupPath(name string) string {
	return filepath.Join(r.dir, backupDir, name+fileExt)
}

func (r *documentRepository) statsBackupPath(name string) string {
	return filepath.Join(r.dir, backupDir, name+statsSuffix+fileExt)
}

func checkName(name string) error {
	if !validator.IsValidDocumentName(name) {
		return fmt.Errorf("%w: %q", repositories.ErrInvalidName, name)
	}
	return nil
}

// ===== DOCUMENTS =====

func (r *documentRepository) List(ctx context.Context) ([]models.DocumentInfo, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	infos := make([]models.DocumentInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileExt)
		if checkName(name) != nil {
			continue
		}

		doc, err := r.read(r.path(name))
		if err != nil {
			r.logger.Warn("Skipping unreadable document", "name", name, "error", err)
			continue
		}

		info := models.DocumentInfo{
			Name:         name,
			Title:        doc.Title,
			TimerSeconds: doc.TimerSeconds,
			Flashcards:   len(doc.Flashcards),
			Questions:    len(doc.QuizQuestions),
			Results:      len(doc.SessionHistory),
			HasBackup:    fileExists(r.backupPath(name)),
		}
		if fi, err := entry.Info(); err == nil {
			info.LastModified = fi.ModTime().UTC().Format(time.RFC3339)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (r *documentRepository) Get(ctx context.Context, name string) (*models.QuizDocument, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.read(r.path(name))
}

func (r *documentRepository) Save(ctx context.Context, name string, doc *models.QuizDocument) error {
	if err := checkName(name); err != nil {
		return err
	}
	if doc == nil {
		return errors.New("document is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(name, doc)
}

func (r *documentRepository) Update(ctx context.Context, name string, fn func(doc *models.QuizDocument) error) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read(r.path(name))
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		if errors.Is(err, repositories.ErrNoChange) {
			return nil
		}
		return err
	}
	return r.saveLocked(name, doc)
}

// saveLocked writes doc with r.mu held, keeping a backup of the previous version.
func (r *documentRepository) saveLocked(name string, doc *models.QuizDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	hadBackup, err := r.backup(name)
	if err != nil {
		return err
	}

	if err := r.writeFile(r.path(name), data); err != nil {
		r.logger.Error("Failed to save document", "name", name, "error", err)
		if hadBackup {
			if restoreErr := r.copyFile(r.backupPath(name), r.path(name)); restoreErr != nil {
				r.logger.Error("Failed to restore document backup", "name", name, "error", restoreErr)
			}
		}
		return fmt.Errorf("failed to save document: %w", err)
	}

	r.logger.Info("Document saved", "name", name, "results", len(doc.SessionHistory))
	return nil
}

// backup copies the current file aside. It reports false when there was nothing to copy.
func (r *documentRepository) backup(name string) (bool, error) {
	if !fileExists(r.path(name)) {
		return false, nil
	}
	if err := r.copyFile(r.path(name), r.backupPath(name)); err != nil {
		return false, fmt.Errorf("failed to back up document: %w", err)
	}
	return true, nil
}

func (r *documentRepository) RestoreBackup(ctx context.Context, name string) (*models.QuizDocument, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !fileExists(r.backupPath(name)) {
		return nil, repositories.ErrNoBackup
	}
	doc, err := r.read(r.backupPath(name))
	if err != nil {
		return nil, err
	}
	if err := r.copyFile(r.backupPath(name), r.path(name)); err != nil {
		return nil, fmt.Errorf("failed to restore document: %w", err)
	}

	r.logger.Info("Document restored from backup", "name", name)
	return doc, nil
}

// ===== STATS BACKUPS =====

func (r *documentRepository) SaveStatsBackup(ctx context.Context, name string, results []models.SessionResult) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats backup: %w", err)
	}
	if err := r.writeFile(r.statsBackupPath(name), data); err != nil {
		return fmt.Errorf("failed to save stats backup: %w", err)
	}
	return nil
}

func (r *documentRepository) LoadStatsBackup(ctx context.Context, name string) ([]models.SessionResult, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.statsBackupPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repositories.ErrNoBackup
		}
		return nil, fmt.Errorf("failed to read stats backup: %w", err)
	}

	var results []models.SessionResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to decode stats backup: %w", err)
	}
	return results, nil
}

func (r *documentRepository) DeleteStatsBackup(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(r.statsBackupPath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete stats backup: %w", err)
	}
	return nil
}

// ===== HELPERS =====

func (r *documentRepository) read(path string) (*models.QuizDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc models.QuizDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

func (r *documentRepository) copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeFileAtomic(dst, data)
}

// writeFileAtomic writes through a temp file in the same directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
