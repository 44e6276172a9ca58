package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dominikstraub/Waddle/internal/database"
	"github.com/dominikstraub/Waddle/internal/models"
	"github.com/dominikstraub/Waddle/internal/parser"
)

// Store is the part of the database the importer writes to.
type Store interface {
	ContentExists(ctx context.Context, contentHash string) (bool, error)
	CreateActivity(ctx context.Context, source, contentHash string, activity *models.Activity) (string, error)
}

// Report counts the outcome of one import run.
type Report struct {
	Scanned  int `json:"scanned"`
	Imported int `json:"imported"` // activities stored
	Skipped  int `json:"skipped"`  // files whose content is already stored
	Failed   int `json:"failed"`
}

type Service struct {
	parser     parser.Parser
	db         Store
	inboxDir   string
	archiveDir string
}

func NewService(p parser.Parser, db Store, inboxDir, archiveDir string) *Service {
	return &Service{
		parser:     p,
		db:         db,
		inboxDir:   inboxDir,
		archiveDir: archiveDir,
	}
}

// Import stores every activity found in the GPX files of the inbox and
// moves the files to the archive. A failing file is logged and left in
// the inbox; it does not stop the run.
func (s *Service) Import(ctx context.Context) (Report, error) {
	var report Report

	startTime := time.Now()
	log.Printf("Starting import from %s", s.inboxDir)
	defer func() {
		log.Printf("Import completed in %s: %+v", time.Since(startTime), report)
	}()

	files, err := s.inboxFiles()
	if err != nil {
		return report, fmt.Errorf("failed to list inbox: %w", err)
	}

	for i, path := range files {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		report.Scanned++
		log.Printf("[%d/%d] Processing %s...", i+1, len(files), filepath.Base(path))

		n, err := s.importFile(ctx, path)
		switch {
		case err != nil:
			report.Failed++
			log.Printf("Error importing %s: %v", path, err)
		case n < 0:
			report.Skipped++
		default:
			report.Imported += n
		}
	}

	return report, nil
}

func (s *Service) inboxFiles() ([]string, error) {
	entries, err := os.ReadDir(s.inboxDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".gpx") {
			continue
		}
		files = append(files, filepath.Join(s.inboxDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// importFile returns the number of stored activities, or -1 when the same
// content was imported before. Files are recognised by content, not name.
func (s *Service) importFile(ctx context.Context, path string) (int, error) {
	source := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}
	hash := database.ContentHash(data)

	exists, err := s.db.ContentExists(ctx, hash)
	if err != nil {
		return 0, fmt.Errorf("failed to check content: %w", err)
	}
	if exists {
		log.Printf("%s already imported", source)
		return -1, s.archive(path)
	}

	if err := checkFormat(data); err != nil {
		return 0, err
	}

	activities, err := s.parser.ParseFileMulti(path)
	if err != nil {
		return 0, fmt.Errorf("failed to parse: %w", err)
	}

	for _, a := range activities {
		id, err := s.db.CreateActivity(ctx, source, hash, a)
		if err != nil {
			return 0, fmt.Errorf("failed to store activity: %w", err)
		}
		log.Printf("Stored %s activity %s from %s", a.Type, id, source)
	}

	if err := s.archive(path); err != nil {
		return 0, err
	}
	return len(activities), nil
}

func checkFormat(data []byte) error {
	if ft := parser.DetectFileTypeFromData(data); ft != parser.FileTypeGPX {
		return fmt.Errorf("%w: %s", parser.ErrUnsupportedFormat, ft)
	}
	return nil
}

// archive moves path into the archive directory. An existing archived
// file is never replaced; the new one gets a numbered name instead.
func (s *Service) archive(path string) error {
	if s.archiveDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	dst, err := freeName(s.archiveDir, filepath.Base(path))
	if err != nil {
		return err
	}
	if err := os.Rename(path, dst); err != nil {
		return fmt.Errorf("failed to archive file: %w", err)
	}
	return nil
}

func freeName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		dst := filepath.Join(dir, candidate)
		_, err := os.Lstat(dst)
		if errors.Is(err, fs.ErrNotExist) {
			return dst, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check archive: %w", err)
		}
	}
	return "", fmt.Errorf("no free archive name for %s", name)
}
