// Package search turns finalized game rows into the flat documents the
// site search index consumes and writes them out as JSON lines.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"tfgs-backend/internal/catalog"
)

// Document is one search-index entry. Every field is a string because the
// index stores and matches plain terms; dates use YYYY-MM-DD so range
// queries sort lexically.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Synopsis    string `json:"synopsis"`
	Likes       string `json:"likes"`
	LastUpdate  string `json:"last_update"`
	ReleaseDate string `json:"release_date"`
	PlayOnline  bool   `json:"play_online"`
}

// BuildDocuments flattens search records into index documents.
func BuildDocuments(records []catalog.SearchRecord) []Document {
	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		doc := Document{
			ID:         strconv.Itoa(rec.ID),
			Title:      rec.Title,
			Synopsis:   rec.Synopsis,
			Likes:      strconv.Itoa(rec.Likes),
			PlayOnline: rec.PlayOnline != "",
		}
		if rec.LastUpdate != nil {
			doc.LastUpdate = rec.LastUpdate.Format("2006-01-02")
		}
		if rec.ReleaseDate != nil {
			doc.ReleaseDate = rec.ReleaseDate.Format("2006-01-02")
		}
		docs = append(docs, doc)
	}
	return docs
}

// Sink receives the full document set of one export.
type Sink interface {
	Write(ctx context.Context, docs []Document) error
}

// FileSink writes documents to a JSON-lines file, replacing any previous
// export atomically via a rename.
type FileSink struct {
	path   string
	logger *zap.Logger
}

// NewFileSink creates a sink targeting path. Parent directories are
// created on first write.
func NewFileSink(path string, logger *zap.Logger) *FileSink {
	return &FileSink{path: path, logger: logger}
}

func (s *FileSink) Write(ctx context.Context, docs []Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	enc := json.NewEncoder(f)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
		if err := enc.Encode(doc); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("encode document %s: %w", doc.ID, err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("publish export file: %w", err)
	}

	s.logger.Info("search export written",
		zap.String("path", s.path),
		zap.Int("documents", len(docs)))
	return nil
}

// Source supplies the rows to export. The store's SearchRecords method
// satisfies it.
type Source interface {
	SearchRecords(ctx context.Context) ([]catalog.SearchRecord, error)
}

// Export pulls every record from src and writes the document set to sink.
func Export(ctx context.Context, src Source, sink Sink) (int, error) {
	records, err := src.SearchRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("read search records: %w", err)
	}
	docs := BuildDocuments(records)
	if err := sink.Write(ctx, docs); err != nil {
		return 0, fmt.Errorf("write search documents: %w", err)
	}
	return len(docs), nil
}
