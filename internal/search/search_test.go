package search

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tfgs-backend/internal/catalog"
)

func TestBuildDocuments(t *testing.T) {
	t.Parallel()

	updated := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	records := []catalog.SearchRecord{
		{
			ID:         15,
			Title:      "Game A",
			Synopsis:   "A transformation story.",
			Likes:      5,
			LastUpdate: &updated,
			PlayOnline: "https://play.example/launch?id=15",
		},
		{ID: 99, Title: "Game B"},
	}

	docs := BuildDocuments(records)
	require.Equal(t, []Document{
		{
			ID:         "15",
			Title:      "Game A",
			Synopsis:   "A transformation story.",
			Likes:      "5",
			LastUpdate: "2023-06-01",
			PlayOnline: true,
		},
		{ID: "99", Title: "Game B", Likes: "0"},
	}, docs)
}

func TestFileSinkWritesJSONLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export", "documents.jsonl")
	sink := NewFileSink(path, zap.NewNop())

	docs := []Document{
		{ID: "15", Title: "Game A", Likes: "5"},
		{ID: "99", Title: "Game B", Likes: "0"},
	}
	require.NoError(t, sink.Write(context.Background(), docs))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []Document
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var doc Document
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &doc))
		got = append(got, doc)
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, docs, got)

	// No leftover temp file after the rename.
	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestFileSinkReplacesPreviousExport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "documents.jsonl")
	sink := NewFileSink(path, zap.NewNop())

	require.NoError(t, sink.Write(context.Background(), []Document{{ID: "1"}, {ID: "2"}}))
	require.NoError(t, sink.Write(context.Background(), []Document{{ID: "3"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"3","title":"","synopsis":"","likes":"","last_update":"","release_date":"","play_online":false}`,
		string(data))
}

type fakeSource struct {
	records []catalog.SearchRecord
	err     error
}

func (s *fakeSource) SearchRecords(context.Context) ([]catalog.SearchRecord, error) {
	return s.records, s.err
}

func TestExport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "documents.jsonl")
	src := &fakeSource{records: []catalog.SearchRecord{{ID: 15, Title: "Game A"}}}

	count, err := Export(context.Background(), src, NewFileSink(path, zap.NewNop()))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"id":"15"`)
}

func TestExportSourceError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: errors.New("db down")}
	_, err := Export(context.Background(), src, NewFileSink(filepath.Join(t.TempDir(), "x.jsonl"), zap.NewNop()))
	require.Error(t, err)
}
