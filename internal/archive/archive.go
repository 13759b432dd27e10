// Package archive saves raw page snapshots to disk so a run can be
// re-parsed later without hitting the origin again.
package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Archive writes page bodies under root/<runID>/<gameID>.<doc>.html.
type Archive struct {
	root     string
	maxBytes int64
	logger   *zap.Logger
}

// New returns an archive rooted at dir.
func New(root string, maxBytes int64, logger *zap.Logger) (*Archive, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir %s: %w", root, err)
	}
	return &Archive{
		root:     root,
		maxBytes: maxBytes,
		logger:   logger,
	}, nil
}

// Save writes one page snapshot. Oversized bodies are rejected rather
// than truncated.
func (a *Archive) Save(runID string, gameID int, doc string, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("empty page body")
	}
	if a.maxBytes > 0 && int64(len(body)) > a.maxBytes {
		return fmt.Errorf("page size %d exceeds max %d", len(body), a.maxBytes)
	}
	dir := filepath.Join(a.root, runID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create run dir %s: %w", dir, err)
	}
	target := filepath.Join(dir, fmt.Sprintf("%d.%s.html", gameID, doc))
	if err := os.WriteFile(target, body, 0o600); err != nil {
		return fmt.Errorf("write snapshot %s: %w", target, err)
	}
	a.logger.Debug("archived page",
		zap.Int("game_id", gameID),
		zap.String("doc", doc),
		zap.String("path", target))
	return nil
}
