package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSave(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a, err := New(root, 1024, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, a.Save("run-1", 15, "detail", []byte("<html>detail</html>")))
	require.NoError(t, a.Save("run-1", 15, "reviews", []byte("<html>reviews</html>")))

	data, err := os.ReadFile(filepath.Join(root, "run-1", "15.detail.html"))
	require.NoError(t, err)
	require.Equal(t, "<html>detail</html>", string(data))

	data, err = os.ReadFile(filepath.Join(root, "run-1", "15.reviews.html"))
	require.NoError(t, err)
	require.Equal(t, "<html>reviews</html>", string(data))
}

func TestSaveRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	a, err := New(t.TempDir(), 1024, zap.NewNop())
	require.NoError(t, err)
	require.Error(t, a.Save("run-1", 15, "detail", nil))
}

func TestSaveRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	a, err := New(t.TempDir(), 4, zap.NewNop())
	require.NoError(t, err)
	require.Error(t, a.Save("run-1", 15, "detail", []byte("too big")))
}

func TestNewCreatesRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "nested", "archive")
	_, err := New(root, 1024, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
