package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDocumentStorage_SaveKeepsReadableName(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	owner := uuid.New()
	path, size, err := store.Save(context.Background(), owner, "Договор поставки.pdf", strings.NewReader("%PDF-1.4 данные"))
	assert.NoError(t, err)
	assert.Equal(t, int64(len("%PDF-1.4 данные")), size)

	assert.True(t, strings.HasPrefix(path, owner.String()+string(os.PathSeparator)))
	assert.True(t, strings.HasSuffix(path, "Договор_поставки.pdf"))
}

func TestDocumentStorage_SameNameDoesNotOverwrite(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	owner := uuid.New()
	first, _, err := store.Save(context.Background(), owner, "contract.pdf", strings.NewReader("первый"))
	assert.NoError(t, err)
	second, _, err := store.Save(context.Background(), owner, "contract.pdf", strings.NewReader("второй"))
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDocumentStorage_RejectsOversizedFile(t *testing.T) {
	root := t.TempDir()
	store, err := NewDocumentStorage(root, 1)
	assert.NoError(t, err)

	big := strings.NewReader(strings.Repeat("a", 1024*1024+1))
	_, _, err = store.Save(context.Background(), uuid.New(), "big.pdf", big)
	assert.Error(t, err)

	// Временный файл не должен остаться после отказа.
	entries, err := os.ReadDir(root)
	assert.NoError(t, err)
	for _, entry := range entries {
		if entry.IsDir() {
			sub, err := os.ReadDir(filepath.Join(root, entry.Name()))
			assert.NoError(t, err)
			assert.Empty(t, sub)
		}
	}
}

func TestDocumentStorage_RemoveRejectsEscapingPath(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	err = store.Remove("../../etc/passwd")
	assert.Error(t, err)
}

func TestDocumentStorage_RemoveMissingFileIsNoop(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	assert.NoError(t, store.Remove(filepath.Join(uuid.NewString(), "gone.pdf")))
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"contract.pdf", "contract.pdf"},
		{"../../evil.sh", "evil.sh"},
		{"от чёта за июль.docx", "от_чёта_за_июль.docx"},
		{"", "document"},
		{"...", "document"},
	}

	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, ожидалось %q", tc.in, got, tc.want)
		}
	}
}
