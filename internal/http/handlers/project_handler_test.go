package handlers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// memFile реализует multipart.File поверх байтов в памяти.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func newMemFile(data []byte) memFile {
	return memFile{Reader: bytes.NewReader(data)}
}

func TestDetectDocumentType_AcceptsPDF(t *testing.T) {
	data := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte{0x20}, 64)...)

	mime, err := detectDocumentType(newMemFile(data), "contract.pdf")

	assert.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
}

func TestDetectDocumentType_RejectsPlainZip(t *testing.T) {
	// Обычный zip архив без структуры docx/odt.
	data := append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 256)...)

	_, err := detectDocumentType(newMemFile(data), "archive.zip")

	assert.Error(t, err)
}

func TestDetectDocumentType_TxtFallsBackToExtension(t *testing.T) {
	mime, err := detectDocumentType(newMemFile([]byte("исходный текст для перевода")), "source.txt")

	assert.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
}

func TestDetectDocumentType_RejectsUnknownBinary(t *testing.T) {
	data := []byte{0x7F, 0x45, 0x4C, 0x46, 0x02, 0x01, 0x01, 0x00}

	_, err := detectDocumentType(newMemFile(data), "document.pdf")

	assert.Error(t, err)
}

func TestDetectDocumentType_RewindsFile(t *testing.T) {
	data := append([]byte("%PDF-1.4\n"), []byte("содержимое")...)
	file := newMemFile(data)

	_, err := detectDocumentType(file, "contract.pdf")
	assert.NoError(t, err)

	rest := new(strings.Builder)
	_, err = file.WriteTo(rest)
	assert.NoError(t, err)
	assert.Equal(t, string(data), rest.String())
}
