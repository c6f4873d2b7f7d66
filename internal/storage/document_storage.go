package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Имя документа видно и заказчику, и переводчику, поэтому оригинальное
// название сохраняется в пути, а не заменяется на случайное.
const maxStoredNameLen = 100

// DocumentStorage отвечает за файловое хранилище документов проектов.
// Файлы раскладываются по каталогам владельцев: <root>/<ownerID>/<nonce>_<имя>.
type DocumentStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewDocumentStorage создаёт файловое хранилище.
func NewDocumentStorage(rootPath string, maxUploadMB int64) (*DocumentStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &DocumentStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save сохраняет документ и возвращает относительный путь и размер.
// Запись идёт во временный файл с переименованием в конце, чтобы при
// обрыве загрузки в хранилище не оставался недописанный документ.
func (s *DocumentStorage) Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	ownerDir := filepath.Join(s.rootPath, ownerID.String())
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	tmp, err := os.CreateTemp(ownerDir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}

	discard := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	limited := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(tmp, &limited)
	if err != nil {
		discard()
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		discard()
		return "", 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	// Короткий nonce защищает от перезаписи одноимённых документов.
	fileName := fmt.Sprintf("%s_%s", uuid.NewString()[:8], sanitizeFilename(originalName))
	targetPath := filepath.Join(ownerDir, fileName)

	if err := os.Rename(tmp.Name(), targetPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return filepath.Join(ownerID.String(), fileName), written, nil
}

// Remove удаляет документ из хранилища. Путь за пределами корня отклоняется.
func (s *DocumentStorage) Remove(relativePath string) error {
	target := filepath.Join(s.rootPath, filepath.Clean(relativePath))

	rootAbs, err := filepath.Abs(s.rootPath)
	if err != nil {
		return fmt.Errorf("storage: не удалось определить корень хранилища: %w", err)
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("storage: не удалось определить путь файла: %w", err)
	}
	if !strings.HasPrefix(targetAbs, rootAbs+string(os.PathSeparator)) {
		return fmt.Errorf("storage: путь %s выходит за пределы хранилища", relativePath)
	}

	if err := os.Remove(targetAbs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename оставляет в имени только безопасные символы
// и ограничивает длину, сохраняя расширение.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		case r >= 'а' && r <= 'я', r >= 'А' && r <= 'Я', r == 'ё', r == 'Ё':
			return r
		default:
			return '_'
		}
	}, name)

	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "document"
	}

	if len(cleaned) > maxStoredNameLen {
		ext := filepath.Ext(cleaned)
		if len(ext) > 10 {
			ext = ""
		}
		cleaned = cleaned[:maxStoredNameLen-len(ext)] + ext
	}

	return cleaned
}
