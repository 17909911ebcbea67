package preview

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

// Export writes the bytes held by slot into dir as ghibli-art-<unix-millis>.<ext>
// and returns the written path.
func (m *Manager) Export(slot domain.Slot, dir string) (string, error) {
	handle, ok := m.Handle(slot)
	if !ok {
		return "", fmt.Errorf("no live resource in slot %s", slot)
	}

	name := fmt.Sprintf("ghibli-art-%d%s", handle.CreatedAt.UnixMilli(), extensionFor(handle.MIMEType))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, handle.SourceData, 0o644); err != nil {
		return "", fmt.Errorf("export %s: %w", slot, err)
	}
	return path, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
