package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/fileutil"
)

// ItemDirName returns the staging directory name for a queue item. The name
// embeds the item ID so stale directories can be traced back to the queue.
func ItemDirName(itemID int64, title string) string {
	token := fileutil.SanitizeToken(title)
	return fmt.Sprintf("queue-%d-%s", itemID, token)
}

// EnsureItemDir creates (if needed) and returns the staging directory for an item.
func EnsureItemDir(stagingDir string, itemID int64, title string) (string, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return "", fmt.Errorf("staging dir not configured")
	}
	dir := filepath.Join(stagingDir, ItemDirName(itemID, title))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure staging dir: %w", err)
	}
	return dir, nil
}

// RemoveItemDir deletes an item's staging directory after export.
func RemoveItemDir(stagingDir string, itemID int64, title string) error {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil
	}
	return os.RemoveAll(filepath.Join(stagingDir, ItemDirName(itemID, title)))
}
