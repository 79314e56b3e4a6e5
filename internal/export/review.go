package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"clipforge/internal/config"
	"clipforge/internal/fileutil"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/services"
)

// RouteToReview moves an item's source file into the review directory so an
// operator can triage it. The returned path replaces the item's source path;
// retrying the item picks the file up from its review location.
func RouteToReview(ctx context.Context, cfg *config.Config, logger *slog.Logger, item *queue.Item) (string, error) {
	log := logging.WithContext(ctx, logger)

	reviewDir := strings.TrimSpace(cfg.Paths.ReviewDir)
	if reviewDir == "" {
		return "", services.Wrap(services.ErrConfiguration, "export", "resolve review dir",
			"Review directory not configured; set paths.review_dir in your config.toml", nil)
	}
	if err := os.MkdirAll(reviewDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "export", "ensure review dir",
			"Failed to create review directory", err)
	}

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return "", services.Wrap(services.ErrValidation, "export", "route to review",
			"Queue item has no source path", nil)
	}
	ext := filepath.Ext(source)
	if ext == "" {
		ext = ".mp4"
	}

	target, err := nextReviewPath(reviewDir, reviewSlug(item.ReviewReason), ext)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "export", "allocate review filename",
			"Unable to allocate review filename", err)
	}
	if renameErr := os.Rename(source, target); renameErr != nil {
		var linkErr *os.LinkError
		if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			if copyErr := fileutil.CopyFileVerified(source, target); copyErr != nil {
				return "", services.Wrap(services.ErrTransient, "export", "copy review file",
					"Failed to copy file into review directory", copyErr)
			}
			if err := os.Remove(source); err != nil {
				log.Warn("failed to remove source file after copy", logging.Error(err))
			}
		} else {
			return "", services.Wrap(services.ErrTransient, "export", "move review file",
				"Failed to move file into review directory", renameErr)
		}
	}

	log.Info("routed item to review",
		logging.String("review_file", target),
		logging.String("reason", strings.TrimSpace(item.ReviewReason)),
	)
	return target, nil
}

// nextReviewPath allocates an unused "<prefix>-<n><ext>" path under dir.
func nextReviewPath(dir, prefix, ext string) (string, error) {
	const maxAttempts = 10000
	if strings.TrimSpace(prefix) == "" {
		prefix = "review"
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", prefix, attempt, ext))
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted review filename slots in %s", dir)
}

// reviewSlug reduces a review reason to a filesystem-safe filename prefix.
func reviewSlug(reason string) string {
	reason = strings.ToLower(strings.TrimSpace(reason))
	var slug strings.Builder
	lastHyphen := false
	for _, r := range reason {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if !lastHyphen {
				slug.WriteRune('-')
				lastHyphen = true
			}
		default:
			// drop other runes
		}
	}
	result := strings.Trim(slug.String(), "-")
	if result == "" {
		return "review"
	}
	const maxSlugLength = 60
	if len(result) > maxSlugLength {
		result = strings.Trim(result[:maxSlugLength], "-")
	}
	return result
}
