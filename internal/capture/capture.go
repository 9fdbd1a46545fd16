// Package capture persists pages to disk. MHTML via the DevTools snapshot
// command is the primary format; a plain DOM serialization is the format of
// last resort for pages whose subresources never finish loading.
package capture

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kazantsevivan2813-art/kogscrape/internal/types"
)

// Page is the minimal surface Capture needs from a live browser page.
type Page interface {
	// Snapshot returns the full page as MHTML.
	Snapshot() ([]byte, error)

	// SerializeDOM returns the current DOM as an HTML string.
	SerializeDOM() (string, error)

	// ExpandAll clicks every collapsed-content and reveal-answer control
	// it can find, returning how many clicks landed and how many failed.
	ExpandAll() (clicked, failed int)

	// Settle blocks for d to let late content arrive.
	Settle(d time.Duration)
}

// Service writes page captures into class folders.
type Service struct {
	settle time.Duration
	logger *slog.Logger
}

func NewService(settle time.Duration, logger *slog.Logger) *Service {
	return &Service{
		settle: settle,
		logger: logger.With("component", "capture"),
	}
}

// Capture saves the page under target.Folder as the sanitized logical name
// plus extension, falling back through three tiers:
//
//  1. immediate MHTML snapshot
//  2. settle, then MHTML snapshot again
//  3. plain DOM serialization to .html
//
// It returns the path written. An existing file of the same name is
// overwritten; re-runs converge on the freshest capture.
func (s *Service) Capture(p Page, target types.CaptureTarget) (string, error) {
	clicked, failed := p.ExpandAll()
	if clicked > 0 || failed > 0 {
		s.logger.Debug("expanded page content", "clicked", clicked, "failed", failed)
	}

	base := SanitizeFilename(target.LogicalName)
	if base == "" {
		base = "untitled"
	}

	if path, err := s.writeSnapshot(p, target.Folder, base); err == nil {
		return path, nil
	} else {
		s.logger.Debug("immediate snapshot failed", "name", base, "error", err)
	}

	p.Settle(s.settle)
	if path, err := s.writeSnapshot(p, target.Folder, base); err == nil {
		s.logger.Debug("snapshot succeeded after settle", "name", base)
		return path, nil
	} else {
		s.logger.Debug("settled snapshot failed", "name", base, "error", err)
	}

	html, err := p.SerializeDOM()
	if err != nil || strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("all capture tiers failed for %q: %w", target.LogicalName, types.ErrCaptureFailure)
	}
	path := filepath.Join(target.Folder, base+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Warn("captured as plain DOM, subresources not embedded", "path", path)
	return path, nil
}

func (s *Service) writeSnapshot(p Page, dir, base string) (string, error) {
	data, err := p.Snapshot()
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty snapshot: %w", types.ErrCaptureFailure)
	}
	path := filepath.Join(dir, base+".mhtml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

const forbiddenFileChars = `<>:"/\|?*`

// SanitizeFilename maps a display label to a safe file stem: filesystem-
// reserved characters become spaces, whitespace runs become single
// underscores, and the result is trimmed and capped at 100 runes. The
// mapping is idempotent, so sanitizing an already-sanitized name is a
// no-op.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenFileChars, r) || r < 0x20 {
			return ' '
		}
		return r
	}, name)

	joined := strings.Join(strings.Fields(cleaned), "_")
	joined = strings.Trim(joined, "_")

	runes := []rune(joined)
	if len(runes) > 100 {
		joined = strings.Trim(string(runes[:100]), "_")
	}
	return joined
}
