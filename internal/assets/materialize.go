package assets

import (
	"fmt"
	"io"
	"os"

	"github.com/glif-dev/glif/internal/apierr"
)

// Materialization tiers, in the order they are tried.
const (
	StrategyRename   = "rename"
	StrategyCopy     = "copy"
	StrategyHardlink = "hardlink"
	StrategyKeep     = "keep-original"
)

// Strategy moves sourcePath to targetPath by one mechanism. Each strategy
// either completes fully or leaves the prior state untouched.
type Strategy struct {
	Name  string
	Apply func(sourcePath, targetPath string) error
}

// DefaultStrategies is the standard chain: atomic rename, then copy with a
// size check and source delete, then a hard link that leaves the source in
// place.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyRename, Apply: renameStrategy},
		{Name: StrategyCopy, Apply: copyVerifyStrategy},
		{Name: StrategyHardlink, Apply: hardlinkStrategy},
	}
}

// Materialize tries each strategy in order. When every tier fails the file
// keeps its original name and the failure is reported as a warning, because
// losing the canonical name is recoverable by the caller while losing the
// asset is not. The returned strategy is the tier that held, finalPath the
// path the asset ended up at.
func Materialize(strategies []Strategy, sourcePath, targetPath string) (strategy, finalPath, warning string) {
	if sourcePath == targetPath {
		return StrategyRename, targetPath, ""
	}

	var lastErr error
	for _, candidate := range strategies {
		if err := candidate.Apply(sourcePath, targetPath); err != nil {
			lastErr = err
			continue
		}
		return candidate.Name, targetPath, ""
	}

	warning = fmt.Sprintf("kept original filename %s: %v", sourcePath, lastErr)
	return StrategyKeep, sourcePath, warning
}

func renameStrategy(sourcePath, targetPath string) error {
	return os.Rename(sourcePath, targetPath)
}

// copyVerifyStrategy copies, verifies the byte size, then deletes the
// source. A failed verification removes the bad copy and keeps the source.
func copyVerifyStrategy(sourcePath, targetPath string) error {
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	target, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	written, err := io.Copy(target, source)
	if closeErr := target.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(targetPath)
		return fmt.Errorf("copy: %w", err)
	}
	if written != sourceInfo.Size() {
		os.Remove(targetPath)
		return fmt.Errorf("copy verification failed: wrote %d of %d bytes", written, sourceInfo.Size())
	}

	// The canonical copy is verified at this point; a lingering source must
	// not fail the tier.
	os.Remove(sourcePath)
	return nil
}

func hardlinkStrategy(sourcePath, targetPath string) error {
	return os.Link(sourcePath, targetPath)
}

// writeFile lands bytes on disk, creating the parent directory when
// missing, and classifies failures as FilesystemError.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apierr.Wrap(apierr.FilesystemError, "write-asset", err)
	}
	return nil
}
