package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/canectors/spfanalyzer/internal/errhandling"
	"github.com/canectors/spfanalyzer/internal/logger"
)

const outputFileMode = 0644

// writeAtomic writes a file through a temp file in the same directory and
// renames it over path, so readers never see a partial file.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errhandling.NewOutputError(fmt.Sprintf("creating output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errhandling.NewOutputError(fmt.Sprintf("creating temp file for %s", path), err)
	}
	tempPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("failed to remove temp output file",
				slog.String("temp_path", tempPath),
				slog.String("error", rmErr.Error()),
			)
		}
	}

	if err := write(tmp); err != nil {
		cleanup()
		return errhandling.NewOutputError(fmt.Sprintf("writing %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errhandling.NewOutputError(fmt.Sprintf("closing temp file for %s", path), err)
	}
	if err := os.Chmod(tempPath, outputFileMode); err != nil {
		cleanup()
		return errhandling.NewOutputError(fmt.Sprintf("setting mode on %s", tempPath), err)
	}

	// Rename temp file to final path (atomic on POSIX)
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		logger.Warn("failed to rename output file",
			slog.String("temp_path", tempPath),
			slog.String("final_path", path),
			slog.String("error", err.Error()),
		)
		return errhandling.NewOutputError(fmt.Sprintf("replacing %s", path), err)
	}
	return nil
}
