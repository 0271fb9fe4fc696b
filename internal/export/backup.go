// Package export takes timestamped backups of the processed artifacts and
// assembles the shareable export bundle.
package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"macropipe/internal/config"
	"macropipe/internal/errors"
)

// backupMetadata is written alongside the copied artifacts
type backupMetadata struct {
	BackupTimestamp string   `json:"backup_timestamp"`
	FilesBackedUp   []string `json:"files_backed_up"`
	TotalFiles      int      `json:"total_files"`
	BackupLocation  string   `json:"backup_location"`
}

// CreateBackup copies the processed artifacts into a timestamped backup
// directory and records a metadata file. Artifacts that do not exist yet
// are skipped, not errors.
func CreateBackup(paths config.PathConfig, timestamp string, logger *logrus.Logger) (string, error) {
	backupDir := filepath.Join(paths.BackupDir, timestamp)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", errors.ExportError("failed to create backup directory", err)
	}

	var backedUp []string
	for _, src := range []string{paths.LongPath(), paths.WidePath(), paths.SummaryPath()} {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(backupDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return "", errors.ExportError("failed to back up "+filepath.Base(src), err)
		}
		backedUp = append(backedUp, filepath.Base(src))
	}

	meta := backupMetadata{
		BackupTimestamp: timestamp,
		FilesBackedUp:   backedUp,
		TotalFiles:      len(backedUp),
		BackupLocation:  backupDir,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", errors.ExportError("failed to marshal backup metadata", err)
	}
	if err := os.WriteFile(filepath.Join(backupDir, "backup_metadata.json"), data, 0o644); err != nil {
		return "", errors.ExportError("failed to write backup metadata", err)
	}

	logger.WithFields(logrus.Fields{
		"location": backupDir,
		"files":    len(backedUp),
	}).Info("Backup created")

	return backupDir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
