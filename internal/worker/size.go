package worker

import (
	"log/slog"
	"os"
)

const bytesPerMB = 1024 * 1024

// FileSizeMB returns the size of path in mebibytes.
func FileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.Size()) / bytesPerMB, nil
}

// SizeOrZero measures path and reports 0 when the file can't be read, so a
// missing rendition shows up as a zero point instead of aborting the chart.
func SizeOrZero(logger *slog.Logger, path string) float64 {
	size, err := FileSizeMB(path)
	if err != nil {
		logger.Error("could not read file", slog.String("path", path), slog.Any("error", err))
		return 0
	}
	return size
}
