package storage

import (
	"fmt"
	"strings"
)

func WorkbookArchivePrefix(merchantID int64) string {
	return fmt.Sprintf("reports/merchants/%d/", merchantID)
}

// WorkbookArchiveKey places an archive under reports/merchants/<id>/<label>/<job>.<ext>.
func WorkbookArchiveKey(merchantID int64, label string, jobID string, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	return fmt.Sprintf("%s%s/%s.%s", WorkbookArchivePrefix(merchantID), label, jobID, ext)
}
