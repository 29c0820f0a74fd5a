package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileName returns "<invoiceNumber>.<ext>" with path separators replaced
func FileName(invoiceNumber, ext string) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, strings.TrimSpace(invoiceNumber))
	if base == "" || base == "." || base == ".." {
		base = "invoice"
	}
	return base + "." + ext
}

// writeFile streams into a temp file next to the target and renames it into
// place, so a failed export never leaves a partial file behind
func writeFile(dir, name string, write func(io.Writer) error) (string, int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return "", 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("failed to move export into place: %w", err)
	}
	committed = true
	return path, info.Size(), nil
}
