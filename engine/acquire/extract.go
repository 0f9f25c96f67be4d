package acquire

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/compozy/iconpipe/engine/core"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

var ErrNotGzip = errors.New("download is not a gzip archive")

// Extract unpacks a gzipped tarball into dest. Only directories and regular
// files are materialized; entries escaping dest are rejected.
func Extract(fs afero.Fs, archive []byte, dest string) error {
	if mt := mimetype.Detect(archive); !mt.Is("application/gzip") {
		return fmt.Errorf("%w: detected %s", ErrNotGzip, mt.String())
	}
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tarball: %w", err)
		}
		target, err := entryPath(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(fs, target, tr); err != nil {
				return err
			}
		}
	}
}

func entryPath(dest, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", core.NewError(nil, core.CodePathEscape, map[string]any{"entry": name})
	}
	return filepath.Join(dest, clean), nil
}

func writeEntry(fs afero.Fs, target string, r io.Reader) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := fs.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return f.Close()
}
