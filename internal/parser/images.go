package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const workbookMediaDir = "xl/media/"

// ExtractImages copies media embedded in an OOXML workbook into dir as
// post_<key>_image_<n>.<ext> and returns the written file names in archive order.
// A workbook without media returns no names and no error.
func ExtractImages(workbook, dir, key string) ([]string, error) {
	zr, err := zip.OpenReader(workbook)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook archive: %v", ErrSourceUnreadable, err)
	}
	defer func() { _ = zr.Close() }()

	var media []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, workbookMediaDir) && !strings.HasSuffix(f.Name, "/") {
			media = append(media, f)
		}
	}
	if len(media) == 0 {
		return nil, nil
	}
	sort.Slice(media, func(i, j int) bool { return media[i].Name < media[j].Name })

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	names := make([]string, 0, len(media))
	for i, f := range media {
		ext := strings.TrimPrefix(path.Ext(f.Name), ".")
		if ext == "" {
			ext = "png"
		}
		name := fmt.Sprintf("post_%s_image_%d.%s", key, i+1, strings.ToLower(ext))
		if err := copyZipFile(f, filepath.Join(dir, name)); err != nil {
			return names, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func copyZipFile(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
