package internal

import (
	"archive/zip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	uerror "t0ast.cc/floorpier/util/error"
	uio "t0ast.cc/floorpier/util/io"
)

var ErrUnsafeArchivePath = errors.New("archive entry escapes the destination directory")

// ArchiveCodec unpacks and packs extension archives.
type ArchiveCodec interface {
	Unpack(archivePath, destDir string) error
	Pack(srcDir, archivePath string) error
}

// ZipCodec handles zip archives such as .xpi extension packages.
type ZipCodec struct{}

func (ZipCodec) Unpack(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return uerror.StackTracef("%w: %s", ErrUnsafeArchivePath, archivePath)
	}
	if err != nil {
		return uerror.StackTracef("open %s: %w", archivePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, uio.FileModeURWXGRWXO); err != nil {
		return uerror.WithStackTrace(err)
	}
	for _, f := range r.File {
		if err := unpackZipEntry(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

func unpackZipEntry(f *zip.File, destDir string) error {
	name := filepath.FromSlash(f.Name)
	if !filepath.IsLocal(name) {
		return uerror.StackTracef("%w: %s", ErrUnsafeArchivePath, f.Name)
	}
	dst := filepath.Join(destDir, name)

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(dst, uio.FileModeURWXGRWXO); err != nil {
			return uerror.WithStackTrace(err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), uio.FileModeURWXGRWXO); err != nil {
		return uerror.WithStackTrace(err)
	}
	rc, err := f.Open()
	if err != nil {
		return uerror.StackTracef("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = uio.FileModeURWGRWO
	}
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return uerror.WithStackTrace(err)
	}
	if _, err := io.Copy(dstFile, rc); err != nil {
		dstFile.Close()
		return uerror.StackTracef("extract %s: %w", f.Name, err)
	}
	return uerror.WithStackTrace(dstFile.Close())
}

// Pack writes every file below srcDir into a new zip archive at
// archivePath. Entry names are relative to srcDir.
func (ZipCodec) Pack(srcDir, archivePath string) error {
	if err := os.MkdirAll(filepath.Dir(archivePath), uio.FileModeURWXGRWXO); err != nil {
		return uerror.WithStackTrace(err)
	}
	out, err := os.Create(archivePath)
	if err != nil {
		return uerror.WithStackTrace(err)
	}

	w := zip.NewWriter(out)
	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil || rel == "." {
			return err
		}
		return packZipEntry(w, path, filepath.ToSlash(rel), d)
	})
	closeErr := w.Close()
	if err := out.Close(); closeErr == nil {
		closeErr = err
	}
	if walkErr != nil {
		return uerror.StackTracef("pack %s: %w", srcDir, walkErr)
	}
	return uerror.WithStackTrace(closeErr)
}

func packZipEntry(w *zip.Writer, path, name string, d fs.DirEntry) error {
	fileInfo, err := d.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(fileInfo)
	if err != nil {
		return err
	}
	header.Name = name
	if d.IsDir() {
		header.Name += "/"
		_, err := w.CreateHeader(header)
		return err
	}
	header.Method = zip.Deflate

	entry, err := w.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(entry, src)
	return err
}
