package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

const maxUploadMemory = 32 << 20

var errMissingFile = errors.New("missing upload file")

// saveUpload copies the named multipart form file into the temp directory and
// returns its path. The caller owns the file; the blob store removes it after
// uploading, success or not.
func saveUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", errMissingFile
		}
		return "", fmt.Errorf("read form file %s: %w", field, err)
	}
	defer file.Close()

	return spool(file, header, dir)
}

func spool(file multipart.File, header *multipart.FileHeader, dir string) (string, error) {
	ext := filepath.Ext(header.Filename)
	tmp, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool upload: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), nil
}
