package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"
)

// storeUpload copies src into a fresh temp file under dir. The caller owns
// the returned path and must remove it.
func storeUpload(dir string, src io.Reader) (string, int64, error) {
	f, err := os.CreateTemp(dir, "upload-*.csv")
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", 0, err
	}
	return f.Name(), n, nil
}

func removeUpload(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("remove upload %s: %v", path, err)
	}
}
