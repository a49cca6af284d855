package listing

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CreateFS defines a file system interface that supports creating files
// and directories in addition to reading them.
type CreateFS interface {
	fs.FS
	// Sub returns a filesystem for a subdirectory.
	Sub(name string) (sub CreateFS, err error)
	// Create creates a new file for writing.
	Create(name string) (file io.WriteCloser, err error)
	// Mkdir creates a new directory with the specified permissions.
	Mkdir(name string, filemode fs.FileMode) (err error)
}

// DirFS returns a CreateFS rooted at an operating system directory.
func DirFS(dir string) CreateFS {
	return dirFS(dir)
}

type dirFS string

var _ CreateFS = dirFS("")

func (dir dirFS) path(name string) (path string, err error) {
	if !fs.ValidPath(name) {
		err = &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
		return
	}

	path = filepath.Join(string(dir), filepath.FromSlash(name))
	return
}

func (dir dirFS) Open(name string) (file fs.File, err error) {
	return os.DirFS(string(dir)).Open(name)
}

func (dir dirFS) Sub(name string) (sub CreateFS, err error) {
	path, err := dir.path(name)
	if err != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if !info.IsDir() {
		err = &fs.PathError{Op: "sub", Path: name, Err: ErrNotDirectory}
		return
	}

	sub = dirFS(path)
	return
}

func (dir dirFS) Create(name string) (file io.WriteCloser, err error) {
	path, err := dir.path(name)
	if err != nil {
		return
	}

	return os.Create(path)
}

func (dir dirFS) Mkdir(name string, filemode fs.FileMode) (err error) {
	path, err := dir.path(name)
	if err != nil {
		return
	}

	return os.Mkdir(path, filemode)
}
