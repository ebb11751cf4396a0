package secure

import (
	"io"
	"os"
	"time"

	"github.com/djherbis/times"
)

// File is the subset of *os.File used for overwriting.
type File interface {
	io.Writer
	io.Seeker
	io.Closer
	Sync() error
	Stat() (os.FileInfo, error)
}

// FileSystem is the file access the store needs. OSFileSystem is the production implementation.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	Chmod(path string, perm os.FileMode) error
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	ReadFile(name string) ([]byte, error)
	Lstat(name string) (os.FileInfo, error)
	ModTime(name string) (time.Time, error)
	ReadDir(name string) ([]os.DirEntry, error)
	Remove(name string) error
}

// OSFileSystem delegates to the os package.
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (OSFileSystem) Chmod(path string, perm os.FileMode) error    { return os.Chmod(path, perm) }
func (OSFileSystem) ReadFile(name string) ([]byte, error)         { return os.ReadFile(name) }
func (OSFileSystem) Lstat(name string) (os.FileInfo, error)       { return os.Lstat(name) }
func (OSFileSystem) ReadDir(name string) ([]os.DirEntry, error)   { return os.ReadDir(name) }
func (OSFileSystem) Remove(name string) error                     { return os.Remove(name) }

func (OSFileSystem) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ModTime 读取文件自身（不跟随符号链接）的修改时间。
func (OSFileSystem) ModTime(name string) (time.Time, error) {
	ts, err := times.Lstat(name)
	if err != nil {
		return time.Time{}, err
	}
	return ts.ModTime(), nil
}
