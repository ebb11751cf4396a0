package secure

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"LLMBridge/internal/apperr"
	"LLMBridge/internal/models"
	"LLMBridge/pkg/logger"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

const (
	DefaultRetention       = 24 * time.Hour
	DefaultOverwritePasses = 3

	dirPerm  os.FileMode = 0o700
	filePerm os.FileMode = 0o600

	artifactPattern = "*_*_*.json"
	overwriteChunk  = 32 << 10
)

var (
	// ErrArtifactGone is returned when reading an artifact whose deletion has started or finished.
	ErrArtifactGone = errors.New("artifact is no longer available")
	// ErrOutsideDir is returned for paths that are not direct children of the managed directory.
	ErrOutsideDir = errors.New("path is outside the managed directory")
)

// Option configures a Store.
type Option func(*Store)

// WithRetention sets how long artifacts live before scheduled deletion.
func WithRetention(d time.Duration) Option {
	return func(s *Store) { s.retention = d }
}

// WithOverwritePasses sets the number of random overwrite passes before unlink.
func WithOverwritePasses(n int) Option {
	return func(s *Store) { s.passes = n }
}

// WithFileSystem replaces the OS file system.
func WithFileSystem(fsys FileSystem) Option {
	return func(s *Store) { s.fs = fsys }
}

// WithLogger sets the logger for deletion failures.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now for sweep age checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store keeps uploaded content in short-lived files inside a single private directory.
// Every artifact is deleted by overwrite-then-unlink, either explicitly, by its
// retention timer, or by the sweep.
type Store struct {
	dir       string
	retention time.Duration
	passes    int
	fs        FileSystem
	log       *logger.Logger
	now       func() time.Time
	pattern   glob.Glob

	mu       sync.Mutex
	timers   map[string]*time.Timer
	deleting map[string]chan struct{}
	closed   bool
}

// NewStore creates a store rooted at dir. The directory is created lazily on first write.
func NewStore(dir string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, apperr.WrapIO("resolve secure dir", err)
	}

	s := &Store{
		dir:       abs,
		retention: DefaultRetention,
		passes:    DefaultOverwritePasses,
		fs:        OSFileSystem{},
		log:       logger.New("secure-store"),
		now:       time.Now,
		pattern:   glob.MustCompile(artifactPattern),
		timers:    make(map[string]*time.Timer),
		deleting:  make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retention <= 0 {
		return nil, apperr.Validationf("new secure store", "retention must be positive, got %s", s.retention)
	}
	if s.passes <= 0 {
		return nil, apperr.Validationf("new secure store", "overwrite passes must be positive, got %d", s.passes)
	}
	return s, nil
}

// Dir returns the absolute managed directory.
func (s *Store) Dir() string { return s.dir }

// Retention returns the retention window.
func (s *Store) Retention() time.Duration { return s.retention }

// CreateArtifact writes content to a new private file and schedules its deletion
// after the retention window. The returned path is unique per call.
func (s *Store) CreateArtifact(ctx context.Context, content []byte, prefix string) (string, error) {
	const op = "create artifact"
	if err := ctx.Err(); err != nil {
		return "", apperr.WrapIO(op, err)
	}

	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		return "", apperr.WrapIO(op, err)
	}
	// MkdirAll leaves an existing directory's mode untouched.
	if err := s.fs.Chmod(s.dir, dirPerm); err != nil {
		return "", apperr.WrapIO(op, err)
	}

	path := filepath.Join(s.dir, artifactName(prefix, s.now()))
	if err := s.write(path, content); err != nil {
		return "", apperr.WrapIO(op, err)
	}

	s.schedule(path)
	return path, nil
}

func (s *Store) write(path string, content []byte) error {
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		_ = s.fs.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(path)
		return err
	}
	return nil
}

func (s *Store) schedule(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timers[path] = time.AfterFunc(s.retention, func() { s.SecureDelete(path) })
}

// ReadArtifact returns the content of a live artifact.
func (s *Store) ReadArtifact(path string) ([]byte, error) {
	const op = "read artifact"
	path, err := s.contained(path)
	if err != nil {
		return nil, apperr.New(apperr.Validation, op, err)
	}

	s.mu.Lock()
	_, inFlight := s.deleting[path]
	s.mu.Unlock()
	if inFlight {
		return nil, apperr.WrapIO(op, ErrArtifactGone)
	}

	data, err := s.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.WrapIO(op, ErrArtifactGone)
	}
	if err != nil {
		return nil, apperr.WrapIO(op, err)
	}
	return data, nil
}

// SecureDelete overwrites the file with random bytes for every configured pass and
// then unlinks it. A missing file is a no-op. Failures are logged, never returned.
// Only regular files are touched, symlinks are refused. Concurrent calls for the
// same path wait for the first one.
func (s *Store) SecureDelete(path string) {
	s.secureDelete(path)
}

// secureDelete reports whether this call removed the file.
func (s *Store) secureDelete(path string) bool {
	path, err := s.contained(path)
	if err != nil {
		s.logFailure(path, err)
		return false
	}

	s.mu.Lock()
	if done, ok := s.deleting[path]; ok {
		s.mu.Unlock()
		<-done
		return false
	}
	done := make(chan struct{})
	s.deleting[path] = done
	if t, ok := s.timers[path]; ok {
		t.Stop()
		delete(s.timers, path)
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, path)
		s.mu.Unlock()
		close(done)
	}()

	info, err := s.fs.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if err != nil {
		s.logFailure(path, err)
		return false
	}
	if !info.Mode().IsRegular() {
		s.logFailure(path, fmt.Errorf("refusing to delete non-regular file (%s)", info.Mode().Type()))
		return false
	}

	if err := s.overwrite(path, info); err != nil {
		s.logFailure(path, err)
		return false
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logFailure(path, err)
		return false
	}
	return true
}

func (s *Store) overwrite(path string, info os.FileInfo) error {
	f, err := s.fs.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open for overwrite: %w", err)
	}
	defer f.Close()

	// 路径在 Lstat 之后被替换时拒绝覆写
	opened, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat opened file: %w", err)
	}
	if !os.SameFile(info, opened) {
		return fmt.Errorf("file changed before overwrite")
	}

	size := info.Size()
	buf := make([]byte, min(size, int64(overwriteChunk)))
	for pass := 1; pass <= s.passes; pass++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("pass %d: %w", pass, err)
		}
		for remaining := size; remaining > 0; {
			n := min(remaining, int64(len(buf)))
			if _, err := rand.Read(buf[:n]); err != nil {
				return fmt.Errorf("pass %d: random: %w", pass, err)
			}
			if _, err := f.Write(buf[:n]); err != nil {
				return fmt.Errorf("pass %d: write: %w", pass, err)
			}
			remaining -= n
		}
		if err := f.Sync(); err != nil {
			return fmt.Errorf("pass %d: sync: %w", pass, err)
		}
	}
	return nil
}

// SweepExpired secure-deletes every artifact in the directory whose modification
// time is older than the retention window and returns how many it deleted.
// A missing directory is not an error.
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.WrapIO("sweep expired", err)
	}

	cutoff := s.now().Add(-s.retention)
	deleted := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if entry.IsDir() || !s.pattern.Match(entry.Name()) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		mtime, err := s.fs.ModTime(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logFailure(path, err)
			}
			continue
		}
		if mtime.Before(cutoff) && s.secureDelete(path) {
			deleted++
		}
	}
	return deleted, nil
}

// Close stops all pending deletion timers. Artifacts already on disk are left
// for the next sweep.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for path, t := range s.timers {
		t.Stop()
		delete(s.timers, path)
	}
	return nil
}

// Pending returns the number of scheduled deletions.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// contained cleans path and checks that it names a direct child of the managed directory.
func (s *Store) contained(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, err
	}
	if filepath.Dir(abs) != s.dir {
		return abs, ErrOutsideDir
	}
	return abs, nil
}

func (s *Store) logFailure(path string, err error) {
	s.log.WithField("file", filepath.Base(path)).
		WithError(models.ErrorInfo{Message: err.Error(), Type: "secure_delete"}).
		Error("secure delete failed")
}

// artifactName builds "<prefix>_<unixMillis>_<random9>.json".
func artifactName(prefix string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s.json", sanitizePrefix(prefix), now.UnixMilli(), random)
}

func sanitizePrefix(prefix string) string {
	if prefix == "" {
		return "data"
	}
	b := []byte(prefix)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			b[i] = '-'
		}
	}
	return string(b)
}
