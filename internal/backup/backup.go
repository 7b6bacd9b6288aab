// Package backup snapshots the database into archive files and restores it
// from them.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/activity"
	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/model"
)

const (
	prefix     = "backup_"
	ext        = ".sqlite3"
	nameLayout = "20060102_150405"
)

var archiveName = regexp.MustCompile(`^backup_\d{8}_\d{6}(_\d+)?\.sqlite3$`)

// Coordinator owns the backup directory. Its operations are serialised.
type Coordinator struct {
	DB       *sql.DB
	Dir      string
	Log      *zap.Logger
	Activity *activity.Recorder
	Now      func() time.Time

	mu sync.Mutex
}

// New creates dir if needed and returns a Coordinator for it.
func New(database *sql.DB, dir string, log *zap.Logger) (*Coordinator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, apperr.Upstream("creating backup directory", err)
	}
	return &Coordinator{
		DB:       database,
		Dir:      dir,
		Log:      log,
		Activity: activity.New(database, log),
		Now:      time.Now,
	}, nil
}

// ValidName reports whether name looks like an archive this package wrote.
func ValidName(name string) bool {
	return archiveName.MatchString(name)
}

// Create writes a consistent snapshot of the whole database to a new
// timestamped archive.
func (c *Coordinator) Create(ctx context.Context, actor model.Actor) (*model.Backup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name, err := c.freeName()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(c.Dir, name)

	if _, err := c.DB.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		os.Remove(path)
		return nil, apperr.Upstream("writing backup", err)
	}

	b, err := c.describe(name)
	if err != nil {
		return nil, err
	}
	c.Log.Info("backup created", zap.String("file", name), zap.Int64("bytes", b.Size))
	c.Activity.Record(ctx, actor, model.ActionCreate, "backups", name, "Created backup "+name)
	return b, nil
}

func (c *Coordinator) freeName() (string, error) {
	base := prefix + c.Now().Format(nameLayout)
	for i := 1; i < 100; i++ {
		name := base + ext
		if i > 1 {
			name = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		_, err := os.Stat(filepath.Join(c.Dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", apperr.Upstream("checking backup directory", err)
		}
	}
	return "", apperr.Upstream("naming backup", errors.New("too many backups in one second"))
}

func (c *Coordinator) describe(name string) (*model.Backup, error) {
	info, err := os.Stat(filepath.Join(c.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("backup", name)
	}
	if err != nil {
		return nil, apperr.Upstream("reading backup", err)
	}

	created := info.ModTime()
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
	if len(stamp) >= len(nameLayout) {
		if t, err := time.ParseInLocation(nameLayout, stamp[:len(nameLayout)], time.Local); err == nil {
			created = t
		}
	}
	return &model.Backup{Filename: name, Size: info.Size(), CreatedAt: created}, nil
}

// List returns the archives, newest first.
func (c *Coordinator) List(ctx context.Context) ([]model.Backup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, apperr.Upstream("listing backups", err)
	}

	out := []model.Backup{}
	for _, e := range entries {
		if e.IsDir() || !ValidName(e.Name()) {
			continue
		}
		b, err := c.describe(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Filename > out[j].Filename
	})
	return out, nil
}

// check resolves names to known archives. Unknown or malformed names fail
// the whole call before anything is touched.
func (c *Coordinator) check(names []string) error {
	if len(names) == 0 {
		return apperr.Invalid("filenames", "select at least one backup")
	}
	for _, name := range names {
		if !ValidName(name) {
			return apperr.NotFound("backup", name)
		}
		if _, err := c.describe(name); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the named archives. Every name is checked first, so an
// unknown name deletes nothing.
func (c *Coordinator) Delete(ctx context.Context, actor model.Actor, names ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(names); err != nil {
		return err
	}
	for _, name := range names {
		err := os.Remove(filepath.Join(c.Dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return apperr.Upstream("deleting backup "+name, err)
		}
		c.Log.Info("backup deleted", zap.String("file", name))
		c.Activity.Record(ctx, actor, model.ActionDelete, "backups", name, "Deleted backup "+name)
	}
	return nil
}
