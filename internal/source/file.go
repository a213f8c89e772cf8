package source

// file.go reads the dataset from a local JSON or CSV file and, optionally,
// re-emits it whenever the file changes on disk.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

// File is a record source backed by a local file.
type File struct {
	path     string
	watch    bool
	debounce time.Duration
}

// NewFile creates a file source. When watch is set, writes to the file are
// coalesced over debounce and then re-read.
func NewFile(path string, watch bool, debounce time.Duration) *File {
	return &File{path: path, watch: watch, debounce: debounce}
}

func (f *File) Name() string { return "file" }

func (f *File) Subscribe(ctx context.Context, h Handler) (*Subscription, error) {
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", f.path, err)
	}

	records, err := ReadFile(abs)
	if err != nil {
		return nil, err
	}

	var watcher *fsnotify.Watcher
	if f.watch {
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		// Watch the directory so editors that replace the file are seen.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
		}
	}

	return start(ctx, f.Name(), func(ctx context.Context) {
		emit(ctx, f.Name(), h, records)
		if watcher == nil {
			<-ctx.Done()
			return
		}
		defer watcher.Close()
		f.watchLoop(ctx, abs, watcher, h)
	}), nil
}

func (f *File) watchLoop(ctx context.Context, abs string, watcher *fsnotify.Watcher, h Handler) {
	logger := logging.WithFields(ctx, "path", abs)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = time.After(f.debounce)

		case <-pending:
			pending = nil
			records, err := ReadFile(abs)
			if err != nil {
				sourceErrors.WithLabelValues(f.Name()).Inc()
				logger.Warn("reload failed, keeping previous snapshot", "error", err)
				continue
			}
			logger.Info("dataset reloaded", "records", len(records))
			emit(ctx, f.Name(), h, records)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			sourceErrors.WithLabelValues(f.Name()).Inc()
			logger.Warn("watcher error", "error", err)
		}
	}
}

// ReadFile loads records from a .csv file or a JSON array file.
// Records without an identifier get a stable one derived from the path and
// row position.
func ReadFile(path string) ([]core.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	// Files saved by spreadsheet tools often start with a byte order mark or
	// carry stray non-UTF-8 bytes; both are cleaned before parsing.
	in := transform.NewReader(file, unicode.UTF8BOM.NewDecoder())

	var records []core.Record
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		records, err = ReadCSV(in)
	} else {
		var data []byte
		data, err = io.ReadAll(in)
		if err == nil {
			records, err = core.DecodeRecords(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	AssignIDs(records, path)
	return records, nil
}

// ReadCSV parses a CSV document whose first row is the header.
// Empty cells are absent; numeric cells become numbers. An "id" column
// becomes the record identifier.
func ReadCSV(r io.Reader) ([]core.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []core.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = core.CleanCell(header[i])
	}

	records := []core.Record{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var id string
		fields := make([]core.Field, 0, len(header))
		for i, name := range header {
			if i >= len(row) || name == "" {
				continue
			}
			if name == "id" {
				id = core.CleanCell(row[i])
				continue
			}
			fields = append(fields, core.Field{Name: name, Value: core.CellValue(row[i])})
		}
		records = append(records, core.NewRecord(id, fields...))
	}
	return records, nil
}

// AssignIDs gives every record without an ID a name-based UUID of
// origin#index, so IDs are stable across reloads of the same file.
func AssignIDs(records []core.Record, origin string) {
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(origin+"#"+strconv.Itoa(i))).String()
		}
	}
}
