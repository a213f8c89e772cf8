package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kuncheriajose/firehawk-frontend/internal/config"
	"github.com/kuncheriajose/firehawk-frontend/internal/core"
)

func car(id string, kv ...any) core.Record {
	fields := make([]core.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, core.Field{Name: kv[i].(string), Value: core.ValueOf(kv[i+1])})
	}
	return core.NewRecord(id, fields...)
}

// ============================================================================
// Filename Tests
// ============================================================================

func TestFilename(t *testing.T) {
	now := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.Local)

	tests := []struct {
		base string
		want string
	}{
		{"car-database", "car-database-2024-03-07.csv"},
		{"", "car-database-2024-03-07.csv"},
		{"cars", "cars-2024-03-07.csv"},
	}

	for _, tt := range tests {
		if got := Filename(tt.base, now); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

// ============================================================================
// WriteCSV Tests
// ============================================================================

func TestWriteCSV(t *testing.T) {
	records := []core.Record{
		car("a1", "make", "audi", "price", 13950),
		car("b2", "make", "bmw, m", "bodyStyle", "sedan"),
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "make,price,id\r\n" +
		"audi,13950,a1\r\n" +
		"\"bmw, m\",,b2\r\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() =\n%q\nwant\n%q", got, want)
	}
}

func TestWriteCSV_NoID(t *testing.T) {
	records := []core.Record{
		car("", "name", "ford pinto", "mpg", 25),
		car("x", "name", "vw rabbit"),
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "name,mpg\r\nford pinto,25\r\nvw rabbit,\r\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("WriteCSV(nil) wrote %q, want nothing", buf.String())
	}
}

// ============================================================================
// Sink Tests
// ============================================================================

func TestDirSink_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := NewDirSink(dir)
	sink.Now = func() time.Time { return time.Date(2024, time.January, 2, 10, 0, 0, 0, time.Local) }

	location, err := sink.Export(context.Background(), []core.Record{car("1", "make", "audi")}, "car-database")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if want := filepath.Join(dir, "car-database-2024-01-02.csv"); location != want {
		t.Errorf("location = %q, want %q", location, want)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if got, want := string(data), "make,id\r\naudi,1\r\n"; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".export-") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestS3Sink_Key(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "cars.csv"},
		{"exports", "exports/cars.csv"},
		{"exports/", "exports/cars.csv"},
	}
	for _, tt := range tests {
		s := &S3Sink{prefix: tt.prefix}
		if got := s.Key("cars.csv"); got != tt.want {
			t.Errorf("Key() with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	sink, err := Open(config.ExportConfig{Kind: config.ExportDir, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(dir) error = %v", err)
	}
	if _, ok := sink.(*DirSink); !ok {
		t.Errorf("Open(dir) = %T, want *DirSink", sink)
	}

	if _, err := Open(config.ExportConfig{Kind: config.ExportS3}); err == nil {
		t.Error("Open(s3) without bucket expected error")
	}
	if _, err := Open(config.ExportConfig{Kind: "ftp"}); err == nil {
		t.Error("Open(ftp) expected error")
	}
}
