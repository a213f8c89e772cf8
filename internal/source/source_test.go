package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/kuncheriajose/firehawk-frontend/internal/config"
	"github.com/kuncheriajose/firehawk-frontend/internal/core"
)

// collector records every snapshot it receives.
type collector struct {
	mu        sync.Mutex
	snapshots [][]core.Record
	notify    chan struct{}
}

func newCollector() *collector {
	return &collector{notify: make(chan struct{}, 16)}
}

func (c *collector) handle(_ context.Context, records []core.Record) {
	c.mu.Lock()
	c.snapshots = append(c.snapshots, records)
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snapshots)
}

func (c *collector) last() []core.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshots) == 0 {
		return nil
	}
	return c.snapshots[len(c.snapshots)-1]
}

// waitFor blocks until at least n snapshots arrived or the timeout expires.
func (c *collector) waitFor(t *testing.T, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for c.count() < n {
		select {
		case <-c.notify:
		case <-deadline:
			t.Fatalf("got %d snapshots, want %d", c.count(), n)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ============================================================================
// Subscription Tests
// ============================================================================

func TestStatic_EmitsOnceAndUnsubscribes(t *testing.T) {
	records := []core.Record{core.NewRecord("1", core.Field{Name: "make", Value: core.String("audi")})}
	c := newCollector()

	sub, err := NewStatic(records).Subscribe(context.Background(), c.handle)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	c.waitFor(t, 1, time.Second)

	sub.Unsubscribe()
	sub.Unsubscribe()

	select {
	case <-sub.Done():
	default:
		t.Error("Done() not closed after Unsubscribe")
	}
	if c.count() != 1 {
		t.Errorf("snapshots = %d, want 1", c.count())
	}
}

func TestUnsubscribe_NoHandlerAfterReturn(t *testing.T) {
	var calls atomic.Int64
	p := NewPoller("test", "@every 1s", func(ctx context.Context) ([]core.Record, error) {
		n := calls.Load()
		return []core.Record{core.NewRecord(strings.Repeat("x", int(n)+1))}, nil
	})

	var handled atomic.Int64
	sub, err := p.Subscribe(context.Background(), func(context.Context, []core.Record) {
		calls.Add(1)
		handled.Add(1)
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	sub.Unsubscribe()
	after := handled.Load()
	time.Sleep(1500 * time.Millisecond)
	if handled.Load() != after {
		t.Errorf("handler ran after Unsubscribe: %d -> %d", after, handled.Load())
	}
}

// ============================================================================
// File Source Tests
// ============================================================================

func TestReadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	writeFile(t, path, `[{"id":"a","make":"audi","price":13950},{"make":"bmw","price":null}]`)

	records, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID != "a" {
		t.Errorf("records[0].ID = %q, want a", records[0].ID)
	}
	if records[1].ID == "" {
		t.Error("records[1] should get a generated ID")
	}
	if records[1].Has("price") {
		t.Error("null price should be absent")
	}

	again, _ := ReadFile(path)
	if again[1].ID != records[1].ID {
		t.Errorf("generated ID not stable: %q vs %q", records[1].ID, again[1].ID)
	}
}

func TestReadFile_BOMAndInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.csv")
	writeFile(t, path, "\xef\xbb\xbfid,make\r\n1,citro\xebn\r\n")

	records, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(records) != 1 || records[0].ID != "1" {
		t.Fatalf("records = %v, want one record with ID 1", records)
	}
	if got := records[0].Get("make").String(); got != "citro\ufffdn" {
		t.Errorf("make = %q, want invalid byte replaced", got)
	}
}

func TestReadFile_JSONWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	writeFile(t, path, "\xef\xbb\xbf[{\"make\":\"audi\"}]")

	records, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(records) != 1 || records[0].Get("make").String() != "audi" {
		t.Errorf("records = %v", records)
	}
}

func TestReadCSV(t *testing.T) {
	input := "id,name,mpg,cylinders,origin\r\n" +
		"1,chevrolet chevelle malibu,18,8,usa\r\n" +
		"2,\"ford, pinto\",,4,usa\r\n" +
		"3,volkswagen 1131 deluxe sedan,26,4\r\n"

	records, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}

	first := records[0]
	if first.ID != "1" {
		t.Errorf("ID = %q, want 1", first.ID)
	}
	if got, want := first.Keys(), []string{"name", "mpg", "cylinders", "origin"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if mpg, ok := first.Get("mpg").Float(); !ok || mpg != 18 {
		t.Errorf("mpg = %v (number %v), want 18", mpg, ok)
	}

	if records[1].Get("name").String() != "ford, pinto" {
		t.Errorf("quoted name = %q", records[1].Get("name").String())
	}
	if records[1].Has("mpg") {
		t.Error("empty cell should be absent")
	}
	if records[2].Has("origin") {
		t.Error("short row should leave trailing columns absent")
	}
}

func TestReadCSV_Empty(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestFile_SubscribeMissingFile(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.json"), false, 0).Subscribe(context.Background(), func(context.Context, []core.Record) {})
	if err == nil {
		t.Fatal("Subscribe() expected error for missing file")
	}
}

func TestFile_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	writeFile(t, path, `[{"make":"audi"}]`)

	c := newCollector()
	sub, err := NewFile(path, true, 20*time.Millisecond).Subscribe(context.Background(), c.handle)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Unsubscribe()

	c.waitFor(t, 1, time.Second)

	writeFile(t, path, `[{"make":"audi"},{"make":"bmw"}]`)
	c.waitFor(t, 2, 5*time.Second)

	if got := len(c.last()); got != 2 {
		t.Errorf("reloaded snapshot has %d records, want 2", got)
	}
}

func TestFile_WatchKeepsSnapshotOnBadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	writeFile(t, path, `[{"make":"audi"}]`)

	c := newCollector()
	sub, err := NewFile(path, true, 20*time.Millisecond).Subscribe(context.Background(), c.handle)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Unsubscribe()
	c.waitFor(t, 1, time.Second)

	writeFile(t, path, `[{"make":`)
	time.Sleep(300 * time.Millisecond)
	if c.count() != 1 {
		t.Errorf("snapshots = %d after malformed write, want 1", c.count())
	}
}

// ============================================================================
// Poller Tests
// ============================================================================

func TestPoller_EmitsOnlyOnChange(t *testing.T) {
	var version atomic.Int64
	fetch := func(context.Context) ([]core.Record, error) {
		return []core.Record{core.NewRecord("1", core.Field{Name: "v", Value: core.Number(float64(version.Load()))})}, nil
	}

	c := newCollector()
	sub, err := NewPoller("test", "@every 1s", fetch).Subscribe(context.Background(), c.handle)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Unsubscribe()

	c.waitFor(t, 1, time.Second)

	// Unchanged data is not re-emitted.
	time.Sleep(1500 * time.Millisecond)
	if c.count() != 1 {
		t.Fatalf("snapshots = %d with unchanged data, want 1", c.count())
	}

	version.Store(1)
	c.waitFor(t, 2, 5*time.Second)
	if v, _ := c.last()[0].Get("v").Float(); v != 1 {
		t.Errorf("v = %v, want 1", v)
	}
}

func TestPoller_InitialFetchError(t *testing.T) {
	p := NewPoller("test", "@every 1s", func(context.Context) ([]core.Record, error) {
		return nil, errors.New("connection refused")
	})
	if _, err := p.Subscribe(context.Background(), func(context.Context, []core.Record) {}); err == nil {
		t.Error("Subscribe() expected error")
	}
}

func TestPoller_InvalidSchedule(t *testing.T) {
	p := NewPoller("test", "every now and then", func(context.Context) ([]core.Record, error) { return nil, nil })
	if _, err := p.Subscribe(context.Background(), func(context.Context, []core.Record) {}); err == nil {
		t.Error("Subscribe() expected error for invalid schedule")
	}
}

func TestFingerprint(t *testing.T) {
	a := []core.Record{core.NewRecord("1", core.Field{Name: "mpg", Value: core.Number(18)})}
	b := []core.Record{core.NewRecord("1", core.Field{Name: "mpg", Value: core.String("18")})}
	c := []core.Record{core.NewRecord("1", core.Field{Name: "mpg", Value: core.Number(18)})}

	if Fingerprint(a) != Fingerprint(c) {
		t.Error("equal snapshots should have equal fingerprints")
	}
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("number and string values should differ")
	}
	if Fingerprint(nil) == Fingerprint(a) {
		t.Error("empty and non-empty snapshots should differ")
	}
}

// ============================================================================
// Document Conversion Tests
// ============================================================================

func TestDocumentRecord(t *testing.T) {
	oid := bson.NewObjectID()
	doc := bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: "ford pinto"},
		{Key: "cylinders", Value: int32(4)},
		{Key: "mpg", Value: 25.0},
		{Key: "tags", Value: bson.A{"compact", int32(2)}},
		{Key: "origin", Value: nil},
	}

	r := DocumentRecord(doc)
	if r.ID != oid.Hex() {
		t.Errorf("ID = %q, want %q", r.ID, oid.Hex())
	}
	if got, want := r.Keys(), []string{"name", "cylinders", "mpg", "tags"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := r.Get("cylinders").String(); got != "4" {
		t.Errorf("cylinders = %q, want 4", got)
	}
	if got := r.Get("tags").String(); got != `["compact",2]` {
		t.Errorf("tags = %q", got)
	}
}

func TestFirestoreRecord(t *testing.T) {
	r := FirestoreRecord("doc-42", map[string]any{
		"make":         "toyota",
		"price":        int64(7898),
		"bodyStyle":    "hatchback",
		"discontinued": false,
	})

	if r.ID != "doc-42" {
		t.Errorf("ID = %q, want doc-42", r.ID)
	}
	if got, want := r.Keys(), []string{"bodyStyle", "discontinued", "make", "price"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := r.Get("discontinued").String(); got != "false" {
		t.Errorf("discontinued = %q, want false", got)
	}
}

func TestOpen(t *testing.T) {
	if _, _, err := Open(context.Background(), config.SourceConfig{Kind: "ftp"}, nil); err == nil {
		t.Error("Open() expected error for unknown kind")
	}
	if _, _, err := Open(context.Background(), config.SourceConfig{Kind: config.SourcePostgres}, nil); err == nil {
		t.Error("Open() expected error for postgres without pool")
	}

	src, closeFn, err := Open(context.Background(), config.SourceConfig{Kind: config.SourceFile, FilePath: "cars.json"}, nil)
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	defer closeFn()
	if src.Name() != "file" {
		t.Errorf("Name() = %q, want file", src.Name())
	}
}

func TestLatestQueue(t *testing.T) {
	if got := latestQueue("cars.snapshots"); got != "cars.snapshots.latest" {
		t.Errorf("latestQueue() = %q, want %q", got, "cars.snapshots.latest")
	}

	args := latestQueueArgs()
	if got := args["x-max-length"]; got != int32(1) {
		t.Errorf("x-max-length = %v, want 1", got)
	}
	if got := args["x-overflow"]; got != "drop-head" {
		t.Errorf("x-overflow = %v, want drop-head", got)
	}
}
