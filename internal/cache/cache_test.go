package cache

import (
	"path/filepath"
	"testing"
	"time"
)

type record struct {
	Commodity string `json:"commodity"`
	Market    string `json:"market"`
	Price     int    `json:"price"`
}

func testDB(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecords() []record {
	return []record{
		{Commodity: "Tomato", Market: "Pune", Price: 1200},
		{Commodity: "Wheat", Market: "Indore", Price: 2400},
	}
}

func TestSaveAndLoad(t *testing.T) {
	db := testDB(t)

	if err := Save(db, KeyPrices, sampleRecords()); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := Load[record](db, KeyPrices)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0] != sampleRecords()[0] || got[1] != sampleRecords()[1] {
		t.Errorf("round trip changed records: %+v", got)
	}
}

func TestSaveOverwrites(t *testing.T) {
	db := testDB(t)

	if err := Save(db, KeyPrices, sampleRecords()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := Save(db, KeyPrices, sampleRecords()[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got := Load[record](db, KeyPrices)
	if len(got) != 1 || got[0].Commodity != "Tomato" {
		t.Errorf("expected only the latest write, got %+v", got)
	}
}

func TestLoadMissingKey(t *testing.T) {
	db := testDB(t)

	if got := Load[record](db, KeyProducts); got != nil {
		t.Errorf("expected nil for missing key, got %+v", got)
	}
}

func TestLoadCorruptEntry(t *testing.T) {
	db := testDB(t)

	if err := db.Put(KeyPrices, "{not json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := Load[record](db, KeyPrices); got != nil {
		t.Errorf("expected nil for corrupt entry, got %+v", got)
	}
	if _, ok := LoadValue[record](db, KeyPrices); ok {
		t.Error("expected LoadValue to report a corrupt entry as absent")
	}
}

func TestLoadValue(t *testing.T) {
	db := testDB(t)

	want := record{Commodity: "Rice", Market: "Karnal", Price: 3100}
	if err := SaveValue(db, KeyWeather, want); err != nil {
		t.Fatalf("save value: %v", err)
	}
	got, ok := LoadValue[record](db, KeyWeather)
	if !ok {
		t.Fatal("expected value to be present")
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	db := testDB(t)

	if err := Save(db, KeyPrices, sampleRecords()); err != nil {
		t.Fatalf("save prices: %v", err)
	}
	if err := Save(db, KeyProducts, []record{{Commodity: "Tractor"}}); err != nil {
		t.Fatalf("save products: %v", err)
	}
	if err := db.Delete(KeyProducts); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := Load[record](db, KeyPrices); len(got) != 2 {
		t.Errorf("deleting one key touched another: %+v", got)
	}
}

func TestEntriesAndStats(t *testing.T) {
	db := testDB(t)

	if err := Save(db, KeyPrices, sampleRecords()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveValue(db, KeyWeather, record{Market: "Pune"}); err != nil {
		t.Fatalf("save value: %v", err)
	}

	entries, err := db.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key != KeyPrices || entries[1].Key != KeyWeather {
		t.Errorf("expected entries ordered by key, got %s, %s", entries[0].Key, entries[1].Key)
	}
	if entries[0].Size == 0 {
		t.Error("expected non-zero entry size")
	}

	count, size, err := db.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 entries, got %d", count)
	}
	if size == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestClear(t *testing.T) {
	db := testDB(t)

	if err := Save(db, KeyPrices, sampleRecords()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SetLastRefresh(KeyPrices); err != nil {
		t.Fatalf("set last refresh: %v", err)
	}

	n, err := db.Clear()
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry cleared, got %d", n)
	}
	if got := Load[record](db, KeyPrices); got != nil {
		t.Errorf("expected empty cache after clear, got %+v", got)
	}
	if !db.NeedsRefresh(KeyPrices, time.Hour) {
		t.Error("expected refresh markers to be cleared")
	}
}

func TestNeedsRefresh(t *testing.T) {
	db := testDB(t)

	if !db.NeedsRefresh(KeyPrices, time.Hour) {
		t.Error("expected refresh needed on fresh db")
	}

	if err := db.SetLastRefresh(KeyPrices); err != nil {
		t.Fatalf("set last refresh: %v", err)
	}

	if db.NeedsRefresh(KeyPrices, time.Hour) {
		t.Error("expected no refresh needed right after setting")
	}
	if !db.NeedsRefresh(KeyWeather, time.Hour) {
		t.Error("expected refresh markers to be per key")
	}
}
