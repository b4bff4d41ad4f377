package engine

import (
	"testing"

	"ridgedb/catalog"
	"ridgedb/keykind"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := Open(t.TempDir(), Options{PageSize: 256, HeaderSize: 16, CacheCapacity: 4})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return eng
}

func TestCreateInsertSelectRoundTrip(t *testing.T) {
	eng := openTestEngine(t)
	columns := []catalog.Column{
		{Name: "id", Kind: keykind.I32, PrimaryKey: true},
		{Name: "name", Kind: keykind.String},
	}
	if err := eng.CreateTable("users", columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	row, err := eng.CreateRow("users", []keykind.Value{keykind.NewI32(7), keykind.NewString("ada")})
	if err != nil {
		t.Fatalf("CreateRow: %v", err)
	}
	if err := eng.Insert("users", keykind.NewI32(7), row); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	values, found, err := eng.Select("users", keykind.NewI32(7))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !found {
		t.Fatal("Select(7) miss, want hit")
	}
	if values[0].I32() != 7 || values[1].Str() != "ada" {
		t.Fatalf("Select(7) = %v, want round-tripped row", values)
	}
}

func TestSelectMissOnAbsentKey(t *testing.T) {
	eng := openTestEngine(t)
	columns := []catalog.Column{{Name: "id", Kind: keykind.I32, PrimaryKey: true}}
	if err := eng.CreateTable("users", columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	_, found, err := eng.Select("users", keykind.NewI32(99))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if found {
		t.Fatal("Select(99) hit, want miss")
	}
}

func TestSelectUnknownTableReturnsTableNotFound(t *testing.T) {
	eng := openTestEngine(t)
	if _, _, err := eng.Select("ghost", keykind.NewI32(1)); err == nil {
		t.Fatal("Select(ghost): error = nil, want TableNotFound")
	}
}

func TestInsertAllocatesFreshPageOnOverflow(t *testing.T) {
	eng := openTestEngine(t)
	columns := []catalog.Column{
		{Name: "id", Kind: keykind.I32, PrimaryKey: true},
		{Name: "blob", Kind: keykind.String},
	}
	if err := eng.CreateTable("blobs", columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	padding := make([]byte, 64)
	for i := int32(0); i < 20; i++ {
		row, err := eng.CreateRow("blobs", []keykind.Value{keykind.NewI32(i), keykind.NewString(string(padding))})
		if err != nil {
			t.Fatalf("CreateRow %d: %v", i, err)
		}
		if err := eng.Insert("blobs", keykind.NewI32(i), row); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	for i := int32(0); i < 20; i++ {
		values, found, err := eng.Select("blobs", keykind.NewI32(i))
		if err != nil || !found {
			t.Fatalf("Select(%d) = %v, %v, %v; want a hit", i, values, found, err)
		}
	}
}

func TestCheckpointSaveAllLoadAllSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	columns := []catalog.Column{
		{Name: "id", Kind: keykind.I32, PrimaryKey: true},
		{Name: "name", Kind: keykind.String},
	}
	if err := eng.CreateTable("users", columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	for i := int32(0); i < 30; i++ {
		row, err := eng.CreateRow("users", []keykind.Value{keykind.NewI32(i), keykind.NewString("n")})
		if err != nil {
			t.Fatalf("CreateRow %d: %v", i, err)
		}
		if err := eng.Insert("users", keykind.NewI32(i), row); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}
	if err := eng.SaveAll(); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	restarted, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open (restart): %v", err)
	}
	if err := restarted.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for i := int32(0); i < 30; i++ {
		values, found, err := restarted.Select("users", keykind.NewI32(i))
		if err != nil || !found {
			t.Fatalf("Select(%d) after restart = %v, %v, %v; want a hit", i, values, found, err)
		}
		if values[0].I32() != i {
			t.Fatalf("Select(%d) after restart id = %d, want %d", i, values[0].I32(), i)
		}
	}
}

func TestCheckpointRoundTripsNonIntegerKeys(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	columns := []catalog.Column{{Name: "slug", Kind: keykind.String, PrimaryKey: true}}
	if err := eng.CreateTable("pages", columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	slugs := []string{"home", "about", "contact"}
	for _, s := range slugs {
		row, err := eng.CreateRow("pages", []keykind.Value{keykind.NewString(s)})
		if err != nil {
			t.Fatalf("CreateRow(%q): %v", s, err)
		}
		if err := eng.Insert("pages", keykind.NewString(s), row); err != nil {
			t.Fatalf("Insert(%q): %v", s, err)
		}
	}
	if err := eng.SaveAll(); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	restarted, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open (restart): %v", err)
	}
	if err := restarted.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for _, s := range slugs {
		values, found, err := restarted.Select("pages", keykind.NewString(s))
		if err != nil || !found {
			t.Fatalf("Select(%q) after restart = %v, %v, %v; want a hit", s, values, found, err)
		}
		if values[0].Str() != s {
			t.Fatalf("Select(%q) after restart slug = %q, want %q", s, values[0].Str(), s)
		}
	}
}
