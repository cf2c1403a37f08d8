package storage

import (
	"path/filepath"
	"reflect"
	"testing"

	"mdsections/internal"
)

func sampleFrame() internal.Frame {
	var f internal.Frame
	f.AddRow(0, []string{"notes", "owner"}, map[string]string{"notes": "x", "owner": ""})
	f.AddRow(4, []string{"scope"}, map[string]string{"scope": "all"})
	return f
}

func TestSaveAndLoadFrame(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "data", "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	frame := sampleFrame()
	runID, err := db.SaveFrame(RunMeta{Source: "issues.csv", Column: "description"}, frame)
	if err != nil {
		t.Fatal(err)
	}

	got, err := db.LoadFrame(runID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Columns, frame.Columns) {
		t.Fatalf("columns=%v", got.Columns)
	}
	if len(got.Rows) != 2 || got.Rows[1].SourceIndex != 4 {
		t.Fatalf("rows=%+v", got.Rows)
	}
	if v, ok := got.Value(0, "owner"); !ok || v != "" {
		t.Fatalf("owner=%q ok=%v", v, ok)
	}
	if _, ok := got.Value(1, "notes"); ok {
		t.Fatal("absent cell came back present")
	}
}

func TestListRuns(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	first, err := db.SaveFrame(RunMeta{Source: "a.csv", Column: "description", Headings: []string{"Notes"}}, sampleFrame())
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.SaveFrame(RunMeta{Source: "b.csv", Column: "Description"}, internal.Frame{})
	if err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("len=%d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Fatalf("order: %s %s", runs[0].ID, runs[1].ID)
	}
	if runs[1].RowCount != 2 || !reflect.DeepEqual(runs[1].Headings, []string{"Notes"}) {
		t.Fatalf("run=%+v", runs[1])
	}

	missing, err := db.GetRun("nope")
	if err != nil || missing != nil {
		t.Fatalf("missing=%v err=%v", missing, err)
	}
	if _, err := db.LoadFrame("nope"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestGetRunCorruptColumns(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	runID, err := db.SaveFrame(RunMeta{Source: "a.csv", Column: "description"}, sampleFrame())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`UPDATE runs SET columnsJson = 'not json' WHERE id = ?`, runID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetRun(runID); err == nil {
		t.Fatal("expected decode error from GetRun")
	}
	if _, err := db.LoadFrame(runID); err == nil {
		t.Fatal("expected decode error from LoadFrame")
	}
	if _, err := db.ListRuns(10); err == nil {
		t.Fatal("expected decode error from ListRuns")
	}
}
