package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobtree/pkg/model"
)

func writeSnapshotFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDir(t *testing.T) {
	if got := Dir("/data/project"); got != filepath.Join("/data/project", DataDir) {
		t.Errorf("Dir(/data/project) = %q", got)
	}
	// Empty root means the current directory, not an error.
	if got := Dir(""); got != filepath.Join(".", DataDir) {
		t.Errorf("Dir(\"\") = %q, want %q", got, filepath.Join(".", DataDir))
	}
}

func TestLoadGroupsFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"id":"g-1","name":"Reports","kind":"team"}
{"id":"g-2","name":"Nightly","kind":"queue","parent":{"id":"g-1","name":"Reports","kind":"team"}}
`
	writeSnapshotFile(t, dir, "groups.jsonl", content)

	groups, err := LoadGroupsFromFile(filepath.Join(dir, "groups.jsonl"))
	if err != nil {
		t.Fatalf("LoadGroupsFromFile() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].ID != "g-1" || groups[0].Name != "Reports" {
		t.Errorf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Parent == nil || groups[1].Parent.ID != "g-1" {
		t.Errorf("expected g-2 parent g-1, got %+v", groups[1].Parent)
	}
}

func TestLoadGroupsSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := `{"id":"g-1","name":"Good"}
not json at all
{"id":"g-2","name":"Also good"}

{"id": unterminated
`
	writeSnapshotFile(t, dir, "groups.jsonl", content)

	groups, err := LoadGroupsFromFile(filepath.Join(dir, "groups.jsonl"))
	if err != nil {
		t.Fatalf("LoadGroupsFromFile() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected malformed lines skipped, got %d groups", len(groups))
	}
}

func TestLoadGroupsMissingFile(t *testing.T) {
	_, err := LoadGroupsFromFile(filepath.Join(t.TempDir(), "groups.jsonl"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadJobsFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"id":"j-1","group_id":"g-1","channel":"default","status":"pending","created":"2026-08-01T10:00:00Z"}
{"id":"j-2","group_id":"g-1","channel":"reports","status":"running","created":"2026-08-01T11:00:00Z","started_at":"2026-08-01T11:00:05Z"}
`
	writeSnapshotFile(t, dir, "jobs.jsonl", content)

	jobs, err := LoadJobsFromFile(filepath.Join(dir, "jobs.jsonl"))
	if err != nil {
		t.Fatalf("LoadJobsFromFile() error = %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Status != model.StatusPending {
		t.Errorf("expected pending, got %s", jobs[0].Status)
	}
	if jobs[1].StartedAt == nil {
		t.Error("expected started_at to be set on j-2")
	}
}

func TestLoadSnapshotJSONL(t *testing.T) {
	root := t.TempDir()
	dir := Dir(root)
	writeSnapshotFile(t, dir, GroupsFile, `{"id":"g-1","name":"Root"}`+"\n")
	writeSnapshotFile(t, dir, JobsFile, `{"id":"j-1","group_id":"g-1","status":"completed","created":"2026-08-01T10:00:00Z"}`+"\n")

	snap, err := LoadSnapshot(context.Background(), root)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(snap.Groups) != 1 || len(snap.Jobs) != 1 {
		t.Fatalf("expected 1 group and 1 job, got %d/%d", len(snap.Groups), len(snap.Jobs))
	}
}

func TestLoadSnapshotMissingJobsFile(t *testing.T) {
	root := t.TempDir()
	writeSnapshotFile(t, Dir(root), GroupsFile, `{"id":"g-1","name":"Root"}`+"\n")

	snap, err := LoadSnapshot(context.Background(), root)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(snap.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(snap.Groups))
	}
	if len(snap.Jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(snap.Jobs))
	}
}

func TestDBRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jobs.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	g := &model.Group{
		ID:        "g-1",
		Name:      "Reports",
		Kind:      "team",
		Active:    true,
		CreatedAt: created,
	}
	if err := db.InsertGroup(g); err != nil {
		t.Fatalf("InsertGroup() error = %v", err)
	}

	started := created.Add(5 * time.Second)
	j := &model.Job{
		ID:        "j-1",
		GroupID:   "g-1",
		Channel:   "reports",
		Func:      "build_report",
		Status:    model.StatusRunning,
		Created:   created,
		StartedAt: &started,
	}
	if err := db.InsertJob(j); err != nil {
		t.Fatalf("InsertJob() error = %v", err)
	}

	groups, err := db.Groups()
	if err != nil {
		t.Fatalf("Groups() error = %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Reports" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if groups[0].Parent != nil {
		t.Errorf("expected no parent, got %+v", groups[0].Parent)
	}

	jobs, err := db.Jobs("")
	if err != nil {
		t.Fatalf("Jobs() error = %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].StartedAt == nil || !jobs[0].StartedAt.Equal(started) {
		t.Errorf("started_at did not survive round trip: %+v", jobs[0].StartedAt)
	}
	if jobs[0].FinishedAt != nil {
		t.Errorf("expected nil finished_at, got %v", jobs[0].FinishedAt)
	}
}

func TestDBJobsChannelFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jobs.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	created := time.Now().UTC()
	for _, j := range []*model.Job{
		{ID: "j-1", Channel: "default", Status: model.StatusPending, Created: created},
		{ID: "j-2", Channel: "reports", Status: model.StatusPending, Created: created},
	} {
		if err := db.InsertJob(j); err != nil {
			t.Fatalf("InsertJob(%s) error = %v", j.ID, err)
		}
	}

	jobs, err := db.Jobs("reports")
	if err != nil {
		t.Fatalf("Jobs(reports) error = %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "j-2" {
		t.Fatalf("expected only j-2, got %+v", jobs)
	}
}

func TestLoadSnapshotPrefersDB(t *testing.T) {
	root := t.TempDir()
	dir := Dir(root)
	writeSnapshotFile(t, dir, GroupsFile, `{"id":"jsonl-group","name":"FromJSONL"}`+"\n")

	db, err := OpenDB(filepath.Join(dir, DBFile))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	g := &model.Group{ID: "db-group", Name: "FromDB", Active: true, CreatedAt: time.Now().UTC()}
	if err := db.InsertGroup(g); err != nil {
		t.Fatalf("InsertGroup() error = %v", err)
	}
	db.Close()

	snap, err := LoadSnapshot(context.Background(), root)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(snap.Groups) != 1 || snap.Groups[0].ID != "db-group" {
		t.Fatalf("expected db snapshot to win, got %+v", snap.Groups)
	}
}
