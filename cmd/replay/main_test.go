package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/protocol"
)

func TestListTraceFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"trace-b.jsonl.zst", "trace-a.jsonl.zst", "notes.txt", "events-x.jsonl.zst"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got, err := listTraceFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{filepath.Join(dir, "trace-a.jsonl.zst"), filepath.Join(dir, "trace-b.jsonl.zst")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	single, err := listTraceFiles(want[0])
	if err != nil || len(single) != 1 || single[0] != want[0] {
		t.Fatalf("single=%v err=%v", single, err)
	}
}

func TestRunIDOf(t *testing.T) {
	if got := runIDOf("/x/trace-abc.jsonl.zst", nil); got != "abc" {
		t.Fatalf("from name=%q", got)
	}
	recs := []protocol.FrameRecord{{RunID: "stamped"}}
	if got := runIDOf("/x/trace-abc.jsonl.zst", recs); got != "stamped" {
		t.Fatalf("from record=%q", got)
	}
}

func TestCheckFrames(t *testing.T) {
	ok := []protocol.FrameRecord{{Frame: 1, Digest: "a"}, {Frame: 3, Digest: "b"}}
	if err := checkFrames(ok); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := checkFrames([]protocol.FrameRecord{{Frame: 2, Digest: "a"}, {Frame: 2, Digest: "b"}}); err == nil {
		t.Fatalf("expected order error")
	}
	if err := checkFrames([]protocol.FrameRecord{{Frame: 1}}); err == nil {
		t.Fatalf("expected digest error")
	}
}
