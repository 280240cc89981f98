package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/persistence/indexdb"
	persistlog "github.com/psy7604/CodeCraft-2023-Lyingflat/internal/persistence/log"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/protocol"
)

func main() {
	var (
		tracePath = flag.String("trace", "", "trace file (.jsonl.zst) or directory of trace-*.jsonl.zst")
		indexPath = flag.String("index", "", "ingest traces into this SQLite database (optional)")
		listRuns  = flag.Bool("runs", false, "list runs stored in -index and exit")
	)
	flag.Parse()

	ctx := context.Background()

	var idx *indexdb.SQLiteIndex
	if *indexPath != "" {
		var err error
		idx, err = indexdb.OpenSQLite(*indexPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open index:", err)
			os.Exit(1)
		}
		defer idx.Close()
	}

	if *listRuns {
		if idx == nil {
			fmt.Fprintln(os.Stderr, "-runs needs -index")
			os.Exit(2)
		}
		runs, err := idx.Runs(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list runs:", err)
			os.Exit(1)
		}
		for _, r := range runs {
			printSummary(r)
		}
		return
	}

	if *tracePath == "" {
		fmt.Fprintln(os.Stderr, "missing -trace")
		os.Exit(2)
	}
	files, err := listTraceFiles(*tracePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list traces:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no trace files found in", *tracePath)
		os.Exit(1)
	}

	for _, path := range files {
		recs, err := persistlog.ReadFrames(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read trace:", err)
			os.Exit(1)
		}
		if err := checkFrames(recs); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			os.Exit(1)
		}
		runID := runIDOf(path, recs)
		sum := indexdb.Summarize(runID, recs)
		sum.TracePath = path
		if idx != nil {
			if sum, err = idx.IngestRun(ctx, runID, path, recs); err != nil {
				fmt.Fprintln(os.Stderr, "ingest:", err)
				os.Exit(1)
			}
		}
		printSummary(sum)
	}
}

func printSummary(r indexdb.RunSummary) {
	fmt.Printf("run %s frames=%d [%d..%d] money=%d commands=%d digest=%s\n",
		r.RunID, r.Frames, r.FirstFrame, r.LastFrame, r.FinalMoney, r.Commands, shortDigest(r.FinalDigest))
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func listTraceFiles(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{path}, nil
	}
	ents, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "trace-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(path, name))
	}
	return out, nil
}

// runIDOf prefers the ID stamped in the records and falls back to the file
// name.
func runIDOf(path string, recs []protocol.FrameRecord) string {
	if len(recs) > 0 && recs[0].RunID != "" {
		return recs[0].RunID
	}
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".jsonl.zst")
	return strings.TrimPrefix(name, "trace-")
}

// checkFrames verifies frame ids strictly increase and that every record
// carries a digest.
func checkFrames(recs []protocol.FrameRecord) error {
	for i, r := range recs {
		if r.Digest == "" {
			return fmt.Errorf("frame %d: missing digest", r.Frame)
		}
		if i > 0 && r.Frame <= recs[i-1].Frame {
			return fmt.Errorf("frame order: %d after %d", r.Frame, recs[i-1].Frame)
		}
	}
	return nil
}
