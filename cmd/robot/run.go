package main

import (
	"errors"
	"fmt"
	"io"
	"log"

	persistlog "github.com/psy7604/CodeCraft-2023-Lyingflat/internal/persistence/log"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/protocol"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/catalogs"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/control"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/scoring"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/tuning"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/world"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/transport/observer"
)

type runConfig struct {
	Tuning tuning.Tuning
	Cats   *catalogs.Catalogs
	RunID  string

	Debug    *log.Logger // nil: no per-agent logging
	Trace    *persistlog.FrameLogger
	Observer *observer.Server
}

type runStats struct {
	Frames int
	Money  int // as reported by the judge in the last frame
}

// run plays one match: read the map, acknowledge it, then answer frames until
// the judge closes input or the frame budget is spent.
func run(in io.Reader, out io.Writer, cfg runConfig) (runStats, error) {
	var stats runStats

	w := world.New(cfg.Cats, cfg.Tuning.Physics)
	r := protocol.NewReader(in)
	if err := r.ReadMap(w); err != nil {
		return stats, fmt.Errorf("read map: %w", err)
	}
	pw := protocol.NewWriter(out)
	if err := pw.OK(); err != nil {
		return stats, err
	}

	opts := []control.Option{control.WithGuidance(cfg.Tuning.Guidance)}
	if cfg.Debug != nil {
		opts = append(opts, control.WithLogger(cfg.Debug))
	}
	fleet := control.NewFleet(w, scoring.New(cfg.Tuning.Scoring), cfg.Tuning.Control, opts...)
	fleet.Init()

	for {
		f, err := r.ReadFrame(len(w.Agents))
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read frame: %w", err)
		}
		if err := f.Apply(w); err != nil {
			return stats, fmt.Errorf("frame %d: %w", f.ID, err)
		}

		fleet.Tick()
		rec := fleet.Record()
		rec.RunID = cfg.RunID
		if err := pw.WriteFrame(f.ID, fleet.Flush()); err != nil {
			return stats, fmt.Errorf("write frame %d: %w", f.ID, err)
		}
		stats.Frames++
		stats.Money = f.Money

		if cfg.Trace != nil {
			if err := cfg.Trace.WriteFrame(rec); err != nil {
				return stats, fmt.Errorf("trace frame %d: %w", f.ID, err)
			}
		}
		if cfg.Observer != nil {
			_ = cfg.Observer.Publish(rec)
		}
		if f.ID >= cfg.Tuning.Game.TotalFrames {
			return stats, nil
		}
	}
}
