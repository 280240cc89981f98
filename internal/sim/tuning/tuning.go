// Package tuning loads the YAML file that overrides the built-in constants of
// the physics model, scorer, guidance law and control loop.
package tuning

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/control"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/guidance"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/scoring"
	"github.com/psy7604/CodeCraft-2023-Lyingflat/internal/sim/world"
)

type Tuning struct {
	Game     Game            `yaml:"game" json:"game"`
	Physics  world.Physics   `yaml:"physics" json:"physics"`
	Scoring  scoring.Params  `yaml:"scoring" json:"scoring"`
	Guidance guidance.Params `yaml:"guidance" json:"guidance"`
	Control  control.Params  `yaml:"control" json:"control"`
}

type Game struct {
	FramesPerSecond int `yaml:"frames_per_second" json:"frames_per_second"`
	TotalFrames     int `yaml:"total_frames" json:"total_frames"`
}

func Defaults() Tuning {
	t := Tuning{
		Game:     Game{FramesPerSecond: 50, TotalFrames: 9000},
		Physics:  world.DefaultPhysics(),
		Scoring:  scoring.DefaultParams(),
		Guidance: guidance.DefaultParams(),
		Control:  control.DefaultParams(),
	}
	t.Normalize()
	return t
}

// Load reads path over Defaults. An empty path yields the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	return Parse(raw)
}

// Parse validates a tuning document against the schema and overlays it on
// Defaults.
func Parse(raw []byte) (Tuning, error) {
	t := Defaults()
	if len(bytes.TrimSpace(raw)) == 0 {
		return t, nil
	}
	if err := validateSchema(raw); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Normalize derives fields that must agree across sections.
func (t *Tuning) Normalize() {
	t.Scoring.FramesPerSecond = t.Game.FramesPerSecond
}

func (t Tuning) FrameSeconds() float64 { return 1 / float64(t.Game.FramesPerSecond) }

func (t Tuning) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(t.Game.FramesPerSecond > 0, "game.frames_per_second must be > 0")
	check(t.Game.TotalFrames > 0, "game.total_frames must be > 0")

	p := t.Physics
	check(p.RadiusIdle > 0 && p.RadiusHolding > 0, "physics radii must be > 0")
	check(p.Density > 0, "physics.density must be > 0")
	check(p.MaxForwardSpeed > 0, "physics.max_forward_speed must be > 0")
	check(p.MaxBackwardSpeed >= 0, "physics.max_backward_speed must be >= 0")
	check(p.MaxRotationSpeed > 0, "physics.max_rotation_speed must be > 0")
	check(p.MaxTraction > 0 && p.MaxTorque > 0, "physics traction and torque must be > 0")

	s := t.Scoring
	check(s.SearchDepth >= 0, "scoring.search_depth must be >= 0")
	check(s.AssumedSpeed > 0, "scoring.assumed_speed must be > 0")
	check(s.AssumedTurnRate > 0, "scoring.assumed_turn_rate must be > 0")
	check(s.CostPerFrame >= 0, "scoring.cost_per_frame must be >= 0")

	g := t.Guidance
	check(g.TurnInPlaceAngle > 0 && g.TurnInPlaceAngle <= math.Pi, "guidance.turn_in_place_angle must be in (0, pi]")
	check(g.ShapingThreshold >= 0, "guidance.shaping_threshold must be >= 0")
	check(g.CruiseSpeed > 0, "guidance.cruise_speed must be > 0")

	c := t.Control
	check(c.AbandonLow >= 0 && c.AbandonHigh <= 1, "control abandon window must lie in [0, 1]")
	check(c.AbandonLow < c.AbandonHigh, "control.abandon_low (%v) must be < abandon_high (%v)", c.AbandonLow, c.AbandonHigh)

	return errors.Join(errs...)
}

//go:embed tuning.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("tuning.schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("tuning.schema.json")
	})
	return schema, schemaErr
}

// validateSchema checks the document's shape. YAML is round-tripped through
// JSON so the validator sees plain JSON values.
func validateSchema(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
