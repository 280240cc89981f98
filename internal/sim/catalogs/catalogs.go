package catalogs

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

// MaxKind bounds item kinds so a station's input set fits a uint16 bitset
// indexed by kind (bit 0 unused).
const MaxKind = 15

//go:embed defaults/*.json
var defaultFS embed.FS

type Catalogs struct {
	Items    ItemCatalog
	Stations StationCatalog
}

type ItemCatalog struct {
	// Defs is indexed by kind; index 0 is the "nothing held" slot.
	Defs   []ItemDef
	Digest string
}

type ItemDef struct {
	Kind          int   `json:"kind"`
	Inputs        []int `json:"inputs"`
	PurchasePrice int   `json:"purchase_price"`
	SalePrice     int   `json:"sale_price"`
}

type StationCatalog struct {
	Defs   []StationDef
	Digest string
}

type StationDef struct {
	Kind        int   `json:"kind"`
	Inputs      []int `json:"inputs"`
	CycleFrames int   `json:"cycle_frames"` // -1 when the station never produces
	Output      int   `json:"output"`       // 0 for sinks
}

// InputBits returns the required-input bitset (bit k set for item kind k).
func (d StationDef) InputBits() uint16 {
	var bits uint16
	for _, k := range d.Inputs {
		bits |= 1 << uint(k)
	}
	return bits
}

func (d StationDef) Accepts(item int) bool {
	return item > 0 && item <= MaxKind && d.InputBits()&(1<<uint(item)) != 0
}

// Load reads items.json and stations.json from configDir.
func Load(configDir string) (*Catalogs, error) {
	return LoadFS(os.DirFS(configDir))
}

// Default returns the built-in factory catalog.
func Default() *Catalogs {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		panic(err)
	}
	c, err := LoadFS(sub)
	if err != nil {
		panic(fmt.Sprintf("catalogs: embedded defaults: %v", err))
	}
	return c
}

func LoadFS(fsys fs.FS) (*Catalogs, error) {
	var c Catalogs
	if err := loadItems(fsys, "items.json", &c.Items); err != nil {
		return nil, err
	}
	if err := loadStations(fsys, "stations.json", &c.Stations, &c.Items); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalogs) Item(kind int) (ItemDef, bool) {
	if c == nil || kind <= 0 || kind >= len(c.Items.Defs) || c.Items.Defs[kind].Kind == 0 {
		return ItemDef{}, false
	}
	return c.Items.Defs[kind], true
}

func (c *Catalogs) Station(kind int) (StationDef, bool) {
	if c == nil || kind <= 0 || kind >= len(c.Stations.Defs) || c.Stations.Defs[kind].Kind == 0 {
		return StationDef{}, false
	}
	return c.Stations.Defs[kind], true
}

// PurchasePrice is what a station charges for handing out item kind; 0 for
// unknown kinds.
func (c *Catalogs) PurchasePrice(kind int) int {
	d, ok := c.Item(kind)
	if !ok {
		return 0
	}
	return d.PurchasePrice
}

func (c *Catalogs) SalePrice(kind int) int {
	d, ok := c.Item(kind)
	if !ok {
		return 0
	}
	return d.SalePrice
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadItems(fsys fs.FS, name string, out *ItemCatalog) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	maxKind := 0
	for _, d := range defs {
		if d.Kind <= 0 || d.Kind > MaxKind {
			return fmt.Errorf("%s: kind %d out of range 1..%d", name, d.Kind, MaxKind)
		}
		if d.Kind > maxKind {
			maxKind = d.Kind
		}
	}
	out.Defs = make([]ItemDef, maxKind+1)
	for _, d := range defs {
		if out.Defs[d.Kind].Kind != 0 {
			return fmt.Errorf("%s: duplicate kind %d", name, d.Kind)
		}
		if d.PurchasePrice < 0 || d.SalePrice < 0 {
			return fmt.Errorf("%s: kind %d: negative price", name, d.Kind)
		}
		out.Defs[d.Kind] = d
	}
	for _, d := range defs {
		for _, in := range d.Inputs {
			if in <= 0 || in >= len(out.Defs) || out.Defs[in].Kind == 0 {
				return fmt.Errorf("%s: kind %d: unknown input %d", name, d.Kind, in)
			}
		}
	}
	return nil
}

func loadStations(fsys fs.FS, name string, out *StationCatalog, items *ItemCatalog) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []StationDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	known := func(k int) bool { return k > 0 && k < len(items.Defs) && items.Defs[k].Kind != 0 }

	maxKind := 0
	for _, d := range defs {
		if d.Kind <= 0 {
			return fmt.Errorf("%s: kind %d out of range", name, d.Kind)
		}
		if d.Kind > maxKind {
			maxKind = d.Kind
		}
	}
	out.Defs = make([]StationDef, maxKind+1)
	for _, d := range defs {
		if out.Defs[d.Kind].Kind != 0 {
			return fmt.Errorf("%s: duplicate kind %d", name, d.Kind)
		}
		for _, in := range d.Inputs {
			if !known(in) {
				return fmt.Errorf("%s: kind %d: unknown input item %d", name, d.Kind, in)
			}
		}
		if d.Output != 0 && !known(d.Output) {
			return fmt.Errorf("%s: kind %d: unknown output item %d", name, d.Kind, d.Output)
		}
		if d.CycleFrames == 0 || d.CycleFrames < -1 {
			return fmt.Errorf("%s: kind %d: bad cycle_frames %d", name, d.Kind, d.CycleFrames)
		}
		out.Defs[d.Kind] = d
	}
	return nil
}
