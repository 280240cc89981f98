package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

// Digest is a sha256 over the full snapshot. Two worlds with equal digests are
// indistinguishable to the scorer.
func (w *World) Digest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteI64(h, &tmp, int64(w.Frame))
	digestWriteI64(h, &tmp, int64(w.Money))

	digestWriteU64(h, &tmp, uint64(len(w.Stations)))
	for i := range w.Stations {
		s := &w.Stations[i]
		digestWriteF64(h, &tmp, s.Pos.X)
		digestWriteF64(h, &tmp, s.Pos.Y)
		digestWriteI64(h, &tmp, int64(s.Kind))
		digestWriteU64(h, &tmp, uint64(s.Inputs))
		h.Write([]byte{boolByte(s.OutputReady)})
		digestWriteI64(h, &tmp, int64(s.Remaining))
	}

	digestWriteU64(h, &tmp, uint64(len(w.Agents)))
	for i := range w.Agents {
		a := &w.Agents[i]
		digestWriteF64(h, &tmp, a.Pos.X)
		digestWriteF64(h, &tmp, a.Pos.Y)
		digestWriteF64(h, &tmp, a.Heading)
		digestWriteF64(h, &tmp, a.Velocity.X)
		digestWriteF64(h, &tmp, a.Velocity.Y)
		digestWriteF64(h, &tmp, a.AngularVelocity)
		digestWriteI64(h, &tmp, int64(a.Held))
		digestWriteI64(h, &tmp, int64(a.AtStation))
		digestWriteF64(h, &tmp, a.TimeDecay)
		digestWriteF64(h, &tmp, a.CollisionDecay)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteF64(h hashWriter, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
