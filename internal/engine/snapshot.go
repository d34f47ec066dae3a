package engine

import "github.com/roach88/pulsenet/internal/ir"

// Snapshot is the complete mutable state of a graph after a trigger. It is
// comparable with == and usable as a map key. Two snapshots of the same
// graph are equal only if every flip-flop and every conjunction memory
// entry matches.
//
// The layout is positional: modules in sorted-name order, each contributing
// its bits (see Module.appendState). Snapshots of different graphs are not
// comparable in any meaningful way.
type Snapshot struct {
	packed string
	bits   int
}

// Bits returns the number of state bits in the snapshot.
func (s Snapshot) Bits() int { return s.bits }

// Bytes returns a copy of the packed state.
func (s Snapshot) Bytes() []byte { return []byte(s.packed) }

// Bit reports the i-th state bit.
func (s Snapshot) Bit(i int) bool {
	if i < 0 || i >= s.bits {
		return false
	}
	return s.packed[i/8]&(1<<(uint(i)%8)) != 0
}

// Digest returns the content hash stored in run journals.
func (s Snapshot) Digest() string {
	return ir.StateDigest([]byte(s.packed))
}

// bitWriter packs booleans LSB-first.
type bitWriter struct {
	buf []byte
	n   int
}

func newBitWriter(bits int) *bitWriter {
	return &bitWriter{buf: make([]byte, (bits+7)/8)}
}

func (w *bitWriter) write(bit bool) {
	if bit {
		w.buf[w.n/8] |= 1 << (uint(w.n) % 8)
	}
	w.n++
}

func (w *bitWriter) snapshot() Snapshot {
	return Snapshot{packed: string(w.buf), bits: w.n}
}
