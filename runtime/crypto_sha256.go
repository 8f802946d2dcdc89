package runtime

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// sha256RoundConstants are FIPS 180-4's 64 round constants K.
var sha256RoundConstants = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// sha256IV is the FIPS 180-4 initial hash value for SHA-256.
var sha256IV = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// Sha256Witness is the fixed-round capture spec.md §4.11 asks for: the
// padded message block, the initial/final state, the expanded message
// schedule, and every intermediate compression-round state.
type Sha256Witness struct {
	MessageBlock    [16]uint32
	InitialState    [8]uint32
	MessageSchedule [64]uint32
	RoundStates     [64][8]uint32
	FinalState      [8]uint32
	Timestamp       uint64
}

func rotr32(x uint32, n uint) uint32 { return (x >> n) | (x << (32 - n)) }

// sha256Pad produces the single 512-bit padded block for a message under
// 56 bytes: one 0x80 byte, zero padding, then the 64-bit bit length.
func sha256Pad(msg []byte) [64]byte {
	var block [64]byte
	copy(block[:], msg)
	block[len(msg)] = 0x80
	binary.BigEndian.PutUint64(block[56:], uint64(len(msg))*8)
	return block
}

// ComputeSha256Witness captures the full 64-round SHA-256 compression
// trace for msg, which must be short enough to pad into a single 512-bit
// block (spec.md design note: witness capture is defined only for
// messages under 56 bytes; longer messages need the non-witness digest
// path via crypto/sha256 directly). The returned digest is cross-checked
// against the standard library's implementation.
func ComputeSha256Witness(msg []byte, timestamp uint64) (*Sha256Witness, [32]byte, error) {
	if len(msg) >= 56 {
		return nil, [32]byte{}, fmt.Errorf("runtime: sha256 witness capture requires len(msg) < 56, got %d", len(msg))
	}
	block := sha256Pad(msg)

	var schedule [64]uint32
	for i := 0; i < 16; i++ {
		schedule[i] = binary.BigEndian.Uint32(block[i*4 : i*4+4])
	}
	for i := 16; i < 64; i++ {
		s0 := rotr32(schedule[i-15], 7) ^ rotr32(schedule[i-15], 18) ^ (schedule[i-15] >> 3)
		s1 := rotr32(schedule[i-2], 17) ^ rotr32(schedule[i-2], 19) ^ (schedule[i-2] >> 10)
		schedule[i] = schedule[i-16] + s0 + schedule[i-7] + s1
	}

	a, b, c, d, e, f, g, h := sha256IV[0], sha256IV[1], sha256IV[2], sha256IV[3],
		sha256IV[4], sha256IV[5], sha256IV[6], sha256IV[7]

	var rounds [64][8]uint32
	for i := 0; i < 64; i++ {
		s1 := rotr32(e, 6) ^ rotr32(e, 11) ^ rotr32(e, 25)
		ch := (e & f) ^ (^e & g)
		temp1 := h + s1 + ch + sha256RoundConstants[i] + schedule[i]
		s0 := rotr32(a, 2) ^ rotr32(a, 13) ^ rotr32(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		temp2 := s0 + maj

		h, g, f, e = g, f, e, d+temp1
		d, c, b, a = c, b, a, temp1+temp2
		rounds[i] = [8]uint32{a, b, c, d, e, f, g, h}
	}

	final := [8]uint32{
		sha256IV[0] + a, sha256IV[1] + b, sha256IV[2] + c, sha256IV[3] + d,
		sha256IV[4] + e, sha256IV[5] + f, sha256IV[6] + g, sha256IV[7] + h,
	}

	var msgBlock [16]uint32
	copy(msgBlock[:], schedule[:16])

	var digest [32]byte
	for i, word := range final {
		binary.BigEndian.PutUint32(digest[i*4:i*4+4], word)
	}
	if want := sha256.Sum256(msg); digest != want {
		return nil, [32]byte{}, fmt.Errorf("runtime: sha256 witness digest disagrees with crypto/sha256 oracle")
	}

	return &Sha256Witness{
		MessageBlock:    msgBlock,
		InitialState:    sha256IV,
		MessageSchedule: schedule,
		RoundStates:     rounds,
		FinalState:      final,
		Timestamp:       timestamp,
	}, digest, nil
}
