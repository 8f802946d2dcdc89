package runtime

import (
	"encoding/binary"
	"fmt"

	"lukechampine.com/blake3"
)

// blake3IV is BLAKE3's chaining-value initializer (shared with BLAKE2s).
var blake3IV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// blake3MsgPermutation is BLAKE3's message-word permutation applied
// between compression rounds.
var blake3MsgPermutation = [16]int{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}

const (
	flagChunkStart = 1 << 0
	flagChunkEnd   = 1 << 1
	flagRoot       = 1 << 3
)

// Blake3Witness captures the 7-round compression trace of a single-chunk,
// single-block BLAKE3 input (a message of 64 bytes or fewer hashed as the
// root), the same trace shape as the SHA-256/Keccak witnesses.
type Blake3Witness struct {
	MessageBlock [16]uint32
	InitialState [16]uint32
	RoundStates  [7][16]uint32
	FinalState   [16]uint32
	Timestamp    uint64
}

func blake3Rotr(x uint32, n uint) uint32 { return (x >> n) | (x << (32 - n)) }

func blake3G(state *[16]uint32, a, b, c, d int, mx, my uint32) {
	state[a] = state[a] + state[b] + mx
	state[d] = blake3Rotr(state[d]^state[a], 16)
	state[c] = state[c] + state[d]
	state[b] = blake3Rotr(state[b]^state[c], 12)
	state[a] = state[a] + state[b] + my
	state[d] = blake3Rotr(state[d]^state[a], 8)
	state[c] = state[c] + state[d]
	state[b] = blake3Rotr(state[b]^state[c], 7)
}

func blake3Round(state *[16]uint32, m [16]uint32) {
	blake3G(state, 0, 4, 8, 12, m[0], m[1])
	blake3G(state, 1, 5, 9, 13, m[2], m[3])
	blake3G(state, 2, 6, 10, 14, m[4], m[5])
	blake3G(state, 3, 7, 11, 15, m[6], m[7])
	blake3G(state, 0, 5, 10, 15, m[8], m[9])
	blake3G(state, 1, 6, 11, 12, m[10], m[11])
	blake3G(state, 2, 7, 8, 13, m[12], m[13])
	blake3G(state, 3, 4, 9, 14, m[14], m[15])
}

func blake3Permute(m [16]uint32) [16]uint32 {
	var out [16]uint32
	for i, src := range blake3MsgPermutation {
		out[i] = m[src]
	}
	return out
}

// blake3Compress runs the 7-round compression function for a single
// 64-byte block used as the root of a single-chunk message, capturing
// every round's state.
func blake3Compress(chainingValue [8]uint32, blockWords [16]uint32, counter uint64, blockLen uint32, flags uint32) ([16]uint32, [7][16]uint32) {
	state := [16]uint32{
		chainingValue[0], chainingValue[1], chainingValue[2], chainingValue[3],
		chainingValue[4], chainingValue[5], chainingValue[6], chainingValue[7],
		blake3IV[0], blake3IV[1], blake3IV[2], blake3IV[3],
		uint32(counter), uint32(counter >> 32), blockLen, flags,
	}
	m := blockWords
	var rounds [7][16]uint32
	for round := 0; round < 7; round++ {
		blake3Round(&state, m)
		rounds[round] = state
		if round < 6 {
			m = blake3Permute(m)
		}
	}
	for i := 0; i < 8; i++ {
		state[i] ^= state[i+8]
		state[i+8] ^= chainingValue[i]
	}
	return state, rounds
}

// ComputeBlake3Witness captures the compression trace for msg hashed as a
// single chunk's single root block (msg must be 64 bytes or fewer; longer
// messages need BLAKE3's tree-hashing non-witness path via
// lukechampine.com/blake3 directly, mirroring the SHA-256/Keccak
// single-block scope limit).
func ComputeBlake3Witness(msg []byte, timestamp uint64) (*Blake3Witness, [32]byte, error) {
	if len(msg) > 64 {
		return nil, [32]byte{}, fmt.Errorf("runtime: blake3 witness capture requires len(msg) <= 64, got %d", len(msg))
	}
	var block [64]byte
	copy(block[:], msg)
	var blockWords [16]uint32
	for i := 0; i < 16; i++ {
		blockWords[i] = binary.LittleEndian.Uint32(block[i*4 : i*4+4])
	}

	flags := uint32(flagChunkStart | flagChunkEnd | flagRoot)
	finalState, rounds := blake3Compress(blake3IV, blockWords, 0, uint32(len(msg)), flags)

	var digest [32]byte
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(digest[i*4:i*4+4], finalState[i])
	}

	want := blake3.Sum256(msg)
	if digest != want {
		return nil, [32]byte{}, fmt.Errorf("runtime: blake3 witness digest disagrees with lukechampine.com/blake3 oracle")
	}

	return &Blake3Witness{
		MessageBlock: blockWords,
		InitialState: [16]uint32{
			blake3IV[0], blake3IV[1], blake3IV[2], blake3IV[3],
			blake3IV[4], blake3IV[5], blake3IV[6], blake3IV[7],
			blake3IV[0], blake3IV[1], blake3IV[2], blake3IV[3],
			0, 0, uint32(len(msg)), flags,
		},
		RoundStates: rounds,
		FinalState:  finalState,
		Timestamp:   timestamp,
	}, digest, nil
}
