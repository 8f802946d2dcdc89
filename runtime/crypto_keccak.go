package runtime

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// keccakRate256 is Keccak-256's sponge rate in bytes (1088 bits); the
// remaining 512 bits of the 1600-bit state are capacity.
const keccakRate256 = 136

// keccakRoundConstants are the 24 round constants of Keccak-f[1600]
// (FIPS 202 §3.2.5).
var keccakRoundConstants = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088, 0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// keccakRotationOffsets[x][y] is the rho-step rotation amount for lane
// (x,y) (FIPS 202 Table 2).
var keccakRotationOffsets = [5][5]uint{
	{0, 36, 3, 41, 18},
	{1, 44, 10, 45, 2},
	{62, 6, 43, 15, 61},
	{28, 55, 25, 21, 56},
	{27, 20, 39, 8, 14},
}

// KeccakWitness captures Keccak-f[1600]'s 24-round permutation trace over
// a single absorbed block, the same trace shape as the SHA-256 witness:
// initial state, every round's state, and the final state the digest is
// squeezed from.
type KeccakWitness struct {
	MessageBlock [keccakRate256]byte
	InitialState [25]uint64
	RoundStates  [24][25]uint64
	FinalState   [25]uint64
	Timestamp    uint64
}

func rotl64(x uint64, n uint) uint64 {
	if n == 0 {
		return x
	}
	return (x << n) | (x >> (64 - n))
}

func keccakF1600(state [5][5]uint64) ([24][5][5]uint64, [5][5]uint64) {
	var rounds [24][5][5]uint64
	for round := 0; round < 24; round++ {
		var c [5]uint64
		for x := 0; x < 5; x++ {
			c[x] = state[x][0] ^ state[x][1] ^ state[x][2] ^ state[x][3] ^ state[x][4]
		}
		var d [5]uint64
		for x := 0; x < 5; x++ {
			d[x] = c[(x+4)%5] ^ rotl64(c[(x+1)%5], 1)
		}
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				state[x][y] ^= d[x]
			}
		}

		var b [5][5]uint64
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				nx, ny := y, (2*x+3*y)%5
				b[nx][ny] = rotl64(state[x][y], keccakRotationOffsets[x][y])
			}
		}

		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				state[x][y] = b[x][y] ^ ((^b[(x+1)%5][y]) & b[(x+2)%5][y])
			}
		}

		state[0][0] ^= keccakRoundConstants[round]
		rounds[round] = state
	}
	return rounds, state
}

func bytesToLanes(block []byte) [25]uint64 {
	var lanes [25]uint64
	for i := 0; i < 25 && (i+1)*8 <= len(block); i++ {
		var lane uint64
		for b := 0; b < 8; b++ {
			lane |= uint64(block[i*8+b]) << (8 * b)
		}
		lanes[i] = lane
	}
	return lanes
}

func lanesToBytes(lanes [25]uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		lane := lanes[i/8]
		out[i] = byte(lane >> (8 * uint(i%8)))
	}
	return out
}

func flatten(state [5][5]uint64) [25]uint64 {
	var lanes [25]uint64
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			lanes[x+5*y] = state[x][y]
		}
	}
	return lanes
}

func unflatten(lanes [25]uint64) [5][5]uint64 {
	var state [5][5]uint64
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			state[x][y] = lanes[x+5*y]
		}
	}
	return state
}

// keccakPadSingleBlock applies the original Keccak multi-rate padding
// (pad10*1 with domain byte 0x01, not SHA3's 0x06) for a message that fits
// in one absorbed block.
func keccakPadSingleBlock(msg []byte, rate int) []byte {
	block := make([]byte, rate)
	copy(block, msg)
	if len(msg) == rate-1 {
		block[len(msg)] = 0x81
		return block
	}
	block[len(msg)] = 0x01
	block[rate-1] ^= 0x80
	return block
}

// ComputeKeccak256Witness captures the Keccak-256 permutation trace for
// msg, which must fit in a single absorbed block (len(msg) < rate).
// Longer messages need the non-witness digest path via
// golang.org/x/crypto/sha3 directly, mirroring the SHA-256 single-block
// scope limit. The returned digest is cross-checked against that library.
func ComputeKeccak256Witness(msg []byte, timestamp uint64) (*KeccakWitness, [32]byte, error) {
	if len(msg) >= keccakRate256 {
		return nil, [32]byte{}, fmt.Errorf("runtime: keccak256 witness capture requires len(msg) < %d, got %d", keccakRate256, len(msg))
	}
	padded := keccakPadSingleBlock(msg, keccakRate256)

	var absorbed [200]byte
	copy(absorbed[:], padded)
	initialLanes := bytesToLanes(absorbed[:])
	initialState := unflatten(initialLanes)

	rounds, finalState := keccakF1600(initialState)

	var roundLanes [24][25]uint64
	for i, r := range rounds {
		roundLanes[i] = flatten(r)
	}
	finalLanes := flatten(finalState)

	digestBytes := lanesToBytes(finalLanes, 32)
	var digest [32]byte
	copy(digest[:], digestBytes)

	oracle := sha3.NewLegacyKeccak256()
	oracle.Write(msg)
	want := oracle.Sum(nil)
	for i := range digest {
		if digest[i] != want[i] {
			return nil, [32]byte{}, fmt.Errorf("runtime: keccak256 witness digest disagrees with golang.org/x/crypto/sha3 oracle")
		}
	}

	var block [keccakRate256]byte
	copy(block[:], padded)
	return &KeccakWitness{
		MessageBlock: block,
		InitialState: initialLanes,
		RoundStates:  roundLanes,
		FinalState:   finalLanes,
		Timestamp:    timestamp,
	}, digest, nil
}
