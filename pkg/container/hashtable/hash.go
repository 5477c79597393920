// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashtable

import (
	"encoding/binary"
	"math/bits"
)

// Hash keys are fixed.  The bucket a value hashes to must be stable
// across runs and across every input of a redistribution.
var hashkey = [4]uint64{
	0x243f6a8885a308d3,
	0x13198a2e03707344,
	0xa4093822299f31d0,
	0x082efa98ec4e6c89,
}

const (
	m1 = 0xa0761d6478bd642f
	m2 = 0xe7037ed1a0b428db
	m3 = 0x8ebc6af09c88c6e3
	m4 = 0x589965cc75374cc3
	m5 = 0x1d8e4e27c47d124f
)

// BytesHash returns the 64 bit hash of data.
func BytesHash(data []byte) uint64 {
	return wyhash(data, 0)
}

// Int64Hash returns the 64 bit hash of x.
func Int64Hash(x uint64) uint64 {
	return wyhash64(x)
}

func wyhash(data []byte, seed uint64) uint64 {
	s := uint64(len(data))
	var a, b uint64
	seed ^= hashkey[0] ^ m1
	switch {
	case s == 0:
		return seed
	case s < 4:
		a = uint64(data[0])
		a |= uint64(data[s>>1]) << 8
		a |= uint64(data[s-1]) << 16
	case s == 4:
		a = r4(data, 0)
		b = a
	case s < 8:
		a = r4(data, 0)
		b = r4(data, s-4)
	case s == 8:
		a = r8(data, 0)
		b = a
	case s <= 16:
		a = r8(data, 0)
		b = r8(data, s-8)
	default:
		l := s
		p := uint64(0)
		if l > 48 {
			seed1 := seed
			seed2 := seed
			for ; l > 48; l -= 48 {
				seed = mix(r8(data, p)^m2, r8(data, p+8)^seed)
				seed1 = mix(r8(data, p+16)^m3, r8(data, p+24)^seed1)
				seed2 = mix(r8(data, p+32)^m4, r8(data, p+40)^seed2)
				p += 48
			}
			seed ^= seed1 ^ seed2
		}
		for ; l > 16; l -= 16 {
			seed = mix(r8(data, p)^m2, r8(data, p+8)^seed)
			p += 16
		}
		a = r8(data, p+l-16)
		b = r8(data, p+l-8)
	}

	return mix(m5^uint64(s), mix(a^m2, b^seed))
}

func mix(a, b uint64) uint64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return hi ^ lo
}

func r4(data []byte, p uint64) uint64 {
	return uint64(binary.LittleEndian.Uint32(data[p:]))
}

func r8(data []byte, p uint64) uint64 {
	return binary.LittleEndian.Uint64(data[p:])
}

func wyhash64(x uint64) uint64 {
	return mix(m5^8, mix(x^m2, x^hashkey[1]^hashkey[0]^m1))
}
