// Package orderkey implements fractional string ordering keys: dense keys that let a new branch
// be inserted between two existing chain members without rewriting any other member's key.
package orderkey

import (
	"crypto/rand"
	"math/big"
)

// alphabet is the fixed ordered character set keys are drawn from and compared in. Its 62
// alphanumerics sit in ascending ASCII order (digits, then uppercase, then lowercase), so plain
// Go string comparison already matches alphabet order; no custom Less is needed.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// freshLength is the length of a newly minted key with no neighbours to anchor against.
const freshLength = 5

// Key is a fractional order key. Keys compare with plain Go string ordering.
type Key string

func digitIndex(c byte) int {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return i
		}
	}
	return -1
}

func randIndex(n int) int {
	if n <= 0 {
		return 0
	}
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return n / 2
	}
	return int(i.Int64())
}

// Fresh returns a new key whose first and last characters are never the alphabet's minimum or
// maximum, guaranteeing Before and After can always extend it without hitting a boundary.
func Fresh() Key {
	inner := alphabet[1 : len(alphabet)-1]
	buf := make([]byte, freshLength)
	for i := range buf {
		buf[i] = inner[randIndex(len(inner))]
	}
	return Key(buf)
}

// FreshNotIn returns Fresh(), retrying until the result is absent from used. The chain
// package's order-key resolution falls back to this when a generator below reports failure
// or returns a key already in use.
func FreshNotIn(used map[Key]bool) Key {
	for {
		k := Fresh()
		if !used[k] {
			return k
		}
	}
}

// After returns a key strictly greater than k. Appending any character to k yields a string of
// which k is a strict prefix, which always sorts after k; this never fails for a non-empty k.
func After(k Key) (Key, bool) {
	buf := make([]byte, 0, len(k)+1)
	buf = append(buf, k...)
	buf = append(buf, alphabet[len(alphabet)/2])
	return Key(buf), true
}

// Before returns a key strictly less than k. It fails only when k is exactly the single-rune
// alphabet minimum, which has nothing below it.
func Before(k Key) (Key, bool) {
	return Between("", k)
}

// Between returns a key c with a < c < b. It fails only when a and b are identical, or when b is
// the immediate minimal-digit successor of a (e.g. a="B", b="B0": nothing sorts strictly between
// a string and its own shortest possible extension).
func Between(a, b Key) (Key, bool) {
	if a == b {
		return "", false
	}
	if a > b {
		a, b = b, a
	}
	prefix := make([]byte, 0, len(b)+1)
	for i := 0; ; i++ {
		aDone := i >= len(a)
		bDone := i >= len(b)

		if aDone {
			// b cannot also be done here: that would make a a strict prefix of b with
			// equal length, i.e. a == b, already excluded above.
			digitB := digitIndex(b[i])
			if digitB == 0 && i+1 == len(b) {
				// b is exactly a's shortest possible extension; no room below it.
				return "", false
			}
			prefix = append(prefix, alphabet[0])
			return Key(prefix), true
		}

		digitA := digitIndex(a[i])
		if bDone {
			// a is a strict prefix of the smaller bound only when a < b already holds for
			// unequal lengths; reaching here would require b shorter than a while still
			// exceeding it lexicographically, which cannot happen once a <= b is enforced
			// above. Guard defensively by falling back to simple extension of a.
			return After(a)
		}
		digitB := digitIndex(b[i])

		switch {
		case digitA == digitB:
			prefix = append(prefix, a[i])
			continue
		case digitB-digitA >= 2:
			mid := digitA + (digitB-digitA)/2
			prefix = append(prefix, alphabet[mid])
			return Key(prefix), true
		default: // digitB - digitA == 1: adjacent, no room at this depth
			return After(a)
		}
	}
}
