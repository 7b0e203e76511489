package orderkey_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainctl/chain/internal/orderkey"
)

func TestFreshIsBetweenExtremes(t *testing.T) {
	for i := 0; i < 50; i++ {
		k := orderkey.Fresh()
		require.Len(t, k, 5)
		require.Greater(t, string(k), "00000")
		require.Less(t, string(k), "zzzzz")
	}
}

func TestAfterIsGreater(t *testing.T) {
	for _, k := range []orderkey.Key{"A", "Azz", orderkey.Fresh(), "z", "zzzzz"} {
		after, ok := orderkey.After(k)
		require.True(t, ok)
		require.Greater(t, string(after), string(k))
	}
}

func TestBeforeIsLesser(t *testing.T) {
	k := orderkey.Fresh()
	before, ok := orderkey.Before(k)
	require.True(t, ok)
	require.Less(t, string(before), string(k))
}

func TestBeforeMinimumFails(t *testing.T) {
	_, ok := orderkey.Before("0")
	require.False(t, ok)
}

func TestBetweenStrictlyInside(t *testing.T) {
	cases := []struct{ a, b orderkey.Key }{
		{"A", "z"},
		{"Am", "An"},
		{"A", "B"},
		{"Hn5qL", "Hn5qM"},
		{"A", "A00000"},
	}
	for _, c := range cases {
		mid, ok := orderkey.Between(c.a, c.b)
		require.Truef(t, ok, "expected a midpoint between %q and %q", c.a, c.b)
		require.Greater(t, string(mid), string(c.a))
		require.Less(t, string(mid), string(c.b))
	}
}

func TestBetweenAdjacentExtensionFails(t *testing.T) {
	_, ok := orderkey.Between("B", "B0")
	require.False(t, ok)
}

func TestBetweenIdenticalFails(t *testing.T) {
	_, ok := orderkey.Between("same", "same")
	require.False(t, ok)
}

func TestBetweenOrderIndependent(t *testing.T) {
	lo, ok1 := orderkey.Between("A", "z")
	hi, ok2 := orderkey.Between("z", "A")
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, lo, hi)
}

func TestFreshNotInRetriesUntilUnique(t *testing.T) {
	used := map[orderkey.Key]bool{}
	for i := 0; i < 100; i++ {
		k := orderkey.FreshNotIn(used)
		require.False(t, used[k])
		used[k] = true
	}
}
