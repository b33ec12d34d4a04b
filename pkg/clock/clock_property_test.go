package clock

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propertyIterations = 500

func randomVector(rng *rand.Rand, length int) VectorTimestamp {
	values := make([]uint64, length)
	for i := range values {
		values[i] = uint64(rng.Intn(4))
	}
	return FromValues(values...)
}

// naiveRelation classifies two vectors with two independent scans. It is
// slower than Compare but obviously correct, which makes it a useful oracle.
func naiveRelation(a, b VectorTimestamp) Relation {
	var less, greater bool
	for i := 0; i < a.Len(); i++ {
		if a.At(i).IsBefore(b.At(i)) {
			less = true
		}
		if a.At(i).IsAfter(b.At(i)) {
			greater = true
		}
	}
	switch {
	case less && greater:
		return Concurrent
	case less:
		return Before
	case greater:
		return After
	default:
		return Equal
	}
}

// TestVectorTimestamp_Property_CompareMatchesOracle tests the single-pass
// scan against the two-scan classification
func TestVectorTimestamp_Property_CompareMatchesOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < propertyIterations; i++ {
		n := rng.Intn(6)
		a, b := randomVector(rng, n), randomVector(rng, n)

		r, err := a.Compare(b)
		require.NoError(t, err)
		require.Equal(t, naiveRelation(a, b), r, "Compare(%v, %v)", a, b)
	}
}

// TestVectorTimestamp_Property_TickHappensAfter tests monotonicity of local events
func TestVectorTimestamp_Property_TickHappensAfter(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < propertyIterations; i++ {
		n := rng.Intn(5) + 1
		v := randomVector(rng, n)
		idx := rng.Intn(n)

		next, err := v.Tick(idx)
		require.NoError(t, err)

		r, err := next.Compare(v)
		require.NoError(t, err)
		require.Equal(t, After, r, "Tick(%d) of %v gave %v", idx, v, next)
	}
}

// TestVectorTimestamp_Property_ReceiveDominatesBoth tests that a receive
// never loses information from either side
func TestVectorTimestamp_Property_ReceiveDominatesBoth(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < propertyIterations; i++ {
		n := rng.Intn(5) + 1
		v, w := randomVector(rng, n), randomVector(rng, n)
		idx := rng.Intn(n)

		r, err := v.Receive(idx, w)
		require.NoError(t, err)

		require.Equal(t, v.At(idx).Value()+1, r.At(idx).Value())
		for j := 0; j < n; j++ {
			if j == idx {
				continue
			}
			want := max(v.At(j).Value(), w.At(j).Value())
			require.Equal(t, want, r.At(j).Value(), "slot %d of %v receiving %v", j, v, w)
		}

		rel, err := r.Compare(v)
		require.NoError(t, err)
		require.Equal(t, After, rel)
	}
}

// TestVectorTimestamp_Property_Reflexive tests that every vector equals itself
func TestVectorTimestamp_Property_Reflexive(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < propertyIterations; i++ {
		v := randomVector(rng, rng.Intn(6))
		r, err := v.Compare(v)
		require.NoError(t, err)
		require.Equal(t, Equal, r)
	}
}

// TestVectorTimestamp_Property_Antisymmetric tests that swapping the
// operands inverts the relation
func TestVectorTimestamp_Property_Antisymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	seen := make(map[Relation]bool)
	for i := 0; i < propertyIterations; i++ {
		n := rng.Intn(5) + 1
		a, b := randomVector(rng, n), randomVector(rng, n)

		ab, err := a.Compare(b)
		require.NoError(t, err)
		ba, err := b.Compare(a)
		require.NoError(t, err)

		require.Equal(t, ab.Inverse(), ba, "a=%v b=%v", a, b)
		seen[ab] = true
	}

	// Make sure the generator actually exercised every relation.
	for _, r := range []Relation{Equal, Before, After, Concurrent} {
		assert.True(t, seen[r], "relation %v never generated", r)
	}
}

// TestVectorTimestamp_Property_HashAgreesWithEqual tests the hash contract
func TestVectorTimestamp_Property_HashAgreesWithEqual(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < propertyIterations; i++ {
		v := randomVector(rng, rng.Intn(6))
		clone := FromSlots(v.slots)
		require.True(t, v.Equal(clone))
		require.Equal(t, v.Hash(), clone.Hash())
	}
}

// TestVectorTimestamp_Property_Transitivity tests transitivity of Before
func TestVectorTimestamp_Property_Transitivity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < propertyIterations; i++ {
		n := rng.Intn(4) + 1
		a := randomVector(rng, n)
		b, err := a.Tick(rng.Intn(n))
		require.NoError(t, err)
		c, err := b.Receive(rng.Intn(n), randomVector(rng, n))
		require.NoError(t, err)

		ok, err := a.HappensBefore(c)
		require.NoError(t, err)
		require.True(t, ok, "a=%v b=%v c=%v", a, b, c)
	}
}
