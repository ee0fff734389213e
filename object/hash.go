package object

import "math"

// HashValue computes the hash dai uses for map keys. Primitive kinds hash
// directly; object kinds delegate to the object's Hash op, which fails for
// arrays and maps (they are not hashable); tuples hash by their elements.
func HashValue(v Value) (uint64, error) {
	switch v.Kind {
	case KindNil, KindUndefined:
		return 0, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 2, nil
	case KindInt:
		return uint64(v.i), nil
	case KindFloat:
		return math.Float64bits(v.f), nil
	case KindObject:
		return Hash(v.obj)
	default:
		return 0, nil
	}
}

// fnvOffset64/fnvPrime64 are the 64-bit FNV-1a constants, reused here to
// fold a sequence of element hashes into one (Tuple.Hash), the same
// combine-while-folding shape FNV1a32 uses for byte sequences.
const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// combineHashes folds element hashes into a single hash, used by Tuple
// (spec §3.2/§C: tuples are hashable, unlike arrays and maps, since their
// contents never mutate after construction).
func combineHashes(hashes []uint64) uint64 {
	h := fnvOffset64
	for _, x := range hashes {
		h ^= x
		h *= fnvPrime64
	}
	return h
}
