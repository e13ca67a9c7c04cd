package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// digestJSON returns "prefix:" followed by the SHA-256 of v's JSON form.
// encoding/json writes float64 in shortest round-trip form, so keys separate
// parameters that differ in the last bit.
func digestJSON(prefix string, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Only NaN or Inf parameters fail to marshal, and validation rejects
		// those before any key is built.
		panic("cache: unmarshalable key options: " + err.Error())
	}
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashVertices hashes the exact bits of an orientation set, in order.
func HashVertices(vs []r3.Vec) string {
	h := sha256.New()
	var buf [24]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(v.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(v.Y))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(v.Z))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
