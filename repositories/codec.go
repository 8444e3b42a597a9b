package repositories

import (
	"github.com/fxamacker/cbor/v2"
)

// Stored values are CBOR. Core-deterministic encoding keeps byte output
// stable for identical records, which makes storage-level tests reproducible.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

func encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func decode(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}
