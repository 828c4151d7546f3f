package payload

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	packedcall "github.com/wippyai/packed-call"
	"github.com/wippyai/packed-call/abi"
	"github.com/wippyai/packed-call/errors"
)

// cborEncMode holds the canonical encoding mode for deterministic
// payload bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("payload: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal encodes v into a byte array ready to pass as a Bytes-tagged
// argument. The returned array owns its bytes; the caller keeps it
// reachable for the duration of the call.
func Marshal(v any) (*abi.ByteArray, error) {
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.PhasePack, errors.KindInvalidData, err,
			"encode CBOR payload")
	}
	return &abi.ByteArray{Data: data}, nil
}

// Unmarshal decodes a Bytes-tagged argument into the value pointed to
// by into. Any other tag fails with a type mismatch.
func Unmarshal(v packedcall.ArgValue, into any) error {
	data, err := v.Bytes()
	if err != nil {
		return err
	}
	if err := cbor.Unmarshal(data, into); err != nil {
		return errors.Wrap(errors.PhaseExtract, errors.KindInvalidData, err,
			"decode CBOR payload")
	}
	return nil
}
