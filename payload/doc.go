// Package payload bridges structured Go values through Bytes-tagged
// slots using canonical CBOR.
//
// The calling convention itself moves scalars, strings, and handles;
// anything richer (structs, maps, slices) travels as an encoded byte
// range the callee decodes on its side. Canonical encoding keeps the
// bytes deterministic, so payload-keyed caches and content hashes stay
// stable across encoders.
//
//	req := Request{Op: "resize", Width: 640}
//	arr, err := payload.Marshal(&req)
//	// pass arr as an argument; the ByteArray must stay reachable
//	// for the duration of the call.
//
// Decoding reads a Bytes-tagged argument view:
//
//	v, _ := args.Get(0)
//	var req Request
//	err := payload.Unmarshal(v, &req)
package payload
