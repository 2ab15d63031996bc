// Package bundle stores one encoded attribute with the constant pool it
// was encoded against, so it can be decoded without the rest of the
// class file.
//
// A bundle is a deterministic CBOR map with four keys: version, pool (the
// constant slots in index order), attribute (name_index, length and
// payload, exactly as in a class file) and digest, a keyed BLAKE3 hash of
// the attribute bytes. Unmarshal and Load reject a bundle whose digest does
// not match with an integrity error.
package bundle
