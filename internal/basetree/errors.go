package basetree

import "errors"

// ErrChecksumMismatch is returned by Decode/Load when a base file carries a
// checksum element that does not match its contents -- the signature of a
// write interrupted between the temp-file write and the rename. The driver
// treats this identically to a missing base: force recovery (spec.md §7).
var ErrChecksumMismatch = errors.New("basetree: checksum mismatch")
