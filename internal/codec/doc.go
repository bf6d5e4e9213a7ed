// Package codec encodes arbitrary text as the body of a double-quoted string
// literal for the relay wire format.
//
// Only three bytes are rewritten:
//
//	"   ->  \"
//	\   ->  \\
//	\n  ->  \n (backslash, n)
//
// Every other byte passes through untouched. There is no Unicode
// normalization and no control-character stripping.
//
// # Bounded output
//
// Escape takes the size of a destination buffer that reserves room for a
// terminator. The result never exceeds size-2 bytes; when an escape pair no
// longer fits, the input byte is dropped and scanning continues. Truncation is
// silent by contract.
package codec
