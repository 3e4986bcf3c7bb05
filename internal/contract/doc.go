// Package contract implements SimpleStorage, a contract holding a single
// unsigned 256-bit integer. The value lives in storage slot 0 of the
// contract's address and reads as zero until it is first set.
package contract
