// Package word provides the 32-byte big-endian machine word used for
// contract storage slots and the conversions between words, big integers
// and their decimal text form.
package word
