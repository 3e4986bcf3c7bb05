// Package storage provides contract slot storage. Every contract address
// owns a sparse space of 32-byte slots; slots that were never written read
// as zero. Each slot tracks a write version so callers can observe how many
// times it has been overwritten.
package storage
