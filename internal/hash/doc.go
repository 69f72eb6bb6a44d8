// Package hash provides the checksum used to fingerprint dataset documents.
//
// Checksums are CRC32-Castagnoli (CRC32C), which Go computes with hardware
// instructions on x86 (SSE4.2) and ARM. The checksum is taken over the
// decompressed document, so the same dataset shipped as plain JSON, zstd or
// lz4 reports the same value.
package hash
