// Package mmap provides read-only memory-mapped file access.
//
// The local blob store maps dataset files instead of copying them through
// kernel buffers.
//
//	m, err := mmap.Open("kanji.json")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// Unix platforms use mmap(2). Other platforms fall back to reading the file
// into memory behind the same API.
//
// A Mapping is safe for concurrent reads. Close is idempotent; callers must
// not touch Bytes() after Close returns.
package mmap
