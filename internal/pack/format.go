package pack

import (
	"path"
	"strings"
)

// Package layout:
//
//	magic    "HYPK"                                   4 bytes
//	version  0x01                                     1 byte
//	header   msgpack {version, count, total_size, root}
//	entry*   msgpack {path, size, mode, digest} + size payload bytes
//	trailer  sha256 of every preceding byte           32 bytes
//
// Nothing time-dependent is stored, so packing the same tree twice gives
// byte-identical output.
const (
	Magic   = "HYPK"
	Version = 1

	trailerSize = 32
	preamble    = len(Magic) + 1
)

type header struct {
	Version   uint8  `msgpack:"version"`
	Count     uint32 `msgpack:"count"`
	TotalSize uint64 `msgpack:"total_size"`
	Root      string `msgpack:"root"`
}

type record struct {
	Path   string `msgpack:"path"`
	Size   uint64 `msgpack:"size"`
	Mode   uint32 `msgpack:"mode"`
	Digest []byte `msgpack:"digest"`
}

// safePath reports whether p is a clean, relative, slash-separated path
// that stays below the extraction root.
func safePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") || strings.ContainsRune(p, 0) {
		return false
	}
	if path.Clean(p) != p {
		return false
	}
	return p != ".." && !strings.HasPrefix(p, "../")
}
