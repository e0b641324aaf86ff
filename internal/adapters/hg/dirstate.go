package hg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dvidx/vcsprompt/internal/domain"
)

// dirstate v1 layout: two 20-byte parent nodes, then one record per
// tracked file: state byte ('n', 'a', 'r', 'm'), int32 mode, int32 size,
// int32 mtime, int32 path length, path bytes (an optional copy source
// follows the path after a NUL).
const (
	nodeLen       = 20
	dirstateV1Hdr = 2 * nodeLen
	entryFixedLen = 1 + 4 + 4 + 4 + 4
)

type dirstateEntry struct {
	state byte
	size  int32
	mtime int32
	name  string
}

// Dirty reports the working tree state from the dirstate. Added, removed
// and merged records are dirty outright; normal records are compared by
// recorded size and mtime against an lstat. Records hg itself marked as
// needing a content check (mtime -1) degrade the result to DirtyUnknown,
// as does a dirstate-v2 repository or an entry count over the cap.
// Untracked files are not visible to this check.
func (b *Backend) Dirty(ctx context.Context, root string) (domain.DirtyState, error) {
	if b.mode == domain.DirtyModeOff {
		return domain.DirtyUnknown, nil
	}
	if usesDirstateV2(root) {
		log.Debug().Str("root", root).Msg("dirstate-v2 repository, dirty state unknown")
		return domain.DirtyUnknown, nil
	}

	data, err := os.ReadFile(filepath.Join(root, ".hg", "dirstate"))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Clean, nil
		}
		return domain.DirtyUnknown, nil
	}
	entries, err := parseDirstate(data)
	if err != nil {
		log.Debug().Err(err).Str("root", root).Msg("undecodable dirstate")
		return domain.DirtyUnknown, nil
	}
	if b.maxEntries > 0 && len(entries) > b.maxEntries {
		return domain.DirtyUnknown, nil
	}

	unknown := false
	for _, e := range entries {
		switch e.state {
		case 'a', 'r', 'm':
			return domain.Dirty, nil
		case 'n':
			if e.size < 0 {
				// -1 merged, -2 from the other merge parent.
				return domain.Dirty, nil
			}
			info, err := os.Lstat(filepath.Join(root, filepath.FromSlash(e.name)))
			if err != nil {
				return domain.Dirty, nil
			}
			if info.Mode().IsRegular() && info.Size() != int64(e.size) {
				return domain.Dirty, nil
			}
			if e.mtime == -1 {
				// hg flushed this entry before it could trust the
				// timestamp; only a content read would settle it.
				unknown = true
				continue
			}
			if info.ModTime().Unix() != int64(e.mtime) {
				return domain.Dirty, nil
			}
		}
	}
	if unknown {
		return domain.DirtyUnknown, nil
	}
	return domain.Clean, nil
}

// dirstateParents reads the two parent nodes from the dirstate header.
func dirstateParents(path string) (p1, p2 []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	hdr := make([]byte, dirstateV1Hdr)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return nil, nil, fmt.Errorf("dirstate header: %w", err)
	}
	return hdr[:nodeLen], hdr[nodeLen:], nil
}

func parseDirstate(data []byte) ([]dirstateEntry, error) {
	if len(data) < dirstateV1Hdr {
		return nil, fmt.Errorf("dirstate truncated at %d bytes", len(data))
	}
	rest := data[dirstateV1Hdr:]
	var entries []dirstateEntry
	for len(rest) > 0 {
		if len(rest) < entryFixedLen {
			return nil, fmt.Errorf("dirstate entry truncated")
		}
		e := dirstateEntry{
			state: rest[0],
			size:  int32(binary.BigEndian.Uint32(rest[5:9])),
			mtime: int32(binary.BigEndian.Uint32(rest[9:13])),
		}
		nameLen := int(int32(binary.BigEndian.Uint32(rest[13:17])))
		rest = rest[entryFixedLen:]
		if nameLen < 0 || nameLen > len(rest) {
			return nil, fmt.Errorf("dirstate entry name length %d out of range", nameLen)
		}
		name := rest[:nameLen]
		rest = rest[nameLen:]
		// A copied file stores "destination\x00source".
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		e.name = string(name)
		entries = append(entries, e)
	}
	return entries, nil
}

// usesDirstateV2 reports whether .hg/requires declares the v2 dirstate,
// whose tree layout this reader does not decode.
func usesDirstateV2(root string) bool {
	data, err := os.ReadFile(filepath.Join(root, ".hg", "requires"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "dirstate-v2" {
			return true
		}
	}
	return false
}
