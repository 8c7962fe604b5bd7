package store

import (
	"bufio"
	"io"
	"os"

	"github.com/jmank88/nuts"
	"github.com/pkg/errors"

	"github.com/solvectl/solvectl/internal/pool"
)

// idCache is a tiny flat-file id cache keyed by a big-endian byte
// encoding of pool.Id via nuts.Key, sized per id by nuts.KeyLen (so
// keys vary in width), reused here without a bolt
// dependency (see DESIGN.md) as a plain append-only record file, since
// store's cache is a single-writer, single-reader sidecar rather than a
// concurrently-queried database.
type idCache struct {
	path string
}

// OpenIDCache returns a handle to path. It touches no file: the first
// Append creates it, and Load treats a missing file as empty.
func OpenIDCache(path string) *idCache {
	return &idCache{path: path}
}

// Append records that interned string s maps to id, writing id as a
// nuts.Key-sortable prefix so a future on-disk index could binary-search
// the file without decoding every record.
func (c *idCache) Append(id pool.Id, s string) error {
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrapf(err, "store: opening id cache %s", c.path)
	}
	defer f.Close()

	k := make(nuts.Key, nuts.KeyLen(uint64(id)))
	k.Put(uint64(id))

	w := bufio.NewWriter(f)
	if _, err := w.Write([]byte{byte(len(k))}); err != nil {
		return err
	}
	if _, err := w.Write(k); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(len(s))}); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	return w.Flush()
}

// Load replays every (id, name) record in the cache file, in write
// order, calling fn for each.
func (c *idCache) Load(fn func(id pool.Id, s string)) error {
	f, err := os.Open(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "store: opening id cache %s", c.path)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		klen, err := r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		k := make(nuts.Key, klen)
		if _, err := io.ReadFull(r, k); err != nil {
			return err
		}
		slen, err := r.ReadByte()
		if err != nil {
			return err
		}
		sbuf := make([]byte, slen)
		if _, err := io.ReadFull(r, sbuf); err != nil {
			return err
		}
		fn(pool.Id(decodeKey(k)), string(sbuf))
	}
}

// decodeKey inverts nuts.Key.Put's big-endian, variable-width encoding.
func decodeKey(k nuts.Key) uint64 {
	var v uint64
	for _, b := range k {
		v = v<<8 | uint64(b)
	}
	return v
}
