package geoid

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unsafe"
)

/*
The binary format used for grid caches is as follows:
    |-- 1 --||-- 2 --||-- 3 --||-- ... 4 ... --||-- ... 5 ... --|

    1 - (int32) Flag indicating the endianness of the file. 0 indicates a big
        endian byte ordering and -1 indicates a little endian byte order.
    2 - (int32) Size of a cacheHeader struct. Should be checked for
        consistency.
    3 - (cacheHeader) Grid geometry and the number of nodes with data.
    4 - ([]int32) Flat indices of the nodes with data, increasing.
    5 - ([]float64) Undulations of those nodes, in the same order.
*/
type cacheHeader struct {
	Origin, Delta [2]float64
	Nodes         [2]int64
	Count         int64
	Version       [32]byte
}

const (
	// Endianness used by default when writing caches. Caches of either
	// endianness can be read.
	DefaultEndiannessFlag int32 = -1

	bigEndianFlag int32 = 0
)

var (
	// ErrCorruptCache is returned when a cache file exists but cannot be
	// read back.
	ErrCorruptCache = errors.New("corrupt grid cache")
)

func endianness(flag int32) binary.ByteOrder {
	switch flag {
	case bigEndianFlag:
		return binary.BigEndian
	case DefaultEndiannessFlag:
		return binary.LittleEndian
	}
	return nil
}

// WriteCache writes m to path in the binary cache format. The file is written
// under a temporary name first and renamed into place, so a failed write never
// leaves a truncated cache behind.
func WriteCache(path string, m *Model) error {
	if len(m.Version) > len(cacheHeader{}.Version) {
		return fmt.Errorf("grid version %q is too long to cache", m.Version)
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := writeCache(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func writeCache(w io.Writer, m *Model) error {
	order := endianness(DefaultEndiannessFlag)
	bw := bufio.NewWriter(w)

	idxs := m.Indices()
	hd := cacheHeader{
		Origin: m.Origin,
		Delta:  m.Delta,
		Nodes:  [2]int64{int64(m.Nodes[0]), int64(m.Nodes[1])},
		Count:  int64(len(idxs)),
	}
	copy(hd.Version[:], m.Version)

	idxBuf := make([]int32, len(idxs))
	valBuf := make([]float64, len(idxs))
	for k, idx := range idxs {
		idxBuf[k] = int32(idx)
		valBuf[k] = m.vals[idx]
	}

	for _, x := range []interface{}{
		DefaultEndiannessFlag, int32(unsafe.Sizeof(hd)), &hd, idxBuf, valBuf,
	} {
		if err := binary.Write(bw, order, x); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadCache reads a grid cache written by WriteCache. Every failure,
// including being unable to open the file, is reported as ErrCorruptCache.
func ReadCache(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCache, err)
	}
	defer f.Close()

	m, err := readCache(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %s", ErrCorruptCache, path, err)
	}
	return m, nil
}

func readCache(r io.Reader) (*Model, error) {
	var flag, size int32
	if err := binary.Read(r, binary.LittleEndian, &flag); err != nil {
		return nil, err
	}
	order := endianness(flag)
	if order == nil {
		return nil, fmt.Errorf("unknown endianness flag %d", flag)
	}
	if err := binary.Read(r, order, &size); err != nil {
		return nil, err
	}

	hd := cacheHeader{}
	if size != int32(unsafe.Sizeof(hd)) {
		return nil, fmt.Errorf(
			"header size is %d, but expected %d", size, unsafe.Sizeof(hd),
		)
	}
	if err := binary.Read(r, order, &hd); err != nil {
		return nil, err
	}

	total := hd.Nodes[0] * hd.Nodes[1]
	if hd.Nodes[0] < 2 || hd.Nodes[1] < 2 || total > 1<<31-1 {
		return nil, fmt.Errorf("invalid grid size %d x %d",
			hd.Nodes[0], hd.Nodes[1])
	} else if hd.Count < 0 || hd.Count > total {
		return nil, fmt.Errorf("invalid node count %d", hd.Count)
	}

	idxBuf := make([]int32, hd.Count)
	valBuf := make([]float64, hd.Count)
	if err := binary.Read(r, order, idxBuf); err != nil {
		return nil, err
	}
	if err := binary.Read(r, order, valBuf); err != nil {
		return nil, err
	}
	var extra [1]byte
	if n, _ := io.ReadFull(r, extra[:]); n != 0 {
		return nil, fmt.Errorf("trailing data after %d nodes", hd.Count)
	}

	vals := make(map[int]float64, hd.Count)
	prev := int32(-1)
	for k, idx := range idxBuf {
		if idx <= prev || int64(idx) >= total {
			return nil, fmt.Errorf("node index %d out of order or range", idx)
		}
		vals[int(idx)] = valBuf[k]
		prev = idx
	}

	h := Header{Version: cString(hd.Version[:])}
	h.Init(hd.Origin, hd.Delta, [2]int{int(hd.Nodes[0]), int(hd.Nodes[1])})
	return NewModel(h, vals), nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
