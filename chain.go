package fatinspect

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/aligator/fatinspect/checkpoint"
)

// DefaultMaxChainLinks caps the number of clusters a chain walk collects.
const DefaultMaxChainLinks = 100

// ImageReader is the random access byte source an image is read through.
// *os.File, afero.File and io.SectionReader all satisfy it.
// Generated mock using mockgen:
//  mockgen -source=chain.go -destination=reader_mock_test.go -package fatinspect
type ImageReader interface {
	ReadAt(p []byte, off int64) (n int, err error)
}

// ClusterChain is the ordered list of clusters starting at a given cluster.
type ClusterChain struct {
	Clusters []uint32 `json:"clusters" yaml:"clusters"`
	// Suspicious is set if the walk stopped at the link cap instead of a terminator.
	Suspicious bool `json:"suspicious,omitempty" yaml:"suspicious,omitempty"`
	// Cyclic is set if cycle detection found a cluster twice.
	Cyclic bool `json:"cyclic,omitempty" yaml:"cyclic,omitempty"`
}

// Len returns the number of clusters in the chain.
func (c ClusterChain) Len() int {
	return len(c.Clusters)
}

// ChainWalker follows cluster chains through the FAT.
type ChainWalker struct {
	Geometry Geometry
	Reader   ImageReader

	// MaxLinks is the safety cap, DefaultMaxChainLinks if <= 0.
	MaxLinks int
	// DetectCycles keeps a set of visited clusters and stops at the first repeat.
	DetectCycles bool
}

// WalkChain follows the chain starting at start using the default cap and no
// cycle detection.
func WalkChain(start uint32, g Geometry, r ImageReader) (ClusterChain, error) {
	w := ChainWalker{Geometry: g, Reader: r}
	return w.Walk(start)
}

// Walk collects every data cluster from start up to the first value which is
// no data cluster. End of chain markers, free (0) and reserved (1) values
// all terminate the chain the same way.
// If the cap is reached first, the partial chain is returned with
// Suspicious set.
func (w ChainWalker) Walk(start uint32) (ClusterChain, error) {
	maxLinks := w.MaxLinks
	if maxLinks <= 0 {
		maxLinks = DefaultMaxChainLinks
	}

	var visited map[uint32]struct{}
	if w.DetectCycles {
		visited = make(map[uint32]struct{})
	}

	chain := ClusterChain{Clusters: []uint32{}}
	current := start
	for IsDataCluster(current) {
		if len(chain.Clusters) >= maxLinks {
			chain.Suspicious = true
			break
		}

		if visited != nil {
			if _, ok := visited[current]; ok {
				chain.Cyclic = true
				break
			}
			visited[current] = struct{}{}
		}

		chain.Clusters = append(chain.Clusters, current)

		next, err := w.ReadFATEntry(current)
		if err != nil {
			return chain, err
		}
		current = next
	}

	return chain, nil
}

// ReadFATEntry reads the FAT entry of cluster with the reserved top 4 bits cleared.
func (w ChainWalker) ReadFATEntry(cluster uint32) (uint32, error) {
	buf := make([]byte, fatEntrySize)
	err := readFull(w.Reader, buf, w.Geometry.FATEntryOffset(cluster))
	if err != nil {
		return 0, checkpoint.Wrapf(err, ErrIO, "FAT entry of cluster %d", cluster)
	}

	return binary.LittleEndian.Uint32(buf) & fatEntryMask, nil
}

// readFull reads exactly len(p) bytes at off. A short read is reported as
// io.ErrUnexpectedEOF, also if the reader itself returned io.EOF.
func readFull(r ImageReader, p []byte, off uint64) error {
	n, err := r.ReadAt(p, int64(off))
	if n == len(p) {
		return nil
	}

	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("read %d of %d bytes at offset %#x: %w", n, len(p), off, err)
}
