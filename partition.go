package fatinspect

import (
	"fmt"
	"io/fs"

	"github.com/aligator/fatinspect/checkpoint"
	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/backend/file"
	"github.com/diskfs/go-diskfs/partition"
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"
)

const defaultLogicalBlockSize = 512

// PartitionOffset returns the byte offset of partition index (starting at 1)
// in the MBR or GPT partitioned disk image f. f has to implement io.ReaderAt,
// afero.File and *os.File both do.
// f is left open, closing it stays with the caller.
func PartitionOffset(f fs.File, index int) (int64, error) {
	disk, err := diskfs.OpenBackend(file.New(f, true), diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return 0, checkpoint.Wrapf(err, ErrIO, "open disk image")
	}
	// No disk.Close: it would close f.

	pt, err := disk.GetPartitionTable()
	if err != nil {
		return 0, checkpoint.Wrapf(err, ErrNoPartition, "read partition table")
	}

	return partitionOffset(pt, index, disk.LogicalBlocksize)
}

// partitionOffset finds the start of the index-th used partition.
// Unused GPT and MBR slots are skipped when counting.
func partitionOffset(pt partition.Table, index int, blockSize int64) (int64, error) {
	if blockSize <= 0 {
		blockSize = defaultLogicalBlockSize
	}
	if index < 1 {
		return 0, checkpoint.Wrap(fmt.Errorf("partition index %d, partitions start at 1", index), ErrNoPartition)
	}

	var starts []int64
	switch t := pt.(type) {
	case *gpt.Table:
		for _, p := range t.Partitions {
			// skip empty GPT entries
			if p.Start == 0 && p.End == 0 {
				continue
			}
			starts = append(starts, int64(p.Start)*blockSize)
		}
	case *mbr.Table:
		for _, p := range t.Partitions {
			if p.Size == 0 {
				continue
			}
			starts = append(starts, int64(p.Start)*blockSize)
		}
	default:
		return 0, checkpoint.Wrap(fmt.Errorf("unsupported partition table type: %T", t), ErrNoPartition)
	}

	if index > len(starts) {
		return 0, checkpoint.Wrap(fmt.Errorf("partition %d requested, table has %d", index, len(starts)), ErrNoPartition)
	}
	return starts[index-1], nil
}
