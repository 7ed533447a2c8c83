package fatinspect

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/aligator/fatinspect/checkpoint"
)

// FAT32 cluster number ranges. The top 4 bits of a FAT entry are reserved.
const (
	FirstDataCluster = 2
	LastDataCluster  = 0x0FFFFFF7
	EndOfChain       = 0x0FFFFFF8
	fatEntryMask     = 0x0FFFFFFF
	fatEntrySize     = 4
)

// IsDataCluster reports whether cluster addresses the data region.
func IsDataCluster(cluster uint32) bool {
	return cluster >= FirstDataCluster && cluster <= LastDataCluster
}

// Geometry describes where things are on a FAT32 volume.
// It is derived once from the boot sector and never changed afterwards.
type Geometry struct {
	BytesPerSector    uint16 `json:"bytesPerSector" yaml:"bytes_per_sector"`
	SectorsPerCluster uint8  `json:"sectorsPerCluster" yaml:"sectors_per_cluster"`
	ReservedSectors   uint16 `json:"reservedSectors" yaml:"reserved_sectors"`
	FATCount          uint8  `json:"fatCount" yaml:"fat_count"`
	TotalSectors      uint32 `json:"totalSectors" yaml:"total_sectors"`
	SectorsPerFAT     uint32 `json:"sectorsPerFat" yaml:"sectors_per_fat"`
	RootCluster       uint32 `json:"rootCluster" yaml:"root_cluster"`

	FATStartSector  uint64 `json:"fatStartSector" yaml:"fat_start_sector"`
	DataStartSector uint64 `json:"dataStartSector" yaml:"data_start_sector"`
	ClusterSize     uint32 `json:"clusterSize" yaml:"cluster_size"`
}

// SlotsPerCluster returns how many directory slots fit into one cluster.
func (g Geometry) SlotsPerCluster() int {
	return int(g.ClusterSize / SlotSize)
}

// ClusterOffset is the method form of ClusterToByteOffset.
func (g Geometry) ClusterOffset(cluster uint32) uint64 {
	return ClusterToByteOffset(cluster, g)
}

// FATEntryOffset is the method form of FATEntryByteOffset.
func (g Geometry) FATEntryOffset(cluster uint32) uint64 {
	return FATEntryByteOffset(cluster, g)
}

// ClusterToByteOffset returns the byte offset of a data cluster in the volume.
// Cluster 2 is the first cluster of the data region. The result is garbage
// for clusters below 2, callers have to check with IsDataCluster first.
func ClusterToByteOffset(cluster uint32, g Geometry) uint64 {
	sector := g.DataStartSector + uint64(cluster-FirstDataCluster)*uint64(g.SectorsPerCluster)
	return sector * uint64(g.BytesPerSector)
}

// FATEntryByteOffset returns the byte offset of the FAT entry for cluster
// inside the first FAT.
func FATEntryByteOffset(cluster uint32, g Geometry) uint64 {
	return g.FATStartSector*uint64(g.BytesPerSector) + uint64(cluster)*fatEntrySize
}

// DecodeBootSector reads the first BootSectorSize bytes of b as a boot sector.
func DecodeBootSector(b []byte) (*BootSector, error) {
	if len(b) < BootSectorSize {
		return nil, checkpoint.Wrap(fmt.Errorf("got %d bytes, need %d", len(b), BootSectorSize), ErrMalformedBootSector)
	}

	bs := &BootSector{}
	err := binary.Read(bytes.NewReader(b[:BootSectorSize]), binary.LittleEndian, bs)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrMalformedBootSector)
	}

	return bs, nil
}

// Geometry derives the volume layout from the boot sector.
// Only fields which make locating clusters impossible are rejected. Neither
// the sector size nor the cluster size need to be a power of two here.
func (bs *BootSector) Geometry() (Geometry, error) {
	g := Geometry{
		BytesPerSector:    bs.BytesPerSector,
		SectorsPerCluster: bs.SectorsPerCluster,
		ReservedSectors:   bs.ReservedSectorCount,
		FATCount:          bs.NumFATs,
		TotalSectors:      bs.TotalSectors32,
		SectorsPerFAT:     bs.FATSize32,
		RootCluster:       bs.RootCluster,
	}

	g.FATStartSector = uint64(g.ReservedSectors)
	g.DataStartSector = g.FATStartSector + uint64(g.FATCount)*uint64(g.SectorsPerFAT)
	g.ClusterSize = uint32(g.BytesPerSector) * uint32(g.SectorsPerCluster)

	if g.ClusterSize == 0 {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("bytes per sector %d, sectors per cluster %d", g.BytesPerSector, g.SectorsPerCluster), ErrMalformedBootSector)
	}

	if !IsDataCluster(g.RootCluster) {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("root cluster %#x is no data cluster", g.RootCluster), ErrMalformedBootSector)
	}

	return g, nil
}

// Validate runs the additional checks of strict mode.
func (bs *BootSector) Validate() error {
	// Check for valid jump instructions.
	if !(bs.BSJumpBoot[0] == 0xEB && bs.BSJumpBoot[2] == 0x90) && bs.BSJumpBoot[0] != 0xE9 {
		return checkpoint.Wrap(fmt.Errorf("no valid jump instructions at the beginning"), ErrMalformedBootSector)
	}

	if bs.Signature != bootSignature {
		return checkpoint.Wrap(fmt.Errorf("invalid boot signature %#04x", bs.Signature), ErrMalformedBootSector)
	}

	// FAT only supports 512, 1024, 2048 and 4096.
	switch bs.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return checkpoint.Wrap(fmt.Errorf("invalid sector size %d", bs.BytesPerSector), ErrMalformedBootSector)
	}

	if bits.OnesCount8(bs.SectorsPerCluster) != 1 {
		return checkpoint.Wrap(fmt.Errorf("invalid sectors per cluster %d", bs.SectorsPerCluster), ErrMalformedBootSector)
	}

	if bs.ReservedSectorCount == 0 {
		return checkpoint.Wrap(fmt.Errorf("invalid reserved sector count"), ErrMalformedBootSector)
	}

	if bs.NumFATs == 0 {
		return checkpoint.Wrap(fmt.Errorf("no FAT present"), ErrMalformedBootSector)
	}

	if bs.Media != 0xF0 && bs.Media < 0xF8 {
		return checkpoint.Wrap(fmt.Errorf("invalid media value %#02x", bs.Media), ErrMalformedBootSector)
	}

	// FAT32 keeps no fixed root directory and no 16 bit FAT size.
	if bs.RootEntryCount != 0 || bs.FATSize16 != 0 || bs.FATSize32 == 0 {
		return checkpoint.Wrap(fmt.Errorf("not a FAT32 volume"), ErrMalformedBootSector)
	}

	return nil
}

// ParseBootSector decodes the BPB of b into a Geometry.
func ParseBootSector(b []byte) (Geometry, error) {
	bs, err := DecodeBootSector(b)
	if err != nil {
		return Geometry{}, err
	}
	return bs.Geometry()
}

// ParseBootSectorStrict is ParseBootSector with BootSector.Validate applied.
func ParseBootSectorStrict(b []byte) (Geometry, error) {
	bs, err := DecodeBootSector(b)
	if err != nil {
		return Geometry{}, err
	}

	if err := bs.Validate(); err != nil {
		return Geometry{}, err
	}
	return bs.Geometry()
}
