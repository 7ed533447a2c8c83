// Package fattest builds small synthetic FAT32 images for tests.
package fattest

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// FAT entry values.
const (
	EndOfChain = 0x0FFFFFFF
	mediaEntry = 0x0FFFFFF8
)

// Layout describes the image to build. Zero fields get a default.
type Layout struct {
	BytesPerSector    uint16 // 512
	SectorsPerCluster uint8  // 1
	ReservedSectors   uint16 // 32
	FATCount          uint8  // 2
	RootCluster       uint32 // 2
	Clusters          int    // 16
}

func (l *Layout) defaults() {
	if l.BytesPerSector == 0 {
		l.BytesPerSector = 512
	}
	if l.SectorsPerCluster == 0 {
		l.SectorsPerCluster = 1
	}
	if l.ReservedSectors == 0 {
		l.ReservedSectors = 32
	}
	if l.FATCount == 0 {
		l.FATCount = 2
	}
	if l.RootCluster == 0 {
		l.RootCluster = 2
	}
	if l.Clusters == 0 {
		l.Clusters = 16
	}
}

// Image is an in memory FAT32 volume.
type Image struct {
	Layout
	SectorsPerFAT uint32
	buf           []byte
}

// New builds an empty volume whose root directory is a single cluster.
func New(l Layout) *Image {
	l.defaults()

	bps := uint32(l.BytesPerSector)
	fatBytes := uint32(l.Clusters+2) * 4
	img := &Image{
		Layout:        l,
		SectorsPerFAT: (fatBytes + bps - 1) / bps,
	}

	totalSectors := uint32(l.ReservedSectors) + uint32(l.FATCount)*img.SectorsPerFAT + uint32(l.Clusters)*uint32(l.SectorsPerCluster)
	img.buf = make([]byte, totalSectors*bps)

	bs := img.buf[:512]
	copy(bs[0:3], []byte{0xEB, 0x58, 0x90})
	copy(bs[3:11], "MSWIN4.1")
	binary.LittleEndian.PutUint16(bs[11:13], l.BytesPerSector)
	bs[13] = l.SectorsPerCluster
	binary.LittleEndian.PutUint16(bs[14:16], l.ReservedSectors)
	bs[16] = l.FATCount
	bs[21] = 0xF8
	binary.LittleEndian.PutUint32(bs[32:36], totalSectors)
	binary.LittleEndian.PutUint32(bs[36:40], img.SectorsPerFAT)
	binary.LittleEndian.PutUint32(bs[44:48], l.RootCluster)
	copy(bs[71:82], "NO NAME    ")
	copy(bs[82:90], "FAT32   ")
	bs[510] = 0x55
	bs[511] = 0xAA

	img.SetFAT(0, mediaEntry)
	img.SetFAT(1, EndOfChain)
	img.SetFAT(l.RootCluster, EndOfChain)

	return img
}

// Bytes returns the image. It is not copied.
func (img *Image) Bytes() []byte {
	return img.buf
}

// ClusterSize returns the size of a cluster in bytes.
func (img *Image) ClusterSize() int {
	return int(img.BytesPerSector) * int(img.SectorsPerCluster)
}

// DataStart returns the byte offset of cluster 2.
func (img *Image) DataStart() int {
	sectors := int(img.ReservedSectors) + int(img.FATCount)*int(img.SectorsPerFAT)
	return sectors * int(img.BytesPerSector)
}

// ClusterOffset returns the byte offset of cluster.
func (img *Image) ClusterOffset(cluster uint32) int {
	return img.DataStart() + int(cluster-2)*img.ClusterSize()
}

// SetFAT sets the entry of cluster in every FAT copy.
func (img *Image) SetFAT(cluster, value uint32) {
	fatSize := int(img.SectorsPerFAT) * int(img.BytesPerSector)
	for i := 0; i < int(img.FATCount); i++ {
		off := int(img.ReservedSectors)*int(img.BytesPerSector) + i*fatSize + int(cluster)*4
		binary.LittleEndian.PutUint32(img.buf[off:off+4], value)
	}
}

// Chain links the given clusters in order and terminates the last one.
func (img *Image) Chain(clusters ...uint32) {
	for i, c := range clusters {
		next := uint32(EndOfChain)
		if i+1 < len(clusters) {
			next = clusters[i+1]
		}
		img.SetFAT(c, next)
	}
}

// PutSlots writes slots into cluster, starting at slot index first.
func (img *Image) PutSlots(cluster uint32, first int, slots ...[]byte) {
	off := img.ClusterOffset(cluster) + first*32
	for _, s := range slots {
		copy(img.buf[off:off+32], s)
		off += 32
	}
}

// Cluster returns the bytes of cluster. They are not copied.
func (img *Image) Cluster(cluster uint32) []byte {
	off := img.ClusterOffset(cluster)
	return img.buf[off : off+img.ClusterSize()]
}

// ShortSlot encodes an 8.3 record. name and ext are padded with spaces.
func ShortSlot(name, ext string, attr byte, firstCluster, size uint32) []byte {
	s := make([]byte, 32)
	copy(s[0:8], padRight(name, 8))
	copy(s[8:11], padRight(ext, 3))
	s[11] = attr
	binary.LittleEndian.PutUint16(s[20:22], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(s[26:28], uint16(firstCluster))
	binary.LittleEndian.PutUint32(s[28:32], size)
	return s
}

// WithWriteTime sets the write date and time fields of a short slot.
func WithWriteTime(slot []byte, date, clock uint16) []byte {
	s := append([]byte(nil), slot...)
	binary.LittleEndian.PutUint16(s[22:24], clock)
	binary.LittleEndian.PutUint16(s[24:26], date)
	return s
}

// LFNSlot encodes up to 13 characters of a long name. The text is followed
// by a 0x0000 terminator and 0xFFFF padding when shorter than 13 units.
func LFNSlot(seq uint8, last bool, text string) []byte {
	units := utf16.Encode([]rune(text))
	return LFNSlotUnits(seq, last, units)
}

// LFNSlotUnits is LFNSlot with raw UTF-16 code units.
func LFNSlotUnits(seq uint8, last bool, units []uint16) []byte {
	padded := make([]uint16, 13)
	for i := range padded {
		switch {
		case i < len(units):
			padded[i] = units[i]
		case i == len(units):
			padded[i] = 0x0000
		default:
			padded[i] = 0xFFFF
		}
	}

	s := make([]byte, 32)
	s[0] = seq & 0x1F
	if last {
		s[0] |= 0x40
	}
	s[11] = 0x0F

	positions := []int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}
	for i, p := range positions {
		binary.LittleEndian.PutUint16(s[p:p+2], padded[i])
	}
	return s
}

// LongNameSlots splits name into LFN slots in on-disk order, the slot with
// the end of the name first.
func LongNameSlots(name string) [][]byte {
	units := utf16.Encode([]rune(name))
	var chunks [][]uint16
	for len(units) > 13 {
		chunks = append(chunks, units[:13])
		units = units[13:]
	}
	chunks = append(chunks, units)

	slots := make([][]byte, 0, len(chunks))
	for i := len(chunks) - 1; i >= 0; i-- {
		slots = append(slots, LFNSlotUnits(uint8(i+1), i == len(chunks)-1, chunks[i]))
	}
	return slots
}

// Deleted returns a copy of slot marked as deleted.
func Deleted(slot []byte) []byte {
	s := append([]byte(nil), slot...)
	s[0] = 0xE5
	return s
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

// MBRDisk wraps volume into a disk image with an MBR partition table holding
// a single FAT32 (LBA) partition starting at sector startLBA.
func MBRDisk(startLBA uint32, volume []byte) []byte {
	const sectorSize = 512

	sectors := (uint32(len(volume)) + sectorSize - 1) / sectorSize
	disk := make([]byte, int(startLBA+sectors)*sectorSize)
	copy(disk[int(startLBA)*sectorSize:], volume)

	entry := disk[446:462]
	entry[0] = 0x00
	entry[4] = 0x0C
	binary.LittleEndian.PutUint32(entry[8:12], startLBA)
	binary.LittleEndian.PutUint32(entry[12:16], sectors)
	disk[510] = 0x55
	disk[511] = 0xAA

	return disk
}
