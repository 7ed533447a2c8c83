// File model contains the structs which match the direct structures of a FAT32 volume.
// All values are little endian. The boot sector is read with encoding/binary, directory slots field by field.

package fatinspect

// Directory entry attribute bits.
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	// AttrLongName marks a long file name slot, all four low bits set.
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

// Values of the first byte of a directory slot.
const (
	slotEndOfDirectory = 0x00
	slotDeleted        = 0xE5
)

// SlotSize is the size of a single directory slot in bytes.
const SlotSize = 32

// BootSectorSize is the number of bytes the boot sector parser needs.
const BootSectorSize = 512

// bootSignature is stored in the last two bytes of the boot sector.
const bootSignature = 0xAA55

// BPB is the part of the BIOS Parameter Block shared by all FAT variants.
type BPB struct {
	BSJumpBoot          [3]byte
	BSOEMName           [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   byte
	ReservedSectorCount uint16
	NumFATs             byte
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               byte
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
}

// FAT32SpecificData directly follows the BPB on FAT32 volumes.
type FAT32SpecificData struct {
	FATSize32        uint32
	ExtFlags         uint16
	FSVersion        uint16
	RootCluster      uint32
	FSInfo           uint16
	BkBootSector     uint16
	Reserved         [12]byte
	BSDriveNumber    byte
	BSReserved1      byte
	BSBootSignature  byte
	BSVolumeID       uint32
	BSVolumeLabel    [11]byte
	BSFileSystemType [8]byte
}

// BootSector is the complete first sector of a FAT32 volume.
type BootSector struct {
	BPB
	FAT32SpecificData
	BootCode  [420]byte
	Signature uint16
}

// EntryHeader is the 32 byte short file name record.
type EntryHeader struct {
	Name            [11]byte
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// LongFilenameEntry is a 32 byte record holding up to 13 UTF-16LE code units
// of a long file name, split over three runs.
type LongFilenameEntry struct {
	Sequence  byte
	First     [10]byte
	Attribute byte
	EntryType byte
	Checksum  byte
	Second    [12]byte
	Zero      [2]byte
	Third     [4]byte
}
