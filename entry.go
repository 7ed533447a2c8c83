package fatinspect

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aligator/fatinspect/checkpoint"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// FreeReason tells why a slot is free.
type FreeReason int

const (
	// EndOfDirectory marks the first never used slot. No used slot follows it.
	EndOfDirectory FreeReason = iota
	// Deleted marks a slot whose entry has been removed.
	Deleted
)

func (r FreeReason) String() string {
	switch r {
	case EndOfDirectory:
		return "end of directory"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("FreeReason(%d)", int(r))
	}
}

// EntryKind classifies a short file name record.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
	KindVolume
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "FILE"
	case KindDirectory:
		return "DIR"
	case KindVolume:
		return "VOL"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// MarshalText makes the kind show up by name in JSON and YAML reports.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DecodedEntry is one decoded directory slot. It is one of FreeSlot,
// LFNFragment or ShortEntry.
type DecodedEntry interface {
	// Describe returns a single line human readable description.
	Describe() string

	decodedEntry()
}

// FreeSlot is an unused slot.
type FreeSlot struct {
	Reason FreeReason
}

// LFNFragment holds the text of one long file name slot.
type LFNFragment struct {
	// Sequence is the low 5 bits of the first byte.
	Sequence uint8
	// Last is set on the fragment stored first, which holds the end of the name.
	Last     bool
	Text     string
	Checksum uint8
}

// ShortEntry is a decoded 8.3 record.
type ShortEntry struct {
	Kind EntryKind `json:"kind" yaml:"kind"`
	// Name is "NAME.EXT", "NAME" without extension and "NAMEEXT" for volume labels.
	Name         string    `json:"name" yaml:"name"`
	Attributes   uint8     `json:"attributes" yaml:"attributes"`
	FirstCluster uint32    `json:"firstCluster" yaml:"first_cluster"`
	FileSize     uint32    `json:"fileSize" yaml:"file_size"`
	Modified     time.Time `json:"modified" yaml:"modified"`
}

func (FreeSlot) decodedEntry()    {}
func (LFNFragment) decodedEntry() {}
func (ShortEntry) decodedEntry()  {}

func (f FreeSlot) Describe() string {
	return "FREE (" + f.Reason.String() + ")"
}

func (l LFNFragment) Describe() string {
	d := fmt.Sprintf("LFN[%d]: '%s'", l.Sequence, l.Text)
	if l.Last {
		d += " (LAST)"
	}
	return d
}

func (s ShortEntry) Describe() string {
	return s.describe("", false)
}

func (s ShortEntry) describe(longName string, hasLongName bool) string {
	var d string
	if hasLongName {
		d = fmt.Sprintf("%s: '%s' (SFN: %s)", s.Kind, longName, s.Name)
	} else {
		d = fmt.Sprintf("%s: %s", s.Kind, s.Name)
	}

	if s.FirstCluster > 0 {
		d += fmt.Sprintf(" [cluster=%d", s.FirstCluster)
		if s.Kind == KindFile {
			d += fmt.Sprintf(", size=%d", s.FileSize)
		}
		d += "]"
	}
	return d
}

func (s ShortEntry) IsReadOnly() bool { return s.Attributes&AttrReadOnly != 0 }
func (s ShortEntry) IsHidden() bool   { return s.Attributes&AttrHidden != 0 }
func (s ShortEntry) IsSystem() bool   { return s.Attributes&AttrSystem != 0 }

// Decoder decodes directory slots.
// The zero value decodes short names as ASCII.
type Decoder struct {
	// ShortNameCharset decodes the bytes of 8.3 names. If nil, bytes above
	// 0x7F are replaced by U+FFFD.
	ShortNameCharset encoding.Encoding
}

// DecodeEntry decodes a single 32 byte slot with the zero Decoder.
func DecodeEntry(slot []byte) (DecodedEntry, error) {
	return Decoder{}.Decode(slot)
}

// Decode decodes a single 32 byte slot.
func (d Decoder) Decode(slot []byte) (DecodedEntry, error) {
	if len(slot) != SlotSize {
		return nil, checkpoint.Wrap(fmt.Errorf("got %d bytes, need %d", len(slot), SlotSize), ErrInvalidSlot)
	}
	return d.decodeSlot(slot), nil
}

// decodeSlot expects exactly SlotSize bytes.
func (d Decoder) decodeSlot(slot []byte) DecodedEntry {
	switch slot[0] {
	case slotEndOfDirectory:
		return FreeSlot{Reason: EndOfDirectory}
	case slotDeleted:
		return FreeSlot{Reason: Deleted}
	}

	if slot[11]&AttrLongName == AttrLongName {
		return decodeLFN(decodeLongFilenameEntry(slot))
	}
	return d.decodeShort(decodeEntryHeader(slot))
}

func decodeEntryHeader(slot []byte) EntryHeader {
	h := EntryHeader{
		Attribute:       slot[11],
		NTReserved:      slot[12],
		CreateTimeTenth: slot[13],
		CreateTime:      binary.LittleEndian.Uint16(slot[14:16]),
		CreateDate:      binary.LittleEndian.Uint16(slot[16:18]),
		LastAccessDate:  binary.LittleEndian.Uint16(slot[18:20]),
		FirstClusterHI:  binary.LittleEndian.Uint16(slot[20:22]),
		WriteTime:       binary.LittleEndian.Uint16(slot[22:24]),
		WriteDate:       binary.LittleEndian.Uint16(slot[24:26]),
		FirstClusterLO:  binary.LittleEndian.Uint16(slot[26:28]),
		FileSize:        binary.LittleEndian.Uint32(slot[28:32]),
	}
	copy(h.Name[:], slot[0:11])
	return h
}

func decodeLongFilenameEntry(slot []byte) LongFilenameEntry {
	l := LongFilenameEntry{
		Sequence:  slot[0],
		Attribute: slot[11],
		EntryType: slot[12],
		Checksum:  slot[13],
	}
	copy(l.First[:], slot[1:11])
	copy(l.Second[:], slot[14:26])
	copy(l.Zero[:], slot[26:28])
	copy(l.Third[:], slot[28:32])
	return l
}

func decodeLFN(l LongFilenameEntry) LFNFragment {
	return LFNFragment{
		Sequence: l.Sequence & 0x1F,
		Last:     l.Sequence&0x40 != 0,
		Text:     decodeUTF16Run(l.First[:]) + decodeUTF16Run(l.Second[:]) + decodeUTF16Run(l.Third[:]),
		Checksum: l.Checksum,
	}
}

// decodeUTF16Run decodes UTF-16LE text without its trailing 0x0000 and 0xFFFF
// padding units. Invalid surrogates become U+FFFD.
func decodeUTF16Run(b []byte) string {
	for len(b) >= 2 {
		u := binary.LittleEndian.Uint16(b[len(b)-2:])
		if u != 0x0000 && u != 0xFFFF {
			break
		}
		b = b[:len(b)-2]
	}

	// Invalid surrogates are replaced by the decoder, it does not fail on them.
	text, _ := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	return string(text)
}

// decodeShort trims only spaces from name and extension, the padding byte of
// 8.3 names. Other trailing whitespace stays part of the name.
func (d Decoder) decodeShort(h EntryHeader) ShortEntry {
	name := strings.TrimRight(d.shortNameText(h.Name[0:8]), " ")
	ext := strings.TrimRight(d.shortNameText(h.Name[8:11]), " ")

	e := ShortEntry{
		Attributes:   h.Attribute,
		FirstCluster: uint32(h.FirstClusterHI)<<16 | uint32(h.FirstClusterLO),
		FileSize:     h.FileSize,
		Modified:     DOSTime(h.WriteDate, h.WriteTime),
	}

	switch {
	case h.Attribute&AttrDirectory != 0:
		e.Kind = KindDirectory
		e.Name = joinShortName(name, ext)
	case h.Attribute&AttrVolumeID != 0:
		// A volume label spans all 11 bytes.
		e.Kind = KindVolume
		e.Name = name + ext
	default:
		e.Kind = KindFile
		e.Name = joinShortName(name, ext)
	}

	return e
}

func joinShortName(name, ext string) string {
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func (d Decoder) shortNameText(b []byte) string {
	if d.ShortNameCharset != nil {
		text, err := d.ShortNameCharset.NewDecoder().Bytes(b)
		if err == nil {
			return string(text)
		}
	}
	return asciiText(b)
}

func asciiText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c > 0x7F {
			sb.WriteRune(utf8.RuneError)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
