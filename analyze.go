package fatinspect

import (
	"strings"
)

// minSlotsForNewEntry is one long name slot plus the short name slot.
const minSlotsForNewEntry = 2

// SlotDescription describes one used or free slot of a cluster.
type SlotDescription struct {
	Index       int    `json:"index" yaml:"index"`
	Offset      int    `json:"offset" yaml:"offset"`
	Description string `json:"description" yaml:"description"`
}

// Entry is a short name record together with the long name reassembled
// from the fragments directly in front of it.
type Entry struct {
	ShortEntry  `yaml:",inline"`
	LongName    string `json:"longName,omitempty" yaml:"long_name,omitempty"`
	HasLongName bool   `json:"hasLongName" yaml:"has_long_name"`
	Slot        int    `json:"slot" yaml:"slot"`
}

// DisplayName returns the long name if present, else the short name.
func (e Entry) DisplayName() string {
	if e.HasLongName {
		return e.LongName
	}
	return e.Name
}

func (e Entry) Describe() string {
	return e.describe(e.LongName, e.HasLongName)
}

// ClusterAnalysisResult is the outcome of analyzing one directory cluster.
type ClusterAnalysisResult struct {
	// Offset is only used for display.
	Offset    int64 `json:"offset" yaml:"offset"`
	SlotCount int   `json:"slotCount" yaml:"slot_count"`
	UsedCount int   `json:"usedCount" yaml:"used_count"`
	// FreeCount counts deleted slots and the end of directory slot, but not
	// the slots behind the end of directory.
	FreeCount          int `json:"freeCount" yaml:"free_count"`
	MaxConsecutiveFree int `json:"maxConsecutiveFree" yaml:"max_consecutive_free"`

	Used    []SlotDescription `json:"used" yaml:"used"`
	Free    []SlotDescription `json:"free" yaml:"free"`
	Entries []Entry           `json:"entries" yaml:"entries"`
}

// Utilization returns the used share of all slots in percent.
func (r ClusterAnalysisResult) Utilization() float64 {
	if r.SlotCount == 0 {
		return 0
	}
	return float64(r.UsedCount) / float64(r.SlotCount) * 100
}

// HasRoomForEntry reports whether a new named entry fits into the cluster.
func (r ClusterAnalysisResult) HasRoomForEntry() bool {
	return NeedsTwoFreeSlots(r.MaxConsecutiveFree)
}

// NeedsTwoFreeSlots is the policy for "has room for a new entry": at least
// two consecutive free slots.
func NeedsTwoFreeSlots(maxConsecutiveFree int) bool {
	return maxConsecutiveFree >= minSlotsForNewEntry
}

// Analyzer analyzes directory clusters.
type Analyzer struct {
	Decoder Decoder
}

// AnalyzeDirectoryCluster analyzes buf with the zero Analyzer.
func AnalyzeDirectoryCluster(buf []byte, offset int64) ClusterAnalysisResult {
	return Analyzer{}.Analyze(buf, offset)
}

// Analyze decodes every slot of buf in order up to the end of directory
// slot. A trailing partial slot is ignored.
func (a Analyzer) Analyze(buf []byte, offset int64) ClusterAnalysisResult {
	slots := len(buf) / SlotSize
	res := ClusterAnalysisResult{
		Offset:    offset,
		SlotCount: slots,
		Used:      []SlotDescription{},
		Free:      []SlotDescription{},
		Entries:   []Entry{},
	}

	var names longNameAccumulator

scan:
	for i := 0; i < slots; i++ {
		slot := buf[i*SlotSize : (i+1)*SlotSize]

		switch e := a.Decoder.decodeSlot(slot).(type) {
		case FreeSlot:
			res.Free = append(res.Free, slotDescription(i, e.Describe()))
			if e.Reason == EndOfDirectory {
				break scan
			}
		case LFNFragment:
			names.add(e)
			res.Used = append(res.Used, slotDescription(i, e.Describe()))
		case ShortEntry:
			longName, ok := names.take()
			entry := Entry{
				ShortEntry:  e,
				LongName:    longName,
				HasLongName: ok,
				Slot:        i,
			}
			res.Used = append(res.Used, slotDescription(i, entry.Describe()))
			res.Entries = append(res.Entries, entry)
		}
	}

	res.UsedCount = len(res.Used)
	res.FreeCount = len(res.Free)
	res.MaxConsecutiveFree = maxConsecutiveFree(buf)

	return res
}

func slotDescription(index int, description string) SlotDescription {
	return SlotDescription{
		Index:       index,
		Offset:      index * SlotSize,
		Description: description,
	}
}

// maxConsecutiveFree scans all slots, also those behind the end of
// directory, for the longest run of free slots.
func maxConsecutiveFree(buf []byte) int {
	run, longest := 0, 0
	for off := 0; off+SlotSize <= len(buf); off += SlotSize {
		switch buf[off] {
		case slotEndOfDirectory, slotDeleted:
			run++
			if run > longest {
				longest = run
			}
		default:
			run = 0
		}
	}
	return longest
}

// longNameAccumulator collects long name fragments for the next short entry.
// Fragments are stored from the end of the name backwards, so each fragment
// gets prepended.
type longNameAccumulator struct {
	parts []string
}

func (l *longNameAccumulator) add(f LFNFragment) {
	if f.Last {
		l.parts = []string{f.Text}
		return
	}
	l.parts = append([]string{f.Text}, l.parts...)
}

// take returns the reassembled name and resets the accumulator.
func (l *longNameAccumulator) take() (string, bool) {
	if len(l.parts) == 0 {
		return "", false
	}

	name := strings.Join(l.parts, "")
	l.parts = nil
	return name, true
}
