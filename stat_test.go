package fatinspect

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestEntry_FileInfo(t *testing.T) {
	e := Entry{
		ShortEntry: ShortEntry{
			Kind:         KindDirectory,
			Name:         "HELLO.TXT",
			Attributes:   AttrDirectory,
			FirstCluster: 8,
			FileSize:     9,
		},
		LongName:    "huhu",
		HasLongName: true,
		Slot:        3,
	}

	want := entryFileInfo{entry: e}
	if got := e.FileInfo(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entry.FileInfo() = %v, want %v", got, want)
	}
}

func Test_entryFileInfo_Name(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "only 8.3 filename",
			entry: Entry{ShortEntry: ShortEntry{Name: "HELLO.TXT"}},
			want:  "HELLO.TXT",
		},
		{
			name:  "only 8.3 no extension",
			entry: Entry{ShortEntry: ShortEntry{Name: "HELLO"}},
			want:  "HELLO",
		},
		{
			name: "with long filename",
			entry: Entry{
				ShortEntry:  ShortEntry{Name: "HELLOW~1.TXT"},
				LongName:    "HelloWorldThisIsALoongFileName.txt",
				HasLongName: true,
			},
			want: "HelloWorldThisIsALoongFileName.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entryFileInfo{entry: tt.entry}
			if got := e.Name(); got != tt.want {
				t.Errorf("entryFileInfo.Name() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_entryFileInfo_Size(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  int64
	}{
		{
			name:  "some size",
			entry: Entry{ShortEntry: ShortEntry{FileSize: 5555}},
			want:  5555,
		},
		{
			name:  "biggest size",
			entry: Entry{ShortEntry: ShortEntry{FileSize: 0xFFFFFFFF}},
			want:  4294967295,
		},
		{
			name: "zero size",
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entryFileInfo{entry: tt.entry}
			if got := e.Size(); got != tt.want {
				t.Errorf("entryFileInfo.Size() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_entryFileInfo_Mode(t *testing.T) {
	tests := []struct {
		name  string
		entry ShortEntry
		want  os.FileMode
	}{
		{
			name:  "file",
			entry: ShortEntry{Kind: KindFile, Attributes: AttrArchive},
			want:  0644,
		},
		{
			name:  "read only file",
			entry: ShortEntry{Kind: KindFile, Attributes: AttrReadOnly},
			want:  0444,
		},
		{
			name:  "directory",
			entry: ShortEntry{Kind: KindDirectory, Attributes: AttrDirectory},
			want:  os.ModeDir | 0755,
		},
		{
			name:  "read only directory",
			entry: ShortEntry{Kind: KindDirectory, Attributes: AttrDirectory | AttrReadOnly},
			want:  os.ModeDir | 0555,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entryFileInfo{entry: Entry{ShortEntry: tt.entry}}
			if got := e.Mode(); got != tt.want {
				t.Errorf("entryFileInfo.Mode() = %v, want %v", got, tt.want)
			}
			if got := e.IsDir(); got != (tt.entry.Kind == KindDirectory) {
				t.Errorf("entryFileInfo.IsDir() = %v", got)
			}
		})
	}
}

func Test_entryFileInfo_ModTime(t *testing.T) {
	modified := time.Date(2020, time.November, 15, 17, 30, 42, 0, time.UTC)
	e := entryFileInfo{entry: Entry{ShortEntry: ShortEntry{Modified: modified}}}
	if got := e.ModTime(); !got.Equal(modified) {
		t.Errorf("entryFileInfo.ModTime() = %v, want %v", got, modified)
	}
}

func Test_entryFileInfo_Sys(t *testing.T) {
	entry := Entry{ShortEntry: ShortEntry{Name: "A.TXT"}, Slot: 2}
	e := entryFileInfo{entry: entry}
	if got := e.Sys(); !reflect.DeepEqual(got, entry) {
		t.Errorf("entryFileInfo.Sys() = %v, want %v", got, entry)
	}
}
