package fatinspect

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/aligator/fatinspect/internal/fattest"
	"github.com/golang/mock/gomock"
)

func testGeometry(t *testing.T, img *fattest.Image) Geometry {
	t.Helper()
	g, err := ParseBootSector(img.Bytes())
	if err != nil {
		t.Fatalf("could not parse test image: %v", err)
	}
	return g
}

func repeat(cluster uint32, n int) []uint32 {
	clusters := make([]uint32, n)
	for i := range clusters {
		clusters[i] = cluster
	}
	return clusters
}

func TestChainWalker_Walk(t *testing.T) {
	type fields struct {
		MaxLinks     int
		DetectCycles bool
	}
	tests := []struct {
		name    string
		fields  fields
		prepare func(img *fattest.Image)
		start   uint32
		want    ClusterChain
	}{
		{
			name:  "single cluster",
			start: 2,
			want:  ClusterChain{Clusters: []uint32{2}},
		},
		{
			name: "three clusters",
			prepare: func(img *fattest.Image) {
				img.Chain(2, 3, 9)
			},
			start: 2,
			want:  ClusterChain{Clusters: []uint32{2, 3, 9}},
		},
		{
			name: "reserved bits are ignored",
			prepare: func(img *fattest.Image) {
				img.SetFAT(2, 0xF0000003)
				img.SetFAT(3, 0xFFFFFFFF)
			},
			start: 2,
			want:  ClusterChain{Clusters: []uint32{2, 3}},
		},
		{
			name: "free entry ends the chain",
			prepare: func(img *fattest.Image) {
				img.SetFAT(2, 4)
				img.SetFAT(4, 0)
			},
			start: 2,
			want:  ClusterChain{Clusters: []uint32{2, 4}},
		},
		{
			name: "lowest end of chain value",
			prepare: func(img *fattest.Image) {
				img.SetFAT(2, EndOfChain)
			},
			start: 2,
			want:  ClusterChain{Clusters: []uint32{2}},
		},
		{
			name:  "start is no data cluster",
			start: 0,
			want:  ClusterChain{Clusters: []uint32{}},
		},
		{
			name: "self loop stops at the cap",
			prepare: func(img *fattest.Image) {
				img.SetFAT(5, 5)
			},
			start: 5,
			want:  ClusterChain{Clusters: repeat(5, 100), Suspicious: true},
		},
		{
			name:   "chain exactly as long as the cap",
			fields: fields{MaxLinks: 3},
			prepare: func(img *fattest.Image) {
				img.Chain(2, 3, 4)
			},
			start: 2,
			want:  ClusterChain{Clusters: []uint32{2, 3, 4}},
		},
		{
			name:   "chain longer than the cap",
			fields: fields{MaxLinks: 3},
			prepare: func(img *fattest.Image) {
				img.Chain(2, 3, 4, 5)
			},
			start: 2,
			want:  ClusterChain{Clusters: []uint32{2, 3, 4}, Suspicious: true},
		},
		{
			name:   "cycle detection",
			fields: fields{DetectCycles: true},
			prepare: func(img *fattest.Image) {
				img.SetFAT(3, 4)
				img.SetFAT(4, 3)
			},
			start: 3,
			want:  ClusterChain{Clusters: []uint32{3, 4}, Cyclic: true},
		},
		{
			name:   "cycle detection with a self loop",
			fields: fields{DetectCycles: true},
			prepare: func(img *fattest.Image) {
				img.SetFAT(5, 5)
			},
			start: 5,
			want:  ClusterChain{Clusters: []uint32{5}, Cyclic: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := fattest.New(fattest.Layout{})
			if tt.prepare != nil {
				tt.prepare(img)
			}

			w := ChainWalker{
				Geometry:     testGeometry(t, img),
				Reader:       bytes.NewReader(img.Bytes()),
				MaxLinks:     tt.fields.MaxLinks,
				DetectCycles: tt.fields.DetectCycles,
			}
			got, err := w.Walk(tt.start)
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Walk() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWalkChain(t *testing.T) {
	img := fattest.New(fattest.Layout{})
	img.Chain(2, 7)

	got, err := WalkChain(2, testGeometry(t, img), bytes.NewReader(img.Bytes()))
	if err != nil {
		t.Fatalf("WalkChain() error = %v", err)
	}
	if want := []uint32{2, 7}; !reflect.DeepEqual(got.Clusters, want) {
		t.Errorf("WalkChain() = %v, want %v", got.Clusters, want)
	}
	if got.Len() != 2 {
		t.Errorf("Len() = %d, want 2", got.Len())
	}
}

func TestChainWalker_Walk_ReadError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	img := fattest.New(fattest.Layout{})
	g := testGeometry(t, img)

	broken := errors.New("device gone")
	reader := NewMockImageReader(mockCtrl)
	reader.EXPECT().ReadAt(gomock.Any(), int64(g.FATEntryOffset(2))).Return(0, broken)

	got, err := ChainWalker{Geometry: g, Reader: reader}.Walk(2)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("Walk() error = %v, want ErrIO", err)
	}
	if !errors.Is(err, broken) {
		t.Errorf("Walk() error = %v, want the cause to be kept", err)
	}
	if want := []uint32{2}; !reflect.DeepEqual(got.Clusters, want) {
		t.Errorf("Walk() returned %v as partial chain, want %v", got.Clusters, want)
	}
}

func TestChainWalker_ReadFATEntry_ShortRead(t *testing.T) {
	img := fattest.New(fattest.Layout{})
	g := testGeometry(t, img)

	// Cut the image in the middle of the FAT entry of cluster 2.
	truncated := img.Bytes()[:g.FATEntryOffset(2)+2]

	_, err := ChainWalker{Geometry: g, Reader: bytes.NewReader(truncated)}.ReadFATEntry(2)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("ReadFATEntry() error = %v, want ErrIO", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadFATEntry() error = %v, want io.ErrUnexpectedEOF as cause", err)
	}
}
