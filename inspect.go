package fatinspect

import (
	"fmt"
	"io"
	"io/fs"
	"math"

	"github.com/aligator/fatinspect/checkpoint"
	"github.com/aligator/fatinspect/internal/logger"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ClusterReport is the analysis of one cluster of the root directory chain.
type ClusterReport struct {
	Cluster               uint32 `json:"cluster" yaml:"cluster"`
	ClusterAnalysisResult `yaml:",inline"`
}

// Summary aggregates all clusters of the root directory.
type Summary struct {
	ClusterCount    int  `json:"clusterCount" yaml:"cluster_count"`
	UsedSlots       int  `json:"usedSlots" yaml:"used_slots"`
	FreeSlots       int  `json:"freeSlots" yaml:"free_slots"`
	Entries         int  `json:"entries" yaml:"entries"`
	HasRoomForEntry bool `json:"hasRoomForEntry" yaml:"has_room_for_entry"`
}

// Report is the result of inspecting the root directory of one image.
type Report struct {
	Image     string          `json:"image" yaml:"image"`
	Geometry  Geometry        `json:"geometry" yaml:"geometry"`
	RootChain ClusterChain    `json:"rootChain" yaml:"root_chain"`
	Clusters  []ClusterReport `json:"clusters" yaml:"clusters"`
	Summary   Summary         `json:"summary" yaml:"summary"`
	Warnings  []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Entries returns the named entries of all clusters in chain order.
func (r *Report) Entries() []Entry {
	var entries []Entry
	for _, c := range r.Clusters {
		entries = append(entries, c.Entries...)
	}
	return entries
}

// Inspector runs inspection passes over images.
// A pass holds its image open for exactly the duration of Inspect.
type Inspector struct {
	Fs     afero.Fs
	Config Config
	Logger *zap.SugaredLogger

	// locatePartition resolves Config.Partition to a byte offset inside
	// the opened image.
	locatePartition func(f fs.File, index int) (int64, error)
}

// NewInspector creates an Inspector reading images from fsys.
func NewInspector(fsys afero.Fs, cfg Config) *Inspector {
	return &Inspector{
		Fs:              fsys,
		Config:          cfg,
		Logger:          logger.Logger(),
		locatePartition: PartitionOffset,
	}
}

// Inspect analyzes the root directory of the image at path.
// On ErrIO and ErrMalformedBootSector no report is returned.
func (in *Inspector) Inspect(path string) (*Report, error) {
	in.log().Infof("Inspecting image: %s", path)

	f, err := in.Fs.Open(path)
	if err != nil {
		return nil, checkpoint.Wrapf(err, ErrIO, "open image %s", path)
	}
	defer f.Close()

	var r ImageReader = f
	if in.Config.Partition > 0 {
		locate := in.locatePartition
		if locate == nil {
			locate = PartitionOffset
		}

		off, err := locate(f, in.Config.Partition)
		if err != nil {
			return nil, checkpoint.From(err)
		}

		in.log().Infof("Using partition %d at offset %#x", in.Config.Partition, off)
		r = io.NewSectionReader(f, off, math.MaxInt64-off)
	}

	return in.InspectReader(r, path)
}

// InspectReader analyzes the root directory of the volume readable through r.
// name is only used in the report.
func (in *Inspector) InspectReader(r ImageReader, name string) (*Report, error) {
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}
	log := in.log()

	g, err := in.readGeometry(r)
	if err != nil {
		return nil, err
	}
	log.Debugf("Geometry: %+v", g)

	walker := ChainWalker{
		Geometry:     g,
		Reader:       r,
		MaxLinks:     in.Config.MaxChainLinks,
		DetectCycles: in.Config.DetectCycles,
	}
	chain, err := walker.Walk(g.RootCluster)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Image:     name,
		Geometry:  g,
		RootChain: chain,
		Clusters:  make([]ClusterReport, 0, chain.Len()),
	}

	if chain.Suspicious {
		msg := fmt.Sprintf("cluster chain seems too long, stopped after %d clusters", chain.Len())
		log.Warnf("Root directory %s", msg)
		report.Warnings = append(report.Warnings, msg)
	}
	if chain.Cyclic {
		msg := fmt.Sprintf("cluster chain loops back after %d clusters", chain.Len())
		log.Warnf("Root directory %s", msg)
		report.Warnings = append(report.Warnings, msg)
	}

	charset, err := in.Config.ShortNameEncoding()
	if err != nil {
		return nil, err
	}
	analyzer := Analyzer{Decoder: Decoder{ShortNameCharset: charset}}

	scanLength := int(g.ClusterSize)
	if in.Config.ScanLength > 0 {
		scanLength = in.Config.ScanLength
	}

	buf := make([]byte, scanLength)
	for _, cluster := range chain.Clusters {
		offset := g.ClusterOffset(cluster)
		if err := readFull(r, buf, offset); err != nil {
			return nil, checkpoint.Wrapf(err, ErrIO, "directory cluster %d", cluster)
		}

		log.Debugf("Analyzing cluster %d at offset %#x", cluster, offset)
		result := analyzer.Analyze(buf, int64(offset))
		report.Clusters = append(report.Clusters, ClusterReport{Cluster: cluster, ClusterAnalysisResult: result})

		report.Summary.UsedSlots += result.UsedCount
		report.Summary.FreeSlots += result.FreeCount
		report.Summary.Entries += len(result.Entries)
		report.Summary.HasRoomForEntry = report.Summary.HasRoomForEntry || result.HasRoomForEntry()
	}
	report.Summary.ClusterCount = chain.Len()

	return report, nil
}

// readGeometry parses the boot sector. An image shorter than a boot sector
// is malformed, not an I/O failure.
func (in *Inspector) readGeometry(r ImageReader) (Geometry, error) {
	buf := make([]byte, BootSectorSize)
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return Geometry{}, checkpoint.Wrapf(err, ErrIO, "boot sector")
	}

	if in.Config.Strict {
		return ParseBootSectorStrict(buf[:n])
	}
	return ParseBootSector(buf[:n])
}

func (in *Inspector) log() *zap.SugaredLogger {
	if in.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return in.Logger
}
