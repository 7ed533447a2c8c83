package fatinspect

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// PrintReport prints a human readable report to w.
func PrintReport(w io.Writer, r *Report) {
	if r == nil {
		return
	}

	fmt.Fprintf(w, "Detailed FAT32 Analysis: %s\n", r.Image)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	g := r.Geometry
	fmt.Fprintln(w, "FILESYSTEM INFORMATION:")
	fmt.Fprintf(w, "  Bytes per sector: %d\n", g.BytesPerSector)
	fmt.Fprintf(w, "  Sectors per cluster: %d\n", g.SectorsPerCluster)
	fmt.Fprintf(w, "  Cluster size: %d bytes\n", g.ClusterSize)
	fmt.Fprintf(w, "  FAT start sector: %d\n", g.FATStartSector)
	fmt.Fprintf(w, "  Data start sector: %d\n", g.DataStartSector)
	fmt.Fprintf(w, "  Root directory cluster: %d\n", g.RootCluster)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ROOT DIRECTORY ANALYSIS:")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	if len(r.Clusters) > 0 {
		printCluster(w, r.Clusters[0].ClusterAnalysisResult)
	}

	fmt.Fprintf(w, "\nROOT DIRECTORY CLUSTER CHAIN: %s\n", formatChain(r.RootChain.Clusters))

	if len(r.Clusters) > 1 {
		fmt.Fprintln(w, "\nROOT DIRECTORY HAS BEEN EXTENDED!")
		for i, c := range r.Clusters[1:] {
			fmt.Fprintf(w, "\nEXTENDED CLUSTER %d (Cluster #%d):\n", i+1, c.Cluster)
			fmt.Fprintln(w, strings.Repeat("-", 50))
			printCluster(w, c.ClusterAnalysisResult)
		}
	}

	fmt.Fprintln(w, "\nSUMMARY:")
	fmt.Fprintf(w, "  Root directory uses %d cluster(s)\n", r.Summary.ClusterCount)
	fmt.Fprintf(w, "  Total entries used: %d\n", r.Summary.UsedSlots)
	fmt.Fprintf(w, "  Space available for new entries: %s\n", yesNo(r.Summary.HasRoomForEntry))

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "\nWARNINGS:")
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  Warning: %s\n", warning)
		}
	}
}

func printCluster(w io.Writer, c ClusterAnalysisResult) {
	fmt.Fprintf(w, "Analyzing cluster at offset %#x\n", c.Offset)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Cluster size: %d bytes\n", c.SlotCount*SlotSize)
	fmt.Fprintf(w, "Entries per cluster: %d\n", c.SlotCount)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DETAILED ENTRY ANALYSIS:")
	for _, s := range c.Used {
		printSlot(w, s)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "FREE ENTRIES:")
	for _, s := range c.Free {
		printSlot(w, s)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total used entries: %d\n", c.UsedCount)
	fmt.Fprintf(w, "Total free entries: %d\n", c.FreeCount)
	fmt.Fprintf(w, "Space utilization: %d/%d (%.1f%%)\n", c.UsedCount, c.SlotCount, c.Utilization())
	fmt.Fprintf(w, "Maximum consecutive free entries: %d\n", c.MaxConsecutiveFree)
	fmt.Fprintf(w, "Can fit new entry (needs 2+ slots): %s\n", yesNo(c.HasRoomForEntry()))
}

func printSlot(w io.Writer, s SlotDescription) {
	fmt.Fprintf(w, "  Entry %2d (offset 0x%03x): %s\n", s.Index, s.Offset, s.Description)
}

// PrintEntries prints one line per entry, similar to ls -l.
func PrintEntries(w io.Writer, entries []Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tSIZE\tMODIFIED\tCLUSTER\tNAME")
	for _, e := range entries {
		if e.Kind == KindVolume {
			continue
		}

		info := e.FileInfo()
		modified := "-"
		if !info.ModTime().IsZero() {
			modified = info.ModTime().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n", info.Mode(), info.Size(), modified, e.FirstCluster, info.Name())
	}
	tw.Flush()
}

func formatChain(clusters []uint32) string {
	parts := make([]string, len(clusters))
	for i, c := range clusters {
		parts[i] = strconv.FormatUint(uint64(c), 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
