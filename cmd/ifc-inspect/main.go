package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/ZacharyHenkel/ifc/pkg/ifc"
)

func main() {
	var (
		showSources = flag.Bool("sources", false, "list source-file paths")
		jsonOut     = flag.Bool("json", false, "emit JSON instead of text")
		noVerify    = flag.Bool("no-verify", false, "skip the content integrity check")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: ifc-inspect [--sources] [--json] [--no-verify] <path.ifc>")
		os.Exit(2)
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	f, err := ifc.New(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	opts := ifc.IntegrityCheck
	if *noVerify {
		opts = 0
	}
	if err := f.Validate(ifc.SortAny, ifc.ArchUnknown, opts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	view := buildView(path, f, *showSources)
	if *jsonOut {
		out, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}
	printView(view)
}

type partitionView struct {
	Name        string `json:"name"`
	Offset      uint32 `json:"offset"`
	Cardinality uint32 `json:"cardinality"`
	EntrySize   uint32 `json:"entry_size"`
}

type inspection struct {
	File        string          `json:"file"`
	Size        int             `json:"size"`
	Version     string          `json:"version"`
	Arch        string          `json:"arch"`
	UnitSort    string          `json:"unit_sort"`
	Dialect     uint32          `json:"dialect"`
	ContentHash string          `json:"content_hash"`
	Partitions  []partitionView `json:"partitions"`
	Sources     []string        `json:"sources,omitempty"`
}

func buildView(path string, f *ifc.File, withSources bool) *inspection {
	hdr := f.Header()
	hash := f.StoredHash()
	view := &inspection{
		File:        path,
		Size:        f.Size(),
		Version:     fmt.Sprintf("%d.%d", hdr.MajorVersion, hdr.MinorVersion),
		Arch:        hdr.Arch.String(),
		UnitSort:    hdr.UnitSort().String(),
		Dialect:     hdr.Dialect,
		ContentHash: hex.EncodeToString(hash[:]),
	}

	for _, p := range f.Partitions() {
		name := "?"
		if s, err := f.String(p.Name); err == nil {
			name = string(s)
		}
		view.Partitions = append(view.Partitions, partitionView{
			Name:        name,
			Offset:      p.Offset,
			Cardinality: p.Cardinality,
			EntrySize:   p.EntrySize,
		})
	}

	if withSources {
		if p, ok := f.PartitionByName(ifc.SourceFilePartition); ok {
			records, err := f.SourceFiles(p)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			for _, rec := range records {
				if rec.Path == 0 {
					continue
				}
				s, err := f.String(rec.Path)
				if err != nil {
					fmt.Fprintln(os.Stderr, "error:", err)
					os.Exit(1)
				}
				view.Sources = append(view.Sources, string(s))
			}
		}
	}
	return view
}

func printView(v *inspection) {
	fmt.Printf("File: %s\n", v.File)
	fmt.Printf("IFC v%s | arch=%s | sort=%s | dialect=%d | %d bytes\n",
		v.Version, v.Arch, v.UnitSort, v.Dialect, v.Size)
	fmt.Printf("Content hash: %s\n", v.ContentHash)

	fmt.Println()
	fmt.Printf("Partitions (%d):\n", len(v.Partitions))
	for _, p := range v.Partitions {
		fmt.Printf("  %-36s off=%-8d n=%-6d size=%d\n", p.Name, p.Offset, p.Cardinality, p.EntrySize)
	}

	if v.Sources != nil {
		fmt.Println()
		fmt.Printf("Source files (%d):\n", len(v.Sources))
		for _, s := range v.Sources {
			fmt.Printf("  %s\n", s)
		}
	}
}
