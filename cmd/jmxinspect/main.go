package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"jmxv-importer/internal/binreader"
	"jmxv-importer/internal/bms"
	"jmxv-importer/internal/bmt"
	"jmxv-importer/internal/bsk"
	"jmxv-importer/internal/ddj"
	"jmxv-importer/internal/skeleton"
)

func main() {
	dump := flag.Bool("dump", false, "Dump the decoded structure")
	asJSON := flag.Bool("json", false, "Print the decoded structure as JSON")
	encoding := flag.String("encoding", "", "Text encoding of names, e.g. euc-kr")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: jmxinspect [-dump|-json] [-encoding name] file.(bsk|bms|bmt|ddj)...")
		os.Exit(2)
	}

	enc, err := binreader.EncodingByName(*encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	opts := []binreader.Option{binreader.WithEncoding(enc)}

	cfg := spew.ConfigState{Indent: "  ", DisableCapacities: true, DisablePointerAddresses: true, SortKeys: true}

	failed := 0
	for _, path := range flag.Args() {
		v, err := decode(path, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("=== %s ===\n", path)
		switch {
		case *dump:
			cfg.Dump(v)
		case *asJSON:
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERR %s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Println(string(data))
		default:
			summarize(v)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func decode(path string, opts []binreader.Option) (interface{}, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bsk":
		return bsk.Parse(path, opts...)
	case ".bms":
		return bms.Parse(path, opts...)
	case ".bmt":
		return bmt.Parse(path, opts...)
	case ddj.Ext:
		return ddj.Parse(path)
	}
	return nil, fmt.Errorf("unknown container extension %q", filepath.Ext(path))
}

func summarize(v interface{}) {
	switch c := v.(type) {
	case *bsk.File:
		asm := skeleton.Assemble(c.Bones, skeleton.DefaultOptions())
		st := asm.Stats
		fmt.Printf("Bones: %d, Roots: %d, Groups: %d\n", st.Bones, st.Roots, st.Groups)
		for _, b := range asm.Full.Bones {
			parent := b.ParentName
			if parent == "" {
				parent = "-"
			}
			fmt.Printf("  [%d] %-24s parent=%-24s len=%.3f connected=%v\n", b.Index, b.Name, parent, b.Length(), b.Connected)
		}
		for _, w := range asm.Warnings {
			fmt.Printf("  warning: %v\n", w)
		}
	case *bms.Mesh:
		b := c.Bounds()
		fmt.Printf("Mesh %q material=%q verts=%d faces=%d flag=%#x\n", c.Name, c.Material, c.VertexCount(), len(c.Faces), c.VertexFlag)
		if !b.Empty() {
			size := b.Size()
			fmt.Printf("  BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", b.Min[0], b.Max[0], b.Min[1], b.Max[1], b.Min[2], b.Max[2])
			fmt.Printf("  Size: %.2f x %.2f x %.2f\n", size[0], size[1], size[2])
		}
	case *bmt.File:
		fmt.Printf("Materials: %d\n", len(c.Materials))
		for _, m := range c.Materials {
			fmt.Printf("  [%d] %-24s diffuse=%q normal=%v\n", m.Index, m.Name, m.DiffuseMap, m.HasNormalMap())
		}
	case *ddj.Texture:
		fmt.Printf("Texture type=%d payload=%d bytes\n", c.Type, len(c.Payload))
	}
}
