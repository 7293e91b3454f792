package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jmxv-importer/internal/ddj"
	"jmxv-importer/internal/texture"
)

// dumpTexture writes the payload of a texture container next to it, named
// after the payload format.
func dumpTexture(src, outDir string) error {
	tex, err := ddj.Parse(src)
	if err != nil {
		return err
	}

	ext := ".bin"
	if _, format, err := texture.DecodeConfig(tex.Payload); err == nil {
		ext = "." + format
	}
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	dst := filepath.Join(dir, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+ext)
	if err := os.WriteFile(dst, tex.Payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	fmt.Printf("OK  %s -> %s  (%d-byte header skipped, %d bytes written)\n",
		src, dst, ddj.HeaderSize, len(tex.Payload))
	return nil
}

// packTexture wraps a raw payload file in a texture container.
func packTexture(src, outDir string, typ uint32) error {
	payload, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	dst := filepath.Join(dir, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+ddj.Ext)
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := ddj.Encode(f, typ, payload); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("OK  %s -> %s  (%d bytes wrapped)\n", src, dst, len(payload))
	return nil
}

func main() {
	pack := flag.Bool("pack", false, "Wrap raw payloads in texture containers instead of extracting")
	typ := flag.Uint("type", 3, "Texture type written with -pack")
	outDir := flag.String("out", "", "Output directory (default: next to each input)")
	flag.Parse()

	errors := 0
	for _, src := range flag.Args() {
		var err error
		if *pack {
			err = packTexture(src, *outDir, uint32(*typ))
		} else {
			err = dumpTexture(src, *outDir)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
		}
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Println("\nDone.")
}
