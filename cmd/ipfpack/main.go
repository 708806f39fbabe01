// Command ipfpack builds an IPF archive from a folder on disk.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/icza/ipf"
	"github.com/spf13/pflag"
)

func main() {
	var (
		out          = pflag.StringP("o", "o", "", "output archive path (default {newVersion}_001001.ipf)")
		newVersion   = pflag.Uint32("nv", 1000000, "new_version footer field")
		oldVersion   = pflag.Uint32("ov", 0, "old_version footer field")
		packName     = pflag.StringP("p", "p", "", "single pack name; if absent, packs are auto-derived from .ipf-named subfolders")
		manifestPath = pflag.String("manifest", "", "optional YAML manifest of {name, folder} packs for a multi-pack batch build")
	)
	pflag.Parse()

	if err := run(*out, *newVersion, *oldVersion, *packName, *manifestPath, pflag.Args()); err != nil {
		log.Fatalf("ipfpack: %v", err)
	}
}

func run(out string, newVersion, oldVersion uint32, packName, manifestPath string, args []string) error {
	if out == "" {
		out = fmt.Sprintf("%d_001001.ipf", newVersion)
	}

	a := ipf.NewArchive(oldVersion, newVersion)

	switch {
	case manifestPath != "":
		m, err := loadManifest(manifestPath)
		if err != nil {
			return err
		}
		for _, p := range m.Packs {
			if err := a.AddFolder(p.Name, p.Folder); err != nil {
				return fmt.Errorf("packing %q from %q: %w", p.Name, p.Folder, err)
			}
			log.Printf("packed %q from %s", p.Name, p.Folder)
		}

	case packName != "":
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one source folder argument, got %d", len(args))
		}
		if err := a.AddFolder(packName, args[0]); err != nil {
			return fmt.Errorf("packing %q: %w", packName, err)
		}

	default:
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one source folder argument, got %d", len(args))
		}
		if err := a.AddFolderAuto(args[0]); err != nil {
			return fmt.Errorf("auto-packing %s: %w", args[0], err)
		}
	}

	if _, err := a.Save(out); err != nil {
		return fmt.Errorf("saving %s: %w", out, err)
	}
	log.Printf("wrote %s (%d entries)", out, len(a.Entries()))
	return nil
}
