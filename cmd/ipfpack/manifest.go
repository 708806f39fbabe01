package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// manifest describes a multi-pack batch build: a list of pack name to
// source folder mappings, for builds that need more than the single `-p`
// pack the flag surface covers.
type manifest struct {
	Packs []manifestPack `yaml:"packs"`
}

type manifestPack struct {
	Name   string `yaml:"name"`
	Folder string `yaml:"folder"`
}

// loadManifest reads and strictly decodes a YAML manifest file, rejecting
// unknown fields the way barnettlynn/nfctools/sdmconfig's config loader
// does.
func loadManifest(path string) (*manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var m manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest yaml: %w", err)
	}
	if len(m.Packs) == 0 {
		return nil, fmt.Errorf("manifest %q declares no packs", path)
	}
	for i, p := range m.Packs {
		if p.Name == "" || p.Folder == "" {
			return nil, fmt.Errorf("manifest %q: pack %d missing name or folder", path, i)
		}
	}
	return &m, nil
}
