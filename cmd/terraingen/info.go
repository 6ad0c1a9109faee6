package main

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Faultbox/tilegen/internal/config"
	"github.com/Faultbox/tilegen/internal/terrain"
)

func cmdConfig(cfg *config.Config) error {
	if *flagWrite {
		path, err := cfg.Save()
		if err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Saved config to %s\n", path)
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func cmdLODs(cfg *config.Config) error {
	size := cfg.Terrain.Size
	lods := terrain.ValidLODs(size)
	if len(lods) == 0 {
		return fmt.Errorf("tile size %d supports no LOD", size)
	}

	p := message.NewPrinter(language.English)
	p.Printf("Tile size: %d\n\n", size)
	p.Printf("  %-4s %-7s %-10s %s\n", "LOD", "Stride", "Vertices", "Triangles")
	for _, lod := range lods {
		quads := (size - 1) / terrain.Stride(lod)
		p.Printf("  %-4d %-7d %-10d %d\n", lod, terrain.Stride(lod), (quads+1)*(quads+1), quads*quads*2)
	}
	return nil
}
