package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/tilegen/internal/terrain"
)

// Exporter writes files into OutputDir with timestamped names.
type Exporter struct {
	OutputDir string
	Prefix    string

	now func() time.Time
}

// NewExporter creates an exporter for dir. An empty prefix becomes "tile".
func NewExporter(dir, prefix string) *Exporter {
	if prefix == "" {
		prefix = "tile"
	}
	return &Exporter{OutputDir: dir, Prefix: prefix, now: time.Now}
}

// Filename builds "<prefix>_<name>_<timestamp>.<ext>" inside OutputDir.
func (e *Exporter) Filename(name, ext string) string {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	timestamp := now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%s.%s", e.Prefix, name, timestamp, ext)
	if e.OutputDir != "" {
		filename = filepath.Join(e.OutputDir, filename)
	}
	return filename
}

func (e *Exporter) ensureDir() error {
	if e.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	return nil
}

// Image saves img and returns the path written.
func (e *Exporter) Image(name string, img image.Image, format Format) (string, error) {
	if err := e.ensureDir(); err != nil {
		return "", err
	}
	path := e.Filename(name, string(format))
	if err := SaveImage(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// Mesh saves mesh as OBJ and returns the path written.
func (e *Exporter) Mesh(name string, mesh *terrain.Mesh) (string, error) {
	if err := e.ensureDir(); err != nil {
		return "", err
	}
	path := e.Filename(name, "obj")
	if err := SaveOBJ(path, mesh); err != nil {
		return "", err
	}
	return path, nil
}
