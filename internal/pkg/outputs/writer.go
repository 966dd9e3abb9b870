/*
writer.go Uploads the launcher outputs below one directory or storage URL and fingerprints every
file it writes.
*/

package outputs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/viant/afs"
)

const fileMode = 0644

// Writer uploads output files through afs.
type Writer struct {
	fs       afs.Service
	dir      string
	basename string
	manifest *Manifest
}

// NewWriter returns a writer storing files under dir. basename prefixes the
// PAR, manifest and diagram directory names.
func NewWriter(fs afs.Service, dir, basename string) *Writer {
	return &Writer{
		fs:       fs,
		dir:      dir,
		basename: basename,
		manifest: NewManifest(),
	}
}

// DiagramDir is the location of the diagram files.
func (w *Writer) DiagramDir() string {
	return joinURL(w.dir, w.basename+DiagramDirectorySuffix)
}

// ParURL is the location of the PAR file.
func (w *Writer) ParURL() string {
	return joinURL(w.dir, w.basename+ParFileSuffix)
}

// ManifestURL is the location of the manifest.
func (w *Writer) ManifestURL() string {
	return joinURL(w.dir, w.basename+ManifestFileSuffix)
}

// Manifest returns the files written so far.
func (w *Writer) Manifest() *Manifest {
	return w.manifest
}

func (w *Writer) upload(ctx context.Context, URL string, data []byte) error {
	if err := w.fs.Upload(ctx, URL, fileMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload %s: %w", URL, err)
	}
	return w.manifest.Add(URL, data)
}

// WriteManifest uploads the manifest of every file written before the call.
func (w *Writer) WriteManifest(ctx context.Context) error {
	data, err := json.MarshalIndent(w.manifest.Entries(), "", "  ")
	if err != nil {
		return err
	}
	if err := w.fs.Upload(ctx, w.ManifestURL(), fileMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload %s: %w", w.ManifestURL(), err)
	}
	log.Printf("[Outputs] manifest of %d files written to %s", len(w.manifest.Entries()), w.ManifestURL())
	return nil
}
