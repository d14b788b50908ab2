// Package render writes chart artifacts for a run.
package render

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/songlens-cli/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ManifestName is the manifest file written next to the artifacts.
const ManifestName = "manifest.json"

// Renderer is anything that can render itself as a standalone HTML page.
type Renderer interface {
	Render(w io.Writer) error
}

// Artifact records one save attempt.
type Artifact struct {
	Seq   int    `json:"seq"`
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// Manifest lists what a run produced.
type Manifest struct {
	RunID     string     `json:"run_id"`
	Source    string     `json:"source,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Saved     []Artifact `json:"saved"`
	Skipped   []Artifact `json:"skipped"`
}

// ArtifactWriter numbers and saves artifacts into one output directory.
// Numbering follows call order and advances on every Save, failed or not.
type ArtifactWriter struct {
	dir     string
	counter int
	log     *zap.SugaredLogger
	m       Manifest
}

// NewArtifactWriter creates dir if needed.
func NewArtifactWriter(dir, source string, log *zap.SugaredLogger) (*ArtifactWriter, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ArtifactWriter{
		dir: dir,
		log: log,
		m: Manifest{
			RunID:     uuid.New().String(),
			Source:    source,
			CreatedAt: time.Now().UTC(),
			Saved:     []Artifact{},
			Skipped:   []Artifact{},
		},
	}, nil
}

// Dir returns the output directory.
func (a *ArtifactWriter) Dir() string { return a.dir }

// RunID identifies this run in the manifest.
func (a *ArtifactWriter) RunID() string { return a.m.RunID }

// Save renders r into NN_name.html. A failure is logged and recorded as
// skipped; the returned error is informational.
func (a *ArtifactWriter) Save(name string, r Renderer) error {
	a.counter++
	art := Artifact{Seq: a.counter, Name: name}
	path := filepath.Join(a.dir, fmt.Sprintf("%02d_%s.html", a.counter, name))

	err := func() error {
		if r == nil {
			return fmt.Errorf("nothing to render")
		}
		var buf bytes.Buffer
		if err := r.Render(&buf); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		return utils.SafeWriteFile(path, buf.Bytes())
	}()
	if err != nil {
		art.Error = err.Error()
		a.m.Skipped = append(a.m.Skipped, art)
		a.log.Warnw("artifact skipped", "seq", art.Seq, "name", name, "error", err)
		return fmt.Errorf("artifact %s: %w", name, err)
	}
	art.Path = path
	a.m.Saved = append(a.m.Saved, art)
	a.log.Debugw("artifact saved", "seq", art.Seq, "path", path)
	return nil
}

// Skip records an artifact that could not be produced and consumes its number.
func (a *ArtifactWriter) Skip(name string, reason error) {
	a.counter++
	art := Artifact{Seq: a.counter, Name: name}
	if reason != nil {
		art.Error = reason.Error()
	}
	a.m.Skipped = append(a.m.Skipped, art)
	a.log.Warnw("artifact skipped", "seq", art.Seq, "name", name, "error", reason)
}

// Manifest returns a copy of the current manifest.
func (a *ArtifactWriter) Manifest() Manifest {
	m := a.m
	m.Saved = append([]Artifact{}, a.m.Saved...)
	m.Skipped = append([]Artifact{}, a.m.Skipped...)
	return m
}

// WriteManifest writes manifest.json into the output directory.
func (a *ArtifactWriter) WriteManifest() (string, error) {
	b, err := utils.PrettyJSON(a.m)
	if err != nil {
		return "", err
	}
	path := filepath.Join(a.dir, ManifestName)
	if err := utils.SafeWriteFile(path, b); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
