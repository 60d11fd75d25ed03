package workers

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Uploader pushes a stored debug capture to durable storage and returns
// its remote key.
type Uploader interface {
	UploadArtifact(ctx context.Context, runID, name string, data []byte) (string, error)
}

// NoOpUploader leaves artifacts on local disk. Used until S3 credentials
// are configured.
type NoOpUploader struct{}

func NewNoOpUploader() *NoOpUploader { return &NoOpUploader{} }

func (n *NoOpUploader) UploadArtifact(ctx context.Context, runID, name string, data []byte) (string, error) {
	return "", nil
}

// ArtifactStore writes debug captures under dir/<runID>/<name>. It is the
// sink the pipeline hands its failure evidence to.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

func (s *ArtifactStore) Save(runID, name string, data []byte) (string, error) {
	runDir := filepath.Join(s.dir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(runDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// ArtifactWorker periodically sweeps the artifact directory and uploads
// pending captures, removing local copies on success.
type ArtifactWorker struct {
	dir       string
	uploader  Uploader
	triggerCh chan struct{}
}

func NewArtifactWorker(dir string, uploader Uploader) *ArtifactWorker {
	return &ArtifactWorker{
		dir:       dir,
		uploader:  uploader,
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate sweep.
func (w *ArtifactWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *ArtifactWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.triggerCh:
			w.sweep(ctx)
		}
	}
}

func (w *ArtifactWorker) sweep(ctx context.Context) {
	if _, ok := w.uploader.(*NoOpUploader); ok {
		return
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		runID := entry.Name()
		runDir := filepath.Join(w.dir, runID)

		files, err := os.ReadDir(runDir)
		if err != nil {
			continue
		}

		uploaded := 0
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(runDir, f.Name()))
			if err != nil {
				continue
			}
			key, err := w.uploader.UploadArtifact(ctx, runID, f.Name(), data)
			if err != nil {
				log.Printf("Artifacts: upload %s/%s failed: %v", runID, f.Name(), err)
				continue
			}
			os.Remove(filepath.Join(runDir, f.Name()))
			uploaded++
			log.Printf("Artifacts: uploaded %s", key)
		}
		if uploaded > 0 {
			os.Remove(runDir) // removes only when empty
		}
	}
}
