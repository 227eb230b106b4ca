package job

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gpowereth/blogbot/internal/repository"
	"github.com/gpowereth/blogbot/internal/service"
)

// staleImageAge is how old an unreferenced image must be before the sweep
// removes it. Anything younger may belong to a conversation still in flight.
const staleImageAge = 24 * time.Hour

// ExportRefreshJob periodically rewrites the export file (a publish whose
// export step failed is reported as successful, so the file can lag the
// table) and sweeps image files that crashed sessions left behind.
type ExportRefreshJob struct {
	pr        repository.PostRepository
	es        service.ExportService
	imagesDir string
}

func NewExportRefreshJob(pr repository.PostRepository, es service.ExportService, imagesDir string) *ExportRefreshJob {
	return &ExportRefreshJob{
		pr:        pr,
		es:        es,
		imagesDir: imagesDir,
	}
}

func (j *ExportRefreshJob) Refresh() {
	ctx := context.Background()

	if err := j.es.Write(ctx); err != nil {
		slog.Info(err.Error())
	}

	j.sweepStaleImages(ctx)
}

func (j *ExportRefreshJob) sweepStaleImages(ctx context.Context) {
	posts, err := j.pr.ListPublished(ctx, 0)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	referenced := make(map[string]struct{}, 2*len(posts))
	for _, post := range posts {
		path := filepath.Clean(post.PhotoPath)
		referenced[path] = struct{}{}
		// The raw download next to an optimized copy is retained on
		// confirmation, so it is protected too.
		if strings.HasSuffix(path, "_optimized.jpg") {
			referenced[strings.TrimSuffix(path, "_optimized.jpg")+".jpg"] = struct{}{}
		}
	}

	entries, err := os.ReadDir(j.imagesDir)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	cutoff := time.Now().Add(-staleImageAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(j.imagesDir, entry.Name())
		if _, ok := referenced[filepath.Clean(path)]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			slog.Info(err.Error())
		} else {
			slog.Info("removed stale image: " + path)
		}
	}
}
