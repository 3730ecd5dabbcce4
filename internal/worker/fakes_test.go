package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bitrate-lab/internal/media"
)

// fakeRunner writes kbps*100 bytes for every transcode so sizes are
// predictable, and records the jobs it saw.
type fakeRunner struct {
	mu     sync.Mutex
	jobs   []media.Job
	failOn string
}

func (f *fakeRunner) Run(_ context.Context, job media.Job) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()

	if f.failOn != "" && job.Bitrate == f.failOn {
		return &media.ExecError{Kind: job.Kind, Stderr: "Conversion failed!", Err: fmt.Errorf("exit status 1")}
	}
	size := 1024
	if job.Bitrate != "" {
		var kbps int
		if _, err := fmt.Sscanf(strings.TrimSuffix(job.Bitrate, "k"), "%d", &kbps); err != nil {
			return err
		}
		size = kbps * 100
	}
	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(job.Output, make([]byte, size), 0o644)
}

func (f *fakeRunner) kinds() []media.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]media.Kind, len(f.jobs))
	for i, j := range f.jobs {
		out[i] = j.Kind
	}
	return out
}

type fakeStore struct {
	downloaded map[string]string
	uploaded   map[string][]string
	content    []byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		downloaded: map[string]string{},
		uploaded:   map[string][]string{},
		content:    []byte("fake mp4"),
	}
}

func (s *fakeStore) DownloadFile(_ context.Context, key, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	s.downloaded[key] = localPath
	return os.WriteFile(localPath, s.content, 0o644)
}

func (s *fakeStore) UploadDir(_ context.Context, dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		keys = append(keys, prefix+"/"+e.Name())
	}
	s.uploaded[prefix] = keys
	return keys, nil
}
