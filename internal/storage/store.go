// Package storage owns the on-disk layout of a run: the per-run frame
// directory, the shared exports directory, run metadata and matrix CSVs.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frame file extensions cleared before a new render.
var frameExts = []string{".png", ".svg"}

type Store struct {
	framesRoot string
	exportsDir string
}

func New(framesRoot, exportsDir string) *Store {
	return &Store{framesRoot: framesRoot, exportsDir: exportsDir}
}

func (s *Store) FramesRoot() string { return s.framesRoot }
func (s *Store) ExportsDir() string { return s.exportsDir }

// FrameDir is the directory holding saveName's frames.
func (s *Store) FrameDir(saveName string) string {
	return filepath.Join(s.framesRoot, saveName)
}

// PrepareFrameDir creates saveName's frame directory and removes any frame
// files left by an earlier run. It returns the directory path.
func (s *Store) PrepareFrameDir(saveName string) (string, error) {
	if err := validName(saveName); err != nil {
		return "", err
	}
	dir := s.FrameDir(saveName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isFrame(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// FramePaths lists the frame files in saveName's directory in name order.
func (s *Store) FramePaths(saveName, ext string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.FrameDir(saveName), "*."+ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Store) EnsureExports() error {
	return os.MkdirAll(s.exportsDir, 0755)
}

func (s *Store) GIFPath(saveName string) string {
	return filepath.Join(s.exportsDir, saveName+".gif")
}

func (s *Store) MP4Path(saveName string) string {
	return filepath.Join(s.exportsDir, saveName+".mp4")
}

func (s *Store) metaPath(saveName string) string {
	return filepath.Join(s.exportsDir, saveName+".json")
}

type RunMetadata struct {
	ID        string    `json:"id"`
	SaveName  string    `json:"save_name"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Smooth    bool      `json:"smooth"`
	Keying    string    `json:"keying"`
	FirstDate string    `json:"first_date"`
	LastDate  string    `json:"last_date"`
	Frames    int       `json:"frames"`
	FrameDir  string    `json:"frame_dir"`
	Artifacts []string  `json:"artifacts"`
}

// SaveRun writes meta next to the run's exports, assigning an ID when empty.
func (s *Store) SaveRun(meta *RunMetadata) error {
	if err := validName(meta.SaveName); err != nil {
		return err
	}
	if err := s.EnsureExports(); err != nil {
		return err
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%s", meta.SaveName, uuid.NewString()[:8])
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	f, err := os.Create(s.metaPath(meta.SaveName))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) LoadRun(saveName string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.metaPath(saveName))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ListRuns returns the metadata of every run in the exports directory,
// newest first.
func (s *Store) ListRuns() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.exportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		meta, err := s.LoadRun(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func isFrame(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range frameExts {
		if ext == e {
			return true
		}
	}
	return false
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("storage: invalid save name %q", name)
	}
	return nil
}
