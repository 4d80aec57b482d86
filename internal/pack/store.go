package pack

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store loads, validates, and lists packs from the library root
// ({home}/.kql-panopticon/packs/, recursive) — spec §4.5, §6.
type Store struct {
	Root string
}

// NewStore returns a Store rooted at {home}/.kql-panopticon/packs.
func NewStore(home string) *Store {
	return &Store{Root: filepath.Join(home, ".kql-panopticon", "packs")}
}

// LoadResult pairs one discovered file with either its parsed Pack or the
// validation/parse error that prevented it from loading, so the library
// listing can show both good packs and bad ones side by side.
type LoadResult struct {
	Path string
	Pack *Pack
	Err  error
}

// LoadAll recursively scans Root for .yaml/.yml/.json files and parses
// each. A malformed file never aborts the scan — its error is reported
// alongside the good packs (spec §4.5: "C5 never panics on malformed
// input").
func (s *Store) LoadAll() ([]LoadResult, error) {
	var results []LoadResult

	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}

		p, loadErr := LoadFile(path)
		results = append(results, LoadResult{Path: path, Pack: p, Err: loadErr})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan pack library %s: %w", s.Root, err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// Save validates and writes p as YAML under Root/{filename}.yaml, creating
// Root if needed. filename should not include an extension. Save refuses to
// overwrite an existing file unless overwrite is true, mirroring the
// session store's SaveAs convention (spec §4.6 is the origin of this
// pattern; §4.5 exports a pack the same cautious way).
func (s *Store) Save(p *Pack, filename string, overwrite bool) (string, error) {
	return s.SaveTo(p, filepath.Join(s.Root, filename+".yaml"), "yaml", overwrite)
}

// SaveTo validates and writes p to an exact path in the given format
// ("yaml" or "json"), creating its parent directory if needed. Used by
// export-pack's `--output`/`--format` flags (spec §4.9), where the
// destination is not necessarily inside the pack library.
func (s *Store) SaveTo(p *Pack, path, format string, overwrite bool) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("validate pack %q: %w", p.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", path, err)
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("pack file already exists: %s", path)
		}
	}

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(p, "", "  ")
	default:
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return "", fmt.Errorf("marshal pack %q: %w", p.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write pack file %s: %w", path, err)
	}
	return path, nil
}

// LoadFile parses and validates a single pack file, attaching SourcePath.
func LoadFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var p Pack
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p.SourcePath = path
	return &p, nil
}
