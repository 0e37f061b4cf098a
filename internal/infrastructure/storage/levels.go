package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"svw.info/alchemy/internal/domain"
)

// Levels reads level definitions from a directory tree of level_<id>.json or
// level_<id>.yaml files. The bundled pack and an on-disk directory both work.
type Levels struct{ fsys fs.FS }

func NewLevels(fsys fs.FS) *Levels { return &Levels{fsys: fsys} }

// NewLevelsDir serves levels from dir on disk.
func NewLevelsDir(dir string) *Levels { return NewLevels(os.DirFS(dir)) }

var levelExts = []string{".json", ".yaml", ".yml"}

func levelID(name string) (string, bool) {
	if !strings.HasPrefix(name, "level_") {
		return "", false
	}
	for _, ext := range levelExts {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(strings.TrimPrefix(name, "level_"), ext), true
		}
	}
	return "", false
}

func decode(name string, data []byte) (*domain.LevelDefinition, error) {
	var def domain.LevelDefinition
	var err error
	if strings.HasSuffix(name, ".json") {
		err = json.Unmarshal(data, &def)
	} else {
		err = yaml.Unmarshal(data, &def)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidLevelDefinition, name, err)
	}
	return &def, nil
}

// Load returns the definition of level id. The id inside the file wins over
// the file name when both are present.
func (s *Levels) Load(ctx context.Context, id string) (*domain.LevelDefinition, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", domain.ErrLevelNotFound, id)
	}
	for _, ext := range levelExts {
		name := "level_" + id + ext
		data, err := fs.ReadFile(s.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		def, err := decode(name, data)
		if err != nil {
			return nil, err
		}
		if def.ID == "" {
			def.ID = id
		}
		return def, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrLevelNotFound, id)
}

// List returns every decodable level in play order. Lock state is left for
// the caller, which knows the user.
func (s *Levels) List(ctx context.Context) ([]domain.LevelMeta, error) {
	ents, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, err
	}
	var out []domain.LevelMeta
	seen := map[string]bool{}
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		id, ok := levelID(e.Name())
		if !ok || seen[id] {
			continue
		}
		data, err := fs.ReadFile(s.fsys, e.Name())
		if err != nil {
			continue
		}
		def, err := decode(e.Name(), data)
		if err != nil {
			continue
		}
		if def.ID != "" {
			id = def.ID
		}
		seen[id] = true
		out = append(out, domain.LevelMeta{ID: id, Name: def.Name})
	}
	sort.Slice(out, func(i, j int) bool { return LevelLess(out[i].ID, out[j].ID) })
	return out, nil
}

// LevelLess orders numeric ids numerically and puts them before named ids.
func LevelLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
