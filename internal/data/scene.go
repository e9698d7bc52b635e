package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SceneEntry describes one entity in a scene file. Parent refers to another
// entry by name. Rotation is XYZ euler angles in degrees.
type SceneEntry struct {
	Name     string      `yaml:"name"`
	Group    string      `yaml:"group"`
	Parent   string      `yaml:"parent"`
	Position [3]float32  `yaml:"position"`
	Rotation [3]float32  `yaml:"rotation"`
	Scale    *[3]float32 `yaml:"scale"`
	Velocity [3]float32  `yaml:"velocity"`
}

// ScaleOrDefault returns the entry's scale, or unit scale when omitted.
func (e *SceneEntry) ScaleOrDefault() [3]float32 {
	if e.Scale == nil {
		return [3]float32{1, 1, 1}
	}
	return *e.Scale
}

type sceneFile struct {
	Name     string       `yaml:"name"`
	Entities []SceneEntry `yaml:"entities"`
}

// SceneTable holds a validated scene with entries ordered parents first.
type SceneTable struct {
	name    string
	entries []SceneEntry
	byName  map[string]int
}

// LoadScene loads a scene YAML file.
func LoadScene(path string) (*SceneTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	t, err := ParseScene(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseScene decodes and validates scene YAML. Names must be unique and
// non-empty, and parent references must resolve without cycles.
func ParseScene(raw []byte) (*SceneTable, error) {
	var f sceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	byName := make(map[string]int, len(f.Entities))
	for i := range f.Entities {
		e := &f.Entities[i]
		if e.Name == "" {
			return nil, fmt.Errorf("entity #%d: missing name", i)
		}
		if _, dup := byName[e.Name]; dup {
			return nil, fmt.Errorf("entity %q: duplicate name", e.Name)
		}
		byName[e.Name] = i
	}
	for i := range f.Entities {
		e := &f.Entities[i]
		if e.Parent == "" {
			continue
		}
		if _, ok := byName[e.Parent]; !ok {
			return nil, fmt.Errorf("entity %q: unknown parent %q", e.Name, e.Parent)
		}
	}

	ordered, err := parentsFirst(f.Entities, byName)
	if err != nil {
		return nil, err
	}
	t := &SceneTable{
		name:    f.Name,
		entries: ordered,
		byName:  make(map[string]int, len(ordered)),
	}
	for i := range ordered {
		t.byName[ordered[i].Name] = i
	}
	return t, nil
}

// parentsFirst orders entries so that every parent precedes its children,
// keeping file order otherwise.
func parentsFirst(entries []SceneEntry, byName map[string]int) ([]SceneEntry, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(entries))
	out := make([]SceneEntry, 0, len(entries))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("entity %q: parent cycle", entries[i].Name)
		}
		state[i] = visiting
		if p := entries[i].Parent; p != "" {
			if err := visit(byName[p]); err != nil {
				return err
			}
		}
		state[i] = done
		out = append(out, entries[i])
		return nil
	}
	for i := range entries {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *SceneTable) Name() string { return t.name }

// Entries returns the scene entries, parents before children.
func (t *SceneTable) Entries() []SceneEntry { return t.entries }

// Get returns the entry with the given name, or nil if none.
func (t *SceneTable) Get(name string) *SceneEntry {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}
	return &t.entries[i]
}

// Count returns the total number of entities in the scene.
func (t *SceneTable) Count() int {
	return len(t.entries)
}
