// Package seedfile loads the starter items inserted on first launch.
package seedfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/todoreminder/internal/model"
)

// JSON-backed starter set. The built-in file is embedded; users may point
// config seed_file at their own, which must match starter.schema.json.

//go:embed starter.json
var defaultStarter []byte

//go:embed starter.schema.json
var schemaSource []byte

const schemaURL = "starter.schema.json"

type file struct {
	Items []entry `json:"items"`
}

type entry struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Default returns the built-in starter items.
func Default() ([]model.Item, error) {
	return Parse(defaultStarter)
}

// Load reads starter items from path. An empty path means the built-in set.
func Load(path string) ([]model.Item, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("seed file %s does not exist", path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	items, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Parse validates b against the starter schema and decodes it.
// Every returned item has no id and no reminder.
func Parse(b []byte) ([]model.Item, error) {
	sch, err := compiled()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid starter file: %w", err)
	}

	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	items := make([]model.Item, 0, len(f.Items))
	for _, e := range f.Items {
		it := model.Item{Title: e.Title, Description: e.Description, Completed: e.Completed}
		if err := it.Validate(); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
