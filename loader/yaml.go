package loader

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/fabula/types"
)

// loadYAML decodes every document of a YAML file. Unknown fields are
// errors so typos in field names do not silently drop content.
func loadYAML(path string) (*types.Defs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	defs := &types.Defs{}
	for {
		var doc types.Defs
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		merge(defs, &doc)
	}
	return defs, nil
}
