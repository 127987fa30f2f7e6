package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mise/internal/model"
)

// readPayload decodes a YAML payload file into v. A path of "-" reads
// stdin. Unknown fields are rejected.
func readPayload(path string, stdin io.Reader, v any) error {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return model.WrapValidationError(fmt.Sprintf("open payload %s", path), err)
		}
		defer f.Close()
		r = f
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError(fmt.Sprintf("payload %s is empty", path))
		}
		return model.WrapValidationError(fmt.Sprintf("parse payload %s", path), err)
	}
	return nil
}
