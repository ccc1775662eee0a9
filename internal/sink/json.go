package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/itsmostafa/bomfold/internal/materialize"
)

// JSON encodes the document to W, indented.
type JSON struct {
	W io.Writer
}

func (s *JSON) Write(ctx context.Context, out *materialize.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(s.W)
	enc.SetIndent("", "  ")
	return enc.Encode(normalize(out))
}

// JSONFile writes the JSON document to Path.
type JSONFile struct {
	Path string
}

func (s *JSONFile) Write(ctx context.Context, out *materialize.Output) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.Path, err)
	}
	if err := (&JSON{W: f}).Write(ctx, out); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// normalize makes empty sheets encode as [] rather than null.
func normalize(out *materialize.Output) *materialize.Output {
	n := *out
	if n.BOMs == nil {
		n.BOMs = []materialize.Header{}
	}
	if n.BOMEntries == nil {
		n.BOMEntries = []materialize.Entry{}
	}
	return &n
}
