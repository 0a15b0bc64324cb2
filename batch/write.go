package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lestrrat-go/xmlshape/internal/trace"
)

// writeAtomic replaces filename with contents by writing to a temporary
// file in the same directory and renaming it over the destination. The
// permissions of an existing destination are kept.
func writeAtomic(ctx context.Context, filename string, contents []byte) error {
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}

	output, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempname := output.Name()

	_, err = io.Copy(output, bytes.NewReader(contents))
	if err == nil {
		err = output.Sync()
	}

	if st, serr := os.Stat(filename); serr == nil {
		logInformationalError(ctx, output.Chmod(st.Mode()))
	} else if !os.IsNotExist(serr) {
		logInformationalError(ctx, serr)
	}

	logInformationalError(ctx, output.Close())

	if err != nil {
		logInformationalError(ctx, os.Remove(tempname))
		return fmt.Errorf("error while writing output: %w", err)
	}

	if err := os.Rename(tempname, filename); err != nil {
		logInformationalError(ctx, os.Remove(tempname))
		return fmt.Errorf("error while renaming temporary file to destination file: %w", err)
	}
	return nil
}

// Some errors, like failing to copy the permissions over, are not
// worth failing the document for
func logInformationalError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	trace.From(ctx).LogAttrs(ctx, slog.LevelWarn, "ignoring error", slog.String("error", err.Error()))
}
