// Package content ships the default Atelier game as embedded Lua.
package content

import (
	"embed"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/nathoo/atelier/engine/state"
	"github.com/nathoo/atelier/loader"
)

//go:embed game/*.lua
var files embed.FS

var (
	defaultOnce sync.Once
	defaultDefs *state.Defs
	defaultErr  error
)

// FS returns the default game's Lua sources.
func FS() fs.FS {
	sub, err := fs.Sub(files, "game")
	if err != nil {
		panic(err)
	}
	return sub
}

// Default compiles the embedded game once and returns the shared Defs.
// Callers must treat the result as read-only.
func Default() (*state.Defs, error) {
	defaultOnce.Do(func() {
		defaultDefs, defaultErr = loader.LoadFS(FS())
		if defaultErr != nil {
			defaultErr = errors.Wrap(defaultErr, "default content")
		}
	})
	return defaultDefs, defaultErr
}

// Load compiles content from dir, or the embedded game when dir is empty.
func Load(dir string, log *slog.Logger) (*state.Defs, error) {
	if dir == "" {
		return Default()
	}
	var opts []loader.Option
	if log != nil {
		opts = append(opts, loader.WithLogger(log))
	}
	return loader.Load(dir, opts...)
}
