package loader

import (
	"bytes"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/atelier/engine/state"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game        *lua.LTable
	ranks       []rawDef
	cards       []rawDef
	materials   []rawDef
	items       []rawDef
	quests      []rawDef
	shop        []rawDef
	starterDeck []string
	rewardCards []string
	seen        map[string]bool
	problems    []string
}

// add records a definition, noting an error if kind/id was already declared.
func (c *collector) add(list *[]rawDef, kind, id string, tbl *lua.LTable) {
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	key := kind + ":" + id
	if c.seen[key] {
		c.problems = append(c.problems, "duplicate "+kind+" \""+id+"\"")
		return
	}
	c.seen[key] = true
	*list = append(*list, rawDef{id: id, table: tbl})
}

// Option configures loading.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger receives validation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Load reads all .lua files from dir, compiles them into game definitions,
// validates references, and returns the immutable Defs. The Lua VM is
// discarded after loading.
func Load(dir string, opts ...Option) (*state.Defs, error) {
	defs, err := LoadFS(os.DirFS(dir), opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", dir)
	}
	return defs, nil
}

// LoadFS is Load over the .lua files at the root of fsys.
func LoadFS(fsys fs.FS, opts ...Option) (*state.Defs, error) {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading content directory")
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, errors.New("no .lua files found")
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", f)
		}
		if err := run(L, src, path.Base(f)); err != nil {
			return nil, errors.Wrapf(err, "executing %s", f)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, errors.Wrap(err, "compiling game data")
	}

	warnings, err := validate(defs, coll.problems...)
	for _, w := range warnings {
		o.log.Warn("content warning", "detail", w)
	}
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func run(L *lua.LState, src []byte, name string) error {
	fn, err := L.Load(bytes.NewReader(src), name)
	if err != nil {
		return err
	}
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}
