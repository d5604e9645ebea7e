// Command storedump inspects corestore store files: summarize a store,
// dump its objects, list journal frames, or follow the journal as commits
// land.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/aalhour/corestore"
	"github.com/aalhour/corestore/internal/logging"
)

var cli struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Describe struct {
		Path string `arg:"" help:"Store file to summarize."`
	} `cmd:"" help:"Summarize a store file as YAML."`

	Dump struct {
		Path string `arg:"" help:"Store file to dump."`
		Type string `arg:"" optional:"" help:"Dump only this object type."`
	} `cmd:"" help:"Dump the objects at the latest committed version."`

	Frames struct {
		Path string `arg:"" help:"Store file to list."`
	} `cmd:"" help:"List the journal frames of a store file."`

	Follow struct {
		Path string `arg:"" help:"Store file to watch."`
	} `cmd:"" help:"Watch the journal and print frames as they are committed."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("storedump"),
		kong.Description("Inspect corestore store files."),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	var err error
	switch ctx.Command() {
	case "describe <path>":
		err = describe(cli.Describe.Path, logger)
	case "dump <path>", "dump <path> <type>":
		err = dump(cli.Dump.Path, cli.Dump.Type, logger)
	case "frames <path>":
		err = frames(cli.Frames.Path)
	case "follow <path>":
		err = follow(cli.Follow.Path, logger)
	default:
		err = fmt.Errorf("unknown command %q", ctx.Command())
	}
	if err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// summary is the YAML shape emitted by describe.
type summary struct {
	Path          string        `yaml:"path"`
	Version       uint64        `yaml:"version"`
	SchemaVersion string        `yaml:"schemaVersion"`
	Frames        int           `yaml:"frames"`
	Types         []typeSummary `yaml:"types,omitempty"`
}

type typeSummary struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func describe(path string, logger *slog.Logger) error {
	store, err := corestore.Open(corestore.Config{Path: path, Logger: logging.Slog(logger)})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sum := summary{
		Path:    store.Path(),
		Version: store.Version(),
	}
	if sv := store.SchemaVersion(); sv == corestore.SchemaVersionUnset {
		sum.SchemaVersion = "unset"
	} else {
		sum.SchemaVersion = fmt.Sprintf("%d", sv)
	}
	if _, err := corestore.InspectJournal(store.Path(), 0, func(corestore.FrameInfo) bool {
		sum.Frames++
		return true
	}); err != nil {
		return err
	}
	for _, name := range store.Types() {
		all, err := store.All(name)
		if err != nil {
			return err
		}
		sum.Types = append(sum.Types, typeSummary{Name: name, Count: all.Count()})
	}

	out, err := yaml.Marshal(&sum)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func dump(path, typeName string, logger *slog.Logger) error {
	store, err := corestore.Open(corestore.Config{Path: path, Logger: logging.Slog(logger)})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	types := store.Types()
	if typeName != "" {
		types = []string{typeName}
	}
	for _, name := range types {
		all, err := store.All(name)
		if err != nil {
			return err
		}
		i := 0
		all.Each(func(obj *corestore.Object) bool {
			fmt.Printf("%s[%d]:\n", name, i)
			i++
			err = dumpObject(obj)
			return err == nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func dumpObject(obj *corestore.Object) error {
	fields, err := obj.Fields()
	if err != nil {
		return err
	}
	for _, f := range fields {
		v, err := obj.Get(f)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %v\n", f, v.Interface())
	}
	listFields, err := obj.ListFields()
	if err != nil {
		return err
	}
	for _, f := range listFields {
		list, err := obj.List(f)
		if err != nil {
			return err
		}
		vals, err := list.Values()
		if err != nil {
			return err
		}
		items := make([]any, len(vals))
		for i, v := range vals {
			items[i] = v.Interface()
		}
		fmt.Printf("  %s: %v\n", f, items)
	}
	return nil
}

func frames(path string) error {
	_, err := corestore.InspectJournal(path, 0, func(fi corestore.FrameInfo) bool {
		printFrame(fi)
		return true
	})
	return err
}

func printFrame(fi corestore.FrameInfo) {
	fmt.Printf("offset=%-10d version=%-8d codec=%-8s ops=%d\n", fi.Offset, fi.Version, fi.Codec, fi.Ops)
}

// follow tails the journal: print existing frames, then watch the file and
// print each new complete frame as its commit lands.
func follow(path string, logger *slog.Logger) error {
	offset, err := corestore.InspectJournal(path, 0, func(fi corestore.FrameInfo) bool {
		printFrame(fi)
		return true
	})
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(path); err != nil {
		return err
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	logger.Info("following journal", "path", path, "offset", offset)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) {
				continue
			}
			offset, err = corestore.InspectJournal(path, offset, func(fi corestore.FrameInfo) bool {
				printFrame(fi)
				return true
			})
			if err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case <-sigc:
			return nil
		}
	}
}
