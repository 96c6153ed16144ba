// Command prefsctl inspects and maintains the browser's preference store:
// it lists and clears history and bookmarks, and migrates the store
// between the JSON and SQLite backends.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"minibrowse/config"
	"minibrowse/library"
	"minibrowse/prefs"
)

func main() {
	var (
		backend = flag.String("backend", "", "Preference backend: json or sqlite (default from config)")
		dir     = flag.String("dir", "", "Preference directory (default from config)")
	)
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *backend == "" {
		*backend = cfg.Storage.Backend
	}
	if *dir == "" {
		*dir = cfg.Storage.Dir
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "list":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		withLibrary(*backend, *dir, func(lib *library.Library) error { return list(lib, args[1]) })
	case "clear":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		withLibrary(*backend, *dir, func(lib *library.Library) error { return clearList(lib, args[1]) })
	case "keys":
		withLibrary(*backend, *dir, func(lib *library.Library) error {
			keys, err := lib.Store().Keys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		})
	case "migrate":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		if err := migrate(*dir, args[1], args[2]); err != nil {
			log.Fatal(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: prefsctl [flags] <command>

Commands:
  list history|bookmarks|quicklinks
  clear history|bookmarks
  keys
  migrate json sqlite       (or sqlite json)

Flags:
`)
	flag.PrintDefaults()
}

func withLibrary(backend, dir string, fn func(*library.Library) error) {
	store, err := prefs.Open(backend, dir)
	if err != nil {
		log.Fatalf("opening preferences: %v", err)
	}
	err = fn(library.New(store))
	if cerr := store.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal(err)
	}
}

func list(lib *library.Library, what string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch what {
	case "history":
		items, err := lib.History()
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", stamp(it.ID), it.Title, it.URL)
		}
	case "bookmarks":
		items, err := lib.Bookmarks()
		if err != nil {
			return err
		}
		for _, b := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", stamp(b.ID), b.Title, b.URL)
		}
	case "quicklinks":
		items, err := lib.QuickLinks()
		if err != nil {
			return err
		}
		for _, q := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\n", q.ID, q.Title, q.Link)
		}
	default:
		return fmt.Errorf("unknown list %q", what)
	}
	return nil
}

func clearList(lib *library.Library, what string) error {
	switch what {
	case "history":
		return lib.ClearHistory()
	case "bookmarks":
		return lib.ClearBookmarks()
	default:
		return fmt.Errorf("cannot clear %q", what)
	}
}

// stamp shows millisecond IDs as local times; small IDs are seeds.
func stamp(id int64) string {
	if id < 1e12 {
		return fmt.Sprintf("#%d", id)
	}
	return time.UnixMilli(id).Local().Format("2006-01-02 15:04")
}

func migrate(dir, from, to string) error {
	if from == to {
		return fmt.Errorf("nothing to migrate: both backends are %s", from)
	}
	src, err := prefs.Open(from, dir)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", from, err)
	}
	defer src.Close()

	dst, err := prefs.Open(to, dir)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", to, err)
	}

	n, err := prefs.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("migrating after %d keys: %w", n, err)
	}
	fmt.Printf("Copied %d keys from %s to %s in %s\n", n, from, to, dir)
	return nil
}
