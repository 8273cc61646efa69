// Trellis CLI - inspect trellis.toml schemas and dispatch statistics
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/trellis/dispatch"
	"github.com/chazu/trellis/manifest"
	"github.com/chazu/trellis/trace"
)

func main() {
	dir := flag.String("dir", ".", "Directory to search for trellis.toml")
	db := flag.String("db", "", "Dispatch statistics database (for 'stats')")
	top := flag.Int("top", 20, "Number of rows to show (for 'stats')")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: trellis [options] <command>\n\n")
		fmt.Fprintf(os.Stderr, "Inspects a trellis.toml schema and the runtime it would build.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  classes    Print every class with its linearization\n")
		fmt.Fprintf(os.Stderr, "  generics   Print every generic with its registered signatures\n")
		fmt.Fprintf(os.Stderr, "  lint       Flag ambiguity hazards (multiple inheritance, wildcard overlap)\n")
		fmt.Fprintf(os.Stderr, "  stats      Print dispatch statistics from a trace database\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "classes":
		err = runClasses(*dir)
	case "generics":
		err = runGenerics(*dir)
	case "lint":
		err = runLint(*dir)
	case "stats":
		err = runStats(*db, *top)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "trellis: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime finds the manifest and applies it to a fresh runtime.
func loadRuntime(dir string) (*dispatch.Runtime, *manifest.Manifest, error) {
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, fmt.Errorf("no trellis.toml found from %s", dir)
	}
	rt := dispatch.NewRuntime()
	if err := m.Apply(rt); err != nil {
		return nil, nil, err
	}
	return rt, m, nil
}

func runClasses(dir string) error {
	rt, _, err := loadRuntime(dir)
	if err != nil {
		return err
	}
	for _, name := range rt.Classes().All() {
		chain, err := rt.Classes().Linearize(name)
		if err != nil {
			return err
		}
		def := rt.Classes().Lookup(name)
		marker := ""
		if def.Virtual {
			marker = " (virtual)"
		}
		fmt.Printf("%s%s: %s\n", name, marker, strings.Join(chain, " -> "))
	}
	return nil
}

func runGenerics(dir string) error {
	rt, _, err := loadRuntime(dir)
	if err != nil {
		return err
	}
	for _, name := range rt.Generics().All() {
		g := rt.Generics().Lookup(name)
		fmt.Printf("%s (%s/%d)\n", name, g.Kind, g.Arity)
		infos, err := rt.MethodsFor(name)
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("  %s\n", dispatch.SignatureString(info.Signature))
		}
	}
	return nil
}

func runLint(dir string) error {
	rt, m, err := loadRuntime(dir)
	if err != nil {
		return err
	}

	problems := 0
	for _, c := range m.Classes {
		if len(c.Parents) > 1 {
			fmt.Printf("warning: class %s has %d parents; diamond ambiguity resolves by declaration order\n",
				c.Name, len(c.Parents))
			problems++
		}
	}
	for _, name := range rt.Generics().All() {
		g := rt.Generics().Lookup(name)
		if g.Kind != dispatch.MultiDispatch {
			continue
		}
		sigs := make([][]string, 0)
		for _, info := range mustMethods(rt, name) {
			sigs = append(sigs, info.Signature)
		}
		for i := 0; i < len(sigs); i++ {
			for j := i + 1; j < len(sigs); j++ {
				if wildcardOverlap(sigs[i], sigs[j]) {
					fmt.Printf("warning: generic %s: %s and %s can tie on wildcard positions\n",
						name, dispatch.SignatureString(sigs[i]), dispatch.SignatureString(sigs[j]))
					problems++
				}
			}
		}
	}
	if problems == 0 {
		fmt.Println("no ambiguity hazards found")
	}
	return nil
}

func mustMethods(rt *dispatch.Runtime, generic string) []dispatch.MethodInfo {
	infos, err := rt.MethodsFor(generic)
	if err != nil {
		return nil
	}
	return infos
}

// wildcardOverlap reports whether two signatures use ANY in complementary
// positions, the shape that produces ties when both concrete positions
// match exactly.
func wildcardOverlap(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	aWild, bWild := false, false
	for i := range a {
		if a[i] == dispatch.ClassAny && b[i] != dispatch.ClassAny {
			aWild = true
		}
		if b[i] == dispatch.ClassAny && a[i] != dispatch.ClassAny {
			bWild = true
		}
	}
	return aWild && bWild
}

func runStats(db string, top int) error {
	if db == "" {
		return fmt.Errorf("stats requires -db")
	}
	store, err := trace.Open(db)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Top(top)
	if err != nil {
		return err
	}
	for _, st := range stats {
		fmt.Println(st)
	}
	return nil
}
