// Command symbolite stores, renders and evaluates symbolic namespaces.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/dyscolab/symbolite/internal/store"
	"github.com/dyscolab/symbolite/pkg/symbolite"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	db       string
	postgres string
	backend  string
	cache    int
	verbose  bool
	imports  string
	evalStr  string
	scope    string
	set      string
	evalNs   string
	show     string
	list     bool
	history  string
	limit    int
	block    string
	args     string
	remove   string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("symbolite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.db, "db", "symbolite.db", "SQLite database path")
	fs.StringVar(&o.postgres, "postgres", "", "PostgreSQL connection string (overrides -db)")
	fs.StringVar(&o.backend, "backend", "std", "Backend: "+strings.Join(symbolite.BackendNames(), ", "))
	fs.IntVar(&o.cache, "cache", store.DefaultCacheSize, "Namespace cache size (0 disables)")
	fs.BoolVar(&o.verbose, "v", false, "Debug logging")
	fs.StringVar(&o.imports, "i", "", "Import namespace source files (comma separated)")
	fs.StringVar(&o.evalStr, "e", "", "Evaluate an expression")
	fs.StringVar(&o.scope, "ns", "", "Stored namespace whose names -e may reference")
	fs.StringVar(&o.set, "set", "", "Bindings for evaluation, e.g. x=1,y=2")
	fs.StringVar(&o.evalNs, "eval", "", "Evaluate every attribute of a stored namespace")
	fs.StringVar(&o.show, "show", "", "Print a stored namespace as source")
	fs.BoolVar(&o.list, "list", false, "List stored namespaces")
	fs.StringVar(&o.history, "history", "", "Print the stored versions of a namespace")
	fs.IntVar(&o.limit, "limit", 0, "Maximum number of versions for -history (0 for all)")
	fs.StringVar(&o.block, "block", "", "Compile a def block from a file")
	fs.StringVar(&o.args, "args", "", "Call the -block function with these arguments, e.g. 1,2")
	fs.StringVar(&o.remove, "delete", "", "Delete a stored namespace and its history")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// actions reports whether any one-shot flag was given.
func (o *options) actions() bool {
	return o.imports != "" || o.evalStr != "" || o.evalNs != "" || o.show != "" ||
		o.list || o.history != "" || o.block != "" || o.remove != ""
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	log := newLogger(stderr, o.verbose)

	opts := []symbolite.Option{
		symbolite.WithLogger(log),
		symbolite.WithBackendName(o.backend),
		symbolite.WithCacheSize(o.cache),
	}
	if o.postgres != "" {
		opts = append(opts, symbolite.WithPostgresStore(o.postgres))
	} else {
		opts = append(opts, symbolite.WithSQLiteStore(o.db))
	}
	s, err := symbolite.New(opts...)
	if err != nil {
		log.WithError(err).Error("opening session")
		return 1
	}
	defer s.Close()

	if err := execute(s, o, stdin, stdout, log); err != nil {
		log.Error(err)
		return 1
	}
	return 0
}

func execute(s *symbolite.Session, o *options, stdin io.Reader, stdout io.Writer, log logrus.FieldLogger) error {
	values, err := parseBindings(o.set)
	if err != nil {
		return err
	}

	if o.imports != "" {
		for _, path := range strings.Split(o.imports, ",") {
			ns, err := s.ImportFile(strings.TrimSpace(path))
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"namespace": ns.Name(), "attributes": ns.Len()}).Info("imported")
		}
	}
	if o.remove != "" {
		if err := s.Delete(o.remove); err != nil {
			return err
		}
		log.WithField("namespace", o.remove).Info("deleted")
	}
	if o.list {
		if err := printList(s, stdout); err != nil {
			return err
		}
	}
	if o.show != "" {
		src, err := s.Show(o.show)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, src)
	}
	if o.history != "" {
		if err := printHistory(s, o.history, o.limit, stdout); err != nil {
			return err
		}
	}
	if o.evalNs != "" {
		if err := printNamespace(s, o.evalNs, values, stdout); err != nil {
			return err
		}
	}
	if o.evalStr != "" {
		v, err := s.EvalExpr(o.evalStr, o.scope, values)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, format(v))
	}
	if o.block != "" {
		if err := runBlock(s, o.block, o.args, stdout); err != nil {
			return err
		}
	}
	if o.actions() {
		return nil
	}

	// Piped source is imported; a terminal gets the REPL.
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runREPL(s, stdin, stdout, log)
	}
	ns, err := s.ImportReader(stdin)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"namespace": ns.Name(), "attributes": ns.Len()}).Info("imported")
	return nil
}

// parseBindings reads "x=1,y=2". Values parse as numbers, then booleans,
// and are otherwise kept as strings.
func parseBindings(s string) (map[string]any, error) {
	values := map[string]any{}
	if strings.TrimSpace(s) == "" {
		return values, nil
	}
	for _, pair := range strings.Split(s, ",") {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Errorf("invalid binding %q (expected name=value)", pair)
		}
		values[name] = parseValue(strings.TrimSpace(raw))
	}
	return values, nil
}

func parseValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func parseArgs(s string) []any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []any
	for _, raw := range strings.Split(s, ",") {
		out = append(out, parseValue(strings.TrimSpace(raw)))
	}
	return out
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = format(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprint(v)
}

func printList(s *symbolite.Session, w io.Writer) error {
	names, err := s.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		entries, err := s.History(name, 1)
		if err != nil || len(entries) == 0 {
			fmt.Fprintln(w, name)
			continue
		}
		fmt.Fprintf(w, "%-24s v%-4d %s\n", name, entries[0].Version, humanize.Time(entries[0].Ts))
	}
	return nil
}

func printHistory(s *symbolite.Session, name string, limit int, w io.Writer) error {
	entries, err := s.History(name, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return &symbolite.NotFoundError{Name: name}
	}
	for _, e := range entries {
		fmt.Fprintf(w, "v%-4d %s  %-16s %s\n", e.Version, e.Hash, humanize.Time(e.Ts), humanize.Bytes(uint64(len(e.Value))))
	}
	return nil
}

func printNamespace(s *symbolite.Session, name string, values map[string]any, w io.Writer) error {
	ns, err := s.Load(name)
	if err != nil {
		return err
	}
	out, err := s.EvaluateNamespace(ns, values)
	if err != nil {
		return err
	}
	for _, attr := range ns.Names() {
		fmt.Fprintf(w, "%s = %s\n", attr, format(out[attr]))
	}
	return nil
}

func runBlock(s *symbolite.Session, path, args string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if s.Backend().Name() == "code" {
		b, err := symbolite.ParseBlock(string(data))
		if err != nil {
			return err
		}
		src, err := symbolite.AsCode(b)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, src)
		return nil
	}
	c, err := s.Compile(string(data))
	if err != nil {
		return errors.Wrapf(err, "compiling %s", path)
	}
	if args == "" {
		fmt.Fprintln(w, c.Source)
		return nil
	}
	v, err := c.Call(parseArgs(args)...)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, format(v))
	return nil
}
