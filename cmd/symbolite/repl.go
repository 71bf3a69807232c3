package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dyscolab/symbolite/internal/eval"
	"github.com/dyscolab/symbolite/pkg/symbolite"
)

const (
	prompt         = ">>> "
	continuePrompt = "... "
)

var errQuit = errors.New("quit")

// lineReader is what the REPL reads from: a readline instance on a
// terminal, plain buffered input otherwise.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(string)
	Close() error
}

type basicReader struct {
	r      *bufio.Reader
	out    io.Writer
	prompt string
}

func newBasicReader(in io.Reader, out io.Writer) *basicReader {
	return &basicReader{r: bufio.NewReader(in), out: out, prompt: prompt}
}

func (b *basicReader) SetPrompt(p string) { b.prompt = p }
func (b *basicReader) Close() error       { return nil }

func (b *basicReader) Readline() (string, error) {
	fmt.Fprint(b.out, b.prompt)
	line, err := b.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var commands = []string{
	":help", ":list", ":show", ":history", ":use", ":set", ":unset",
	":backend", ":import", ":eval", ":call", ":delete", ":quit",
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, len(commands))
	for i, c := range commands {
		items[i] = readline.PcItem(c)
	}
	return readline.NewPrefixCompleter(items...)
}

func runREPL(s *symbolite.Session, in io.Reader, out io.Writer, log logrus.FieldLogger) error {
	var rl lineReader
	inst, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
	})
	if err != nil {
		log.WithError(err).Warn("line editing unavailable")
		rl = newBasicReader(in, out)
	} else {
		rl = inst
	}
	fmt.Fprintln(out, "symbolite REPL (:help for commands, Ctrl+D to exit)")
	return newREPL(s, out).run(rl)
}

type repl struct {
	s      *symbolite.Session
	out    io.Writer
	scope  string
	values map[string]any
	blocks map[string]*eval.Compiled

	// pending collects a def block until a blank line.
	pending []string
}

func newREPL(s *symbolite.Session, out io.Writer) *repl {
	return &repl{s: s, out: out, values: map[string]any{}, blocks: map[string]*eval.Compiled{}}
}

func (r *repl) run(rl lineReader) error {
	defer rl.Close()
	var multiline strings.Builder
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			multiline.Reset()
			r.pending = nil
			rl.SetPrompt(prompt)
			continue
		}
		if err == io.EOF {
			if err := r.flush(); err != nil {
				r.report(err)
			}
			return nil
		}
		if err != nil {
			return err
		}

		if r.pending != nil {
			if strings.TrimSpace(line) != "" {
				r.pending = append(r.pending, line)
				continue
			}
			rl.SetPrompt(prompt)
			if err := r.flush(); err != nil {
				r.report(err)
			}
			continue
		}

		if strings.HasSuffix(line, "\\") {
			multiline.WriteString(strings.TrimSuffix(line, "\\"))
			multiline.WriteString("\n")
			rl.SetPrompt(continuePrompt)
			continue
		}
		input := line
		if multiline.Len() > 0 {
			multiline.WriteString(line)
			input = multiline.String()
			multiline.Reset()
			rl.SetPrompt(prompt)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		if strings.HasPrefix(input, "def ") {
			r.pending = []string{input}
			rl.SetPrompt(continuePrompt)
			continue
		}
		err = r.handle(input)
		if err == errQuit {
			return nil
		}
		if err != nil {
			r.report(err)
		}
	}
}

func (r *repl) report(err error) {
	fmt.Fprintf(r.out, "Error: %v\n", err)
}

// flush compiles a pending def block.
func (r *repl) flush() error {
	if r.pending == nil {
		return nil
	}
	src := strings.Join(r.pending, "\n") + "\n"
	r.pending = nil
	c, err := r.s.Compile(src)
	if err != nil {
		return err
	}
	r.blocks[c.Name] = c
	names := make([]string, 0, len(c.Block.Inputs()))
	for _, l := range c.Block.Inputs() {
		names = append(names, l.Name())
	}
	fmt.Fprintf(r.out, "compiled %s(%s)\n", c.Name, strings.Join(names, ", "))
	return nil
}

func (r *repl) handle(input string) error {
	if !strings.HasPrefix(input, ":") {
		v, err := r.s.EvalExpr(input, r.scope, r.values)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, format(v))
		return nil
	}

	cmd, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":quit", ":q":
		return errQuit
	case ":help":
		fmt.Fprintln(r.out, "Commands: "+strings.Join(commands, " "))
		fmt.Fprintln(r.out, "Anything else is evaluated as an expression; def blocks end at a blank line.")
		fmt.Fprintln(r.out, ":call name runs a block on the :set bindings; :call name 1,2 passes arguments.")
	case ":list":
		return printList(r.s, r.out)
	case ":show":
		src, err := r.s.Show(r.name(arg))
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, src)
	case ":history":
		return printHistory(r.s, r.name(arg), 0, r.out)
	case ":use":
		if arg != "" {
			if _, err := r.s.Load(arg); err != nil {
				return err
			}
		}
		r.scope = arg
	case ":set":
		values, err := parseBindings(arg)
		if err != nil {
			return err
		}
		for k, v := range values {
			r.values[k] = v
		}
	case ":unset":
		if arg == "" {
			r.values = map[string]any{}
		}
		for _, name := range strings.Fields(arg) {
			delete(r.values, name)
		}
	case ":backend":
		if arg == "" {
			fmt.Fprintln(r.out, r.s.Backend().Name())
			return nil
		}
		be, err := symbolite.BackendByName(arg)
		if err != nil {
			return err
		}
		r.s.SetBackend(be)
	case ":import":
		ns, err := r.s.ImportFile(arg)
		if err != nil {
			return err
		}
		r.scope = ns.Name()
		fmt.Fprintf(r.out, "imported %s (%d attributes)\n", ns.Name(), ns.Len())
	case ":eval":
		return printNamespace(r.s, r.name(arg), r.values, r.out)
	case ":call":
		fields := strings.Fields(arg)
		if len(fields) == 0 {
			return r.listBlocks()
		}
		c, ok := r.blocks[fields[0]]
		if !ok {
			return errors.Errorf("no compiled block %s", fields[0])
		}
		var v any
		var err error
		if len(fields) == 1 {
			// inputs come from the :set bindings, which keep every assignment
			v, err = c.CallEnv(eval.NewEnv(r.values))
		} else {
			v, err = c.Call(parseArgs(strings.Join(fields[1:], ","))...)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, format(v))
	case ":delete":
		if err := r.s.Delete(arg); err != nil {
			return err
		}
		if r.scope == arg {
			r.scope = ""
		}
	default:
		return errors.Errorf("unknown command %s", cmd)
	}
	return nil
}

// name defaults to the current scope.
func (r *repl) name(arg string) string {
	if arg == "" {
		return r.scope
	}
	return arg
}

func (r *repl) listBlocks() error {
	names := make([]string, 0, len(r.blocks))
	for name := range r.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(r.out, name)
	}
	return nil
}
