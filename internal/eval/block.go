package eval

import (
	"github.com/pkg/errors"

	"github.com/dyscolab/symbolite/internal/backend"
	"github.com/dyscolab/symbolite/internal/expr"
)

// Step runs one compiled assignment against an environment.
type Step func(env *Env) error

// Compiled is a block turned into a callable by an executable backend.
type Compiled struct {
	Name    string
	Source  string
	Block   *expr.Block
	Backend string
	steps   []Step
}

// CompileBlock translates every line of b through be's lang.Assign and
// collects the resulting steps. source is kept for inspection.
func CompileBlock(b *expr.Block, be backend.Backend, source string) (*Compiled, error) {
	ev := New(be)
	c := &Compiled{Name: b.Name(), Source: source, Block: b, Backend: be.Name()}
	for i, line := range b.Lines() {
		v, err := ev.Translate(line)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling line %d of %s", i+1, b.Name())
		}
		switch s := v.(type) {
		case Step:
			c.steps = append(c.steps, s)
		case func(*Env) error:
			c.steps = append(c.steps, s)
		default:
			return nil, errors.Errorf("lang.Assign in module %s produced %T, not a step", be.Name(), v)
		}
	}
	return c, nil
}

// Call runs the block on positional inputs. It returns nil for a block
// without outputs, the value for a single output, and a []any in output
// order otherwise.
func (c *Compiled) Call(args ...any) (any, error) {
	ins := c.Block.Inputs()
	if len(args) != len(ins) {
		return nil, errors.Errorf("%s takes %d arguments but %d were given", c.Name, len(ins), len(args))
	}
	env := NewEnv(nil)
	for i, l := range ins {
		env.Set(l.Name(), args[i])
	}
	return c.run(env)
}

// CallEnv runs the block with its inputs read from env by name. Every
// assigned value is bound into env.
func (c *Compiled) CallEnv(env *Env) (any, error) {
	for _, l := range c.Block.Inputs() {
		if _, ok := env.Get(l.Name()); !ok {
			return nil, errors.Errorf("%s: input %s is not bound", c.Name, l.Name())
		}
	}
	return c.run(env)
}

func (c *Compiled) run(env *Env) (any, error) {
	for _, s := range c.steps {
		if err := s(env); err != nil {
			return nil, err
		}
	}
	outs := c.Block.Outputs()
	res := make([]any, len(outs))
	for i, l := range outs {
		v, ok := env.Get(l.Name())
		if !ok {
			return nil, errors.Errorf("%s: output %s was never assigned", c.Name, l.Name())
		}
		res[i] = v
	}
	switch len(res) {
	case 0:
		return nil, nil
	case 1:
		return res[0], nil
	}
	return res, nil
}

// AssignStep is the lang.Assign entry of executable backends: the
// right-hand side is evaluated with the environment's values bound to its
// free leaves and the result is bound to the target's name.
func AssignStep(a *expr.Assign, be backend.Backend) (any, error) {
	free := expr.FreeSymbols(a.Rhs())
	ev := New(be)
	return Step(func(env *Env) error {
		m := expr.NewMapping()
		for _, l := range free {
			if v, ok := env.Get(l.Name()); ok {
				m.Set(l, expr.Lit{V: v})
			}
		}
		v, err := ev.Translate(expr.Substitute(a.Rhs(), m))
		if err != nil {
			return errors.Wrapf(err, "computing %s", a.Lhs().Name())
		}
		env.Set(a.Lhs().Name(), v)
		return nil
	}), nil
}

// BlockCompiler returns a lang.Block entry compiling blocks with source
// rendered by render.
func BlockCompiler(render func(*expr.Block) (string, error)) backend.BlockFunc {
	return func(b *expr.Block, be backend.Backend) (any, error) {
		src, err := render(b)
		if err != nil {
			return nil, err
		}
		return CompileBlock(b, be, src)
	}
}
