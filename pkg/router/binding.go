package router

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/kernel/pkg/inflect"
)

// Binding is a controller method selected for a request together with its
// arguments.
type Binding struct {
	Controller *Controller
	Method     string
	Args       []any
	Handler    Handler
}

// Call invokes the bound handler.
func (b Binding) Call(ctx context.Context) (any, error) {
	if b.Handler == nil {
		return nil, fmt.Errorf("%w: %s has no handler for %q", ErrInvalidController, b.Controller.Name(), b.Method)
	}
	return b.Handler(ctx, b.Args)
}

// Bind selects the method and arguments for a controller:
//
//   - a "route" method always wins and receives the intended method name and
//     the remaining params;
//   - otherwise method, or the first param (camel-cased) when method is
//     empty, names the method; a first param equal to the method is consumed;
//   - unknown methods fall back to "index".
//
// Methods without parameters reject leftover params with ErrNotFound.
// Positional params are passed in order; named params are matched by
// parameter name and missing ones bind to nil. An invalid controller
// yields ErrInvalidController.
func Bind(c *Controller, method string, params Params) (Binding, error) {
	if !c.IsValid() {
		return Binding{}, fmt.Errorf("%w: %s", ErrInvalidController, controllerName(c))
	}

	var first string
	if len(params) > 0 {
		first = inflect.Camel(params[0].Value)
	}

	intended := inflect.Camel(method)
	if intended == "" {
		intended = first
	}
	hasRoute := c.HasMethod(MethodRoute)
	if !c.HasMethod(intended) && !hasRoute {
		intended = MethodIndex
	}
	if intended == "" {
		intended = MethodIndex
	}
	if len(params) > 0 && first == intended {
		params = params[1:]
	}

	if hasRoute {
		m, _ := c.Method(MethodRoute)
		return Binding{
			Controller: c,
			Method:     MethodRoute,
			Args:       []any{intended, params},
			Handler:    m.Handler,
		}, nil
	}

	m, ok := c.Method(intended)
	if !ok {
		return Binding{}, fmt.Errorf("%w: %s has no method %q", ErrNotFound, c.Name(), intended)
	}

	if len(m.Params) == 0 {
		if len(params) > 0 {
			return Binding{}, fmt.Errorf("%w: %s.%s takes no arguments, got %d", ErrNotFound, c.Name(), m.Name, len(params))
		}
		return Binding{Controller: c, Method: m.Name, Args: []any{}, Handler: m.Handler}, nil
	}

	return Binding{Controller: c, Method: m.Name, Args: bindArgs(m, params), Handler: m.Handler}, nil
}

func bindArgs(m Method, params Params) []any {
	if params.IsNamed() {
		args := make([]any, len(m.Params))
		for i, name := range m.Params {
			if v, ok := params.ByName(name); ok {
				args[i] = v
			}
		}
		return args
	}

	n := max(len(params), len(m.Params))
	args := make([]any, n)
	for i, p := range params {
		args[i] = p.Value
	}
	return args
}

func controllerName(c *Controller) string {
	if c == nil {
		return "<nil>"
	}
	return c.Name()
}
