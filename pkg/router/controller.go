package router

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
)

// MethodRoute is the name of a controller method that receives every
// request for its controller: the intended method name and the remaining
// Params are passed as its two arguments.
const MethodRoute = "route"

// MethodIndex is the default method.
const MethodIndex = "index"

// Handler runs a controller method. args are bound from the request path:
// strings for captured values, nil for unmatched named parameters.
// A non-nil result is sent as the response payload.
type Handler func(ctx context.Context, args []any) (any, error)

// Method describes one controller method.
type Method struct {
	Name    string
	Params  []string
	Handler Handler
}

// Controller describes a routable controller: its namespaced id
// ("app/controllers/Users"), source directory and methods.
type Controller struct {
	name     string
	dir      string
	abstract bool
	methods  []Method
}

// NewController creates a controller descriptor. name is the namespaced id;
// backslashes are accepted as separators.
func NewController(name string) *Controller {
	return &Controller{name: normalizeControllerID(name)}
}

// Handle adds a method. params are the method's parameter names in order.
// A later method with the same name replaces the earlier one.
func (c *Controller) Handle(name string, h Handler, params ...string) *Controller {
	m := Method{Name: name, Params: slices.Clone(params), Handler: h}
	if i := c.methodIndex(name); i >= 0 {
		c.methods[i] = m
		return c
	}
	c.methods = append(c.methods, m)
	return c
}

// InDir sets the source directory registered with the Loader on dispatch.
func (c *Controller) InDir(dir string) *Controller {
	c.dir = dir
	return c
}

// Abstract marks the controller as not dispatchable.
func (c *Controller) Abstract() *Controller {
	c.abstract = true
	return c
}

// Name returns the namespaced id.
func (c *Controller) Name() string { return c.name }

// ShortName returns the last element of the id ("Users").
func (c *Controller) ShortName() string { return path.Base(c.name) }

// Namespace returns the id without its last element ("app/controllers").
func (c *Controller) Namespace() string {
	ns := path.Dir(c.name)
	if ns == "." {
		return ""
	}
	return ns
}

// Dir returns the source directory.
func (c *Controller) Dir() string { return c.dir }

// IsValid reports whether the controller can be dispatched to.
func (c *Controller) IsValid() bool {
	return c != nil && !c.abstract && c.name != ""
}

// HasMethod reports whether a method with the given name exists.
func (c *Controller) HasMethod(name string) bool {
	return name != "" && c.methodIndex(name) >= 0
}

// Method returns the method with the given name.
func (c *Controller) Method(name string) (Method, bool) {
	if i := c.methodIndex(name); i >= 0 {
		return c.methods[i], true
	}
	return Method{}, false
}

// Methods returns the methods in registration order.
func (c *Controller) Methods() []Method {
	return slices.Clone(c.methods)
}

func (c *Controller) methodIndex(name string) int {
	return slices.IndexFunc(c.methods, func(m Method) bool { return m.Name == name })
}

// Registry maps controller ids to descriptors. It is populated at startup
// and read-only while dispatching.
type Registry struct {
	controllers map[string]*Controller
	order       []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// Register adds controllers.
func (r *Registry) Register(controllers ...*Controller) error {
	for _, c := range controllers {
		if c == nil || c.name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidController)
		}
		if _, ok := r.controllers[c.name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateController, c.name)
		}
		r.controllers[c.name] = c
		r.order = append(r.order, c.name)
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(controllers ...*Controller) {
	if err := r.Register(controllers...); err != nil {
		panic(err)
	}
}

// Lookup returns the controller with the given id.
func (r *Registry) Lookup(name string) (*Controller, bool) {
	c, ok := r.controllers[normalizeControllerID(name)]
	return c, ok
}

// Controllers returns every controller in registration order.
func (r *Registry) Controllers() []*Controller {
	out := make([]*Controller, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.controllers[name])
	}
	return out
}

// Loader is notified of the namespace and source directory of every bound
// controller.
type Loader interface {
	AddNamespace(namespace, dir string)
}

// Namespaces is a Loader that records namespace directories.
// It is safe for concurrent use.
type Namespaces struct {
	mu   sync.RWMutex
	dirs map[string]string
}

// NewNamespaces creates an empty namespace map.
func NewNamespaces() *Namespaces {
	return &Namespaces{dirs: make(map[string]string)}
}

// AddNamespace records dir for namespace. Empty values are ignored.
func (n *Namespaces) AddNamespace(namespace, dir string) {
	if namespace == "" || dir == "" {
		return
	}
	n.mu.Lock()
	n.dirs[strings.Trim(namespace, "/")] = dir
	n.mu.Unlock()
}

// Dir returns the directory recorded for namespace.
func (n *Namespaces) Dir(namespace string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	dir, ok := n.dirs[strings.Trim(namespace, "/")]
	return dir, ok
}
