package internal

import (
	"errors"
	"net/http"
	"slices"

	"github.com/dmitrymomot/kernel/pkg/hostrouter"
)

// Run serves several Apps behind one listener, selected by host.
// It blocks until SIGINT/SIGTERM.
//
//	err := kernel.Run(
//	    kernel.Domain("api.acme.com", api),
//	    kernel.Domain("*.acme.com", site),
//	    kernel.Fallback(landing),
//	    kernel.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	handler, apps, err := cfg.handler()
	if err != nil {
		return err
	}

	// App shutdown hooks run once per App even when mounted on several
	// hosts.
	hooks := slices.Clone(cfg.shutdownHooks)
	seen := make(map[*App]bool, len(apps))
	for _, app := range apps {
		if !seen[app] {
			seen[app] = true
			hooks = append(hooks, app.shutdownHooks...)
		}
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		readTimeout:     cfg.readTimeout,
		writeTimeout:    cfg.writeTimeout,
		shutdownHooks:   hooks,
		baseCtx:         cfg.baseCtx,
	})
}

func (c *runConfig) handler() (http.Handler, []*App, error) {
	if len(c.domains) == 0 {
		if c.fallback == nil {
			return nil, nil, errors.New("kernel.Run: no domains or fallback configured")
		}
		return c.fallback, []*App{c.fallback}, nil
	}

	routes := make(hostrouter.Routes, len(c.domains))
	apps := make([]*App, 0, len(c.domains)+1)
	for _, d := range c.domains {
		routes[d.pattern] = d.app
		apps = append(apps, d.app)
	}

	var fallback http.Handler = http.NotFoundHandler()
	if c.fallback != nil {
		fallback = c.fallback
		apps = append(apps, c.fallback)
	}
	return hostrouter.New(routes, fallback), apps, nil
}
