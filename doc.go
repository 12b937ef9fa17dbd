// Package kernel is the HTTP and command line front of an application
// built on convention-based routing.
//
// A request URI is parsed into segments, matched against an address table
// and, when nothing matches, resolved to a controller by convention
// ("/admin/reports/2024" tries Admin/Reports, then Admin, in each
// controller namespace). The outcome is rendered once as text, HTML, JSON
// or XML.
//
// # Quick Start
//
//	reg := router.NewRegistry()
//	reg.MustRegister(
//	    router.NewController("app/controllers/Users").
//	        Handle("index", listUsers).
//	        Handle("show", showUser, "id"),
//	)
//
//	addrs := router.NewAddresses()
//	addrs.Get("/u/{id}", router.ControllerMethod{Controller: "app/controllers/Users", Method: "show"})
//	addrs.Get("/ping", router.Literal{Payload: "pong"})
//	addrs.Any("/old/**", router.Redirect{Segments: []string{"users"}})
//
//	app := kernel.New(
//	    kernel.WithAddresses(addrs),
//	    kernel.WithRegistry(reg),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// "/users/show/42" and "/u/42" both reach showUser with args[0] == "42";
// "/users" reaches listUsers. Appending ".json" or ".xml" to the last segment selects
// the response format.
//
// # Controllers
//
// Controller methods receive the request as a context.Context and return a
// payload:
//
//	func showUser(ctx context.Context, args []any) (any, error) {
//	    c, _ := kernel.FromContext(ctx)
//	    id, _ := args[0].(string)
//	    if id == "" {
//	        return nil, kernel.ErrNotFound("")
//	    }
//	    return kernel.Map{"id": id, "lang": c.Locale()}, nil
//	}
//
// # Locales
//
// With WithLocales, a leading segment naming a registered language
// ("/fr/users") sets the request locale. Error titles and messages come
// from the "errors" namespace of the language lines.
//
// # Multi-domain
//
// Run composes Apps by host pattern; Addresses.Domain and
// Addresses.Subdomain scope routes inside one App.
//
// # Command line
//
// App.Execute dispatches command line arguments through the same table:
//
//	app.Execute(ctx, os.Stdout, "GET", "users", "show", "42")
package kernel
