// Package router resolves request URIs to controller methods.
//
// Routing has two stages. The address table ([Addresses]) is consulted
// first: Actions are matched in registration order and the first one whose
// pattern matches and which accepts the request method wins. When nothing
// matches, conventional discovery walks the path from the longest prefix to
// the shortest, studly-cases each segment and looks for a registered
// controller under each configured namespace:
//
//	/admin/users/edit/42 -> app/controllers/Admin/Users (method "edit", args ["42"])
//
// # Targets
//
// An Action dispatches to a [Target]: [Literal], [Redirect],
// [ControllerMethod], [StatusCode] or [Empty]. String targets found in
// configuration are resolved with [ParseTarget] at registration time.
//
// # Controllers
//
// Controllers are described explicitly and registered in a [Registry]:
//
//	users := router.NewController("app/controllers/Users").
//	    Handle("index", listUsers).
//	    Handle("show", showUser, "id")
//	reg := router.NewRegistry()
//	reg.MustRegister(users)
//
// [Bind] selects the method and arguments: a "route" method receives every
// request, otherwise the named or first-segment method is used, falling back
// to "index". A method without parameters rejects leftover segments.
//
// # Dispatch
//
// [Router.Dispatch] returns a [Result] instead of writing a response:
// [Dispatched] for a bound controller, [Payload] for literal targets and
// [Status] for errors and short-circuits (400, 404, 405, 204, 508).
//
//	addrs := router.NewAddresses()
//	addrs.Get("/users/{id:[0-9]+}", router.ControllerMethod{Controller: "app/controllers/Users", Method: "show"})
//	addrs.Get("/ping", router.Literal{Payload: "pong"})
//
//	r := router.New(addrs, reg, router.WithLogger(logger))
//	switch res := r.Dispatch(ctx, router.Request{Method: "GET", URI: u}).(type) {
//	case router.Dispatched:
//	    out, err := res.Binding.Call(ctx)
//	case router.Payload:
//	    // send res.Value
//	case router.Status:
//	    // send error res.Code
//	}
//
// The address table and the registry are built before serving and are not
// synchronized; the Router itself is safe for concurrent use.
package router
