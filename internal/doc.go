// Package internal implements the kernel runtime. Import
// "github.com/dmitrymomot/kernel" instead, which re-exports the public API.
//
// # Request lifecycle
//
// Every request that is not a health or static route goes through the same
// steps:
//
//  1. A Context is created around the request and the middleware chain runs.
//  2. The request environment is captured (uri.EnvFromRequest) and resolved
//     into a uri.URI. Disallowed characters answer 400.
//  3. A locale segment, when present, sets the request locale.
//  4. router.Router.Dispatch turns the URI into a Result.
//  5. The Result is rendered exactly once through Output: a bound
//     controller method is called and its return value sent, literals are
//     sent as is, and statuses become errors rendered by the ErrorHandler.
//
// # Controllers
//
// Controller handlers receive the request Context as their context.Context.
// FromContext recovers it:
//
//	router.NewController("app/controllers/Users").
//	    Handle("show", func(ctx context.Context, args []any) (any, error) {
//	        c, _ := kernel.FromContext(ctx)
//	        return kernel.Map{"id": args[0], "lang": c.Locale()}, nil
//	    }, "id")
//
// A handler may write the response itself through c.Output(); a returned
// value is then ignored.
//
// # Output
//
// Output writes text, HTML, JSON or XML. JSON and XML bodies are wrapped in
// an Envelope carrying status, reason, success flag and message. Error
// titles and messages are looked up in the "errors" language namespace.
//
// # Command line
//
// App.Execute runs the same dispatch for command line arguments and writes
// the outcome to an io.Writer.
package internal
