package internal

import "strconv"

// Scalar lists the types Param and Query convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the request value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param converts a captured route value. Unparsable values yield the zero T.
func Param[T Scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Param(name))
	return v
}

// Query converts a query parameter like Param.
func Query[T Scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Query(name))
	return v
}

// QueryDefault is Query with def for empty or unparsable values.
func QueryDefault[T Scalar](c Context, name string, def T) T {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	if v, err := parseScalar[T](raw); err == nil {
		return v
	}
	return def
}

func parseScalar[T Scalar](raw string) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *string:
		*p = raw
	case *int:
		*p, err = strconv.Atoi(raw)
	case *int64:
		*p, err = strconv.ParseInt(raw, 10, 64)
	case *float64:
		*p, err = strconv.ParseFloat(raw, 64)
	case *bool:
		*p, err = strconv.ParseBool(raw)
	default:
		err = strconv.ErrSyntax
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
