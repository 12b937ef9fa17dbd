package router

// Param is a single captured path value. Key is empty for positional
// captures ("*" and "**").
type Param struct {
	Key   string
	Value string
}

// Params holds captured values in capture order.
type Params []Param

// ByName returns the value of the first parameter with the given key.
func (ps Params) ByName(name string) (string, bool) {
	for _, p := range ps {
		if p.Key == name {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns captured values in order.
func (ps Params) Values() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Value
	}
	return out
}

// IsNamed reports whether the first parameter is a named capture.
func (ps Params) IsNamed() bool {
	return len(ps) > 0 && ps[0].Key != ""
}

func positional(values []string) Params {
	ps := make(Params, len(values))
	for i, v := range values {
		ps[i] = Param{Value: v}
	}
	return ps
}
