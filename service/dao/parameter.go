package dao

// Parameter is a named List filter. A single value matches exactly; multiple
// values match any of them.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a list filter parameter.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// FilterByState evaluates "State" parameters against the supplied state
// value. An empty parameter list matches everything; unknown parameter names
// are ignored rather than failing the match.
func FilterByState(state string, parameters []*Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "State" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return state == actual
			case []string:
				for _, s := range actual {
					if state == s {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}
