package shortener

type allSet struct {
	name string
}

func (a *allSet) Name() string {
	if a == nil || a.name == "" {
		return TypeAll
	}
	return a.name
}

func (a *allSet) Type() string {
	return TypeAll
}

func (a *allSet) Match(string) bool {
	return true
}

// All returns the sentinel set treating every domain as shortened.
func All() ISet {
	return &allSet{name: TypeAll}
}

func createAllSet(name string, args interface{}) (ISet, error) {
	return &allSet{name: name}, nil
}

func init() {
	Register(TypeAll, createAllSet)
}
