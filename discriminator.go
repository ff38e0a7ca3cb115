package funcrest

// Discriminator decides whether raw invocation bytes have the shape of an
// HTTP trigger request before any decoding happens.
type Discriminator interface {
	Match(v View) bool
}

// RequestShape is the default Discriminator: method and url must both be
// present as strings.
func RequestShape() Discriminator {
	return StringFields("method", "url")
}

// HasFields returns a Discriminator that matches when all paths exist,
// whatever their type.
func HasFields(paths ...string) Discriminator {
	return fieldCheck{paths: paths}
}

// StringFields returns a Discriminator that matches when all paths exist
// and hold strings.
func StringFields(paths ...string) Discriminator {
	return fieldCheck{paths: paths, strings: true}
}

type fieldCheck struct {
	paths   []string
	strings bool
}

func (d fieldCheck) Match(v View) bool {
	for _, p := range d.paths {
		if d.strings {
			if _, ok := v.GetString(p); !ok {
				return false
			}
		} else if !v.HasField(p) {
			return false
		}
	}
	return true
}

// And returns a Discriminator that matches when all discriminators match.
//
// Example:
//
//	funcrest.WithRequestShape(funcrest.And(
//	    funcrest.RequestShape(),
//	    funcrest.HasFields("headers"),
//	))
func And(ds ...Discriminator) Discriminator {
	return all(ds)
}

type all []Discriminator

func (d all) Match(v View) bool {
	for _, disc := range d {
		if !disc.Match(v) {
			return false
		}
	}
	return true
}
