// Package dri implements documentation reference identifiers: stable,
// structured names for documented symbols.
package dri

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Callable identifies a function or property inside its enclosing scope.
type Callable struct {
	Name   string
	Params []string
}

func (c Callable) String() string {
	return c.Name + "(" + strings.Join(c.Params, ",") + ")"
}

// DRI is a documentation reference identifier. Empty string components are
// absent; a nil Callable means the DRI names a package or a type.
type DRI struct {
	PackageName string
	ClassNames  string
	Callable    *Callable
	Extra       string
}

var errEmpty = errors.New("empty dri")

// String renders the canonical form "package/ClassNames/callable(params)/extra".
// Absent components leave their segment empty.
func (d DRI) String() string {
	var callable string
	if d.Callable != nil {
		callable = d.Callable.String()
	}
	return d.PackageName + "/" + d.ClassNames + "/" + callable + "/" + d.Extra
}

// Key is the map key for d.
func (d DRI) Key() string {
	return d.String()
}

func (d DRI) Equal(other DRI) bool {
	return d.String() == other.String()
}

// Parse accepts the canonical String form as well as the short notation
// "pkg.sub.Outer.Inner#member(Int)" where class names are the dot segments
// starting at the first upper-case one.
func Parse(s string) (DRI, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DRI{}, errEmpty
	}
	if strings.Contains(s, "/") {
		return parseCanonical(s)
	}
	return parseShort(s)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) DRI {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func parseCanonical(s string) (DRI, error) {
	parts := strings.SplitN(s, "/", 4)
	if len(parts) < 3 {
		return DRI{}, fmt.Errorf("parse dri %q: want package/classes/callable[/extra]", s)
	}
	d := DRI{PackageName: parts[0], ClassNames: parts[1]}
	if len(parts) == 4 {
		d.Extra = parts[3]
	}
	if parts[2] != "" {
		c, err := parseCallable(parts[2])
		if err != nil {
			return DRI{}, fmt.Errorf("parse dri %q: %w", s, err)
		}
		d.Callable = &c
	}
	return d, nil
}

func parseShort(s string) (DRI, error) {
	path, member, hasMember := strings.Cut(s, "#")
	var d DRI
	segments := strings.Split(path, ".")
	split := len(segments)
	for i, seg := range segments {
		if seg == "" {
			return DRI{}, fmt.Errorf("parse dri %q: empty segment", s)
		}
		if unicode.IsUpper([]rune(seg)[0]) {
			split = i
			break
		}
	}
	d.PackageName = strings.Join(segments[:split], ".")
	d.ClassNames = strings.Join(segments[split:], ".")
	if hasMember {
		c, err := parseCallable(member)
		if err != nil {
			return DRI{}, fmt.Errorf("parse dri %q: %w", s, err)
		}
		d.Callable = &c
	}
	return d, nil
}

func parseCallable(s string) (Callable, error) {
	name, rest, hasParams := strings.Cut(s, "(")
	if name == "" {
		return Callable{}, errors.New("callable name is empty")
	}
	c := Callable{Name: name}
	if !hasParams {
		return c, nil
	}
	if !strings.HasSuffix(rest, ")") {
		return Callable{}, fmt.Errorf("callable %q: missing closing parenthesis", s)
	}
	rest = strings.TrimSuffix(rest, ")")
	if rest != "" {
		c.Params = strings.Split(rest, ",")
	}
	return c, nil
}
