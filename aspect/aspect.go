// Package aspect routes calls of marked operations through the advice
// registered for their marker.
package aspect

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Marker tags an operation with the interception category its calls are
// routed through.
type Marker int

const (
	Before Marker = iota + 1
	After
	Around
	AfterThrowing
	AfterReturning
)

var markerNames = [...]string{
	Before:         "before",
	After:          "after",
	Around:         "around",
	AfterThrowing:  "afterThrowing",
	AfterReturning: "afterReturning",
}

func (m Marker) String() string {
	if !m.Valid() {
		return "Marker(" + strconv.Itoa(int(m)) + ")"
	}
	return markerNames[m]
}

func (m Marker) Valid() bool {
	return m >= Before && m <= AfterReturning
}

// Markers returns every marker in declaration order.
func Markers() []Marker {
	return []Marker{Before, After, Around, AfterThrowing, AfterReturning}
}

// ParseMarker resolves a marker by name, ignoring case.
func ParseMarker(name string) (Marker, error) {
	for _, m := range Markers() {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownMarker, "marker='%s'", name)
}

type Param struct {
	Name  string
	Value any
}

// JoinPoint describes a single intercepted call. Result and Err are only
// populated for handlers that run after the body.
type JoinPoint struct {
	ID     string
	Name   string
	Marker Marker
	Args   []Param
	Result any
	Err    error
}

func (jp JoinPoint) Signature() string {
	return jp.Name + "()"
}

// Proceed runs the wrapped body.
type Proceed func(ctx context.Context) (any, error)

// Handler is the advice for the Before, After, AfterThrowing and
// AfterReturning markers.
type Handler func(ctx context.Context, jp JoinPoint) error

// AroundHandler is the advice for the Around marker. It decides if and
// when proceed is called.
type AroundHandler func(ctx context.Context, jp JoinPoint, proceed Proceed) (any, error)
