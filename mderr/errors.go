// Package mderr holds the metadata conversion error taxonomy.
//
// Every error surfaced by the document, transform, schema and
// geoblacklight packages is, or wraps, an *Error whose Kind tells the
// caller which class of failure occurred:
//
//	KindLoad       input unreadable, or neither JSON nor well-formed XML
//	KindShape      an operation was invoked on a document of the wrong kind
//	KindTransform  a rule set could not process the document
//	KindArgument   a caller supplied an invalid name or option
//	KindConfig     a rule set or configuration file is invalid
//
// A query that matches nothing is not an error and has no Kind.
package mderr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Kind is the class of a metadata error
type Kind int

const (
	// KindLoad is a document load failure
	KindLoad Kind = iota
	// KindShape indicates a document of the wrong kind for the operation
	KindShape
	// KindTransform is a rule set processing failure
	KindTransform
	// KindArgument is an invalid argument supplied by the caller
	KindArgument
	// KindConfig is an invalid rule set or configuration
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindShape:
		return "shape"
	case KindTransform:
		return "transform"
	case KindArgument:
		return "argument"
	case KindConfig:
		return "config"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k *Kind) UnmarshalText(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "load":
		*k = KindLoad
	case "shape":
		*k = KindShape
	case "transform":
		*k = KindTransform
	case "argument":
		*k = KindArgument
	case "config":
		*k = KindConfig
	default:
		return errors.New("unknown value")
	}
	return nil
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Error is a metadata conversion error.
type Error struct {
	Kind      Kind     `json:"kind"`
	Tag       string   `json:"tag"`
	Source    string   `json:"source,omitempty"`
	Element   string   `json:"element,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Message   string   `json:"message,omitempty"`
	Err       error    `json:"-"`
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s error tag:%s", e.Kind, e.Tag)
	if e.Source != "" {
		s += " source:" + e.Source
	}
	if e.Element != "" {
		s += " element:" + e.Element
	}
	if e.Namespace != "" {
		s += " namespace:" + e.Namespace
	}
	if len(e.Fields) > 0 {
		s += " fields:" + strings.Join(e.Fields, ",")
	}
	if e.Message != "" {
		s += " " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err is, or wraps, an *Error of kind k
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// HasTag reports whether err is, or wraps, an *Error with the given tag
func HasTag(err error, tag string) bool {
	var e *Error
	return errors.As(err, &e) && e.Tag == tag
}

func newError(kind Kind, tag string, opts []Option) *Error {
	e := &Error{Kind: kind, Tag: tag}
	for _, opt := range opts {
		opt(e)
	}
	// kind is fixed by the constructor
	e.Kind = kind
	return e
}

// MalformedDocument is returned when content is neither JSON nor
// well-formed XML
func MalformedDocument(opts ...Option) *Error {
	return newError(KindLoad, "malformed-document", opts)
}

// UnrecognizedFormat is returned when content parses as XML but holds
// no element at all
func UnrecognizedFormat(opts ...Option) *Error {
	return newError(KindLoad, "unrecognized-format", opts)
}

// Unreadable is returned when an input source cannot be read
func Unreadable(source string, opts ...Option) *Error {
	e := newError(KindLoad, "unreadable", opts)
	e.Source = source
	return e
}

// ShapeMismatch is returned when an operation needs a document kind
// other than the one supplied
func ShapeMismatch(want, got string, opts ...Option) *Error {
	e := newError(KindShape, "shape-mismatch", opts)
	if e.Message == "" {
		e.Message = fmt.Sprintf("want %s document, got %s", want, got)
	}
	return e
}

// MissingElement is returned when required rule set fields yield no value
func MissingElement(fields []string, opts ...Option) *Error {
	e := newError(KindTransform, "missing-element", opts)
	e.Fields = append([]string(nil), fields...)
	return e
}

// BadElement is returned when selected content cannot be converted by a
// rule's format
func BadElement(field string, opts ...Option) *Error {
	e := newError(KindTransform, "bad-element", opts)
	e.Fields = []string{field}
	return e
}

// OperationFailed is a transform failure not attributable to one field
func OperationFailed(opts ...Option) *Error {
	return newError(KindTransform, "operation-failed", opts)
}

// InvalidName is returned when a prefix or element name is not an XML name
func InvalidName(element, namespace string, opts ...Option) *Error {
	e := newError(KindArgument, "invalid-name", opts)
	e.Element = element
	e.Namespace = namespace
	return e
}

// InvalidValue is returned for an argument outside its accepted set
func InvalidValue(opts ...Option) *Error {
	return newError(KindArgument, "invalid-value", opts)
}

// UnknownRuleSet is returned when a rule set name is not registered
func UnknownRuleSet(name string, opts ...Option) *Error {
	e := newError(KindConfig, "unknown-rule-set", opts)
	e.Source = name
	return e
}

// InvalidRuleSet is returned when a rule set fails to load or compile
func InvalidRuleSet(name string, opts ...Option) *Error {
	e := newError(KindConfig, "invalid-rule-set", opts)
	e.Source = name
	return e
}

// InvalidConfig is returned when a configuration file is invalid
func InvalidConfig(source string, opts ...Option) *Error {
	e := newError(KindConfig, "invalid-config", opts)
	e.Source = source
	return e
}
