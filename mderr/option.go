package mderr

// Option is an Error option function
type Option func(*Error)

func WithMessage(msg string) Option  { return func(e *Error) { e.Message = msg } }
func WithSource(src string) Option   { return func(e *Error) { e.Source = src } }
func WithElement(name string) Option { return func(e *Error) { e.Element = name } }
func WithNamespace(ns string) Option { return func(e *Error) { e.Namespace = ns } }
func WithCause(err error) Option     { return func(e *Error) { e.Err = err } }
