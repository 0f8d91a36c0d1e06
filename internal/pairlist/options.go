package pairlist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Options is a filter declaration: a method name plus filter-specific fields.
// Unknown keys are ignored, missing keys keep the filter default.
type Options map[string]interface{}

// Method returns the filter method name of the declaration.
func (o Options) Method() string {
	if o == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(o["method"]))
}

func (o Options) lookup(key string) (interface{}, bool) {
	if o == nil {
		return nil, false
	}
	val, ok := o[key]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

// optionReader collects coercion errors so Configure can report them together.
type optionReader struct {
	opts Options
	errs []error
}

func newOptionReader(opts Options) *optionReader {
	return &optionReader{opts: opts}
}

func (r *optionReader) fail(key string, val interface{}, err error) {
	r.errs = append(r.errs, fmt.Errorf("option %s=%v: %w", key, val, err))
}

func (r *optionReader) Int(key string, dst *int) {
	val, ok := r.opts.lookup(key)
	if !ok {
		return
	}
	n, err := cast.ToIntE(val)
	if err != nil {
		r.fail(key, val, err)
		return
	}
	*dst = n
}

func (r *optionReader) Uint64(key string, dst *uint64) {
	val, ok := r.opts.lookup(key)
	if !ok {
		return
	}
	n, err := cast.ToUint64E(val)
	if err != nil {
		r.fail(key, val, err)
		return
	}
	*dst = n
}

func (r *optionReader) Float(key string, dst *float64) {
	val, ok := r.opts.lookup(key)
	if !ok {
		return
	}
	f, err := cast.ToFloat64E(val)
	if err != nil {
		r.fail(key, val, err)
		return
	}
	*dst = f
}

func (r *optionReader) String(key string, dst *string) {
	val, ok := r.opts.lookup(key)
	if !ok {
		return
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		r.fail(key, val, err)
		return
	}
	*dst = strings.TrimSpace(s)
}

func (r *optionReader) Strings(key string, dst *[]string) {
	val, ok := r.opts.lookup(key)
	if !ok {
		return
	}
	var items []string
	if text, isText := val.(string); isText {
		items = strings.Split(text, ",")
	} else {
		var err error
		items, err = cast.ToStringSliceE(val)
		if err != nil {
			r.fail(key, val, err)
			return
		}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	*dst = out
}

func (r *optionReader) Err() error {
	return errors.Join(r.errs...)
}
