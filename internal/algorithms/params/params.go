// Package params reads and checks the loosely typed parameter maps that the
// algorithm registry hands to each filter.
package params

import (
	"fmt"
	"math"

	"edge-detector/internal/convolution"
)

// Common parameter keys shared by every filter.
const (
	Border  = "border"
	Workers = "workers"
)

// ValidationError describes a rejected parameter. Err, when set, is the
// sentinel the rejection maps to so callers can match it with errors.Is.
type ValidationError struct {
	Context string
	Field   string
	Value   interface{}
	Reason  string
	Err     error
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s value %v - %s", ve.Context, ve.Field, ve.Value, ve.Reason)
}

func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// Reader reads typed values out of a parameter map. The first mistyped
// value is kept as a ValidationError and reported by Err; later reads still
// return their defaults.
type Reader struct {
	context string
	values  map[string]interface{}
	err     error
}

func NewReader(context string, values map[string]interface{}) *Reader {
	return &Reader{context: context, values: values}
}

// Has reports whether key is present with a non-nil value.
func (r *Reader) Has(key string) bool {
	return r.values[key] != nil
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(key, reason string) {
	if r.err == nil {
		r.err = &ValidationError{
			Context: r.context,
			Field:   key,
			Value:   r.values[key],
			Reason:  reason,
		}
	}
}

func (r *Reader) Bool(key string, def bool) bool {
	switch value := r.values[key].(type) {
	case nil:
		return def
	case bool:
		return value
	default:
		r.fail(key, "must be true or false")
		return def
	}
}

// Int accepts any integer or integral float, since YAML and TOML decoders
// disagree on numeric types.
func (r *Reader) Int(key string, def int) int {
	switch value := r.values[key].(type) {
	case nil:
		return def
	case int:
		return value
	case int32:
		return int(value)
	case int64:
		return int(value)
	case uint8:
		return int(value)
	case float64:
		if value == math.Trunc(value) && !math.IsInf(value, 0) {
			return int(value)
		}
	}
	r.fail(key, "must be an integer")
	return def
}

func (r *Reader) Float(key string, def float64) float64 {
	switch value := r.values[key].(type) {
	case nil:
		return def
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	default:
		r.fail(key, "must be a number")
		return def
	}
}

func (r *Reader) String(key string, def string) string {
	switch value := r.values[key].(type) {
	case nil:
		return def
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	default:
		r.fail(key, "must be a string")
		return def
	}
}

// ConvolutionOptions extracts the border policy and worker count.
func ConvolutionOptions(params map[string]interface{}, context string) (convolution.Options, error) {
	reader := NewReader(context, params)
	opts := convolution.Options{Workers: reader.Int(Workers, 0)}
	if err := reader.Err(); err != nil {
		return opts, err
	}

	switch value := params[Border].(type) {
	case nil:
		opts.Border = convolution.BorderReflect101
	case convolution.Border:
		opts.Border = value
	case string:
		border, err := convolution.ParseBorder(value)
		if err != nil {
			return opts, &ValidationError{
				Context: context,
				Field:   Border,
				Value:   value,
				Reason:  "must be reflect101, replicate or skip",
			}
		}
		opts.Border = border
	default:
		return opts, &ValidationError{
			Context: context,
			Field:   Border,
			Value:   value,
			Reason:  "must be a string",
		}
	}

	if opts.Workers < 0 {
		return opts, &ValidationError{
			Context: context,
			Field:   Workers,
			Value:   opts.Workers,
			Reason:  "must be zero (one per CPU) or positive",
		}
	}

	return opts, nil
}

// Copy returns a shallow copy of params.
func Copy(params map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(params))
	for k, v := range params {
		result[k] = v
	}
	return result
}

// Merge overlays overrides on defaults without touching either map.
func Merge(defaults, overrides map[string]interface{}) map[string]interface{} {
	result := Copy(defaults)
	for k, v := range overrides {
		result[k] = v
	}
	return result
}
