// Package config holds the immutable configuration value shared by the
// feature builder and the similarity index.
//
// A Config is passed explicitly at construction time; there is no
// process-wide mutable state, so concurrent engines with different
// configurations are independent.
//
// Configuration files are YAML:
//
//	stroke_slots: 8
//	weights:
//	  geometric: 0.6
//	  stroke_count: 0.15
//	  radical: 0.25
//	tie_epsilon: 1e-6
//	default_k: 8
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultStrokeSlots is the default stroke-slot cap N.
	DefaultStrokeSlots = 8
	// DefaultTieEpsilon is the default score tolerance treated as a tie.
	DefaultTieEpsilon = 1e-6
	// DefaultK is the default number of neighbors returned by a query.
	DefaultK = 8
	// MaxStrokeSlots bounds the stroke-slot cap. No kanji has more strokes.
	MaxStrokeSlots = 84
)

// Weights are the relative weights of the three distance terms.
// They must be non-negative and not all zero; Normalize scales them to sum 1.
type Weights struct {
	Geometric   float64 `yaml:"geometric" json:"geometric" validate:"gte=0"`
	StrokeCount float64 `yaml:"stroke_count" json:"stroke_count" validate:"gte=0"`
	Radical     float64 `yaml:"radical" json:"radical" validate:"gte=0"`
}

// DefaultWeights returns the default weights.
func DefaultWeights() Weights {
	return Weights{Geometric: 0.6, StrokeCount: 0.15, Radical: 0.25}
}

// Sum returns the sum of the weights.
func (w Weights) Sum() float64 {
	return w.Geometric + w.StrokeCount + w.Radical
}

// Validate checks that every weight is finite and non-negative, that at
// least one is positive and that their sum is finite.
func (w Weights) Validate() error {
	if err := validate.Struct(w); err != nil {
		return translate(err, "weights.")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"weights.geometric", w.Geometric},
		{"weights.stroke_count", w.StrokeCount},
		{"weights.radical", w.Radical},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &Error{Option: f.name, Value: f.v, Reason: "must be finite"}
		}
	}
	if math.IsInf(w.Sum(), 0) {
		return &Error{Option: "weights", Value: w.Sum(), Reason: "sum of weights overflows"}
	}
	if w.Sum() <= 0 {
		return &Error{Option: "weights", Value: w.Sum(), Reason: "all weights are zero"}
	}
	return nil
}

// Normalize validates w and returns a copy scaled to sum to 1.
func (w Weights) Normalize() (Weights, error) {
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	s := w.Sum()
	return Weights{
		Geometric:   w.Geometric / s,
		StrokeCount: w.StrokeCount / s,
		Radical:     w.Radical / s,
	}, nil
}

// Config is the recognized option set of the engine.
type Config struct {
	// StrokeSlots is the stroke-slot cap N of the geometric block.
	StrokeSlots int `yaml:"stroke_slots" json:"stroke_slots" validate:"gte=1,lte=84"`
	// Weights are the distance term weights.
	Weights Weights `yaml:"weights" json:"weights"`
	// TieEpsilon is the score difference below which two candidates are
	// ordered by ascending ID.
	TieEpsilon float64 `yaml:"tie_epsilon" json:"tie_epsilon" validate:"gte=0,lt=1"`
	// DefaultK is used when a query asks for k == 0.
	DefaultK int `yaml:"default_k" json:"default_k" validate:"gte=1"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		StrokeSlots: DefaultStrokeSlots,
		Weights:     DefaultWeights(),
		TieEpsilon:  DefaultTieEpsilon,
		DefaultK:    DefaultK,
	}
}

// Validate checks every option and returns an *Error naming the first
// invalid one.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return translate(err, "")
	}
	return c.Weights.Validate()
}

// Normalized validates c and returns a copy with normalized weights.
func (c Config) Normalized() (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	w, err := c.Weights.Normalize()
	if err != nil {
		return Config{}, err
	}
	c.Weights = w
	return c, nil
}

// Load decodes a YAML configuration from r on top of the defaults and
// validates it. Unknown keys are rejected.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Error is a configuration error naming the invalid option.
type Error struct {
	Option string
	Value  any
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: invalid option %s=%v: %s", e.Option, e.Value, e.Reason)
}

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Is reports whether target is ErrInvalid.
func (e *Error) Is(target error) bool { return target == ErrInvalid }

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func translate(err error, prefix string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	// Namespace is "Config.weights.radical"; drop the root type name.
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return &Error{
		Option: prefix + ns,
		Value:  fe.Value(),
		Reason: reason(fe),
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "lt":
		return "must be < " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
