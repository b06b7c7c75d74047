package promptsort

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ScalarKind discriminates the value held by a Scalar.
type ScalarKind int

const (
	KindString ScalarKind = iota
	KindInt
	KindFloat
	KindBool
)

// Scalar is a tagged generation-option value. Tools write the same option
// as an integer, float, boolean or string depending on where the metadata
// travels, so options keep their parsed type instead of flattening to text.
type Scalar struct {
	Kind  ScalarKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func IntScalar(n int64) Scalar { return Scalar{Kind: KindInt, Int: n} }

func FloatScalar(f float64) Scalar { return Scalar{Kind: KindFloat, Float: f} }

func BoolScalar(b bool) Scalar { return Scalar{Kind: KindBool, Bool: b} }

func StringScalar(s string) Scalar { return Scalar{Kind: KindString, Str: s} }

// String renders the scalar as the originating tool would have written it.
func (s Scalar) String() string {
	switch s.Kind {
	case KindInt:
		return strconv.FormatInt(s.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(s.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.Bool)
	default:
		return s.Str
	}
}

// MarshalJSON writes the underlying value, not the tagged struct.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindInt:
		return json.Marshal(s.Int)
	case KindFloat:
		return json.Marshal(s.Float)
	case KindBool:
		return json.Marshal(s.Bool)
	default:
		return json.Marshal(s.Str)
	}
}

// CoerceScalar converts a free-text option value: values containing a dot
// are tried as float, bare digits as int, anything else stays a string.
func CoerceScalar(raw string) Scalar {
	if strings.Contains(raw, ".") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return FloatScalar(f)
		}
	} else if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntScalar(n)
	}
	return StringScalar(raw)
}

// jsonScalar converts a decoded JSON value into a Scalar. Integral floats
// become ints so {"steps": 28} equals a text-parsed "Steps: 28". Nested
// arrays and objects are kept as compact JSON text.
func jsonScalar(v any) Scalar {
	switch val := v.(type) {
	case string:
		return StringScalar(val)
	case bool:
		return BoolScalar(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<62 {
			return IntScalar(int64(val))
		}
		return FloatScalar(val)
	case nil:
		return StringScalar("")
	default:
		if b, err := json.Marshal(val); err == nil {
			return StringScalar(string(b))
		}
		return StringScalar(fmt.Sprintf("%v", val))
	}
}

// PromptRecord is the normalized result of a successful extraction.
// Options holds whitelisted generation settings under canonical keys;
// every other key/value pair the source carried lands in Extra.
type PromptRecord struct {
	Prompt         string            `json:"prompt"`
	NegativePrompt string            `json:"negative_prompt,omitempty"`
	Options        map[string]Scalar `json:"options,omitempty"`
	Extra          map[string]Scalar `json:"extra,omitempty"`
}

// generationOptions is the canonical whitelist of generation settings kept
// in PromptRecord.Options.
var generationOptions = map[string]bool{
	"steps":              true,
	"width":              true,
	"height":             true,
	"scale":              true,
	"seed":               true,
	"sampler":            true,
	"model":              true,
	"model_hash":         true,
	"clip_skip":          true,
	"schedule_type":      true,
	"denoising_strength": true,
	"size":               true,
	"n_samples":          true,
	"sm":                 true,
	"sm_dyn":             true,
}

// optionSynonyms folds the spellings different tools use for the same
// setting onto one canonical key. Keys here are already lower-cased.
var optionSynonyms = map[string]string{
	"cfg scale":          "scale",
	"cfg_scale":          "scale",
	"clip skip":          "clip_skip",
	"model hash":         "model_hash",
	"schedule type":      "schedule_type",
	"denoising strength": "denoising_strength",
	"sm dyn":             "sm_dyn",
}

// canonicalKey lower-cases, trims and synonym-folds an option key.
func canonicalKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if canon, ok := optionSynonyms[k]; ok {
		return canon
	}
	return k
}

// addOption stores value under the canonical form of key, routing
// whitelisted generation settings into Options and the rest into Extra.
func (r *PromptRecord) addOption(key string, value Scalar) {
	k := canonicalKey(key)
	if k == "" {
		return
	}
	if generationOptions[k] {
		if r.Options == nil {
			r.Options = make(map[string]Scalar)
		}
		r.Options[k] = value
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]Scalar)
	}
	r.Extra[k] = value
}

// addExtra stores value under the canonical form of key in Extra
// regardless of the whitelist. Bare flag segments land here even when
// their name collides with a known option.
func (r *PromptRecord) addExtra(key string, value Scalar) {
	k := canonicalKey(key)
	if k == "" {
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]Scalar)
	}
	r.Extra[k] = value
}
