// Package filter validates CSS filters, component transfer data and SVG
// filter primitive chains before they are turned into pictures.
package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"

	"github.com/gogpu/flatten/displaylist"
)

// MaxBlurRadius is the largest blur radius kept after sanitizing.
const MaxBlurRadius = 100

func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Filter is a sanitized CSS filter.
type Filter displaylist.FilterOp

// Op returns the filter as a display list op.
func (f Filter) Op() displaylist.FilterOp {
	return displaylist.FilterOp(f)
}

// String formats the filter in CSS-like syntax.
func (f Filter) String() string {
	switch f.Kind {
	case displaylist.FilterDropShadow:
		return fmt.Sprintf("drop-shadow(%g %g %g %v)", f.Shadow.Offset.X, f.Shadow.Offset.Y, f.Shadow.BlurRadius, f.Shadow.Color)
	case displaylist.FilterFlood:
		return fmt.Sprintf("flood(%v)", f.Color)
	case displaylist.FilterColorMatrix:
		return "color-matrix"
	case displaylist.FilterIdentity, displaylist.FilterSrgbToLinear, displaylist.FilterLinearToSrgb,
		displaylist.FilterComponentTransfer:
		return f.Kind.String()
	default:
		return fmt.Sprintf("%v(%g)", f.Kind, f.Amount)
	}
}

// Sanitize validates op. It returns false for ops that cannot be applied
// (negative or NaN amounts). Blur radii are clamped to MaxBlurRadius and
// unit-range amounts to [0, 1].
func Sanitize(op displaylist.FilterOp) (Filter, bool) {
	f := Filter(op)
	switch op.Kind {
	case displaylist.FilterBlur:
		if math32.IsNaN(op.Amount) || op.Amount < 0 {
			return f, false
		}
		f.Amount = clamp(op.Amount, 0, MaxBlurRadius)
	case displaylist.FilterOpacity, displaylist.FilterGrayscale, displaylist.FilterInvert, displaylist.FilterSepia:
		if math32.IsNaN(op.Amount) || op.Amount < 0 {
			return f, false
		}
		f.Amount = clamp(op.Amount, 0, 1)
	case displaylist.FilterBrightness, displaylist.FilterContrast, displaylist.FilterSaturate:
		if math32.IsNaN(op.Amount) || op.Amount < 0 {
			return f, false
		}
	case displaylist.FilterHueRotate:
		if math32.IsNaN(op.Amount) {
			return f, false
		}
	case displaylist.FilterDropShadow:
		b := op.Shadow.BlurRadius
		if math32.IsNaN(b) || b < 0 {
			return f, false
		}
		f.Shadow.BlurRadius = clamp(b, 0, MaxBlurRadius)
	case displaylist.FilterColorMatrix:
		for _, v := range op.Matrix {
			if math32.IsNaN(v) {
				return f, false
			}
		}
	}
	return f, true
}

// Data is sanitized component transfer data. Channel order is R, G, B, A.
type Data struct {
	Funcs  [4]displaylist.TransferFuncType
	Values [4][]float32
}

// SanitizeData normalizes d. A channel whose function lacks the values it
// needs becomes the identity.
func SanitizeData(d displaylist.FilterData) Data {
	funcs := [4]displaylist.TransferFuncType{d.FuncR, d.FuncG, d.FuncB, d.FuncA}
	values := [4][]float32{d.R, d.G, d.B, d.A}
	var out Data
	for i := range funcs {
		out.Funcs[i], out.Values[i] = sanitizeChannel(funcs[i], values[i])
	}
	return out
}

func sanitizeChannel(fn displaylist.TransferFuncType, values []float32) (displaylist.TransferFuncType, []float32) {
	for _, v := range values {
		if math32.IsNaN(v) {
			return displaylist.TransferIdentity, nil
		}
	}
	switch fn {
	case displaylist.TransferTable, displaylist.TransferDiscrete:
		if len(values) == 0 {
			return displaylist.TransferIdentity, nil
		}
		return fn, values
	case displaylist.TransferLinear:
		if len(values) < 2 {
			return displaylist.TransferIdentity, nil
		}
		return fn, values[:2]
	case displaylist.TransferGamma:
		if len(values) < 3 {
			return displaylist.TransferIdentity, nil
		}
		return fn, values[:3]
	default:
		return displaylist.TransferIdentity, nil
	}
}

// IsIdentity reports whether every channel is the identity function.
func (d Data) IsIdentity() bool {
	for _, fn := range d.Funcs {
		if fn != displaylist.TransferIdentity {
			return false
		}
	}
	return true
}

// DataKey is the comparable interning key of Data.
type DataKey struct {
	Funcs  [4]displaylist.TransferFuncType
	Values [4]string
}

// Key packs d into a comparable key. Values are compared bitwise.
func (d Data) Key() DataKey {
	k := DataKey{Funcs: d.Funcs}
	for i, vs := range d.Values {
		var b strings.Builder
		for _, v := range vs {
			bits := math.Float32bits(v)
			b.WriteByte(byte(bits))
			b.WriteByte(byte(bits >> 8))
			b.WriteByte(byte(bits >> 16))
			b.WriteByte(byte(bits >> 24))
		}
		k.Values[i] = b.String()
	}
	return k
}

// SanitizePrimitives returns a copy of prims where every input that does
// not refer to an earlier primitive reads the original graphic instead.
// Blur radii are clamped like CSS blurs.
func SanitizePrimitives(prims []displaylist.FilterPrimitive) []displaylist.FilterPrimitive {
	out := make([]displaylist.FilterPrimitive, len(prims))
	for i, p := range prims {
		for j, in := range p.Inputs {
			switch in.Kind {
			case displaylist.InputPrevious:
				if i == 0 {
					p.Inputs[j] = displaylist.FilterInput{Kind: displaylist.InputOriginal}
				}
			case displaylist.InputOutputOf:
				if in.Index < 0 || in.Index >= i {
					p.Inputs[j] = displaylist.FilterInput{Kind: displaylist.InputOriginal}
				}
			}
		}
		switch p.Kind {
		case displaylist.PrimitiveBlur, displaylist.PrimitiveDropShadow:
			if math32.IsNaN(p.Amount) {
				p.Amount = 0
			}
			p.Amount = clamp(p.Amount, 0, MaxBlurRadius)
		case displaylist.PrimitiveOpacity:
			if math32.IsNaN(p.Amount) {
				p.Amount = 1
			}
			p.Amount = clamp(p.Amount, 0, 1)
		}
		out[i] = p
	}
	return out
}
