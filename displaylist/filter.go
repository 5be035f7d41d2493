package displaylist

import "github.com/gogpu/flatten"

// FilterKind is the kind of a CSS filter operation.
type FilterKind uint8

const (
	FilterIdentity FilterKind = iota
	FilterBlur
	FilterBrightness
	FilterContrast
	FilterGrayscale
	FilterHueRotate
	FilterInvert
	FilterOpacity
	FilterSaturate
	FilterSepia
	FilterDropShadow
	FilterColorMatrix
	FilterSrgbToLinear
	FilterLinearToSrgb
	FilterComponentTransfer
	FilterFlood
)

var filterNames = [...]string{
	FilterIdentity:          "identity",
	FilterBlur:              "blur",
	FilterBrightness:        "brightness",
	FilterContrast:          "contrast",
	FilterGrayscale:         "grayscale",
	FilterHueRotate:         "hue-rotate",
	FilterInvert:            "invert",
	FilterOpacity:           "opacity",
	FilterSaturate:          "saturate",
	FilterSepia:             "sepia",
	FilterDropShadow:        "drop-shadow",
	FilterColorMatrix:       "color-matrix",
	FilterSrgbToLinear:      "srgb-to-linear",
	FilterLinearToSrgb:      "linear-to-srgb",
	FilterComponentTransfer: "component-transfer",
	FilterFlood:             "flood",
}

// String returns the CSS-like name of the filter kind.
func (k FilterKind) String() string {
	if int(k) < len(filterNames) {
		return filterNames[k]
	}
	return "unknown"
}

// FilterOp is one CSS filter. Which fields are meaningful depends on Kind:
// Amount for the scalar filters and blur (radius), Shadow for drop-shadow,
// Matrix for color-matrix and Color for flood. Component-transfer takes its
// functions from the matching FilterData.
type FilterOp struct {
	Kind   FilterKind
	Amount float32
	Shadow Shadow
	Matrix [20]float32
	Color  flatten.ColorF
}

// Blur returns a blur filter with the given radius.
func Blur(radius float32) FilterOp { return FilterOp{Kind: FilterBlur, Amount: radius} }

// Opacity returns an opacity filter.
func Opacity(alpha float32) FilterOp { return FilterOp{Kind: FilterOpacity, Amount: alpha} }

// Scalar returns a filter of a kind that takes a single amount.
func Scalar(kind FilterKind, amount float32) FilterOp { return FilterOp{Kind: kind, Amount: amount} }

// DropShadow returns a drop-shadow filter.
func DropShadow(s Shadow) FilterOp { return FilterOp{Kind: FilterDropShadow, Shadow: s} }

// ColorMatrix returns a 4x5 color matrix filter.
func ColorMatrix(m [20]float32) FilterOp { return FilterOp{Kind: FilterColorMatrix, Matrix: m} }

// Flood returns a flood filter.
func Flood(c flatten.ColorF) FilterOp { return FilterOp{Kind: FilterFlood, Color: c} }

// ComponentTransfer returns a component-transfer filter. Its functions come
// from the FilterData at the same position among component-transfer ops.
func ComponentTransfer() FilterOp { return FilterOp{Kind: FilterComponentTransfer} }

// TransferFuncType is the type of a component transfer function.
type TransferFuncType uint8

const (
	TransferIdentity TransferFuncType = iota
	TransferTable
	TransferDiscrete
	TransferLinear
	TransferGamma
)

// String returns the SVG name of the function type.
func (t TransferFuncType) String() string {
	switch t {
	case TransferIdentity:
		return "identity"
	case TransferTable:
		return "table"
	case TransferDiscrete:
		return "discrete"
	case TransferLinear:
		return "linear"
	case TransferGamma:
		return "gamma"
	default:
		return "unknown"
	}
}

// FilterData holds per-channel component transfer functions.
type FilterData struct {
	FuncR, FuncG, FuncB, FuncA TransferFuncType
	R, G, B, A                 []float32
}

// FilterPrimitiveKind is the kind of an SVG filter primitive.
type FilterPrimitiveKind uint8

const (
	PrimitiveIdentity FilterPrimitiveKind = iota
	PrimitiveBlend
	PrimitiveFlood
	PrimitiveBlur
	PrimitiveOpacity
	PrimitiveColorMatrix
	PrimitiveDropShadow
	PrimitiveComponentTransfer
	PrimitiveOffset
	PrimitiveComposite
)

// FilterInputKind selects where a primitive reads its input from.
type FilterInputKind uint8

const (
	// InputOriginal is the unfiltered source graphic.
	InputOriginal FilterInputKind = iota
	// InputPrevious is the output of the preceding primitive.
	InputPrevious
	// InputOutputOf is the output of the primitive at Index.
	InputOutputOf
)

// FilterInput is an input reference of an SVG filter primitive.
type FilterInput struct {
	Kind  FilterInputKind
	Index int
}

// ColorSpace is the color space an SVG primitive operates in.
type ColorSpace uint8

const (
	ColorSpaceSrgb ColorSpace = iota
	ColorSpaceLinearRgb
)

// CompositeOperator is the operator of a composite primitive.
type CompositeOperator uint8

const (
	CompositeOver CompositeOperator = iota
	CompositeIn
	CompositeOut
	CompositeAtop
	CompositeXor
	CompositeLighter
	CompositeArithmetic
)

// FilterPrimitive is one step of an SVG filter chain. Inputs[1] is used by
// two-input kinds (blend, composite) only.
type FilterPrimitive struct {
	Kind       FilterPrimitiveKind
	Inputs     [2]FilterInput
	ColorSpace ColorSpace
	Mode       MixBlendMode
	Operator   CompositeOperator
	Amount     float32
	Color      flatten.ColorF
	Offset     flatten.Vector
	Matrix     [20]float32
	// Coefficients of an arithmetic composite.
	K [4]float32
}
