package edit

import (
	"fmt"
	"math"
	"strings"
)

// Rect is a frame-relative rectangle where (0,0) is the top-left corner and
// (1,1) is the bottom-right corner of the input frame.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// CropOptions is a validated, immutable crop rectangle.
type CropOptions struct {
	rect Rect
}

// NewCropOptions validates r and returns the crop it describes.
func NewCropOptions(r Rect) (*CropOptions, error) {
	if err := validateRect(r); err != nil {
		return nil, err
	}
	return &CropOptions{rect: r}, nil
}

// Rect returns the normalized crop rectangle.
func (c *CropOptions) Rect() Rect {
	return c.rect
}

func validateRect(r Rect) error {
	for _, v := range []float64{r.Left, r.Top, r.Right, r.Bottom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Field: "crop", Reason: "rectangle bounds must be finite"}
		}
	}
	if r.Left >= r.Right {
		return &ValidationError{Field: "crop", Reason: "rectangle must have positive width"}
	}
	if r.Top >= r.Bottom {
		return &ValidationError{Field: "crop", Reason: "rectangle must have positive height"}
	}
	if !inUnit(r.Left) || !inUnit(r.Right) {
		return &ValidationError{Field: "crop", Reason: "horizontal bounds must be within [0, 1]"}
	}
	if !inUnit(r.Top) || !inUnit(r.Bottom) {
		return &ValidationError{Field: "crop", Reason: "vertical bounds must be within [0, 1]"}
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// LayoutMode controls how a resized frame is fitted into the requested box.
type LayoutMode int

const (
	// LayoutScaleToFit scales the frame to fit inside the box, letterboxing as needed.
	LayoutScaleToFit LayoutMode = iota
	// LayoutScaleToFitWithCrop scales the frame to cover the box and crops the overflow.
	LayoutScaleToFitWithCrop
	// LayoutStretchToFit stretches the frame to the box, ignoring aspect ratio.
	LayoutStretchToFit
)

var layoutNames = map[LayoutMode]string{
	LayoutScaleToFit:         "scale-to-fit",
	LayoutScaleToFitWithCrop: "scale-to-fit-with-crop",
	LayoutStretchToFit:       "stretch-to-fit",
}

// Valid reports whether l is one of the known layout modes.
func (l LayoutMode) Valid() bool {
	_, ok := layoutNames[l]
	return ok
}

func (l LayoutMode) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(l))
}

// ParseLayoutMode parses the name of a layout mode. An empty string selects
// LayoutScaleToFit.
func ParseLayoutMode(s string) (LayoutMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LayoutScaleToFit, nil
	}
	for mode, name := range layoutNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, &ValidationError{Field: "layout", Reason: fmt.Sprintf("unsupported presentation layout %q", s)}
}

// ResizeOptions is a closed set of resize instructions. The only
// implementations are FixedResize, HeightResize and AspectRatioResize.
type ResizeOptions interface {
	validate() error
	fmt.Stringer
}

// FixedResize resizes to an exact width and height.
type FixedResize struct {
	width  int
	height int
	layout LayoutMode
}

// NewFixedResize returns a fixed-size resize.
func NewFixedResize(width, height int, layout LayoutMode) (FixedResize, error) {
	r := FixedResize{width: width, height: height, layout: layout}
	if err := r.validate(); err != nil {
		return FixedResize{}, err
	}
	return r, nil
}

func (r FixedResize) validate() error {
	if r.width <= 0 {
		return &ValidationError{Field: "resize.width", Reason: "width must be positive"}
	}
	if r.height <= 0 {
		return &ValidationError{Field: "resize.height", Reason: "height must be positive"}
	}
	if !r.layout.Valid() {
		return &ValidationError{Field: "resize.layout", Reason: fmt.Sprintf("unsupported presentation layout: %d", int(r.layout))}
	}
	return nil
}

func (r FixedResize) Width() int         { return r.width }
func (r FixedResize) Height() int        { return r.height }
func (r FixedResize) Layout() LayoutMode { return r.layout }

func (r FixedResize) String() string {
	return fmt.Sprintf("fixed(%dx%d, %s)", r.width, r.height, r.layout)
}

// HeightResize resizes to a height, keeping the aspect ratio.
type HeightResize struct {
	height int
}

// NewHeightResize returns a height-only resize.
func NewHeightResize(height int) (HeightResize, error) {
	r := HeightResize{height: height}
	if err := r.validate(); err != nil {
		return HeightResize{}, err
	}
	return r, nil
}

func (r HeightResize) validate() error {
	if r.height <= 0 {
		return &ValidationError{Field: "resize.height", Reason: "height must be positive"}
	}
	return nil
}

func (r HeightResize) Height() int { return r.height }

func (r HeightResize) String() string {
	return fmt.Sprintf("height(%d)", r.height)
}

// AspectRatioResize changes the frame aspect ratio (width / height).
type AspectRatioResize struct {
	ratio  float64
	layout LayoutMode
}

// NewAspectRatioResize returns an aspect-ratio resize.
func NewAspectRatioResize(ratio float64, layout LayoutMode) (AspectRatioResize, error) {
	r := AspectRatioResize{ratio: ratio, layout: layout}
	if err := r.validate(); err != nil {
		return AspectRatioResize{}, err
	}
	return r, nil
}

func (r AspectRatioResize) validate() error {
	if math.IsNaN(r.ratio) || math.IsInf(r.ratio, 0) || r.ratio <= 0 {
		return &ValidationError{Field: "resize.aspectRatio", Reason: "aspect ratio must be greater than zero"}
	}
	if !r.layout.Valid() {
		return &ValidationError{Field: "resize.layout", Reason: fmt.Sprintf("unsupported presentation layout: %d", int(r.layout))}
	}
	return nil
}

func (r AspectRatioResize) Ratio() float64     { return r.ratio }
func (r AspectRatioResize) Layout() LayoutMode { return r.layout }

func (r AspectRatioResize) String() string {
	return fmt.Sprintf("aspect(%.4f, %s)", r.ratio, r.layout)
}

// Request describes one single-pass edit of one input.
//
// Removing both audio and video is accepted here; whether such an edit is
// meaningful is left to the engine.
type Request struct {
	InputPath         string
	OutputPath        string
	Crop              *CropOptions
	Resize            ResizeOptions
	RotationDegrees   *float64
	Transcode         TranscodeOptions
	RemoveAudio       bool
	RemoveVideo       bool
	FlattenSlowMotion bool
}

// Validate checks the parts of the request that constructors cannot, such as
// missing locations or zero-value resize options.
func (r Request) Validate() error {
	if strings.TrimSpace(r.InputPath) == "" {
		return &ValidationError{Field: "input", Reason: "input location is required"}
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		return &ValidationError{Field: "output", Reason: "output location is required"}
	}
	if r.Crop != nil {
		if err := validateRect(r.Crop.rect); err != nil {
			return err
		}
	}
	if r.Resize != nil {
		if err := r.Resize.validate(); err != nil {
			return err
		}
	}
	if r.RotationDegrees != nil {
		d := *r.RotationDegrees
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return &ValidationError{Field: "rotation", Reason: "rotation must be finite"}
		}
	}
	return r.Transcode.validate()
}

// Ptr returns a pointer to v. It keeps optional fields readable at call sites.
func Ptr[T any](v T) *T {
	return &v
}
