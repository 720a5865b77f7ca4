package engine

import (
	"fmt"
)

// Effect is one geometric video effect. Effects are applied in slice order.
type Effect interface {
	Name() string
}

// Crop is expressed in the engine's normalized device coordinates: x and y
// run from -1 to 1 and y grows upwards, so Top > Bottom.
type Crop struct {
	Left   float64
	Right  float64
	Bottom float64
	Top    float64
}

func (Crop) Name() string { return "crop" }

func (c Crop) String() string {
	return fmt.Sprintf("crop(l=%g r=%g b=%g t=%g)", c.Left, c.Right, c.Bottom, c.Top)
}

// Layout controls how a Presentation fits the frame into its box.
type Layout int

const (
	LayoutScaleToFit Layout = iota
	LayoutScaleToFitWithCrop
	LayoutStretchToFit
)

// Presentation resizes the frame. Zero Width, Height or AspectRatio mean the
// dimension is derived from the input.
type Presentation struct {
	Width       int
	Height      int
	AspectRatio float64
	Layout      Layout
}

// PresentationForWidthAndHeight returns a presentation with a fixed output size.
func PresentationForWidthAndHeight(width, height int, layout Layout) Presentation {
	return Presentation{Width: width, Height: height, Layout: layout}
}

// PresentationForHeight returns a presentation that keeps the aspect ratio.
func PresentationForHeight(height int) Presentation {
	return Presentation{Height: height}
}

// PresentationForAspectRatio returns a presentation that only changes the
// aspect ratio.
func PresentationForAspectRatio(ratio float64, layout Layout) Presentation {
	return Presentation{AspectRatio: ratio, Layout: layout}
}

func (Presentation) Name() string { return "resize" }

// ScaleAndRotate rotates the frame counter-clockwise by RotationDegrees.
type ScaleAndRotate struct {
	RotationDegrees float64
}

func (ScaleAndRotate) Name() string { return "rotate" }

// BitrateMode is the encoder rate control mode.
type BitrateMode int

const (
	BitrateModeVBR BitrateMode = iota
	BitrateModeCBR
	BitrateModeCQ
)

// PerformanceHint asks the encoder for an operating rate at a priority.
type PerformanceHint struct {
	OperatingRate int
	Priority      int
}

// EncoderSettings overrides video encoder defaults. Zero or nil fields keep
// the engine default.
type EncoderSettings struct {
	Bitrate                 int
	BitrateMode             *BitrateMode
	KeyframeIntervalSeconds *float64
	Performance             *PerformanceHint
}
