package document

// Options is a partial element. Nil fields are unset. It is used both as
// the input to Setup and as a patch over an existing element; it has no
// identity or version fields so applying it can never touch them.
type Options struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`

	StrokeColor     *string     `json:"strokeColor,omitempty"`
	BackgroundColor *string     `json:"backgroundColor,omitempty"`
	FillStyle       *FillStyle  `json:"fillStyle,omitempty"`
	StrokeWidth     *float64    `json:"strokeWidth,omitempty"`
	StrokeType      *StrokeType `json:"strokeType,omitempty"`
	Roughness       *float64    `json:"roughness,omitempty"`
	Rounding        *Rounding   `json:"rounding,omitempty"`
	Opacity         *float64    `json:"opacity,omitempty"`

	Shift      *float64    `json:"shift,omitempty"`
	Points     []Point     `json:"points,omitempty"`
	StartHead  *Arrowhead  `json:"startHead,omitempty"`
	EndHead    *Arrowhead  `json:"endHead,omitempty"`
	Text       *string     `json:"text,omitempty"`
	TextAlign  *TextAlign  `json:"textAlign,omitempty"`
	FontFamily *FontFamily `json:"fontFamily,omitempty"`
}

// Ptr returns a pointer to v. Handy for building Options literals.
func Ptr[T any](v T) *T { return &v }

// Merge returns a copy of o with every field set in over replacing o's.
func (o Options) Merge(over Options) Options {
	out := o
	pick(&out.X, over.X)
	pick(&out.Y, over.Y)
	pick(&out.Width, over.Width)
	pick(&out.Height, over.Height)
	pick(&out.Rotation, over.Rotation)
	pick(&out.StrokeColor, over.StrokeColor)
	pick(&out.BackgroundColor, over.BackgroundColor)
	pick(&out.FillStyle, over.FillStyle)
	pick(&out.StrokeWidth, over.StrokeWidth)
	pick(&out.StrokeType, over.StrokeType)
	pick(&out.Roughness, over.Roughness)
	pick(&out.Rounding, over.Rounding)
	pick(&out.Opacity, over.Opacity)
	pick(&out.Shift, over.Shift)
	pick(&out.StartHead, over.StartHead)
	pick(&out.EndHead, over.EndHead)
	pick(&out.Text, over.Text)
	pick(&out.TextAlign, over.TextAlign)
	pick(&out.FontFamily, over.FontFamily)
	if over.Points != nil {
		out.Points = append([]Point(nil), over.Points...)
	}
	return out
}

// Apply writes every set field onto el.
func (o Options) Apply(el *Element) {
	set(&el.X, o.X)
	set(&el.Y, o.Y)
	set(&el.Width, o.Width)
	set(&el.Height, o.Height)
	set(&el.Rotation, o.Rotation)
	set(&el.StrokeColor, o.StrokeColor)
	set(&el.BackgroundColor, o.BackgroundColor)
	set(&el.FillStyle, o.FillStyle)
	set(&el.StrokeWidth, o.StrokeWidth)
	set(&el.StrokeType, o.StrokeType)
	set(&el.Roughness, o.Roughness)
	set(&el.Rounding, o.Rounding)
	set(&el.Opacity, o.Opacity)
	set(&el.Shift, o.Shift)
	set(&el.StartHead, o.StartHead)
	set(&el.EndHead, o.EndHead)
	set(&el.Text, o.Text)
	set(&el.TextAlign, o.TextAlign)
	set(&el.FontFamily, o.FontFamily)
	if o.Points != nil {
		el.Points = append([]Point(nil), o.Points...)
	}
}

// Style keeps only the appearance fields of o. Geometry and content
// are dropped.
func (o Options) Style() Options {
	return Options{
		StrokeColor:     o.StrokeColor,
		BackgroundColor: o.BackgroundColor,
		FillStyle:       o.FillStyle,
		StrokeWidth:     o.StrokeWidth,
		StrokeType:      o.StrokeType,
		Roughness:       o.Roughness,
		Rounding:        o.Rounding,
		Opacity:         o.Opacity,
		StartHead:       o.StartHead,
		EndHead:         o.EndHead,
		TextAlign:       o.TextAlign,
		FontFamily:      o.FontFamily,
	}
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
