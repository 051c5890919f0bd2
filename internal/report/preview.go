package report

import "strconv"

// Fallback copy shown when the model leaves a field out.
const (
	DefaultPrimaryColor   = "#FF6A3D"
	DefaultSecondaryColor = "#1e293b"
	DefaultTime           = "详见落地页"
	DefaultVenue          = "线上直播"
	DefaultInstructions   = "立即扫码占位"
	DefaultCTA            = "立即预约报名"
)

// Preview is the redesigned poster with every fallback already applied.
type Preview struct {
	Ready          bool      `json:"ready"`
	PrimaryColor   string    `json:"primaryColor"`
	SecondaryColor string    `json:"secondaryColor"`
	LayoutStyle    string    `json:"layoutStyle,omitempty"`
	Title          string    `json:"title,omitempty"`
	Subtitle       string    `json:"subtitle,omitempty"`
	Highlights     []string  `json:"highlights"`
	Speakers       []Speaker `json:"speakers"`
	Time           string    `json:"time"`
	Venue          string    `json:"venue"`
	Website        string    `json:"website,omitempty"`
	Instructions   string    `json:"instructions"`
	CTAText        string    `json:"ctaText"`
	Focus          *Focus    `json:"focus,omitempty"`
}

// Focus crops the original poster image down to its focal rectangle.
// When Placeholder is set the rectangle is degenerate and no crop is drawn.
type Focus struct {
	ImageURL    string     `json:"imageUrl"`
	Top         float64    `json:"top"`
	Left        float64    `json:"left"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Placeholder bool       `json:"placeholder"`
	Style       *CropStyle `json:"style,omitempty"`
}

// CropStyle positions the full image inside a frame so only the focal area shows.
type CropStyle struct {
	Width  string `json:"width"`
	Height string `json:"height"`
	Left   string `json:"left"`
	Top    string `json:"top"`
}

// BuildPreview renders p for display. A nil poster yields a not-ready preview
// that still carries the default copy.
func BuildPreview(p *Poster, imageURL string) Preview {
	out := Preview{
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		Highlights:     []string{},
		Speakers:       []Speaker{},
		Time:           DefaultTime,
		Venue:          DefaultVenue,
		Instructions:   DefaultInstructions,
		CTAText:        DefaultCTA,
	}
	if p == nil {
		return out
	}

	out.Ready = true
	out.PrimaryColor = orDefault(p.ThemeColor, DefaultPrimaryColor)
	out.SecondaryColor = orDefault(p.SecondaryColor, DefaultSecondaryColor)
	out.LayoutStyle = p.LayoutStyle
	out.Instructions = orDefault(p.Instructions, DefaultInstructions)
	out.CTAText = orDefault(p.CTAText, DefaultCTA)
	if p.OptimizedHeader != nil {
		out.Title = p.OptimizedHeader.Title
		out.Subtitle = p.OptimizedHeader.Subtitle
	}
	if p.EventDetails != nil {
		out.Time = orDefault(p.EventDetails.Time, DefaultTime)
		out.Venue = orDefault(p.EventDetails.Venue, DefaultVenue)
		out.Website = p.EventDetails.Website
	}
	if len(p.Highlights) > 0 {
		out.Highlights = append(out.Highlights, p.Highlights...)
	}
	if len(p.Speakers) > 0 {
		out.Speakers = append(out.Speakers, p.Speakers...)
	}
	if imageURL != "" && p.IllustrationRect != nil {
		out.Focus = buildFocus(*p.IllustrationRect, imageURL)
	}
	return out
}

// buildFocus treats a missing or zero offset as 0 and a missing or zero size as 100.
func buildFocus(r Rect, imageURL string) *Focus {
	f := &Focus{
		ImageURL: imageURL,
		Top:      valueOr(r.Top, 0),
		Left:     valueOr(r.Left, 0),
		Width:    valueOr(r.Width, 100),
		Height:   valueOr(r.Height, 100),
	}
	if f.Width <= 0 || f.Height <= 0 {
		f.Placeholder = true
		return f
	}
	f.Style = &CropStyle{
		Width:  percent(100 / (f.Width / 100)),
		Height: percent(100 / (f.Height / 100)),
		Left:   percent(-(f.Left / f.Width) * 100),
		Top:    percent(-(f.Top / f.Height) * 100),
	}
	return f
}

func valueOr(v *float64, def float64) float64 {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func percent(v float64) string {
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
