package report

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Poster is the redesign payload the model appends to its report.
// Every field is optional; the generator is not trusted to follow the schema,
// so fields of the wrong shape are dropped individually.
type Poster struct {
	ThemeColor       string        `json:"theme_color,omitempty"`
	SecondaryColor   string        `json:"secondary_color,omitempty"`
	LayoutStyle      string        `json:"layout_style,omitempty"`
	OptimizedHeader  *Header       `json:"optimized_header,omitempty"`
	EventDetails     *EventDetails `json:"event_details,omitempty"`
	Speakers         []Speaker     `json:"speakers,omitempty"`
	Highlights       []string      `json:"highlights,omitempty"`
	CTAText          string        `json:"cta_text,omitempty"`
	Instructions     string        `json:"instructions,omitempty"`
	IllustrationRect *Rect         `json:"illustration_rect,omitempty"`
}

type Header struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

type EventDetails struct {
	Time    string `json:"time,omitempty"`
	Venue   string `json:"venue,omitempty"`
	Website string `json:"website,omitempty"`
}

type Speaker struct {
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
}

// Rect is the focal area of the original poster, in percent of its size.
// A nil field was absent or not numeric.
type Rect struct {
	Top    *float64 `json:"top,omitempty"`
	Left   *float64 `json:"left,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

func decodePoster(body []byte) (*Poster, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}

	p := &Poster{
		ThemeColor:     stringField(fields["theme_color"]),
		SecondaryColor: stringField(fields["secondary_color"]),
		LayoutStyle:    stringField(fields["layout_style"]),
		CTAText:        stringField(fields["cta_text"]),
		Instructions:   stringField(fields["instructions"]),
		Highlights:     stringList(fields["highlights"]),
		Speakers:       speakerList(fields["speakers"]),
	}

	if obj := objectField(fields["optimized_header"]); obj != nil {
		h := Header{
			Title:    stringField(obj["title"]),
			Subtitle: stringField(obj["subtitle"]),
		}
		if h != (Header{}) {
			p.OptimizedHeader = &h
		}
	}
	if obj := objectField(fields["event_details"]); obj != nil {
		d := EventDetails{
			Time:    stringField(obj["time"]),
			Venue:   stringField(obj["venue"]),
			Website: stringField(obj["website"]),
		}
		if d != (EventDetails{}) {
			p.EventDetails = &d
		}
	}
	if obj := objectField(fields["illustration_rect"]); obj != nil {
		r := Rect{
			Top:    numberField(obj["top"]),
			Left:   numberField(obj["left"]),
			Width:  numberField(obj["width"]),
			Height: numberField(obj["height"]),
		}
		p.IllustrationRect = &r
	}
	return p, nil
}

func objectField(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// numberField accepts JSON numbers and numeric strings ("25", "25%").
func numberField(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	s := stringField(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &n
}

func stringList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := stringField(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func speakerList(raw json.RawMessage) []Speaker {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]Speaker, 0, len(items))
	for _, item := range items {
		obj := objectField(item)
		if obj == nil {
			continue
		}
		sp := Speaker{Name: stringField(obj["name"]), Title: stringField(obj["title"])}
		if sp.Name == "" && sp.Title == "" {
			continue
		}
		out = append(out, sp)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
