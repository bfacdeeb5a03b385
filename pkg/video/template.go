package video

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TemplateKind identifies a layout variant.
type TemplateKind int

const (
	// SimpleText is a solid background with a single centered title.
	SimpleText TemplateKind = iota
	// TitleCard is a styled title screen.
	TitleCard
	// Slideshow is a sequence of text slides.
	Slideshow
)

// String returns the snake_case name used in config files.
func (k TemplateKind) String() string {
	switch k {
	case SimpleText:
		return "simple_text"
	case TitleCard:
		return "title_card"
	case Slideshow:
		return "slideshow"
	default:
		return "unknown"
	}
}

// ParseTemplateKind parses a snake_case template name.
func ParseTemplateKind(s string) (TemplateKind, error) {
	switch s {
	case "simple_text", "SimpleText":
		return SimpleText, nil
	case "title_card", "TitleCard":
		return TitleCard, nil
	case "slideshow", "Slideshow":
		return Slideshow, nil
	default:
		return 0, fmt.Errorf("%w: unknown template %q", ErrInvalidSpec, s)
	}
}

// Template is the layout variant of a video. Slides is only meaningful for Slideshow.
type Template struct {
	Kind   TemplateKind
	Slides []string
}

// NewSimpleText returns the SimpleText template.
func NewSimpleText() Template {
	return Template{Kind: SimpleText}
}

// NewTitleCard returns the TitleCard template.
func NewTitleCard() Template {
	return Template{Kind: TitleCard}
}

// NewSlideshow returns a Slideshow template with the given slides.
func NewSlideshow(slides ...string) Template {
	return Template{Kind: Slideshow, Slides: slides}
}

// Name returns the variant name as used in error messages.
func (t Template) Name() string {
	switch t.Kind {
	case SimpleText:
		return "SimpleText"
	case TitleCard:
		return "TitleCard"
	case Slideshow:
		return "Slideshow"
	default:
		return "Unknown"
	}
}

func (t Template) String() string {
	return t.Kind.String()
}

type slideshowYAML struct {
	Slides []string `yaml:"slides"`
}

// UnmarshalYAML accepts either a scalar ("simple_text") or a single-key
// mapping ({slideshow: {slides: [...]}}).
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		kind, err := ParseTemplateKind(node.Value)
		if err != nil {
			return err
		}
		*t = Template{Kind: kind}
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("%w: template mapping must have exactly one key", ErrInvalidSpec)
		}
		kind, err := ParseTemplateKind(node.Content[0].Value)
		if err != nil {
			return err
		}
		tmpl := Template{Kind: kind}
		if kind == Slideshow {
			var body slideshowYAML
			if err := node.Content[1].Decode(&body); err != nil {
				return fmt.Errorf("%w: slideshow: %v", ErrInvalidSpec, err)
			}
			tmpl.Slides = body.Slides
		}
		*t = tmpl
		return nil
	default:
		return fmt.Errorf("%w: unsupported template node", ErrInvalidSpec)
	}
}

// MarshalYAML writes the scalar form, or the mapping form for Slideshow.
func (t Template) MarshalYAML() (interface{}, error) {
	if t.Kind == Slideshow {
		return map[string]slideshowYAML{t.Kind.String(): {Slides: t.Slides}}, nil
	}
	return t.Kind.String(), nil
}

// MarshalText implements encoding.TextMarshaler for JSON reports.
func (t Template) MarshalText() ([]byte, error) {
	return []byte(t.Kind.String()), nil
}
