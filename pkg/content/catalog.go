// Package content loads the posting catalog and picks what to publish each day.
package content

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

var (
	// ErrInvalidCatalog is returned when the catalog cannot be parsed.
	ErrInvalidCatalog = errors.New("content: invalid catalog")

	// ErrNoContent is returned when no item fits the requested date and platform.
	ErrNoContent = errors.New("content: no content available")
)

// PlatformAny matches every platform.
const PlatformAny = "all"

// Schedule types.
const (
	ScheduleDaily   = "daily"
	ScheduleWeekday = "weekday"
	ScheduleWeekend = "weekend"
)

// Item is one row of the catalog.
type Item struct {
	ID              string
	Platform        string
	ScheduleType    string
	Template        string
	Title           string
	BackgroundColor string
	TextColor       string
	AudioFile       string
	Tags            []string
}

var columns = []string{
	"id", "platform", "schedule_type", "template", "title",
	"background_color", "text_color", "audio_file", "tags",
}

// LoadCatalog reads a CSV catalog with a header row.
func LoadCatalog(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCatalog(f)
}

// ReadCatalog parses CSV catalog data. Columns are matched by header name;
// audio_file and tags may be omitted.
func ReadCatalog(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrInvalidCatalog, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range columns[:7] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidCatalog, required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []Item
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}

		item := Item{
			ID:              field(rec, "id"),
			Platform:        strings.ToLower(field(rec, "platform")),
			ScheduleType:    strings.ToLower(field(rec, "schedule_type")),
			Template:        field(rec, "template"),
			Title:           field(rec, "title"),
			BackgroundColor: field(rec, "background_color"),
			TextColor:       field(rec, "text_color"),
			AudioFile:       field(rec, "audio_file"),
			Tags:            splitTags(field(rec, "tags")),
		}
		if item.ScheduleType == "" {
			item.ScheduleType = ScheduleDaily
		}
		if err := item.check(); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidCatalog, line, err)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("%w: line %d: duplicate id %q", ErrInvalidCatalog, line, item.ID)
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	return items, nil
}

func (it Item) check() error {
	if it.ID == "" {
		return errors.New("empty id")
	}
	if it.Title == "" {
		return errors.New("empty title")
	}
	switch it.ScheduleType {
	case ScheduleDaily, ScheduleWeekday, ScheduleWeekend:
	default:
		return fmt.Errorf("unknown schedule type %q", it.ScheduleType)
	}
	if _, err := video.ParseTemplateKind(it.Template); err != nil {
		return err
	}
	return nil
}

// splitTags accepts tags separated by ';' or ',' with an optional leading '#'.
func splitTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	var tags []string
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimSpace(f), "#")
		if f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}

// MatchesPlatform reports whether the item may be posted on platform.
func (it Item) MatchesPlatform(platform string) bool {
	return it.Platform == PlatformAny || it.Platform == strings.ToLower(platform)
}

// ScheduledOn reports whether the item may be posted on the date's weekday.
func (it Item) ScheduledOn(date time.Time) bool {
	weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
	switch it.ScheduleType {
	case ScheduleWeekday:
		return !weekend
	case ScheduleWeekend:
		return weekend
	default:
		return true
	}
}

// ToSpec builds the video spec for an item.
func (it Item) ToSpec(durationSeconds, fontSize uint32) (video.Spec, error) {
	kind, err := video.ParseTemplateKind(it.Template)
	if err != nil {
		return video.Spec{}, err
	}
	return video.Spec{
		Title:           it.Title,
		Template:        video.Template{Kind: kind},
		DurationSeconds: durationSeconds,
		BackgroundColor: it.BackgroundColor,
		TextColor:       it.TextColor,
		FontSize:        fontSize,
		AudioTrack:      it.AudioFile,
	}, nil
}

// Metadata returns the upload metadata for an item.
func (it Item) Metadata(privacy ports.PrivacyLevel) ports.VideoMetadata {
	desc := it.Title
	if len(it.Tags) > 0 {
		hashtags := make([]string, len(it.Tags))
		for i, t := range it.Tags {
			hashtags[i] = "#" + strings.ReplaceAll(t, " ", "")
		}
		desc += "\n\n" + strings.Join(hashtags, " ")
	}
	return ports.VideoMetadata{
		Title:       it.Title,
		Description: desc,
		Tags:        it.Tags,
		Privacy:     privacy,
	}
}
