package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/user/shortgen/pkg/mocks"
	"github.com/user/shortgen/pkg/ports"
	"github.com/user/shortgen/pkg/video"
)

const testCatalog = `id,platform,schedule_type,template,title,background_color,text_color,audio_file,tags
tip-1,youtube,daily,simple_text,Daily Tip 1,#1a1a1a,#ffffff,,go;programming
tip-2,youtube,daily,simple_text,Daily Tip 2,#000000,#ffffff,assets/beat.mp3,"#go, #shorts"
tip-3,all,daily,simple_text,Daily Tip 3,#102030,#ffffff,,
wknd-1,youtube,weekend,simple_text,Weekend Special,#ff0000,#ffffff,,fun
wkdy-1,tiktok,weekday,title_card,Weekday Card,#00ff00,#000000,,
`

func loadTest(t *testing.T) []Item {
	t.Helper()
	items, err := ReadCatalog(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatalf("ReadCatalog failed: %v", err)
	}
	return items
}

func TestReadCatalog(t *testing.T) {
	items := loadTest(t)
	if len(items) != 5 {
		t.Fatalf("items = %d, want 5", len(items))
	}

	tip2 := items[1]
	if tip2.ID != "tip-2" || tip2.AudioFile != "assets/beat.mp3" {
		t.Errorf("tip-2 = %+v", tip2)
	}
	if !reflect.DeepEqual(tip2.Tags, []string{"go", "shorts"}) {
		t.Errorf("tags = %v", tip2.Tags)
	}
	if items[2].Tags != nil {
		t.Errorf("empty tags = %v", items[2].Tags)
	}
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(testCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	items, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 5 {
		t.Errorf("items = %d", len(items))
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestReadCatalog_Errors(t *testing.T) {
	header := "id,platform,schedule_type,template,title,background_color,text_color\n"
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"missing column", "id,platform,title\nx,youtube,T\n"},
		{"empty id", header + ",youtube,daily,simple_text,T,#000000,#ffffff\n"},
		{"empty title", header + "a,youtube,daily,simple_text,,#000000,#ffffff\n"},
		{"bad schedule", header + "a,youtube,hourly,simple_text,T,#000000,#ffffff\n"},
		{"bad template", header + "a,youtube,daily,karaoke,T,#000000,#ffffff\n"},
		{"duplicate id", header + "a,youtube,daily,simple_text,T,#000000,#ffffff\na,mock,daily,simple_text,U,#000000,#ffffff\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCatalog(strings.NewReader(tt.data)); !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("error = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestItem_ScheduledOn(t *testing.T) {
	wed := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	sat := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		schedule string
		wed, sat bool
	}{
		{ScheduleDaily, true, true},
		{ScheduleWeekday, true, false},
		{ScheduleWeekend, false, true},
	}
	for _, tt := range tests {
		it := Item{ScheduleType: tt.schedule}
		if it.ScheduledOn(wed) != tt.wed || it.ScheduledOn(sat) != tt.sat {
			t.Errorf("%s: wed=%v sat=%v", tt.schedule, it.ScheduledOn(wed), it.ScheduledOn(sat))
		}
	}
}

func TestSelector_Rotation(t *testing.T) {
	sel := NewSelector(loadTest(t), nil)
	ctx := context.Background()

	// 2026-10-14 is a Wednesday, day 287. Youtube candidates: tip-1, tip-2, tip-3.
	day := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	got := make([]string, 3)
	for i := range got {
		it, err := sel.SelectForDate(ctx, day.AddDate(0, 0, i), "youtube")
		if err != nil {
			t.Fatal(err)
		}
		got[i] = it.ID
	}
	// 286%3 = 1, then 287%3 = 2, then 288%3 = 0.
	want := []string{"tip-2", "tip-3", "tip-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rotation = %v, want %v", got, want)
	}

	again, _ := sel.SelectForDate(ctx, day, "youtube")
	if again.ID != "tip-2" {
		t.Errorf("selection is not deterministic: %s", again.ID)
	}
}

func TestSelector_SkipsPosted(t *testing.T) {
	history := &mocks.HistoryStore{}
	ctx := context.Background()
	for _, id := range []string{"tip-1", "tip-2"} {
		history.Record(ctx, ports.PostRecord{ContentID: id, Platform: "youtube"})
	}
	sel := NewSelector(loadTest(t), history)

	day := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	it, err := sel.SelectForDate(ctx, day, "youtube")
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "tip-3" {
		t.Errorf("selected %s, want tip-3", it.ID)
	}

	// Everything posted: the rotation starts over.
	history.Record(ctx, ports.PostRecord{ContentID: "tip-3", Platform: "youtube"})
	it, err = sel.SelectForDate(ctx, day, "youtube")
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "tip-2" {
		t.Errorf("selected %s after full rotation, want tip-2", it.ID)
	}
}

func TestSelector_NoContent(t *testing.T) {
	sel := NewSelector(loadTest(t), nil)
	sat := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	// tiktok has only a weekday item plus the shared tip-3.
	it, err := sel.SelectForDate(context.Background(), sat, "tiktok")
	if err != nil || it.ID != "tip-3" {
		t.Errorf("got %s, %v", it.ID, err)
	}

	// tip-3 is shared across every platform.
	if _, err := sel.SelectForDate(context.Background(), sat, "vimeo"); err != nil {
		t.Errorf("shared item should match any platform: %v", err)
	}

	empty := NewSelector(nil, nil)
	if _, err := empty.SelectForDate(context.Background(), sat, "youtube"); !errors.Is(err, ErrNoContent) {
		t.Errorf("error = %v, want ErrNoContent", err)
	}
}

func TestSelector_HistoryError(t *testing.T) {
	history := &mocks.HistoryStore{
		PostedIDsFunc: func(context.Context, string) (map[string]bool, error) {
			return nil, errors.New("database locked")
		},
	}
	sel := NewSelector(loadTest(t), history)
	if _, err := sel.SelectForDate(context.Background(), time.Now(), "youtube"); err == nil {
		t.Error("expected error")
	}
}

func TestItem_ToSpec(t *testing.T) {
	items := loadTest(t)

	spec, err := items[1].ToSpec(15, 72)
	if err != nil {
		t.Fatal(err)
	}
	want := video.Spec{
		Title:           "Daily Tip 2",
		Template:        video.NewSimpleText(),
		DurationSeconds: 15,
		BackgroundColor: "#000000",
		TextColor:       "#ffffff",
		FontSize:        72,
		AudioTrack:      "assets/beat.mp3",
	}
	if !reflect.DeepEqual(spec, want) {
		t.Errorf("spec = %+v, want %+v", spec, want)
	}

	card, err := items[4].ToSpec(15, 72)
	if err != nil {
		t.Fatal(err)
	}
	if card.Template.Kind != video.TitleCard {
		t.Errorf("template = %v", card.Template)
	}
}

func TestItem_Metadata(t *testing.T) {
	it := Item{Title: "Daily Tip", Tags: []string{"go", "tech news"}}
	meta := it.Metadata(ports.PrivacyPrivate)
	if meta.Title != "Daily Tip" || meta.Privacy != ports.PrivacyPrivate {
		t.Errorf("meta = %+v", meta)
	}
	if meta.Description != "Daily Tip\n\n#go #technews" {
		t.Errorf("description = %q", meta.Description)
	}
}
