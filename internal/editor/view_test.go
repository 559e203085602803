package editor

import (
	"testing"

	"trailer_host_v1_202610/internal/model"
)

func TestForm_Snapshot(t *testing.T) {
	f := newTestForm(nil)

	view := f.Snapshot()
	if view.Mode != "create" || view.ListingID != "" {
		t.Errorf("mode = %s, id = %q, want create", view.Mode, view.ListingID)
	}
	if view.DescriptionCounter != "0/300" {
		t.Errorf("DescriptionCounter = %s, want 0/300", view.DescriptionCounter)
	}

	f.Hydrate(&model.ListingRecord{ID: "t-1", Description: "héllo", Images: makeURLs(2)})
	f.Images().AddFiles(makeFiles(1))
	f.Calendar().ToggleClosed(3)

	view = f.Snapshot()
	if view.Mode != "edit" || view.ListingID != "t-1" {
		t.Errorf("mode = %s, id = %q, want edit / t-1", view.Mode, view.ListingID)
	}
	if view.DescriptionCounter != "5/300" {
		t.Errorf("DescriptionCounter = %s, want 5/300", view.DescriptionCounter)
	}
	if len(view.Images) != 3 || view.Images[2].Source != "local" || view.Images[2].Index != 0 {
		t.Errorf("Images = %+v", view.Images)
	}
	if view.RemainingSlots != 5 {
		t.Errorf("RemainingSlots = %d, want 5", view.RemainingSlots)
	}
	if len(view.Calendar.Closed) != 1 || view.Calendar.Closed[0] != "2024-3-3" {
		t.Errorf("Calendar.Closed = %v", view.Calendar.Closed)
	}
	if view.Locale != "en" {
		t.Errorf("Locale = %s, want en", view.Locale)
	}
}
