package editor

import (
	"fmt"

	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
)

// CalendarView 日历渲染数据
type CalendarView struct {
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	Title    string    `json:"title"`
	Weekdays [7]string `json:"weekdays"`
	Cells    []DayCell `json:"cells"`
	Closed   []string  `json:"closed_dates"`
}

// ImageView 图片渲染数据
type ImageView struct {
	Source string `json:"source"` // remote / local
	URL    string `json:"url,omitempty"`
	Name   string `json:"name,omitempty"`
	Index  int    `json:"index"` // 在所属池中的位置
}

// FormView 表单快照
type FormView struct {
	ListingID          string         `json:"listing_id,omitempty"`
	Mode               string         `json:"mode"` // create / edit
	Fields             Fields         `json:"fields"`
	Location           model.Location `json:"location"`
	DescriptionCounter string         `json:"description_counter"`
	Calendar           CalendarView   `json:"calendar"`
	Images             []ImageView    `json:"images"`
	RemainingSlots     int            `json:"remaining_slots"`
	MaxImages          int            `json:"max_images"`
	Categories         []string       `json:"categories"`
	HitchTypes         []string       `json:"hitch_types"`
	LightPlugs         []string       `json:"light_plugs"`
	Locale             string         `json:"locale"`
}

// Snapshot 当前表单的只读视图
func (f *Form) Snapshot() FormView {
	tag := f.Locale()

	mode := "create"
	if f.listingID != "" {
		mode = "edit"
	}

	images := make([]ImageView, 0, f.images.Count())
	remoteIdx, localIdx := 0, 0
	for _, ref := range f.images.Refs() {
		if ref.IsRemote() {
			images = append(images, ImageView{Source: "remote", URL: ref.URL, Index: remoteIdx})
			remoteIdx++
			continue
		}
		images = append(images, ImageView{Source: "local", Name: ref.Label(), Index: localIdx})
		localIdx++
	}

	return FormView{
		ListingID:          f.listingID,
		Mode:               mode,
		Fields:             f.fields,
		Location:           f.location,
		DescriptionCounter: fmt.Sprintf("%d/%d", len([]rune(f.fields.Description)), model.MaxDescriptionChar),
		Calendar: CalendarView{
			Year:     f.calendar.Year(),
			Month:    int(f.calendar.Month()),
			Title:    f.calendar.Title(tag),
			Weekdays: i18n.WeekdayNames(tag),
			Cells:    f.calendar.Grid(),
			Closed:   f.closed.Strings(),
		},
		Images:         images,
		RemainingSlots: f.images.Remaining(),
		MaxImages:      f.images.Max(),
		Categories:     model.Categories,
		HitchTypes:     model.HitchTypes,
		LightPlugs:     model.LightPlugs,
		Locale:         tag.String(),
	}
}
