package editor

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"golang.org/x/text/language"

	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ==================== 测试替身 ====================

type fakeListings struct {
	createCalls int
	updateCalls int
	lastID      string
	lastPayload *Payload
	createdID   string
	err         error
}

func (f *fakeListings) Create(ctx context.Context, p *Payload) (*model.ListingRecord, error) {
	f.createCalls++
	f.lastPayload = p
	if f.err != nil {
		return nil, f.err
	}
	return &model.ListingRecord{ID: f.createdID}, nil
}

func (f *fakeListings) Update(ctx context.Context, id string, p *Payload) (*model.ListingRecord, error) {
	f.updateCalls++
	f.lastID = id
	f.lastPayload = p
	if f.err != nil {
		return nil, f.err
	}
	return &model.ListingRecord{ID: id}, nil
}

type fakePlaces struct {
	places map[string]model.Location
}

func (f *fakePlaces) Resolve(ctx context.Context, placeID string) (*model.Location, error) {
	loc, ok := f.places[placeID]
	if !ok {
		return nil, apperrors.Resolution(placeID, errors.New("unknown place")).WithNotice(i18n.NoticeResolutionFailed)
	}
	return &loc, nil
}

func ptr(v float64) *float64 { return &v }

var fixedNow = func() time.Time { return time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC) }

func newTestForm(listings ListingsAPI) *Form {
	return NewForm(FormDeps{
		App:      i18n.NewAppContext("seller-1", language.English),
		Listings: listings,
		Places: &fakePlaces{places: map[string]model.Location{
			"place123": {Latitude: ptr(45.5), Longitude: ptr(-73.6), City: "Montreal", Country: "Canada"},
		}},
		Now: fixedNow,
	})
}

// ==================== 字段 ====================

func TestForm_Defaults(t *testing.T) {
	f := newTestForm(nil)
	fields := f.Fields()

	if fields.Category != model.CategoryUtility {
		t.Errorf("Category = %q, want Utility", fields.Category)
	}
	if !fields.ListingEnabled {
		t.Error("ListingEnabled 默认应为 true")
	}
	if fields.DailyRate != 0 || fields.DepositRate != 0 {
		t.Error("金额默认应为 0")
	}
	if f.Calendar().Year() != 2024 || f.Calendar().Month() != time.March {
		t.Errorf("calendar = %d-%d, want 2024-3", f.Calendar().Year(), f.Calendar().Month())
	}
}

func TestForm_SetField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
	}{
		{"标题", FieldTitle, "Utility 5x8", false},
		{"合法分类", FieldCategory, model.CategoryBoat, false},
		{"非法分类", FieldCategory, "Spaceship", true},
		{"空分类", FieldCategory, "", true},
		{"日租金", FieldDailyRate, "45.50", false},
		{"日租金清空", FieldDailyRate, "", false},
		{"负押金", FieldDepositRate, "-1", true},
		{"非数字租金", FieldDailyRate, "abc", true},
		{"年份", FieldYear, "2019", false},
		{"年份清空", FieldYear, "", false},
		{"非数字长度", FieldLength, "long", true},
		{"球头尺寸自由文本", FieldBallSize, "2 5/16\"", false},
		{"挂钩类型", FieldHitchType, "Gooseneck", false},
		{"非法挂钩类型", FieldHitchType, "Magnet", true},
		{"灯光插头", FieldLightPlug, "7-pin", false},
		{"上架开关", FieldListingEnabled, "false", false},
		{"非法开关", FieldListingEnabled, "maybe", true},
		{"未知字段", "color", "red", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestForm(nil)
			before := f.Fields()

			err := f.SetField(tt.field, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetField(%s, %q) error = %v, wantErr %v", tt.field, tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperrors.Is(err, apperrors.CodeValidation) {
					t.Errorf("error code = %v, want validation", err)
				}
				if !reflect.DeepEqual(before, f.Fields()) {
					t.Error("非法输入不应修改字段")
				}
			}
		})
	}
}

func TestForm_SetFieldValues(t *testing.T) {
	f := newTestForm(nil)
	f.SetField(FieldDailyRate, "45.50")
	f.SetField(FieldYear, " 2019 ")

	if f.Fields().DailyRate != 45.5 {
		t.Errorf("DailyRate = %v, want 45.5", f.Fields().DailyRate)
	}
	if f.Fields().Year != "2019" {
		t.Errorf("Year = %q, want 2019", f.Fields().Year)
	}

	f.SetField(FieldDailyRate, "")
	if f.Fields().DailyRate != 0 {
		t.Errorf("DailyRate after clear = %v, want 0", f.Fields().DailyRate)
	}
}

func TestForm_DescriptionTruncated(t *testing.T) {
	f := newTestForm(nil)
	long := make([]rune, 350)
	for i := range long {
		long[i] = 'é'
	}
	f.SetField(FieldDescription, string(long))

	if n := len([]rune(f.Fields().Description)); n != model.MaxDescriptionChar {
		t.Errorf("description length = %d, want %d", n, model.MaxDescriptionChar)
	}
}

// ==================== 校验 ====================

func fillRequired(f *Form) {
	f.SetField(FieldTitle, "Utility 5x8")
	f.SetField(FieldDescription, "Sturdy trailer")
	f.Images().AddFiles([]model.FileHandle{&model.MemoryFile{Filename: "fileA.jpg"}})
}

func TestForm_ValidateForSubmit(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *Form)
		wantNotice string
	}{
		{
			name: "位置缺失优先报告",
			setup: func(f *Form) {},
			wantNotice: i18n.NoticeLocationRequired,
		},
		{
			name: "仅有纬度",
			setup: func(f *Form) {
				fillRequired(f)
				f.location = model.Location{Latitude: ptr(45.5)}
			},
			wantNotice: i18n.NoticeLocationRequired,
		},
		{
			name: "缺少标题",
			setup: func(f *Form) {
				fillRequired(f)
				f.SetField(FieldTitle, "")
				f.SetLocation(model.Location{Latitude: ptr(1), Longitude: ptr(2)})
			},
			wantNotice: i18n.NoticeFieldsRequired,
		},
		{
			name: "没有图片",
			setup: func(f *Form) {
				fillRequired(f)
				f.Images().Clear()
				f.SetLocation(model.Location{Latitude: ptr(1), Longitude: ptr(2)})
			},
			wantNotice: i18n.NoticeFieldsRequired,
		},
		{
			name: "完整",
			setup: func(f *Form) {
				fillRequired(f)
				f.SetLocation(model.Location{Latitude: ptr(0), Longitude: ptr(0)})
			},
			wantNotice: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestForm(nil)
			tt.setup(f)

			err := f.ValidateForSubmit()
			if tt.wantNotice == "" {
				if err != nil {
					t.Fatalf("ValidateForSubmit() error = %v", err)
				}
				return
			}
			appErr := apperrors.As(err)
			if appErr.Code != apperrors.CodeValidation || appErr.Notice != tt.wantNotice {
				t.Errorf("ValidateForSubmit() = %s / %q, want validation / %q", appErr.Code, appErr.Notice, tt.wantNotice)
			}
		})
	}
}

func TestForm_SubmitBlockedByValidation(t *testing.T) {
	api := &fakeListings{}
	f := newTestForm(api)
	fillRequired(f)

	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatal("Submit() without location should fail")
	}
	if api.createCalls+api.updateCalls != 0 {
		t.Error("校验失败时不应发起网络请求")
	}
}

// ==================== 位置 ====================

func TestForm_SelectPlace(t *testing.T) {
	f := newTestForm(nil)

	loc, err := f.SelectPlace(context.Background(), "place123")
	if err != nil {
		t.Fatalf("SelectPlace() error = %v", err)
	}
	if *loc.Latitude != 45.5 || *loc.Longitude != -73.6 || loc.City != "Montreal" || loc.Country != "Canada" {
		t.Errorf("SelectPlace() = %+v", loc)
	}

	// 解析失败保留原位置
	_, err = f.SelectPlace(context.Background(), "nowhere")
	if !apperrors.Is(err, apperrors.CodeResolution) {
		t.Fatalf("SelectPlace(nowhere) error = %v, want resolution error", err)
	}
	if f.Location().City != "Montreal" {
		t.Errorf("location after failure = %+v, want unchanged", f.Location())
	}
}

// ==================== 端到端 ====================

func TestForm_CreateScenario(t *testing.T) {
	api := &fakeListings{createdID: "new-1"}
	f := newTestForm(api)

	f.SetField(FieldTitle, "Utility 5x8")
	f.SetField(FieldDescription, "Sturdy trailer")
	if _, err := f.SelectPlace(context.Background(), "place123"); err != nil {
		t.Fatalf("SelectPlace() error = %v", err)
	}
	if _, err := f.Images().AddFiles([]model.FileHandle{&model.MemoryFile{Filename: "fileA", MimeType: "image/png"}}); err != nil {
		t.Fatalf("AddFiles() error = %v", err)
	}

	rec, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if api.createCalls != 1 || api.updateCalls != 0 {
		t.Fatalf("create = %d, update = %d, want 1 / 0", api.createCalls, api.updateCalls)
	}
	if rec.ID != "new-1" || f.ListingID() != "new-1" {
		t.Errorf("listing id = %q / %q, want new-1", rec.ID, f.ListingID())
	}

	p := api.lastPayload
	checks := map[string]string{
		"userId":            "seller-1",
		FieldTitle:          "Utility 5x8",
		"latitude":          "45.5",
		"longitude":         "-73.6",
		"city":              "Montreal",
		"country":           "Canada",
		FieldCategory:       model.CategoryUtility,
		FieldDailyRate:      "0",
		FieldClosedDates:    "[]",
		FieldListingEnabled: "true",
	}
	for name, want := range checks {
		if got := p.Get(name); got != want {
			t.Errorf("payload[%s] = %q, want %q", name, got, want)
		}
	}
	if names := p.FileNames(); len(names) != 1 || names[0] != "fileA" {
		t.Errorf("payload files = %v, want [fileA]", names)
	}
	if len(p.Values(FieldExistingImages)) != 0 {
		t.Errorf("existingImages[] = %v, want none", p.Values(FieldExistingImages))
	}
}

func TestForm_UpdateScenario(t *testing.T) {
	api := &fakeListings{}
	f := newTestForm(api)

	f.Hydrate(&model.ListingRecord{
		ID:          "t-9",
		Title:       "Old title",
		Category:    model.CategoryFlatbed,
		Description: "desc",
		Images:      []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
		ClosedDates: json.RawMessage(`"[\"2024-03-05\",\"2024-3-1\"]"`),
		Latitude:    model.FlexFloat{Value: ptr(45.5)},
		Longitude:   model.FlexFloat{Value: ptr(-73.6)},
		City:        "Montreal",
		Country:     "Canada",
		DailyRate:   model.FlexFloat{Value: ptr(60)},
	})

	f.Calendar().ToggleClosed(20)
	f.Images().RemoveExisting("https://cdn/a.jpg")

	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if api.updateCalls != 1 || api.lastID != "t-9" {
		t.Fatalf("update = %d (id %q), want 1 (t-9)", api.updateCalls, api.lastID)
	}

	p := api.lastPayload
	if got := p.Get(FieldClosedDates); got != `["2024-3-1","2024-3-5","2024-3-20"]` {
		t.Errorf("closedDates = %s", got)
	}
	if got := p.Values(FieldExistingImages); !reflect.DeepEqual(got, []string{"https://cdn/b.jpg"}) {
		t.Errorf("existingImages[] = %v", got)
	}
	if p.Get(FieldDailyRate) != "60" {
		t.Errorf("dailyRate = %s, want 60", p.Get(FieldDailyRate))
	}
}

func TestForm_SubmitRemoteErrorKeepsState(t *testing.T) {
	api := &fakeListings{err: apperrors.Remote("Title already used", nil)}
	f := newTestForm(api)
	fillRequired(f)
	f.SetLocation(model.Location{Latitude: ptr(1), Longitude: ptr(2)})

	_, err := f.Submit(context.Background())
	if !apperrors.Is(err, apperrors.CodeRemote) {
		t.Fatalf("Submit() error = %v, want remote error", err)
	}
	if apperrors.As(err).Message != "Title already used" {
		t.Errorf("message = %q, want server message", apperrors.As(err).Message)
	}
	if f.Fields().Title != "Utility 5x8" || f.Images().Count() != 1 {
		t.Error("失败后表单状态应保留")
	}
}

// ==================== 加载与重置 ====================

func TestForm_HydrateEdgeCases(t *testing.T) {
	f := newTestForm(nil)
	f.Hydrate(&model.ListingRecord{
		ID:        "t-1",
		Latitude:  model.FlexFloat{Value: ptr(45.5)},
		Images:    makeURLs(10),
		DailyRate: model.FlexFloat{},
	})

	if f.Location().Resolved() {
		t.Error("仅有纬度时应视为未解析")
	}
	if f.Images().Count() != model.MaxImages {
		t.Errorf("images = %d, want %d", f.Images().Count(), model.MaxImages)
	}
	if !f.Fields().ListingEnabled {
		t.Error("缺失 listingEnabled 时默认 true")
	}
	if f.Fields().DailyRate != 0 {
		t.Errorf("DailyRate = %v, want 0", f.Fields().DailyRate)
	}
}

func TestForm_Reset(t *testing.T) {
	f := newTestForm(nil)
	f.Hydrate(&model.ListingRecord{
		ID:          "t-1",
		Title:       "x",
		Category:    model.CategoryDump,
		Images:      makeURLs(2),
		ClosedDates: json.RawMessage(`["2024-3-1"]`),
		Latitude:    model.FlexFloat{Value: ptr(1)},
		Longitude:   model.FlexFloat{Value: ptr(2)},
	})
	closed := f.Calendar().Closed()
	f.Calendar().NextMonth()

	f.Reset()

	if f.ListingID() != "" || f.Fields() != defaultFields() {
		t.Errorf("Reset() fields = %+v, id = %q", f.Fields(), f.ListingID())
	}
	if f.Location().Resolved() || f.Images().Count() != 0 || closed.Len() != 0 {
		t.Error("Reset() 应清空位置、图片与关闭日期")
	}
	if f.Calendar().Closed() != closed {
		t.Error("日历与表单应继续共享同一集合")
	}
	if f.Calendar().Month() != time.March {
		t.Errorf("calendar month = %d, want current month", f.Calendar().Month())
	}
}

// ==================== 语言 ====================

func TestForm_FollowsLocale(t *testing.T) {
	app := i18n.NewAppContext("seller-1", language.French)
	f := NewForm(FormDeps{App: app, Now: fixedNow})

	if got := f.Snapshot().Calendar.Title; got != "mars 2024" {
		t.Errorf("title = %q, want mars 2024", got)
	}

	app.SetLocale(language.English)
	if got := f.Snapshot().Calendar.Title; got != "March 2024" {
		t.Errorf("title after SetLocale = %q, want March 2024", got)
	}

	f.Close()
	if app.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0 after Close", app.Subscribers())
	}
}
