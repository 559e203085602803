package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ==================== 外部协作方 ====================

// ListingsAPI Listings REST API
type ListingsAPI interface {
	Create(ctx context.Context, payload *Payload) (*model.ListingRecord, error)
	Update(ctx context.Context, id string, payload *Payload) (*model.ListingRecord, error)
}

// PlaceResolver 地点详情解析
type PlaceResolver interface {
	Resolve(ctx context.Context, placeID string) (*model.Location, error)
}

// ==================== 字段 ====================

// 可通过 SetField 修改的字段名
const (
	FieldTitle          = "title"
	FieldCategory       = "category"
	FieldDescription    = "description"
	FieldDailyRate      = "dailyRate"
	FieldDepositRate    = "depositRate"
	FieldMake           = "make"
	FieldModel          = "model"
	FieldYear           = "year"
	FieldLength         = "length"
	FieldWeightCapacity = "weightCapacity"
	FieldBallSize       = "ballSize"
	FieldHitchType      = "hitchType"
	FieldLightPlug      = "lightPlug"
	FieldDimensions     = "dimensions"
	FieldListingEnabled = "listingEnabled"
)

// Fields 挂车可编辑字段
type Fields struct {
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	DailyRate      float64 `json:"dailyRate"`
	DepositRate    float64 `json:"depositRate"`
	Make           string  `json:"make"`
	Model          string  `json:"model"`
	Year           string  `json:"year"`
	Length         string  `json:"length"`
	WeightCapacity string  `json:"weightCapacity"`
	BallSize       string  `json:"ballSize"`
	HitchType      string  `json:"hitchType"`
	LightPlug      string  `json:"lightPlug"`
	Dimensions     string  `json:"dimensions"`
	ListingEnabled bool    `json:"listingEnabled"`
}

// defaultFields 新建时的默认值
func defaultFields() Fields {
	return Fields{
		Category:       model.CategoryUtility,
		ListingEnabled: true,
	}
}

// submitCheck 提交前校验
type submitCheck struct {
	Latitude    *float64 `validate:"required"`
	Longitude   *float64 `validate:"required"`
	Title       string   `validate:"required"`
	Category    string   `validate:"required"`
	Description string   `validate:"required,max=300"`
	ImageCount  int      `validate:"min=1"`
}

var validate = validator.New()

// ==================== 表单 ====================

// FormDeps 表单依赖
type FormDeps struct {
	App      *i18n.AppContext
	Listings ListingsAPI
	Places   PlaceResolver
	Now      func() time.Time
}

// Form 挂车编辑表单，非并发安全（由会话串行访问）
type Form struct {
	app      *i18n.AppContext
	listings ListingsAPI
	places   PlaceResolver
	now      func() time.Time

	listingID string
	fields    Fields
	location  model.Location
	closed    *model.DateSet
	calendar  *Calendar
	images    *ImageSlots

	locale      atomic.Value // language.Tag，语言订阅回调可能来自其他协程
	unsubscribe func()
}

// NewForm 创建空表单
func NewForm(deps FormDeps) *Form {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.App == nil {
		deps.App = i18n.NewAppContext("", i18n.Supported[0])
	}

	closed := model.NewDateSet()
	f := &Form{
		app:      deps.App,
		listings: deps.Listings,
		places:   deps.Places,
		now:      deps.Now,
		fields:   defaultFields(),
		closed:   closed,
		calendar: NewCalendar(deps.Now(), closed),
		images:   NewImageSlots(model.MaxImages),
	}
	f.locale.Store(deps.App.Locale())
	f.unsubscribe = deps.App.Subscribe(func(tag language.Tag) {
		f.locale.Store(tag)
	})
	return f
}

// Close 关闭表单，取消语言订阅并释放待上传文件
func (f *Form) Close() {
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
	f.images.Clear()
}

func (f *Form) ListingID() string {
	return f.listingID
}

func (f *Form) Fields() Fields {
	return f.fields
}

func (f *Form) Location() model.Location {
	return f.location
}

func (f *Form) Calendar() *Calendar {
	return f.calendar
}

func (f *Form) Images() *ImageSlots {
	return f.images
}

func (f *Form) Locale() language.Tag {
	return f.locale.Load().(language.Tag)
}

// ==================== 加载与重置 ====================

// Hydrate 用已有记录填充全部字段
func (f *Form) Hydrate(rec *model.ListingRecord) {
	f.listingID = rec.ID

	f.fields = Fields{
		Title:          rec.Title,
		Category:       rec.Category,
		Description:    truncateRunes(rec.Description, model.MaxDescriptionChar),
		DailyRate:      rec.DailyRate.Or(0),
		DepositRate:    rec.DepositRate.Or(0),
		Make:           rec.Make,
		Model:          rec.Model,
		Year:           string(rec.Year),
		Length:         string(rec.Length),
		WeightCapacity: string(rec.WeightCapacity),
		BallSize:       string(rec.BallSize),
		HitchType:      rec.HitchType,
		LightPlug:      rec.LightPlug,
		Dimensions:     rec.Dimensions,
		ListingEnabled: true,
	}
	if rec.ListingEnabled.Value != nil {
		f.fields.ListingEnabled = *rec.ListingEnabled.Value
	}

	f.location = model.Location{City: rec.City, Country: rec.Country}
	if rec.Latitude.Value != nil && rec.Longitude.Value != nil {
		lat, lng := *rec.Latitude.Value, *rec.Longitude.Value
		f.location.Latitude = &lat
		f.location.Longitude = &lng
	} else if rec.Latitude.Value != nil || rec.Longitude.Value != nil {
		log.Printf("[Editor] 挂车 %s 仅有单个坐标，视为未解析", rec.ID)
	}

	if len(rec.Images) > model.MaxImages {
		log.Printf("[Editor] 挂车 %s 图片数 %d 超过上限，截断为 %d", rec.ID, len(rec.Images), model.MaxImages)
	}
	f.images.SetExisting(rec.Images)

	f.closed.Replace(model.ParseDayKeys(model.NormalizeClosedDates(rec.ClosedDates)))
}

// Reset 恢复为新建状态
func (f *Form) Reset() {
	f.listingID = ""
	f.fields = defaultFields()
	f.location = model.Location{}
	f.closed.Replace(nil)
	f.images.Clear()

	now := f.now()
	f.calendar.ShowMonth(now.Year(), now.Month())
}

// ==================== 字段修改 ====================

// SetField 按字段名修改，非法输入返回 ValidationError 且字段保持原值
func (f *Form) SetField(name, value string) error {
	switch name {
	case FieldTitle:
		f.fields.Title = value
	case FieldDescription:
		f.fields.Description = truncateRunes(value, model.MaxDescriptionChar)
	case FieldMake:
		f.fields.Make = value
	case FieldModel:
		f.fields.Model = value
	case FieldBallSize:
		f.fields.BallSize = value
	case FieldDimensions:
		f.fields.Dimensions = value

	case FieldCategory:
		if value == "" || !model.Contains(model.Categories, value) {
			return invalidField(name, value)
		}
		f.fields.Category = value
	case FieldHitchType:
		if !model.Contains(model.HitchTypes, value) {
			return invalidField(name, value)
		}
		f.fields.HitchType = value
	case FieldLightPlug:
		if !model.Contains(model.LightPlugs, value) {
			return invalidField(name, value)
		}
		f.fields.LightPlug = value

	case FieldDailyRate, FieldDepositRate:
		rate, ok := parseRate(value)
		if !ok {
			return invalidField(name, value)
		}
		if name == FieldDailyRate {
			f.fields.DailyRate = rate
		} else {
			f.fields.DepositRate = rate
		}

	case FieldYear, FieldLength, FieldWeightCapacity:
		v := strings.TrimSpace(value)
		if v != "" {
			if _, ok := parseNumber(v); !ok {
				return invalidField(name, value)
			}
		}
		switch name {
		case FieldYear:
			f.fields.Year = v
		case FieldLength:
			f.fields.Length = v
		default:
			f.fields.WeightCapacity = v
		}

	case FieldListingEnabled:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return invalidField(name, value)
		}
		f.fields.ListingEnabled = b

	default:
		return apperrors.Validation(fmt.Sprintf("unknown field %q", name)).
			WithNotice(i18n.NoticeInvalidValue, name)
	}
	return nil
}

// SetLocation 直接设置位置（仅接受完整坐标）
func (f *Form) SetLocation(loc model.Location) error {
	if !loc.Resolved() {
		return apperrors.Validation("latitude and longitude must both be set").
			WithNotice(i18n.NoticeLocationRequired)
	}
	f.location = loc
	return nil
}

// SelectPlace 解析候选地点并写入位置；失败时保留原位置
func (f *Form) SelectPlace(ctx context.Context, placeID string) (model.Location, error) {
	if f.places == nil {
		return f.location, apperrors.Resolution(placeID, fmt.Errorf("no place resolver configured")).
			WithNotice(i18n.NoticeResolutionFailed)
	}
	loc, err := f.places.Resolve(ctx, placeID)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeResolution) {
			return f.location, err
		}
		return f.location, apperrors.Resolution(placeID, err).WithNotice(i18n.NoticeResolutionFailed)
	}
	if err := f.SetLocation(*loc); err != nil {
		return f.location, apperrors.Resolution(placeID, err).WithNotice(i18n.NoticeResolutionFailed)
	}
	return f.location, nil
}

// ==================== 校验与提交 ====================

// ValidateForSubmit 提交前校验：先检查位置，再检查必填字段与图片
func (f *Form) ValidateForSubmit() error {
	err := validate.Struct(submitCheck{
		Latitude:    f.location.Latitude,
		Longitude:   f.location.Longitude,
		Title:       f.fields.Title,
		Category:    f.fields.Category,
		Description: f.fields.Description,
		ImageCount:  f.images.Count(),
	})
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validation(err.Error()).WithNotice(i18n.NoticeFieldsRequired)
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Field() == "Latitude" || fe.Field() == "Longitude" {
			return apperrors.Validation("location is not resolved").
				WithNotice(i18n.NoticeLocationRequired)
		}
		missing = append(missing, fe.Field())
	}
	return apperrors.Validation("missing required fields: " + strings.Join(missing, ", ")).
		WithNotice(i18n.NoticeFieldsRequired)
}

// ToSubmissionPayload 生成 multipart 提交内容（无副作用）
func (f *Form) ToSubmissionPayload() *Payload {
	p := &Payload{}
	p.add("userId", f.app.UserID())
	p.add(FieldTitle, f.fields.Title)
	p.add(FieldCategory, f.fields.Category)
	p.add(FieldDescription, f.fields.Description)
	p.add("latitude", formatCoord(f.location.Latitude))
	p.add("longitude", formatCoord(f.location.Longitude))
	p.add("city", f.location.City)
	p.add("country", f.location.Country)
	p.add(FieldDailyRate, formatFloat(f.fields.DailyRate))
	p.add(FieldDepositRate, formatFloat(f.fields.DepositRate))

	closed, _ := json.Marshal(f.closed.Strings())
	p.add(FieldClosedDates, string(closed))

	p.add(FieldHitchType, f.fields.HitchType)
	p.add(FieldLightPlug, f.fields.LightPlug)
	p.add(FieldWeightCapacity, f.fields.WeightCapacity)
	p.add(FieldMake, f.fields.Make)
	p.add(FieldModel, f.fields.Model)
	p.add(FieldYear, f.fields.Year)
	p.add(FieldLength, f.fields.Length)
	p.add(FieldBallSize, f.fields.BallSize)
	p.add(FieldDimensions, f.fields.Dimensions)
	p.add(FieldListingEnabled, strconv.FormatBool(f.fields.ListingEnabled))

	for _, u := range f.images.existing {
		p.add(FieldExistingImages, u)
	}
	for _, file := range f.images.staged {
		p.Files = append(p.Files, FilePart{Name: FieldImages, File: file})
	}
	return p
}

// Submit 校验后新建或更新挂车；唯一发生网络请求的表单操作
func (f *Form) Submit(ctx context.Context) (*model.ListingRecord, error) {
	if err := f.ValidateForSubmit(); err != nil {
		return nil, err
	}
	if f.listings == nil {
		return nil, apperrors.Remote("no listings client configured", nil).
			WithNotice(i18n.NoticeSomethingWrong)
	}

	payload := f.ToSubmissionPayload()

	var (
		rec *model.ListingRecord
		err error
	)
	if f.listingID == "" {
		rec, err = f.listings.Create(ctx, payload)
	} else {
		rec, err = f.listings.Update(ctx, f.listingID, payload)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.CodeRemote) {
			return nil, err
		}
		return nil, apperrors.Remote(i18n.NoticeSomethingWrong, err).WithNotice(i18n.NoticeSomethingWrong)
	}

	if rec != nil && rec.ID != "" && f.listingID == "" {
		f.listingID = rec.ID
	}
	return rec, nil
}

// ==================== 辅助函数 ====================

func invalidField(name, value string) error {
	return apperrors.Validation(fmt.Sprintf("invalid value %q for %s", value, name)).
		WithNotice(i18n.NoticeInvalidValue, name)
}

// parseNumber 仅接受有限数字
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseRate 非负金额，清空输入视为 0
func parseRate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, ok := parseNumber(s)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
