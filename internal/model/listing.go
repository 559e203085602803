package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ==================== 枚举 ====================

const (
	CategoryUtility  = "Utility"
	CategoryEnclosed = "Enclosed"
	CategoryFlatbed  = "Flatbed"
	CategoryDump     = "Dump"
	CategoryBoat     = "Boat"
)

// Categories 分类下拉选项（顺序即展示顺序）
var Categories = []string{CategoryUtility, CategoryEnclosed, CategoryFlatbed, CategoryDump, CategoryBoat}

// HitchTypes 挂钩类型，空串表示未选择
var HitchTypes = []string{"", "Receiver", "Gooseneck", "Fifth Wheel"}

// LightPlugs 灯光插头类型，空串表示未选择
var LightPlugs = []string{"", "4-pin", "5-pin", "6-pin", "7-pin"}

// 挂车状态（由平台审核）
const (
	ListingStatusPending = "pending"
	ListingStatusDecline = "decline"
)

// 卖家列表页签
const (
	TabAll      = "All"
	TabActive   = "Active"
	TabInactive = "Inactive"
)

const (
	MaxImages          = 8
	MaxDescriptionChar = 300
)

// ==================== 位置 ====================

// Location 解析后的位置，经纬度同时存在或同时缺失
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
}

// Resolved 经纬度均已解析
func (l Location) Resolved() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// ==================== 宽松 JSON 类型 ====================

// FlexString 兼容数字与字符串的字段（form-data 后端常把数字存成字符串）
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(string(b))
	return nil
}

// FlexFloat 兼容数字、数字字符串与 null
type FlexFloat struct {
	Value *float64
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.Value = nil
		return nil
	}
	text := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" || text == "null" {
			f.Value = nil
			return nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		f.Value = nil
		return nil
	}
	f.Value = &v
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// Or 取值，缺失时返回默认值
func (f FlexFloat) Or(def float64) float64 {
	if f.Value == nil {
		return def
	}
	return *f.Value
}

// FlexBool 兼容布尔与 "true"/"false" 字符串，缺失视为 nil
type FlexBool struct {
	Value *bool
}

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.Value = nil
		return nil
	}
	text := strings.Trim(string(b), `"`)
	v, err := strconv.ParseBool(text)
	if err != nil {
		f.Value = nil
		return nil
	}
	f.Value = &v
	return nil
}

// ==================== Listings API 记录 ====================

// ListingRecord Listings API 返回的挂车记录
type ListingRecord struct {
	ID             string          `json:"_id"`
	UserID         FlexString      `json:"userId"`
	Status         string          `json:"status"`
	Title          string          `json:"title"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Images         []string        `json:"images"`
	ClosedDates    json.RawMessage `json:"closedDates"`
	Latitude       FlexFloat       `json:"latitude"`
	Longitude      FlexFloat       `json:"longitude"`
	City           string          `json:"city"`
	Country        string          `json:"country"`
	DailyRate      FlexFloat       `json:"dailyRate"`
	DepositRate    FlexFloat       `json:"depositRate"`
	HitchType      string          `json:"hitchType"`
	LightPlug      string          `json:"lightPlug"`
	WeightCapacity FlexString      `json:"weightCapacity"`
	Make           string          `json:"make"`
	Model          string          `json:"model"`
	Year           FlexString      `json:"year"`
	Length         FlexString      `json:"length"`
	BallSize       FlexString      `json:"ballSize"`
	Dimensions     string          `json:"dimensions"`
	ListingEnabled FlexBool        `json:"listingEnabled"`
}

// Active 非待审核、非拒绝即为上架中
func (r *ListingRecord) Active() bool {
	return r.Status != ListingStatusPending && r.Status != ListingStatusDecline
}

// FilterByTab 卖家列表页签过滤，未知页签返回空
func FilterByTab(records []ListingRecord, tab string) []ListingRecord {
	out := make([]ListingRecord, 0, len(records))
	for _, r := range records {
		switch tab {
		case TabAll, "":
			out = append(out, r)
		case TabActive:
			if r.Active() {
				out = append(out, r)
			}
		case TabInactive:
			if !r.Active() {
				out = append(out, r)
			}
		}
	}
	return out
}

// Contains 判断枚举值是否合法
func Contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
