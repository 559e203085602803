package model

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ==================== DayKey ====================

// DayKey 日历日期键，统一编码为 "{year}-{month}-{day}"（不补零）
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDayKey 创建日期键
func NewDayKey(year int, month time.Month, day int) DayKey {
	return DayKey{Year: year, Month: month, Day: day}
}

// String 规范编码，读写两端都必须经过这里
func (k DayKey) String() string {
	return fmt.Sprintf("%d-%d-%d", k.Year, int(k.Month), k.Day)
}

// Valid 检查日期是否真实存在（如 2023-2-29 无效）
func (k DayKey) Valid() bool {
	if k.Month < time.January || k.Month > time.December || k.Day < 1 {
		return false
	}
	return k.Day <= DaysIn(k.Year, k.Month)
}

// Before 按日期先后比较
func (k DayKey) Before(o DayKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	if k.Month != o.Month {
		return k.Month < o.Month
	}
	return k.Day < o.Day
}

// ParseDayKey 解析日期键，补零与不补零两种写法都接受
func ParseDayKey(s string) (DayKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return DayKey{}, fmt.Errorf("invalid day key %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return DayKey{}, fmt.Errorf("invalid day key %q: %w", s, err)
		}
		nums[i] = n
	}

	k := DayKey{Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}
	if !k.Valid() {
		return DayKey{}, fmt.Errorf("day key %q is not a calendar date", s)
	}
	return k, nil
}

// DaysIn 指定月份天数：取下月第 0 天，自动处理闰年
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ==================== DateSet ====================

// DateSet 关闭日期集合（无序、去重）
type DateSet struct {
	keys map[DayKey]struct{}
}

// NewDateSet 创建集合
func NewDateSet(keys ...DayKey) *DateSet {
	s := &DateSet{keys: make(map[DayKey]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

func (s *DateSet) Has(k DayKey) bool {
	_, ok := s.keys[k]
	return ok
}

func (s *DateSet) Add(k DayKey) {
	s.keys[k] = struct{}{}
}

func (s *DateSet) Remove(k DayKey) {
	delete(s.keys, k)
}

// Toggle 切换成员关系，返回切换后是否包含
func (s *DateSet) Toggle(k DayKey) bool {
	if s.Has(k) {
		s.Remove(k)
		return false
	}
	s.Add(k)
	return true
}

func (s *DateSet) Len() int {
	return len(s.keys)
}

// Replace 用新集合内容替换（保持指针不变，日历与表单共享同一集合）
func (s *DateSet) Replace(keys []DayKey) {
	s.keys = make(map[DayKey]struct{}, len(keys))
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
}

// Keys 按日期升序返回
func (s *DateSet) Keys() []DayKey {
	out := make([]DayKey, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings 按日期升序返回规范编码
func (s *DateSet) Strings() []string {
	keys := s.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

// MarshalJSON 序列化为扁平字符串数组
func (s *DateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// ==================== 归一化 ====================

// NormalizeClosedDates 将上游不一致的 closedDates 编码归一为扁平日期键数组
// 支持：JSON 字符串、双重编码字符串、单元素 JSON 字符串数组、扁平数组
func NormalizeClosedDates(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return []string{}
	}

	// 文本形态则反复解析
	for {
		text, ok := data.(string)
		if !ok {
			break
		}
		var next interface{}
		if err := json.Unmarshal([]byte(text), &next); err != nil {
			break
		}
		data = next
	}

	arr, ok := data.([]interface{})
	if !ok {
		return []string{}
	}

	// 首元素本身是 JSON 数组字面量时，使用解析后的数组
	if len(arr) > 0 {
		if first, ok := arr[0].(string); ok {
			var inner []interface{}
			if err := json.Unmarshal([]byte(first), &inner); err == nil {
				arr = inner
			}
		}
	}

	return canonicalKeys(arr)
}

// canonicalKeys 逐项规范化、去重，无法解析的项丢弃
func canonicalKeys(items []interface{}) []string {
	seen := make(map[DayKey]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		text, ok := item.(string)
		if !ok {
			log.Printf("[DayKey] 忽略非字符串日期: %v", item)
			continue
		}
		k, err := ParseDayKey(text)
		if err != nil {
			log.Printf("[DayKey] 忽略无效日期: %v", err)
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k.String())
	}
	return out
}

// ParseDayKeys 将规范字符串转为日期键（调用方保证已归一化）
func ParseDayKeys(values []string) []DayKey {
	out := make([]DayKey, 0, len(values))
	for _, v := range values {
		if k, err := ParseDayKey(v); err == nil {
			out = append(out, k)
		}
	}
	return out
}
