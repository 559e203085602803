package editor

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// Calendar 关闭日期日历
// closed 与表单共享，切换月份不影响已标记的日期
type Calendar struct {
	year   int
	month  time.Month
	closed *model.DateSet
}

// NewCalendar 以 now 所在月份为初始显示月份
func NewCalendar(now time.Time, closed *model.DateSet) *Calendar {
	if closed == nil {
		closed = model.NewDateSet()
	}
	return &Calendar{
		year:   now.Year(),
		month:  now.Month(),
		closed: closed,
	}
}

func (c *Calendar) Year() int {
	return c.year
}

func (c *Calendar) Month() time.Month {
	return c.month
}

// Closed 共享的关闭日期集合
func (c *Calendar) Closed() *model.DateSet {
	return c.closed
}

// ShowMonth 跳转到指定月份
func (c *Calendar) ShowMonth(year int, month time.Month) {
	c.year = year
	c.month = month
}

// PrevMonth 上一月，1 月回到上一年 12 月
func (c *Calendar) PrevMonth() {
	if c.month == time.January {
		c.month = time.December
		c.year--
		return
	}
	c.month--
}

// NextMonth 下一月，12 月进入下一年 1 月
func (c *Calendar) NextMonth() {
	if c.month == time.December {
		c.month = time.January
		c.year++
		return
	}
	c.month++
}

// ToggleClosed 按当前显示的年月切换某天的关闭状态，返回切换后是否关闭
func (c *Calendar) ToggleClosed(day int) (bool, error) {
	key := model.NewDayKey(c.year, c.month, day)
	if !key.Valid() {
		return false, apperrors.Validation(fmt.Sprintf("day %d is outside %s", day, c.Title(language.English))).
			WithNotice(i18n.NoticeInvalidDay, day)
	}
	return c.closed.Toggle(key), nil
}

// IsClosed 当前显示月份中某天是否关闭
func (c *Calendar) IsClosed(day int) bool {
	return c.closed.Has(model.NewDayKey(c.year, c.month, day))
}

// DaysInMonth 月份天数
func DaysInMonth(year int, month time.Month) int {
	return model.DaysIn(year, month)
}

// FirstWeekdayOfMonth 1 号是星期几（周日 = 0），用于网格左侧留白
func FirstWeekdayOfMonth(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}

// Title 如 "March 2024"
func (c *Calendar) Title(tag language.Tag) string {
	return fmt.Sprintf("%s %d", i18n.MonthName(tag, c.month), c.year)
}

// DayCell 日历格子，Day 为 0 表示留白
type DayCell struct {
	Day    int    `json:"day"`
	Key    string `json:"key,omitempty"`
	Closed bool   `json:"closed"`
}

// Grid 当前月份的网格：先留白，再逐日
func (c *Calendar) Grid() []DayCell {
	blanks := int(FirstWeekdayOfMonth(c.year, c.month))
	days := DaysInMonth(c.year, c.month)

	cells := make([]DayCell, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		cells = append(cells, DayCell{})
	}
	for d := 1; d <= days; d++ {
		key := model.NewDayKey(c.year, c.month, d)
		cells = append(cells, DayCell{
			Day:    d,
			Key:    key.String(),
			Closed: c.closed.Has(key),
		})
	}
	return cells
}
