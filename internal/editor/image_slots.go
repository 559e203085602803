package editor

import (
	"fmt"

	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ImageSlots 图片名额管理：远程图片 + 本地待上传文件合计不超过 max
type ImageSlots struct {
	max      int
	existing []string
	staged   []model.FileHandle
}

// NewImageSlots 创建图片名额管理器
func NewImageSlots(max int) *ImageSlots {
	if max <= 0 {
		max = model.MaxImages
	}
	return &ImageSlots{max: max}
}

// AddResult 批量添加结果
type AddResult struct {
	Added   int `json:"added"`
	Dropped int `json:"dropped"`
}

// Remaining 剩余名额
func (s *ImageSlots) Remaining() int {
	r := s.max - (len(s.existing) + len(s.staged))
	if r < 0 {
		return 0
	}
	return r
}

// AddFiles 按顺序接收不超过剩余名额的文件
// 名额已满：整批拒绝，返回 CapacityExceeded
// 部分接收：已接收的保留，返回 PartialCapacity（提示性错误）
func (s *ImageSlots) AddFiles(files []model.FileHandle) (AddResult, error) {
	remaining := s.max - (len(s.existing) + len(s.staged))
	if remaining <= 0 {
		return AddResult{Dropped: len(files)}, apperrors.CapacityExceeded(s.max, len(files)).
			WithNotice(i18n.NoticeMaxPhotos, s.max)
	}

	accept := files
	if len(files) > remaining {
		accept = files[:remaining]
	}
	s.staged = append(s.staged, accept...)

	res := AddResult{Added: len(accept), Dropped: len(files) - len(accept)}
	if res.Dropped > 0 {
		return res, apperrors.PartialCapacity(res.Added, res.Dropped).
			WithNotice(i18n.NoticeOnlyMorePhotos, remaining)
	}
	return res, nil
}

// RemoveStaged 按位置移除一个待上传文件
func (s *ImageSlots) RemoveStaged(index int) error {
	if index < 0 || index >= len(s.staged) {
		return apperrors.Validation(fmt.Sprintf("staged image index %d out of range", index)).
			WithNotice(i18n.NoticeImageNotFound)
	}
	s.staged = append(s.staged[:index], s.staged[index+1:]...)
	return nil
}

// RemoveExisting 按 URL 移除远程图片，提交时才会在服务端生效
func (s *ImageSlots) RemoveExisting(url string) error {
	for i, u := range s.existing {
		if u == url {
			s.existing = append(s.existing[:i], s.existing[i+1:]...)
			return nil
		}
	}
	return apperrors.Validation(fmt.Sprintf("existing image %q not found", url)).
		WithNotice(i18n.NoticeImageNotFound)
}

// SetExisting 加载已持久化的图片，超出上限的部分截断
func (s *ImageSlots) SetExisting(urls []string) {
	if len(urls) > s.max {
		urls = urls[:s.max]
	}
	s.existing = append([]string(nil), urls...)
	s.staged = nil
}

// Clear 清空两个池
func (s *ImageSlots) Clear() {
	s.existing = nil
	s.staged = nil
}

func (s *ImageSlots) Existing() []string {
	return append([]string(nil), s.existing...)
}

func (s *ImageSlots) Staged() []model.FileHandle {
	return append([]model.FileHandle(nil), s.staged...)
}

// Count 合计数量
func (s *ImageSlots) Count() int {
	return len(s.existing) + len(s.staged)
}

func (s *ImageSlots) Max() int {
	return s.max
}

// Refs 远程在前、本地在后的统一视图
func (s *ImageSlots) Refs() []model.ImageRef {
	refs := make([]model.ImageRef, 0, s.Count())
	for _, u := range s.existing {
		refs = append(refs, model.RemoteImage(u))
	}
	for _, f := range s.staged {
		refs = append(refs, model.LocalImage(f))
	}
	return refs
}
