package model

import (
	"bytes"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// FileHandle 本地待上传文件（仅持有引用，提交时才读取）
type FileHandle interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

// DiskFile 磁盘文件
type DiskFile struct {
	Path string
}

func (f DiskFile) Name() string {
	return filepath.Base(f.Path)
}

func (f DiskFile) ContentType() string {
	if ct := mime.TypeByExtension(filepath.Ext(f.Path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (f DiskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// MemoryFile 上传请求中收到的文件内容
type MemoryFile struct {
	Filename string
	MimeType string
	Data     []byte
}

func (f *MemoryFile) Name() string {
	return f.Filename
}

func (f *MemoryFile) ContentType() string {
	if f.MimeType != "" {
		return f.MimeType
	}
	return "application/octet-stream"
}

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.Data)), nil
}

// ==================== ImageRef ====================

// ImageKind 图片来源
type ImageKind int

const (
	ImageRemote ImageKind = iota + 1 // 已持久化的远程图片
	ImageLocal                       // 新选择的本地文件
)

// ImageRef Remote(url) | Local(file)
type ImageRef struct {
	Kind ImageKind
	URL  string
	File FileHandle
}

// RemoteImage 远程图片引用
func RemoteImage(url string) ImageRef {
	return ImageRef{Kind: ImageRemote, URL: url}
}

// LocalImage 本地文件引用
func LocalImage(f FileHandle) ImageRef {
	return ImageRef{Kind: ImageLocal, File: f}
}

func (r ImageRef) IsRemote() bool {
	return r.Kind == ImageRemote
}

// Label 展示名：远程为 URL，本地为文件名
func (r ImageRef) Label() string {
	if r.IsRemote() {
		return r.URL
	}
	if r.File == nil {
		return ""
	}
	return r.File.Name()
}
