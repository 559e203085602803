package editor

import "trailer_host_v1_202610/internal/model"

// 提交字段名
const (
	FieldExistingImages = "existingImages[]"
	FieldImages         = "images"
	FieldClosedDates    = "closedDates"
)

// FormField 普通表单字段（同名可重复）
type FormField struct {
	Name  string
	Value string
}

// FilePart 文件字段
type FilePart struct {
	Name string
	File model.FileHandle
}

// Payload multipart 提交内容（纯数据，尚未编码）
type Payload struct {
	Fields []FormField
	Files  []FilePart
}

func (p *Payload) add(name, value string) {
	p.Fields = append(p.Fields, FormField{Name: name, Value: value})
}

// Get 返回字段的第一个值
func (p *Payload) Get(name string) string {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Values 返回字段的全部值（按追加顺序）
func (p *Payload) Values(name string) []string {
	var out []string
	for _, f := range p.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// FileNames 文件字段的文件名
func (p *Payload) FileNames() []string {
	out := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, f.File.Name())
	}
	return out
}
