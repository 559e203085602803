package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"trailer_host_v1_202610/internal/api/dto"
	"trailer_host_v1_202610/internal/editor"
	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/middleware"
	"trailer_host_v1_202610/internal/model"
	"trailer_host_v1_202610/internal/service"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ==================== 控制器 ====================

// DefaultMaxImageBytes 单张图片默认上限
const DefaultMaxImageBytes int64 = 10 << 20

// multipart 边界与普通字段的额外余量
const uploadOverhead int64 = 1 << 20

// EditorController 挂车编辑器控制器
type EditorController struct {
	editors       *service.EditorService
	maxImageBytes int64
}

// NewEditorController maxImageBytes <= 0 时使用 DefaultMaxImageBytes
func NewEditorController(editors *service.EditorService, maxImageBytes int64) *EditorController {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &EditorController{editors: editors, maxImageBytes: maxImageBytes}
}

func (ctl *EditorController) locale(c *gin.Context) language.Tag {
	return ctl.editors.AppContext(middleware.GetUserID(c)).Locale()
}

// mutate 在会话锁内执行表单操作并返回最新快照
func (ctl *EditorController) mutate(c *gin.Context, fn func(f *editor.Form) error) (editor.FormView, error) {
	var view editor.FormView
	err := ctl.editors.Do(c.Param("id"), middleware.GetUserID(c), func(f *editor.Form) error {
		if err := fn(f); err != nil {
			return err
		}
		view = f.Snapshot()
		return nil
	})
	return view, err
}

func (ctl *EditorController) respondView(c *gin.Context, view editor.FormView, err error) {
	if err != nil {
		respondError(c, ctl.locale(c), err)
		return
	}
	respondOK(c, "success", dto.EditorResponse{EditorID: c.Param("id"), View: view})
}

// ==================== 会话 ====================

// Open 打开编辑器
// @Summary 打开挂车编辑器（新建或编辑）
// @Tags Editor
// @Accept json
// @Param body body dto.OpenEditorRequest false "listing_id 为空即新建"
// @Success 200 {object} dto.EditorResponse
// @Router /api/editors [post]
func (ctl *EditorController) Open(c *gin.Context) {
	var req dto.OpenEditorRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	userID := middleware.GetUserID(c)
	sess, err := ctl.editors.Open(c.Request.Context(), userID, req.ListingID)
	if err != nil {
		respondError(c, ctl.locale(c), err)
		return
	}

	var view editor.FormView
	_ = sess.Do(func(f *editor.Form) error {
		view = f.Snapshot()
		return nil
	})
	respondOK(c, "success", dto.EditorResponse{EditorID: sess.ID, View: view})
}

// Get 编辑器快照
// @Router /api/editors/{id} [get]
func (ctl *EditorController) Get(c *gin.Context) {
	view, err := ctl.mutate(c, func(f *editor.Form) error { return nil })
	ctl.respondView(c, view, err)
}

// Discard 关闭编辑器（丢弃未提交内容）
// @Router /api/editors/{id} [delete]
func (ctl *EditorController) Discard(c *gin.Context) {
	if err := ctl.editors.Discard(c.Param("id"), middleware.GetUserID(c)); err != nil {
		respondError(c, ctl.locale(c), err)
		return
	}
	respondOK(c, "discarded", nil)
}

// Reset 恢复为新建状态
// @Router /api/editors/{id}/reset [post]
func (ctl *EditorController) Reset(c *gin.Context) {
	view, err := ctl.mutate(c, func(f *editor.Form) error {
		f.Reset()
		return nil
	})
	ctl.respondView(c, view, err)
}

// ==================== 字段 ====================

// SetField 修改单个字段
// @Summary 修改字段
// @Tags Editor
// @Param name path string true "字段名"
// @Param body body dto.SetFieldRequest true "字段值"
// @Router /api/editors/{id}/fields/{name} [put]
func (ctl *EditorController) SetField(c *gin.Context) {
	var req dto.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	view, err := ctl.mutate(c, func(f *editor.Form) error {
		return f.SetField(c.Param("name"), *req.Value)
	})
	ctl.respondView(c, view, err)
}

// ==================== 日历 ====================

// PrevMonth 上一个月
// @Router /api/editors/{id}/calendar/prev [post]
func (ctl *EditorController) PrevMonth(c *gin.Context) {
	view, err := ctl.mutate(c, func(f *editor.Form) error {
		f.Calendar().PrevMonth()
		return nil
	})
	ctl.respondView(c, view, err)
}

// NextMonth 下一个月
// @Router /api/editors/{id}/calendar/next [post]
func (ctl *EditorController) NextMonth(c *gin.Context) {
	view, err := ctl.mutate(c, func(f *editor.Form) error {
		f.Calendar().NextMonth()
		return nil
	})
	ctl.respondView(c, view, err)
}

// ToggleDay 切换当前月某天的关闭状态
// @Param body body dto.ToggleDayRequest true "日"
// @Router /api/editors/{id}/calendar/toggle [post]
func (ctl *EditorController) ToggleDay(c *gin.Context) {
	var req dto.ToggleDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	var result dto.ToggleDayResponse
	err := ctl.editors.Do(c.Param("id"), middleware.GetUserID(c), func(f *editor.Form) error {
		cal := f.Calendar()
		closed, err := cal.ToggleClosed(req.Day)
		if err != nil {
			return err
		}
		result = dto.ToggleDayResponse{
			Key:    model.NewDayKey(cal.Year(), cal.Month(), req.Day).String(),
			Closed: closed,
		}
		return nil
	})
	if err != nil {
		respondError(c, ctl.locale(c), err)
		return
	}
	respondOK(c, "success", result)
}

// ==================== 图片 ====================

// AddImages 暂存本地图片（multipart 字段 images）
// 只读取剩余名额内的文件，超出名额的文件不读取内容
// @Accept multipart/form-data
// @Param images formData file true "图片，可多选"
// @Router /api/editors/{id}/images [post]
func (ctl *EditorController) AddImages(c *gin.Context) {
	tag := ctl.locale(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctl.maxImageBytes*model.MaxImages+uploadOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, tag, ctl.tooLarge("upload"))
			return
		}
		respondBadRequest(c, "multipart form required")
		return
	}
	headers := form.File[editor.FieldImages]
	if len(headers) == 0 {
		respondBadRequest(c, "no images uploaded")
		return
	}

	var (
		res    editor.AddResult
		addErr error
	)
	view, err := ctl.mutate(c, func(f *editor.Form) error {
		accept := f.Images().Remaining()
		if accept > len(headers) {
			accept = len(headers)
		}

		files := make([]model.FileHandle, len(headers))
		for i, fh := range headers {
			if i >= accept {
				// 超出名额，AddFiles 只计入 dropped
				files[i] = &model.MemoryFile{Filename: fh.Filename}
				continue
			}
			file, err := ctl.readUpload(fh)
			if err != nil {
				return err
			}
			files[i] = file
		}

		res, addErr = f.Images().AddFiles(files)
		if addErr != nil && !apperrors.Is(addErr, apperrors.CodePartialCapacity) {
			return addErr
		}
		return nil
	})
	if err != nil {
		respondError(c, tag, err)
		return
	}

	message := "success"
	if addErr != nil {
		message = localize(tag, apperrors.As(addErr))
	}
	respondOK(c, message, dto.AddImagesResponse{Added: res.Added, Dropped: res.Dropped, View: view})
}

// readUpload 读取单个上传文件，超过单张上限直接拒绝
func (ctl *EditorController) readUpload(fh *multipart.FileHeader) (*model.MemoryFile, error) {
	if fh.Size > ctl.maxImageBytes {
		return nil, ctl.tooLarge(fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, apperrors.Validation("unreadable upload: " + fh.Filename).WithNotice(i18n.NoticeInvalidUpload)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, ctl.maxImageBytes+1))
	if err != nil {
		return nil, apperrors.Validation("unreadable upload: " + fh.Filename).WithNotice(i18n.NoticeInvalidUpload)
	}
	if int64(len(data)) > ctl.maxImageBytes {
		return nil, ctl.tooLarge(fh.Filename)
	}

	return &model.MemoryFile{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func (ctl *EditorController) tooLarge(name string) error {
	limitMB := (ctl.maxImageBytes + (1 << 20) - 1) >> 20
	return apperrors.Validation(fmt.Sprintf("%s exceeds %d bytes", name, ctl.maxImageBytes)).
		WithNotice(i18n.NoticeImageTooLarge, name, limitMB)
}

// RemoveStagedImage 移除暂存图片
// @Router /api/editors/{id}/images/staged/{index} [delete]
func (ctl *EditorController) RemoveStagedImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondBadRequest(c, "invalid image index")
		return
	}

	view, err := ctl.mutate(c, func(f *editor.Form) error {
		return f.Images().RemoveStaged(index)
	})
	ctl.respondView(c, view, err)
}

// RemoveExistingImage 移除已上传图片
// @Param body body dto.RemoveExistingImageRequest true "图片 URL"
// @Router /api/editors/{id}/images/existing [delete]
func (ctl *EditorController) RemoveExistingImage(c *gin.Context) {
	var req dto.RemoveExistingImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	view, err := ctl.mutate(c, func(f *editor.Form) error {
		return f.Images().RemoveExisting(req.URL)
	})
	ctl.respondView(c, view, err)
}

// ==================== 位置 ====================

// Suggestions 地点联想
// @Param input query string true "输入文本"
// @Router /api/editors/{id}/location/suggestions [get]
func (ctl *EditorController) Suggestions(c *gin.Context) {
	preds, err := ctl.editors.Suggest(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), c.Query("input"))
	if err != nil {
		respondError(c, ctl.locale(c), err)
		return
	}
	respondOK(c, "success", dto.SuggestionsResponse{Predictions: preds})
}

// SelectPlace 选择候选地点
// @Param body body dto.SelectPlaceRequest true "place_id"
// @Router /api/editors/{id}/location [post]
func (ctl *EditorController) SelectPlace(c *gin.Context) {
	var req dto.SelectPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if _, err := ctl.editors.SelectPlace(c.Request.Context(), c.Param("id"), userID, req.PlaceID); err != nil {
		respondError(c, ctl.locale(c), err)
		return
	}
	view, err := ctl.mutate(c, func(f *editor.Form) error { return nil })
	ctl.respondView(c, view, err)
}

// ==================== 提交 ====================

// Submit 提交（新建或更新）
// @Router /api/editors/{id}/submit [post]
func (ctl *EditorController) Submit(c *gin.Context) {
	tag := ctl.locale(c)
	result, err := ctl.editors.Submit(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, tag, err)
		return
	}

	notice := i18n.NoticeCreated
	if result.Action == model.SubmitActionUpdate {
		notice = i18n.NoticeUpdated
	}
	respondOK(c, i18n.Translate(tag, notice), dto.SubmitResponse{Action: result.Action, Record: result.Record})
}

// ==================== 语言 ====================

// SetLocale 切换语言（已打开的编辑器同步切换）
// @Param body body dto.SetLocaleRequest true "locale"
// @Router /api/locale [put]
func (ctl *EditorController) SetLocale(c *gin.Context) {
	var req dto.SetLocaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	tag := i18n.ParseLocale(req.Locale)
	ctl.editors.SetLocale(middleware.GetUserID(c), tag)
	respondOK(c, "success", gin.H{"locale": tag.String()})
}
