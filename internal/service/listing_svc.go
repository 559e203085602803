package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"trailer_host_v1_202610/internal/editor"
	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ==================== Listings API 客户端 ====================

// ListingService Listings REST API 协作方（{baseUrl}/trailer/<action>）
type ListingService struct {
	client *resty.Client
}

var _ editor.ListingsAPI = (*ListingService)(nil)

// NewListingService 创建 Listings API 客户端
func NewListingService(client *resty.Client) *ListingService {
	return &ListingService{client: client}
}

// apiEnvelope 通用响应结构
type apiEnvelope struct {
	Msg     string          `json:"msg"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *apiEnvelope) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

// Create 新建挂车
func (s *ListingService) Create(ctx context.Context, payload *editor.Payload) (*model.ListingRecord, error) {
	return s.sendMultipart(ctx, http.MethodPost, "/trailer/create", payload)
}

// Update 更新挂车
func (s *ListingService) Update(ctx context.Context, id string, payload *editor.Payload) (*model.ListingRecord, error) {
	return s.sendMultipart(ctx, http.MethodPut, "/trailer/update/"+url.PathEscape(id), payload)
}

// ListBySeller 获取卖家全部挂车
func (s *ListingService) ListBySeller(ctx context.Context, userID string) ([]model.ListingRecord, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get("/trailer/seller/" + url.PathEscape(userID))
	if err != nil {
		return nil, apperrors.Remote(i18n.NoticeSomethingWrong, err).WithNotice(i18n.NoticeFetchListingsFail)
	}

	var env apiEnvelope
	_ = json.Unmarshal(resp.Body(), &env)
	if !resp.IsSuccess() {
		return nil, remoteFailure(resp, &env, i18n.NoticeFetchListingsFail)
	}

	records := []model.ListingRecord{}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, apperrors.Remote("malformed listings response", err).WithNotice(i18n.NoticeFetchListingsFail)
		}
	}
	return records, nil
}

// FindForSeller 在卖家挂车中查找指定记录
func (s *ListingService) FindForSeller(ctx context.Context, userID, listingID string) (*model.ListingRecord, error) {
	records, err := s.ListBySeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == listingID {
			return &records[i], nil
		}
	}
	return nil, apperrors.NotFound("listing "+listingID, nil).WithNotice(i18n.NoticeListingNotFound)
}

// Delete 删除挂车
func (s *ListingService) Delete(ctx context.Context, id string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Delete("/trailer/delete/" + url.PathEscape(id))
	if err != nil {
		return apperrors.Remote(i18n.NoticeSomethingWrong, err).WithNotice(i18n.NoticeSomethingWrong)
	}
	if !resp.IsSuccess() {
		var env apiEnvelope
		_ = json.Unmarshal(resp.Body(), &env)
		return remoteFailure(resp, &env, i18n.NoticeOperationFailed)
	}
	return nil
}

// DeleteForSeller 仅删除属于该卖家的挂车，否则返回 NotFound
func (s *ListingService) DeleteForSeller(ctx context.Context, userID, id string) error {
	if _, err := s.FindForSeller(ctx, userID, id); err != nil {
		return err
	}
	return s.Delete(ctx, id)
}

// sendMultipart 以 multipart/form-data 发送提交内容
// 字段按 payload 顺序写入，重复字段（existingImages[]、images）逐个追加
func (s *ListingService) sendMultipart(ctx context.Context, method, path string, payload *editor.Payload) (*model.ListingRecord, error) {
	req := s.client.R().SetContext(ctx)

	for _, f := range payload.Fields {
		req.SetMultipartField(f.Name, "", "", strings.NewReader(f.Value))
	}

	var opened []io.ReadCloser
	defer func() {
		for _, rc := range opened {
			rc.Close()
		}
	}()
	for _, part := range payload.Files {
		rc, err := part.File.Open()
		if err != nil {
			return nil, apperrors.Remote(fmt.Sprintf("open %s", part.File.Name()), err).
				WithNotice(i18n.NoticeSomethingWrong)
		}
		opened = append(opened, rc)
		req.SetMultipartField(part.Name, part.File.Name(), part.File.ContentType(), rc)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, apperrors.Remote(i18n.NoticeSomethingWrong, err).WithNotice(i18n.NoticeSomethingWrong)
	}

	var env apiEnvelope
	_ = json.Unmarshal(resp.Body(), &env)
	if !resp.IsSuccess() {
		return nil, remoteFailure(resp, &env, i18n.NoticeOperationFailed)
	}

	return decodeRecord(resp.Body(), &env), nil
}

// decodeRecord 记录可能在 data 中，也可能直接位于顶层
func decodeRecord(body []byte, env *apiEnvelope) *model.ListingRecord {
	var rec model.ListingRecord
	if len(env.Data) > 0 && env.Data[0] == '{' {
		if err := json.Unmarshal(env.Data, &rec); err == nil {
			return &rec
		}
	}
	if err := json.Unmarshal(body, &rec); err == nil {
		return &rec
	}
	return &model.ListingRecord{}
}

// remoteFailure 优先透传服务端 msg，缺失时使用通用提示
func remoteFailure(resp *resty.Response, env *apiEnvelope, fallback string) error {
	cause := fmt.Errorf("status %d", resp.StatusCode())
	if msg := env.text(); msg != "" {
		return apperrors.Remote(msg, cause)
	}
	return apperrors.Remote(fallback, cause).WithNotice(fallback)
}
