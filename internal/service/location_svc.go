package service

import (
	"context"
	"fmt"
	"log"

	"github.com/go-resty/resty/v2"

	"trailer_host_v1_202610/internal/editor"
	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ==================== 地点协作方数据结构 ====================

// Prediction 自动补全候选
type Prediction struct {
	PlaceID     string   `json:"place_id"`
	Description string   `json:"description"`
	Types       []string `json:"types"`
}

type autocompleteResp struct {
	Status      string       `json:"status"`
	Predictions []Prediction `json:"predictions"`
}

type placeDetailsResp struct {
	Status string `json:"status"`
	Result *struct {
		Geometry struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"result"`
}

// 保留的候选类型：城市、国家、一级行政区
var suggestTypes = []string{"locality", "country", "administrative_area_level_1"}

// ==================== 服务实现 ====================

// LocationService 地点自动补全与详情解析
type LocationService struct {
	client *resty.Client
}

var _ editor.PlaceResolver = (*LocationService)(nil)

// NewLocationService 创建地点服务
func NewLocationService(client *resty.Client) *LocationService {
	return &LocationService{client: client}
}

// Suggest 输入联想；非关键路径，失败只记日志并返回空
// 新请求不会取消旧请求，慢响应可能覆盖快响应（已接受的竞态）
func (s *LocationService) Suggest(ctx context.Context, text string) []Prediction {
	if text == "" {
		return []Prediction{}
	}

	var res autocompleteResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("input", text).
		SetResult(&res).
		Get("/autocomplete")
	if err != nil {
		log.Printf("[Places] 自动补全请求失败: %v", err)
		return []Prediction{}
	}
	if !resp.IsSuccess() || res.Status != "OK" {
		log.Printf("[Places] 自动补全无结果 (HTTP %d, status=%s)", resp.StatusCode(), res.Status)
		return []Prediction{}
	}

	out := make([]Prediction, 0, len(res.Predictions))
	for _, p := range res.Predictions {
		if hasAnyType(p.Types, suggestTypes...) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve 候选 → 经纬度 + 城市 + 国家
func (s *LocationService) Resolve(ctx context.Context, placeID string) (*model.Location, error) {
	var res placeDetailsResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("placeId", placeID).
		SetResult(&res).
		Get("/place-details")
	if err != nil {
		return nil, apperrors.Resolution(placeID, err).WithNotice(i18n.NoticeResolutionFailed)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.Resolution(placeID, fmt.Errorf("status %d", resp.StatusCode())).
			WithNotice(i18n.NoticeResolutionFailed)
	}
	if res.Result == nil || res.Result.Geometry.Location.Lat == nil || res.Result.Geometry.Location.Lng == nil {
		return nil, apperrors.Resolution(placeID, fmt.Errorf("place details without geometry")).
			WithNotice(i18n.NoticeResolutionFailed)
	}

	lat, lng := *res.Result.Geometry.Location.Lat, *res.Result.Geometry.Location.Lng
	loc := &model.Location{Latitude: &lat, Longitude: &lng}

	// 取第一个 locality 作为城市、第一个 country 作为国家
	for _, c := range res.Result.AddressComponents {
		if loc.City == "" && hasAnyType(c.Types, "locality") {
			loc.City = c.LongName
		}
		if loc.Country == "" && hasAnyType(c.Types, "country") {
			loc.Country = c.LongName
		}
	}
	return loc, nil
}

func hasAnyType(types []string, want ...string) bool {
	for _, t := range types {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}
