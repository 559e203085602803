package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailer_host_v1_202610/internal/editor"
	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	apperrors "trailer_host_v1_202610/pkg/errors"
	"trailer_host_v1_202610/pkg/utils"
)

func newTestListingService(t *testing.T, handler http.HandlerFunc) *ListingService {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewListingService(utils.NewAPIClient(utils.ClientConfig{BaseURL: srv.URL}))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func samplePayload() *editor.Payload {
	return &editor.Payload{
		Fields: []editor.FormField{
			{Name: "title", Value: "Utility 5x8"},
			{Name: "closedDates", Value: `["2024-3-1"]`},
			{Name: editor.FieldExistingImages, Value: "https://cdn/a.jpg"},
			{Name: editor.FieldExistingImages, Value: "https://cdn/b.jpg"},
		},
		Files: []editor.FilePart{
			{Name: editor.FieldImages, File: &model.MemoryFile{Filename: "fileA.png", MimeType: "image/png", Data: []byte("PNGDATA")}},
		},
	}
}

func TestListingService_Create(t *testing.T) {
	svc := newTestListingService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trailer/create", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Utility 5x8", r.FormValue("title"))
		assert.Equal(t, `["2024-3-1"]`, r.FormValue("closedDates"))
		assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, r.MultipartForm.Value[editor.FieldExistingImages])

		files := r.MultipartForm.File[editor.FieldImages]
		require.Len(t, files, 1)
		assert.Equal(t, "fileA.png", files[0].Filename)
		f, _ := files[0].Open()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "PNGDATA", string(data))

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"msg":  "created",
			"data": map[string]interface{}{"_id": "t-1", "title": "Utility 5x8"},
		})
	})

	rec, err := svc.Create(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "t-1", rec.ID)
}

func TestListingService_Update(t *testing.T) {
	svc := newTestListingService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/trailer/update/t-9", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"_id": "t-9"})
	})

	rec, err := svc.Update(context.Background(), "t-9", samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "t-9", rec.ID)
}

func TestListingService_RemoteErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        interface{}
		wantMessage string
		wantNotice  string
	}{
		{"透传服务端 msg", http.StatusBadRequest, map[string]string{"msg": "Title already used"}, "Title already used", ""},
		{"透传 message", http.StatusConflict, map[string]string{"message": "Duplicate"}, "Duplicate", ""},
		{"无 msg 使用通用提示", http.StatusInternalServerError, map[string]string{}, i18n.NoticeOperationFailed, i18n.NoticeOperationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestListingService(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := svc.Create(context.Background(), samplePayload())
			appErr := apperrors.As(err)
			assert.Equal(t, apperrors.CodeRemote, appErr.Code)
			assert.Equal(t, tt.wantMessage, appErr.Message)
			assert.Equal(t, tt.wantNotice, appErr.Notice)
		})
	}
}

func TestListingService_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	svc := NewListingService(utils.NewAPIClient(utils.ClientConfig{BaseURL: srv.URL}))

	_, err := svc.Create(context.Background(), samplePayload())
	appErr := apperrors.As(err)
	assert.Equal(t, apperrors.CodeRemote, appErr.Code)
	assert.Equal(t, i18n.NoticeSomethingWrong, appErr.Notice)
}

func TestListingService_ListAndFind(t *testing.T) {
	svc := newTestListingService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trailer/seller/seller-1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{
				{"_id": "t-1", "status": "approved", "latitude": "45.5"},
				{"_id": "t-2", "status": "pending"},
			},
		})
	})

	records, err := svc.ListBySeller(context.Background(), "seller-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 45.5, records[0].Latitude.Or(0))

	rec, err := svc.FindForSeller(context.Background(), "seller-1", "t-2")
	require.NoError(t, err)
	assert.Equal(t, "pending", rec.Status)

	_, err = svc.FindForSeller(context.Background(), "seller-1", "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestListingService_Delete(t *testing.T) {
	var called bool
	svc := newTestListingService(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/trailer/delete/t-1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"msg": "deleted"})
	})

	require.NoError(t, svc.Delete(context.Background(), "t-1"))
	assert.True(t, called)
}

func TestListingService_DeleteForSeller(t *testing.T) {
	var deleted []string
	svc := newTestListingService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trailer/seller/seller-1":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"data": []map[string]string{{"_id": "t-1"}},
			})
		case "/trailer/seller/intruder":
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
		default:
			deleted = append(deleted, r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]string{"msg": "deleted"})
		}
	})
	ctx := context.Background()

	t.Run("非本人挂车", func(t *testing.T) {
		err := svc.DeleteForSeller(ctx, "intruder", "t-1")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
		assert.Equal(t, i18n.NoticeListingNotFound, apperrors.As(err).Notice)
		assert.Empty(t, deleted, "不应请求删除接口")
	})

	t.Run("本人挂车", func(t *testing.T) {
		require.NoError(t, svc.DeleteForSeller(ctx, "seller-1", "t-1"))
		assert.Equal(t, []string{"/trailer/delete/t-1"}, deleted)
	})
}
