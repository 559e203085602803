package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trailer_host_v1_202610/internal/editor"
	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	"trailer_host_v1_202610/internal/repository"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ==================== 测试替身 ====================

type stubGateway struct {
	mu      sync.Mutex
	records map[string]*model.ListingRecord
	creates int
	updates int
	failMsg string
}

func (g *stubGateway) Create(ctx context.Context, p *editor.Payload) (*model.ListingRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failMsg != "" {
		return nil, apperrors.Remote(g.failMsg, nil)
	}
	g.creates++
	return &model.ListingRecord{ID: "new-1", Title: p.Get("title")}, nil
}

func (g *stubGateway) Update(ctx context.Context, id string, p *editor.Payload) (*model.ListingRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates++
	return &model.ListingRecord{ID: id}, nil
}

func (g *stubGateway) FindForSeller(ctx context.Context, userID, listingID string) (*model.ListingRecord, error) {
	rec, ok := g.records[listingID]
	if !ok {
		return nil, apperrors.NotFound("listing "+listingID, nil).WithNotice(i18n.NoticeListingNotFound)
	}
	return rec, nil
}

type stubPlaces struct{}

func (stubPlaces) Resolve(ctx context.Context, placeID string) (*model.Location, error) {
	if placeID != "place123" {
		return nil, apperrors.Resolution(placeID, errors.New("unknown")).WithNotice(i18n.NoticeResolutionFailed)
	}
	lat, lng := 45.5, -73.6
	return &model.Location{Latitude: &lat, Longitude: &lng, City: "Montreal", Country: "Canada"}, nil
}

func (stubPlaces) Suggest(ctx context.Context, text string) []Prediction {
	return []Prediction{{PlaceID: "place123", Description: text}}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupEditorService(t *testing.T) (*EditorService, *stubGateway, repository.SubmissionLogRepository, *testClock) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SubmissionLog{}))

	logs := repository.NewSubmissionLogRepository(db)
	gw := &stubGateway{records: map[string]*model.ListingRecord{}}
	clock := &testClock{now: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)}

	svc := NewEditorService(EditorDeps{
		Listings:      gw,
		Places:        stubPlaces{},
		Logs:          logs,
		DefaultLocale: language.English,
		Now:           clock.Now,
	})
	return svc, gw, logs, clock
}

func fillForm(f *editor.Form) error {
	if err := f.SetField(editor.FieldTitle, "Utility 5x8"); err != nil {
		return err
	}
	if err := f.SetField(editor.FieldDescription, "Sturdy"); err != nil {
		return err
	}
	_, err := f.Images().AddFiles([]model.FileHandle{&model.MemoryFile{Filename: "fileA"}})
	return err
}

// ==================== 会话 ====================

func TestEditorService_OpenAndOwnership(t *testing.T) {
	svc, gw, _, _ := setupEditorService(t)
	gw.records["t-1"] = &model.ListingRecord{ID: "t-1", Title: "Existing"}
	ctx := context.Background()

	sess, err := svc.Open(ctx, "seller-1", "t-1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)

	_ = sess.Do(func(f *editor.Form) error {
		assert.Equal(t, "t-1", f.ListingID())
		assert.Equal(t, "Existing", f.Fields().Title)
		return nil
	})

	_, err = svc.Get(sess.ID, "seller-2")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), "其他卖家不能访问会话")

	_, err = svc.Open(ctx, "seller-1", "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Equal(t, 1, svc.Count())
}

func TestEditorService_Discard(t *testing.T) {
	svc, _, _, _ := setupEditorService(t)

	sess, err := svc.Open(context.Background(), "seller-1", "")
	require.NoError(t, err)
	require.NoError(t, svc.Discard(sess.ID, "seller-1"))

	assert.Equal(t, 0, svc.Count())
	err = sess.Do(func(f *editor.Form) error { return nil })
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), "已关闭的会话不可再用")
	assert.Equal(t, 0, svc.AppContext("seller-1").Subscribers())
}

func TestEditorService_EvictIdle(t *testing.T) {
	svc, _, _, clock := setupEditorService(t)
	ctx := context.Background()

	idle, _ := svc.Open(ctx, "seller-1", "")
	clock.Advance(90 * time.Minute)
	busy, _ := svc.Open(ctx, "seller-1", "")
	clock.Advance(40 * time.Minute)

	assert.Equal(t, 1, svc.EvictIdle(2*time.Hour))

	_, err := svc.Get(idle.ID, "seller-1")
	assert.Error(t, err)
	_, err = svc.Get(busy.ID, "seller-1")
	assert.NoError(t, err)
}

func TestEditorService_SetLocaleReachesOpenForms(t *testing.T) {
	svc, _, _, _ := setupEditorService(t)
	sess, _ := svc.Open(context.Background(), "seller-1", "")

	svc.SetLocale("seller-1", language.French)

	_ = sess.Do(func(f *editor.Form) error {
		assert.Equal(t, language.French, f.Locale())
		return nil
	})
}

// ==================== 位置 ====================

func TestEditorService_Location(t *testing.T) {
	svc, _, _, _ := setupEditorService(t)
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "seller-1", "")

	preds, err := svc.Suggest(ctx, sess.ID, "seller-1", "Montr")
	require.NoError(t, err)
	require.Len(t, preds, 1)

	loc, err := svc.SelectPlace(ctx, sess.ID, "seller-1", preds[0].PlaceID)
	require.NoError(t, err)
	assert.Equal(t, "Montreal", loc.City)

	_, err = svc.SelectPlace(ctx, sess.ID, "seller-1", "nowhere")
	assert.True(t, apperrors.Is(err, apperrors.CodeResolution))
}

// ==================== 提交 ====================

func TestEditorService_SubmitCreate(t *testing.T) {
	svc, gw, logs, _ := setupEditorService(t)
	ctx := context.Background()

	sess, _ := svc.Open(ctx, "seller-1", "")
	require.NoError(t, sess.Do(fillForm))
	_, err := svc.SelectPlace(ctx, sess.ID, "seller-1", "place123")
	require.NoError(t, err)

	result, err := svc.Submit(ctx, sess.ID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, model.SubmitActionCreate, result.Action)
	assert.Equal(t, "new-1", result.Record.ID)
	assert.Equal(t, 1, gw.creates)

	// 成功后会话关闭
	assert.Equal(t, 0, svc.Count())
	_, err = svc.Submit(ctx, sess.ID, "seller-1")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Equal(t, 1, gw.creates, "重复提交不应再次创建")

	list, total, err := logs.List(ctx, repository.SubmissionFilter{UserID: "seller-1"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.SubmitStatusSuccess, list[0].Status)
	assert.Equal(t, "new-1", list[0].ListingID)
	assert.Equal(t, 1, list[0].StagedCount)
	assert.JSONEq(t, `[]`, string(list[0].ClosedDates))
}

func TestEditorService_SubmitValidationNotLogged(t *testing.T) {
	svc, gw, logs, _ := setupEditorService(t)
	ctx := context.Background()

	sess, _ := svc.Open(ctx, "seller-1", "")
	require.NoError(t, sess.Do(fillForm))

	_, err := svc.Submit(ctx, sess.ID, "seller-1")
	assert.Equal(t, i18n.NoticeLocationRequired, apperrors.As(err).Notice)
	assert.Equal(t, 0, gw.creates)
	assert.Equal(t, 1, svc.Count(), "校验失败会话保持打开")

	_, total, _ := logs.List(ctx, repository.SubmissionFilter{})
	assert.EqualValues(t, 0, total)
}

func TestEditorService_SubmitRemoteFailure(t *testing.T) {
	svc, gw, logs, _ := setupEditorService(t)
	gw.failMsg = "Title already used"
	ctx := context.Background()

	sess, _ := svc.Open(ctx, "seller-1", "")
	require.NoError(t, sess.Do(fillForm))
	_, _ = svc.SelectPlace(ctx, sess.ID, "seller-1", "place123")

	_, err := svc.Submit(ctx, sess.ID, "seller-1")
	assert.True(t, apperrors.Is(err, apperrors.CodeRemote))
	assert.Equal(t, 1, svc.Count(), "失败后会话保持打开，可重试")

	list, _, _ := logs.List(ctx, repository.SubmissionFilter{Status: model.SubmitStatusFailed})
	require.Len(t, list, 1)
	assert.Equal(t, "Title already used", list[0].ErrorMsg)

	// 服务端恢复后重试成功
	gw.failMsg = ""
	_, err = svc.Submit(ctx, sess.ID, "seller-1")
	assert.NoError(t, err)
}

func TestEditorService_SubmitUpdate(t *testing.T) {
	svc, gw, _, _ := setupEditorService(t)
	lat, lng := 1.0, 2.0
	gw.records["t-7"] = &model.ListingRecord{
		ID:          "t-7",
		Title:       "Existing",
		Category:    model.CategoryDump,
		Description: "desc",
		Images:      []string{"https://cdn/a.jpg"},
		Latitude:    model.FlexFloat{Value: &lat},
		Longitude:   model.FlexFloat{Value: &lng},
	}
	ctx := context.Background()

	sess, err := svc.Open(ctx, "seller-1", "t-7")
	require.NoError(t, err)

	result, err := svc.Submit(ctx, sess.ID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, model.SubmitActionUpdate, result.Action)
	assert.Equal(t, 1, gw.updates)
}

func TestEditorService_ConcurrentAccess(t *testing.T) {
	svc, _, _, _ := setupEditorService(t)
	sess, _ := svc.Open(context.Background(), "seller-1", "")

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_ = svc.Do(sess.ID, "seller-1", func(f *editor.Form) error {
				_, err := f.Calendar().ToggleClosed(day)
				return err
			})
		}(i)
	}
	wg.Wait()

	_ = sess.Do(func(f *editor.Form) error {
		assert.Equal(t, 20, f.Calendar().Closed().Len())
		return nil
	})
}
