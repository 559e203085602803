package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"gorm.io/datatypes"

	"trailer_host_v1_202610/internal/editor"
	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/model"
	"trailer_host_v1_202610/internal/repository"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ==================== 外部服务依赖 ====================

// ListingGateway Listings API（提交 + 卖家列表）
type ListingGateway interface {
	editor.ListingsAPI
	FindForSeller(ctx context.Context, userID, listingID string) (*model.ListingRecord, error)
}

// PlaceGateway 地点联想与解析
type PlaceGateway interface {
	editor.PlaceResolver
	Suggest(ctx context.Context, text string) []Prediction
}

// ==================== 会话 ====================

// Session 一个打开中的编辑器（对应一次弹窗）
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	mu       sync.Mutex
	form     *editor.Form
	lastUsed time.Time
	closed   bool
	now      func() time.Time
}

// Do 串行访问表单；会话已关闭时返回 NotFound
func (s *Session) Do(fn func(f *editor.Form) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSessionNotFound(s.ID)
	}
	s.lastUsed = s.now()
	return fn(s.form)
}

// close 关闭会话并释放表单
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.form.Close()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func errSessionNotFound(id string) error {
	return apperrors.NotFound("editor session "+id, nil).WithNotice(i18n.NoticeEditorNotFound)
}

// ==================== 服务实现 ====================

// EditorDeps 编辑器服务依赖
type EditorDeps struct {
	Listings      ListingGateway
	Places        PlaceGateway
	Logs          repository.SubmissionLogRepository // 可为 nil（不记录）
	DefaultLocale language.Tag
	Now           func() time.Time
}

// EditorService 编辑器会话管理
type EditorService struct {
	listings      ListingGateway
	places        PlaceGateway
	logs          repository.SubmissionLogRepository
	defaultLocale language.Tag
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	contexts map[string]*i18n.AppContext
}

// NewEditorService 创建编辑器服务
func NewEditorService(deps EditorDeps) *EditorService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DefaultLocale == (language.Tag{}) {
		deps.DefaultLocale = i18n.Supported[0]
	}
	return &EditorService{
		listings:      deps.Listings,
		places:        deps.Places,
		logs:          deps.Logs,
		defaultLocale: deps.DefaultLocale,
		now:           deps.Now,
		sessions:      make(map[string]*Session),
		contexts:      make(map[string]*i18n.AppContext),
	}
}

// ==================== 应用上下文 ====================

// AppContext 获取（或创建）用户的应用上下文
func (s *EditorService) AppContext(userID string) *i18n.AppContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	if app, ok := s.contexts[userID]; ok {
		return app
	}
	app := i18n.NewAppContext(userID, s.defaultLocale)
	s.contexts[userID] = app
	return app
}

// SetLocale 切换用户语言，已打开的编辑器同步更新
func (s *EditorService) SetLocale(userID string, tag language.Tag) {
	s.AppContext(userID).SetLocale(tag)
}

// ==================== 会话生命周期 ====================

// Open 打开编辑器；listingID 非空时加载已有挂车
func (s *EditorService) Open(ctx context.Context, userID, listingID string) (*Session, error) {
	var rec *model.ListingRecord
	if listingID != "" {
		var err error
		rec, err = s.listings.FindForSeller(ctx, userID, listingID)
		if err != nil {
			return nil, err
		}
	}

	form := editor.NewForm(editor.FormDeps{
		App:      s.AppContext(userID),
		Listings: s.listings,
		Places:   s.places,
		Now:      s.now,
	})
	if rec != nil {
		form.Hydrate(rec)
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		form:      form,
		lastUsed:  now,
		now:       s.now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Printf("[Editor] 用户 %s 打开编辑器 %s (listing=%q)", userID, sess.ID, listingID)
	return sess, nil
}

// Get 获取会话，只能访问自己的会话
func (s *EditorService) Get(id, userID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || sess.UserID != userID {
		return nil, errSessionNotFound(id)
	}
	return sess, nil
}

// Do 查找会话并串行执行表单操作
func (s *EditorService) Do(id, userID string, fn func(f *editor.Form) error) error {
	sess, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	return sess.Do(fn)
}

// Discard 关闭编辑器，丢弃全部未提交状态
func (s *EditorService) Discard(id, userID string) error {
	sess, err := s.Get(id, userID)
	if err != nil {
		return err
	}
	s.remove(sess)
	return nil
}

func (s *EditorService) remove(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	sess.close()
}

// Count 打开中的会话数
func (s *EditorService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle 清理闲置超过 maxIdle 的会话，返回清理数量
func (s *EditorService) EvictIdle(maxIdle time.Duration) int {
	deadline := s.now().Add(-maxIdle)

	s.mu.RLock()
	var stale []*Session
	for _, sess := range s.sessions {
		if sess.idleSince().Before(deadline) {
			stale = append(stale, sess)
		}
	}
	s.mu.RUnlock()

	for _, sess := range stale {
		s.remove(sess)
	}
	return len(stale)
}

// ==================== 地点 ====================

// Suggest 地点联想（不占用会话锁）
func (s *EditorService) Suggest(ctx context.Context, id, userID, text string) ([]Prediction, error) {
	if _, err := s.Get(id, userID); err != nil {
		return nil, err
	}
	return s.places.Suggest(ctx, text), nil
}

// SelectPlace 解析候选地点并写入表单
func (s *EditorService) SelectPlace(ctx context.Context, id, userID, placeID string) (model.Location, error) {
	var loc model.Location
	err := s.Do(id, userID, func(f *editor.Form) error {
		var err error
		loc, err = f.SelectPlace(ctx, placeID)
		return err
	})
	return loc, err
}

// ==================== 提交 ====================

// SubmitResult 提交结果
type SubmitResult struct {
	Action string               `json:"action"`
	Record *model.ListingRecord `json:"record"`
}

// Submit 提交表单；成功后关闭会话（对应弹窗关闭）
func (s *EditorService) Submit(ctx context.Context, id, userID string) (*SubmitResult, error) {
	sess, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	var result *SubmitResult
	err = sess.Do(func(f *editor.Form) error {
		if err := f.ValidateForSubmit(); err != nil {
			return err
		}

		action := model.SubmitActionCreate
		if f.ListingID() != "" {
			action = model.SubmitActionUpdate
		}
		entry := s.newLogEntry(sess, f, action)

		start := s.now()
		rec, err := f.Submit(ctx)
		entry.DurationMs = s.now().Sub(start).Milliseconds()

		if err != nil {
			entry.Status = model.SubmitStatusFailed
			entry.ErrorMsg = apperrors.As(err).Message
			s.saveLog(ctx, entry)
			return err
		}

		entry.Status = model.SubmitStatusSuccess
		if rec != nil && rec.ID != "" {
			entry.ListingID = rec.ID
		}
		s.saveLog(ctx, entry)

		result = &SubmitResult{Action: action, Record: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.remove(sess)
	log.Printf("[Editor] 编辑器 %s 提交成功 (%s)", sess.ID, result.Action)
	return result, nil
}

func (s *EditorService) newLogEntry(sess *Session, f *editor.Form, action string) *model.SubmissionLog {
	closed, _ := json.Marshal(f.Calendar().Closed().Strings())
	return &model.SubmissionLog{
		UserID:      sess.UserID,
		ListingID:   f.ListingID(),
		SessionID:   sess.ID,
		Action:      action,
		ImageCount:  len(f.Images().Existing()),
		StagedCount: len(f.Images().Staged()),
		ClosedDates: datatypes.JSON(closed),
	}
}

// saveLog 记录失败不影响提交结果
func (s *EditorService) saveLog(ctx context.Context, entry *model.SubmissionLog) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		log.Printf("[Editor] 保存提交记录失败: %v", err)
	}
}
