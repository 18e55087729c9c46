// Package session establishes, refreshes and tears down the authenticated
// identity, and mediates every read and write of its profile.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/keystore"
	"finance-dashboard/internal/objectstore"
	"finance-dashboard/internal/remote"
)

// DefaultDemoEmail is used by SignInDemo when no email is given.
const DefaultDemoEmail = "dev@example.com"

var (
	ErrNoSession      = errors.New("not authenticated")
	ErrNoObjectStore  = errors.New("avatar storage is not configured")
	ErrEmptyAvatarKey = errors.New("avatar file name is empty")
)

// State is a snapshot for the presentation layer.
type State struct {
	Session *domain.Session `json:"session"`
	Profile *domain.Profile `json:"profile"`
	Loading bool            `json:"loading"`
}

// Listener is called after every session or profile change.
type Listener func(State)

type Options struct {
	Objects objectstore.Store
	Theme   Theme
	Logger  zerolog.Logger
}

// Store holds at most one session per process.
type Store struct {
	source  remote.DataSource
	keys    keystore.Store
	objects objectstore.Store
	theme   Theme
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	loading  bool
	session  *domain.Session
	profile  *domain.Profile
	detached bool // 会话由本地合成，数据源不认识它
	dark     *bool

	// 资料读取的序号：晚发起的读取结果不会被早发起的覆盖
	refreshSeq uint64
	appliedSeq uint64

	sub       *remote.Subscription[domain.Profile]
	cancelSub context.CancelFunc

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

func New(source remote.DataSource, keys keystore.Store, opts Options) *Store {
	return &Store{
		source:    source,
		keys:      keys,
		objects:   opts.Objects,
		theme:     opts.Theme,
		logger:    opts.Logger.With().Str("component", "session").Logger(),
		now:       time.Now,
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// Loading is true only while LoadSession resolves the initial session.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Current returns the active session, or nil.
func (s *Store) Current() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	c := *s.session
	return &c
}

// Profile returns the active profile, or nil.
func (s *Store) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	st := State{Loading: s.loading}
	if s.session != nil {
		c := *s.session
		st.Session = &c
	}
	if s.profile != nil {
		p := *s.profile
		st.Profile = &p
	}
	return st
}

// Watch registers fn and returns a function that removes it.
func (s *Store) Watch(fn Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	// 快照和主题切换在同一把锁内完成，交错的通知不会把主题改回旧值
	s.mu.Lock()
	st := s.stateLocked()
	s.applyThemeLocked(st.Profile)
	s.mu.Unlock()

	s.lmu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

// applyThemeLocked toggles the global theme when the preference changes.
// s.mu must be held.
func (s *Store) applyThemeLocked(p *domain.Profile) {
	if s.theme == nil {
		return
	}
	dark := p != nil && p.Dark()
	if s.dark != nil && *s.dark == dark {
		return
	}
	s.dark = &dark
	s.theme.SetDark(dark)
}

// LoadSession recovers the session on process start: first from the data
// source, then from the locally persisted demo identity. Finding nothing is
// not an error.
func (s *Store) LoadSession(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	sess, err := s.source.CurrentSession(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("source", s.source.Name()).Msg("recover session failed, trying demo identity")
	}

	detached := false
	if sess == nil {
		if demo := s.storedDemo(); demo != nil {
			sess = demo
			detached = true
		}
	}

	if sess != nil {
		s.establish(ctx, *sess, detached)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

func (s *Store) storedDemo() *domain.Session {
	var demo domain.Session
	if err := keystore.GetJSON(s.keys, keystore.DemoUserKey, &demo); err != nil {
		if !errors.Is(err, keystore.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("read demo identity")
		}
		return nil
	}
	if demo.ID == "" {
		demo.ID = domain.DemoUserID
	}
	return &demo
}

// establish installs sess, loads its profile and opens the profile stream.
func (s *Store) establish(ctx context.Context, sess domain.Session, detached bool) {
	s.teardown()

	s.mu.Lock()
	s.session = &sess
	s.detached = detached
	s.profile = nil
	if detached {
		p := domain.DefaultProfile(sess.ID, sess.Email)
		s.profile = &p
	}
	s.mu.Unlock()

	if detached {
		return
	}
	if err := s.RefreshProfile(ctx); err != nil {
		s.logger.Warn().Err(err).Str("user_id", sess.ID).Msg("load profile failed")
	}
	s.subscribe(sess.ID)
}

func (s *Store) SignIn(ctx context.Context, email, password string) error {
	sess, err := s.source.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.establish(ctx, sess, false)
	s.notify()
	s.logger.Info().Str("user_id", sess.ID).Msg("signed in")
	return nil
}

func (s *Store) SignUp(ctx context.Context, email, password string) error {
	sess, err := s.source.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	s.establish(ctx, sess, false)
	s.notify()
	s.logger.Info().Str("user_id", sess.ID).Msg("signed up")
	return nil
}

// SignInDemo manufactures the demo session without contacting the remote
// store and persists it for reload-survival. It always succeeds.
func (s *Store) SignInDemo(ctx context.Context, email string) domain.Session {
	if email == "" {
		email = DefaultDemoEmail
	}
	sess := domain.Session{ID: domain.DemoUserID, Email: email}
	if err := keystore.PutJSON(s.keys, keystore.DemoUserKey, sess); err != nil {
		s.logger.Warn().Err(err).Msg("persist demo identity")
	}

	// 本地模式下数据源能识别演示身份，资料和实时订阅走数据源
	attached := false
	if cur, err := s.source.CurrentSession(ctx); err == nil && cur != nil && cur.ID == sess.ID {
		attached = true
	}

	s.teardown()
	p := domain.DefaultProfile(sess.ID, email)
	s.mu.Lock()
	s.session = &sess
	s.profile = &p
	s.detached = !attached
	s.mu.Unlock()
	if attached {
		s.subscribe(sess.ID)
	}

	s.notify()
	s.logger.Info().Str("email", email).Msg("demo session started")
	return sess
}

// SignOut clears the demo identity and invalidates the remote session. The
// in-memory session and profile are cleared even when the remote call fails;
// that failure is still returned.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.keys.Delete(keystore.DemoUserKey); err != nil {
		s.logger.Warn().Err(err).Msg("delete demo identity")
	}

	err := s.source.SignOut(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("remote sign out failed")
	}

	s.teardown()
	s.mu.Lock()
	s.session = nil
	s.profile = nil
	s.detached = false
	s.mu.Unlock()
	s.notify()

	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// RefreshProfile re-reads the profile of the current session. It is a no-op
// without a session; a result arriving after the session changed is dropped.
func (s *Store) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	sess, detached := s.session, s.detached
	s.refreshSeq++
	seq := s.refreshSeq
	s.mu.Unlock()
	if sess == nil || detached {
		return nil
	}
	id := sess.ID

	p, err := s.source.GetProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	s.mu.Lock()
	if s.session == nil || s.session.ID != id || seq < s.appliedSeq {
		s.mu.Unlock()
		return nil
	}
	s.appliedSeq = seq
	s.profile = &p
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateProfile merges upd into the profile. Attached sessions upsert the row
// (creating it if missing) and re-read it.
func (s *Store) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) error {
	s.mu.RLock()
	sess, detached := s.session, s.detached
	s.mu.RUnlock()
	if sess == nil {
		return ErrNoSession
	}

	if detached {
		s.mergeLocal(upd)
		return nil
	}

	if err := s.source.UpsertProfile(ctx, sess.ID, upd); err != nil {
		return err
	}
	return s.RefreshProfile(ctx)
}

func (s *Store) mergeLocal(upd domain.ProfileUpdate) {
	s.mu.Lock()
	if s.profile != nil {
		p := upd.Apply(*s.profile)
		s.profile = &p
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateEmail changes the login email and mirrors it onto the profile.
func (s *Store) UpdateEmail(ctx context.Context, email string) error {
	s.mu.RLock()
	sess, detached := s.session, s.detached
	s.mu.RUnlock()
	if sess == nil {
		return ErrNoSession
	}

	upd := domain.ProfileUpdate{Email: &email}
	if detached {
		s.mergeLocal(upd)
		return nil
	}

	if err := s.source.UpdateCredentials(ctx, &email, nil); err != nil {
		return err
	}
	s.mu.Lock()
	if s.session != nil && s.session.ID == sess.ID {
		renamed := *s.session
		renamed.Email = email
		s.session = &renamed
	}
	s.mu.Unlock()

	if err := s.source.UpsertProfile(ctx, sess.ID, upd); err != nil {
		return err
	}
	return s.RefreshProfile(ctx)
}

// UpdatePassword is a successful no-op for sessions without credentials.
func (s *Store) UpdatePassword(ctx context.Context, password string) error {
	s.mu.RLock()
	sess, detached := s.session, s.detached
	s.mu.RUnlock()
	if sess == nil {
		return ErrNoSession
	}
	if detached {
		return nil
	}
	return s.source.UpdateCredentials(ctx, nil, &password)
}

func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	return s.source.RequestPasswordReset(ctx, email)
}

// ConfirmPasswordReset redeems a reset token. It does not sign in.
func (s *Store) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	return s.source.ConfirmPasswordReset(ctx, token, password)
}

// UploadAvatar stores the image at "<uid>/<unix-ms>_<name>" and points the
// profile at its public URL.
func (s *Store) UploadAvatar(ctx context.Context, name string, r io.Reader) (string, error) {
	sess := s.Current()
	if sess == nil {
		return "", ErrNoSession
	}
	if s.objects == nil {
		return "", ErrNoObjectStore
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == "" {
		return "", ErrEmptyAvatarKey
	}

	key := fmt.Sprintf("%s/%d_%s", sess.ID, s.now().UnixMilli(), base)
	if err := s.objects.Upload(ctx, key, r, true); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	url := s.objects.PublicURL(key)
	if err := s.UpdateProfile(ctx, domain.ProfileUpdate{AvatarURL: &url}); err != nil {
		return "", err
	}
	return url, nil
}

// subscribe re-runs RefreshProfile on every change to the profile row.
func (s *Store) subscribe(id string) {
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := s.source.SubscribeProfile(ctx, id)
	if err != nil {
		cancel()
		s.logger.Warn().Err(err).Str("user_id", id).Msg("profile realtime unavailable")
		return
	}

	s.mu.Lock()
	s.sub = sub
	s.cancelSub = cancel
	s.mu.Unlock()

	go func() {
		for range sub.Events() {
			if cur := s.Current(); cur == nil || cur.ID != id {
				return
			}
			if err := s.RefreshProfile(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("refresh profile after change event")
			}
		}
	}()
}

func (s *Store) teardown() {
	s.mu.Lock()
	sub, cancel := s.sub, s.cancelSub
	s.sub, s.cancelSub = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		_ = sub.Close()
	}
}

// Close drops the realtime subscription.
func (s *Store) Close() error {
	s.teardown()
	return nil
}
