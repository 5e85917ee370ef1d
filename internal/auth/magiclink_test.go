package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	deleted map[string]bool // emails of soft-deleted accounts
	created int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*model.User{}, deleted: map[string]bool{}}
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok && !u.IsDeleted {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.PrimaryEmail == email && !u.IsDeleted {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleted[email] {
		return nil, repository.ErrConflict
	}
	f.created++
	u := &model.User{ID: fmt.Sprintf("user-%d", f.created), PrimaryEmail: email, Role: model.PlatformUser}
	f.byID[u.ID] = u
	return u, nil
}

type record struct {
	magic, digest string
}

type fakeSessions struct {
	mu   sync.Mutex
	rows map[string]*record
}

func newFakeSessions() *fakeSessions { return &fakeSessions{rows: map[string]*record{}} }

func (f *fakeSessions) SetMagicToken(_ context.Context, userID, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[userID]
	if !ok {
		r = &record{}
		f.rows[userID] = r
	}
	r.magic = tokenID
	return nil
}

func (f *fakeSessions) ConsumeMagicToken(_ context.Context, userID, tokenID, digest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[userID]
	if !ok || r.magic == "" || r.magic != tokenID {
		return repository.ErrNotFound
	}
	r.magic, r.digest = "", digest
	return nil
}

func (f *fakeSessions) RefreshDigest(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[userID]; ok && r.digest != "" {
		return r.digest, nil
	}
	return "", repository.ErrNotFound
}

func (f *fakeSessions) ClearRefresh(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[userID]; ok {
		r.digest = ""
	}
	return nil
}

type sentMail struct {
	to, template string
	payload      map[string]any
}

type fakeMail struct {
	sent []sentMail
	err  error
}

func (f *fakeMail) Send(_ context.Context, to, template string, payload map[string]any) error {
	f.sent = append(f.sent, sentMail{to, template, payload})
	return f.err
}

func (f *fakeMail) lastToken(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatalf("no mail sent")
	}
	tok, _ := f.sent[len(f.sent)-1].payload["token"].(string)
	return tok
}

type issuerFixture struct {
	issuer   *MagicLinkIssuer
	codec    *Codec
	users    *fakeUsers
	sessions *fakeSessions
	mail     *fakeMail
}

func newIssuerFixture(t *testing.T) issuerFixture {
	t.Helper()
	codec, err := NewCodec(testConfig())
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	f := issuerFixture{codec: codec, users: newFakeUsers(), sessions: newFakeSessions(), mail: &fakeMail{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.issuer = NewMagicLinkIssuer(f.users, f.sessions, codec, f.mail, "http://localhost:3000/auth/verify", log)
	return f
}

func TestRequestSignInCreatesUserAndSendsLink(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := context.Background()

	if err := f.issuer.RequestSignIn(ctx, "  New@Example.com "); err != nil {
		t.Fatalf("RequestSignIn: %v", err)
	}
	u, err := f.users.FindByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if len(f.mail.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(f.mail.sent))
	}
	m := f.mail.sent[0]
	if m.to != "new@example.com" || m.template != TemplateMagicLink {
		t.Fatalf("mail = %+v", m)
	}

	raw := f.mail.lastToken(t)
	claims, ok := f.codec.Verify(raw, PurposeMagic)
	if !ok || claims.UserID != u.ID {
		t.Fatalf("emailed token does not verify: %+v", claims)
	}
	if got := f.sessions.rows[u.ID].magic; got != claims.TokenID {
		t.Fatalf("stored magic = %q, want %q", got, claims.TokenID)
	}

	link, err := url.Parse(m.payload["url"].(string))
	if err != nil || link.Query().Get("token") != raw || link.Path != "/auth/verify" {
		t.Fatalf("link = %v (%v)", m.payload["url"], err)
	}
}

func TestVerifySignInIsSingleUse(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := context.Background()
	if err := f.issuer.RequestSignIn(ctx, "new@example.com"); err != nil {
		t.Fatalf("RequestSignIn: %v", err)
	}
	raw := f.mail.lastToken(t)

	sess, err := f.issuer.VerifySignIn(ctx, raw)
	if err != nil {
		t.Fatalf("VerifySignIn: %v", err)
	}
	if _, ok := f.codec.Verify(sess.Access.Value, PurposeAccess); !ok {
		t.Fatalf("issued access token does not verify")
	}
	r := f.sessions.rows[sess.User.ID]
	if r.magic != "" {
		t.Fatalf("magic token not cleared")
	}
	if r.digest != HashToken(sess.Refresh.Value) {
		t.Fatalf("stored digest does not match the issued refresh token")
	}

	if _, err := f.issuer.VerifySignIn(ctx, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("second VerifySignIn err = %v, want ErrInvalidToken", err)
	}
}

func TestNewLinkReplacesPrevious(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := context.Background()
	_ = f.issuer.RequestSignIn(ctx, "new@example.com")
	first := f.mail.lastToken(t)
	_ = f.issuer.RequestSignIn(ctx, "new@example.com")
	second := f.mail.lastToken(t)

	if _, err := f.issuer.VerifySignIn(ctx, first); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("superseded link err = %v, want ErrInvalidToken", err)
	}
	if _, err := f.issuer.VerifySignIn(ctx, second); err != nil {
		t.Fatalf("latest link rejected: %v", err)
	}
	if f.users.created != 1 {
		t.Fatalf("created %d users, want 1", f.users.created)
	}
}

func TestVerifySignInRejectsOtherTokens(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := context.Background()
	_ = f.issuer.RequestSignIn(ctx, "new@example.com")
	u, _ := f.users.FindByEmail(ctx, "new@example.com")

	access, _ := f.codec.MintAccess(u.ID)
	for _, raw := range []string{"", "garbage", access.Value} {
		_, err := f.issuer.VerifySignIn(ctx, raw)
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("VerifySignIn(%q) err = %v, want ErrInvalidToken", raw, err)
		}
		if KindOf(err) != KindInvalidCredential {
			t.Fatalf("kind = %v, want %v", KindOf(err), KindInvalidCredential)
		}
	}
}

func TestVerifySignInForDeletedUser(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := context.Background()
	_ = f.issuer.RequestSignIn(ctx, "gone@example.com")
	raw := f.mail.lastToken(t)
	u, _ := f.users.FindByEmail(ctx, "gone@example.com")
	u.IsDeleted = true

	if _, err := f.issuer.VerifySignIn(ctx, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestRequestSignInSurvivesMailFailure(t *testing.T) {
	f := newIssuerFixture(t)
	f.mail.err = errors.New("smtp down")
	if err := f.issuer.RequestSignIn(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("RequestSignIn err = %v, want nil", err)
	}
}

func TestRequestSignInForDeletedAccountSendsNothing(t *testing.T) {
	f := newIssuerFixture(t)
	f.users.deleted["gone@example.com"] = true
	if err := f.issuer.RequestSignIn(context.Background(), "gone@example.com"); err != nil {
		t.Fatalf("RequestSignIn err = %v, want nil", err)
	}
	if len(f.mail.sent) != 0 {
		t.Fatalf("sent %d mails to a deleted account", len(f.mail.sent))
	}
}

func TestLogoutClearsRefresh(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := context.Background()
	_ = f.issuer.RequestSignIn(ctx, "new@example.com")
	sess, err := f.issuer.VerifySignIn(ctx, f.mail.lastToken(t))
	if err != nil {
		t.Fatalf("VerifySignIn: %v", err)
	}
	if err := f.issuer.Logout(ctx, sess.User.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.sessions.RefreshDigest(ctx, sess.User.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("RefreshDigest err = %v, want ErrNotFound", err)
	}
}
