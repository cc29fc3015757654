package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/repository"
)

// fakeLinkRepo — заглушка UploadLinkRepository в памяти.
type fakeLinkRepo struct {
	links map[string]*model.UploadLink // по токену
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: map[string]*model.UploadLink{}}
}

func (f *fakeLinkRepo) Create(ctx context.Context, link *model.UploadLink) error {
	if _, ok := f.links[link.Token]; ok {
		return repository.ErrConflict
	}
	link.ID = "id-" + link.Token[:8]
	link.CreatedAt = time.Now()
	f.links[link.Token] = link
	return nil
}

func (f *fakeLinkRepo) GetByToken(ctx context.Context, token string) (*model.UploadLink, error) {
	link, ok := f.links[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (f *fakeLinkRepo) List(ctx context.Context) ([]*model.UploadLink, error) {
	out := make([]*model.UploadLink, 0, len(f.links))
	for _, l := range f.links {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeLinkRepo) MarkUsed(ctx context.Context, token string) error {
	link, ok := f.links[token]
	if !ok || link.Type != model.LinkTypeTemporary {
		return repository.ErrNotFound
	}
	link.Used = true
	link.Active = false
	return nil
}

func (f *fakeLinkRepo) Delete(ctx context.Context, id string) error {
	for token, l := range f.links {
		if l.ID == id {
			delete(f.links, token)
			return nil
		}
	}
	return repository.ErrNotFound
}

func newLinkService(repo repository.UploadLinkRepository) *UploadLinkService {
	return NewUploadLinkService(repo, 30*time.Minute, testLogger())
}

// TestUploadLinkIssue проверяет выпуск временной и постоянной ссылок.
func TestUploadLinkIssue(t *testing.T) {
	repo := newFakeLinkRepo()
	svc := newLinkService(repo)
	ctx := context.Background()

	temp, err := svc.Issue(ctx, "admin-1", UploadLinkInput{
		Type:        model.LinkTypeTemporary,
		Description: "для подрядчика",
	})
	if err != nil {
		t.Fatalf("Issue(temporary) ошибка: %v", err)
	}
	if len(temp.Token) != 64 {
		t.Errorf("длина токена = %d, хотели 64 hex-символа", len(temp.Token))
	}
	if temp.ExpiresAt == nil {
		t.Fatal("у временной ссылки нет срока истечения")
	}
	ttl := time.Until(*temp.ExpiresAt)
	if ttl < 29*time.Minute || ttl > 31*time.Minute {
		t.Errorf("срок по умолчанию = %v, хотели ~30 минут", ttl)
	}
	if !temp.Active || temp.Used {
		t.Errorf("новая ссылка: Active=%v, Used=%v", temp.Active, temp.Used)
	}

	perm, err := svc.Issue(ctx, "admin-1", UploadLinkInput{Type: model.LinkTypePermanent})
	if err != nil {
		t.Fatalf("Issue(permanent) ошибка: %v", err)
	}
	if perm.ExpiresAt != nil {
		t.Error("у постоянной ссылки не должно быть срока истечения")
	}
	if perm.Token == temp.Token {
		t.Error("токены ссылок совпали")
	}
}

// TestUploadLinkIssueExpiry проверяет разбор срока жизни из формы.
func TestUploadLinkIssueExpiry(t *testing.T) {
	tests := []struct {
		name      string
		expiresIn string
		wantTTL   time.Duration
	}{
		{"явный срок", "60", 60 * time.Minute},
		{"пустой — срок по умолчанию", "", 30 * time.Minute},
		{"нечисловой — срок по умолчанию", "скоро", 30 * time.Minute},
		{"отрицательный — срок по умолчанию", "-5", 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newLinkService(newFakeLinkRepo())

			link, err := svc.Issue(context.Background(), "admin-1", UploadLinkInput{
				Type:      model.LinkTypeTemporary,
				ExpiresIn: tt.expiresIn,
			})
			if err != nil {
				t.Fatalf("Issue() ошибка: %v", err)
			}

			ttl := time.Until(*link.ExpiresAt)
			if ttl < tt.wantTTL-time.Minute || ttl > tt.wantTTL+time.Minute {
				t.Errorf("TTL = %v, хотели ~%v", ttl, tt.wantTTL)
			}
		})
	}
}

// TestUploadLinkIssueInvalidType проверяет отказ на неизвестном типе.
func TestUploadLinkIssueInvalidType(t *testing.T) {
	svc := newLinkService(newFakeLinkRepo())

	_, err := svc.Issue(context.Background(), "admin-1", UploadLinkInput{Type: "eternal"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Issue(неизвестный тип) = %v, ожидали ErrValidation", err)
	}
}

// TestUploadLinkValidate проверяет все состояния ссылки.
func TestUploadLinkValidate(t *testing.T) {
	repo := newFakeLinkRepo()
	svc := newLinkService(repo)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	repo.links["ok"] = &model.UploadLink{Token: "ok", Type: model.LinkTypeTemporary, Active: true, ExpiresAt: &future}
	repo.links["inactive"] = &model.UploadLink{Token: "inactive", Type: model.LinkTypePermanent, Active: false}
	repo.links["used"] = &model.UploadLink{Token: "used", Type: model.LinkTypeTemporary, Active: true, Used: true}
	repo.links["expired"] = &model.UploadLink{Token: "expired", Type: model.LinkTypeTemporary, Active: true, ExpiresAt: &past}
	// Постоянная ссылка не истекает и не гасится
	repo.links["perm"] = &model.UploadLink{Token: "perm", Type: model.LinkTypePermanent, Active: true}

	tests := []struct {
		token string
		want  error
	}{
		{"ok", nil},
		{"perm", nil},
		{"missing", ErrNotFound},
		{"inactive", ErrLinkInactive},
		{"used", ErrLinkUsed},
		{"expired", ErrLinkExpired},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			_, err := svc.Validate(ctx, tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate(%q) = %v, ожидали %v", tt.token, err, tt.want)
			}
		})
	}
}

// TestUploadLinkRedeem проверяет гашение временной ссылки.
func TestUploadLinkRedeem(t *testing.T) {
	repo := newFakeLinkRepo()
	svc := newLinkService(repo)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	repo.links["temp"] = &model.UploadLink{Token: "temp", Type: model.LinkTypeTemporary, Active: true, ExpiresAt: &future}
	repo.links["perm"] = &model.UploadLink{Token: "perm", Type: model.LinkTypePermanent, Active: true}

	if err := svc.Redeem(ctx, "temp"); err != nil {
		t.Fatalf("Redeem(temporary) ошибка: %v", err)
	}
	if _, err := svc.Validate(ctx, "temp"); !errors.Is(err, ErrLinkInactive) {
		t.Errorf("Validate(после гашения) = %v, ожидали ErrLinkInactive", err)
	}

	// Постоянная ссылка не гасится
	if err := svc.Redeem(ctx, "perm"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Redeem(permanent) = %v, ожидали ErrNotFound", err)
	}
	if _, err := svc.Validate(ctx, "perm"); err != nil {
		t.Errorf("постоянная ссылка перестала работать: %v", err)
	}
}
