package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/model"
)

type stubBirthdayRepo struct {
	birthdays []model.Birthday
	nextID    int
}

func (m *stubBirthdayRepo) CreateBirthday(_ context.Context, b *model.Birthday) error {
	m.nextID++
	b.ID = fmt.Sprintf("bday-%d", m.nextID)
	m.birthdays = append(m.birthdays, *b)
	return nil
}

func (m *stubBirthdayRepo) GetBirthdayByID(_ context.Context, id string) (*model.Birthday, error) {
	for i := range m.birthdays {
		if m.birthdays[i].ID == id {
			return &m.birthdays[i], nil
		}
	}
	return nil, apperror.NotFound("birthday", id)
}

func (m *stubBirthdayRepo) ListBirthdaysByOwner(_ context.Context, ownerID string) ([]model.Birthday, error) {
	var out []model.Birthday
	for _, b := range m.birthdays {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *stubBirthdayRepo) UpdateBirthday(_ context.Context, b *model.Birthday) error { return nil }
func (m *stubBirthdayRepo) DeleteBirthday(_ context.Context, id string) error         { return nil }

func newTestService(repo *stubBirthdayRepo) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(repo, logger)
}

func TestCalendar_EmptyFeedIsValidCalendar(t *testing.T) {
	svc := newTestService(&stubBirthdayRepo{})

	data, err := svc.Calendar(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Errorf("empty feed is not a valid VCALENDAR:\n%s", out)
	}
}

func TestCalendar_ThreeYearsSkippingPreBirth(t *testing.T) {
	repo := &stubBirthdayRepo{}
	ctx := context.Background()

	// Born last year: the previous-year event would predate the birth
	// and must be skipped, leaving current + next year only.
	bornLastYear := time.Date(time.Now().Year()-1, time.June, 15, 0, 0, 0, 0, time.UTC)
	if err := repo.CreateBirthday(ctx, &model.Birthday{OwnerID: "user-1", PersonName: "Baby", BirthDate: bornLastYear}); err != nil {
		t.Fatal(err)
	}

	svc := newTestService(repo)
	data, err := svc.Calendar(ctx, "user-1")
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}

	out := string(data)
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("expected 2 events (pre-birth year skipped), got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "Baby's birthday (1)") {
		t.Errorf("summary with age missing:\n%s", out)
	}
}

func TestImportVCards_SkipsBadCards(t *testing.T) {
	repo := &stubBirthdayRepo{}
	svc := newTestService(repo)

	vcf := strings.Join([]string{
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Good Contact",
		"BDAY:1990-03-10",
		"END:VCARD",
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:No Birthday",
		"END:VCARD",
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Bad Date",
		"BDAY:sometime in spring",
		"END:VCARD",
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Year Unknown",
		"BDAY:--12-25",
		"END:VCARD",
	}, "\r\n") + "\r\n"

	result, err := svc.ImportVCards(context.Background(), "user-1", strings.NewReader(vcf))
	if err != nil {
		t.Fatalf("ImportVCards() error = %v", err)
	}
	if result.Imported != 2 || result.Skipped != 2 {
		t.Errorf("imported=%d skipped=%d, want 2/2", result.Imported, result.Skipped)
	}

	byName := map[string]model.Birthday{}
	for _, b := range repo.birthdays {
		byName[b.PersonName] = b
	}
	if b := byName["Good Contact"]; b.BirthDate.Year() != 1990 || b.BirthDate.Month() != time.March {
		t.Errorf("Good Contact date wrong: %v", b.BirthDate)
	}
	if b := byName["Year Unknown"]; b.BirthDate.Year() != placeholderYear || b.BirthDate.Day() != 25 {
		t.Errorf("Year Unknown should use the placeholder year: %v", b.BirthDate)
	}
}
