// Package main is the birthday reminder job, meant to run once a day
// from cron. It walks every user, computes which tracked birthdays fall
// within the reminder window, and emails a digest. With email disabled
// (SES_FROM_EMAIL unset) it exits immediately.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/giftwish/internal/config"
	"github.com/sakif/giftwish/internal/email"
	"github.com/sakif/giftwish/internal/recurrence"
	"github.com/sakif/giftwish/internal/repository"
	sqliteRepo "github.com/sakif/giftwish/internal/repository/sqlite"
)

const userPageSize = 100

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	mailer, err := email.NewService(ctx, cfg.FromEmail, cfg.BaseURL, logger)
	if err != nil {
		logger.Error("failed to create email service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !mailer.Enabled() {
		logger.Info("email disabled, nothing to do")
		return
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := run(ctx, db, mailer, cfg.ReminderDays, logger); err != nil {
		logger.Error("reminder run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run pages through all users and sends each a digest of birthdays in
// the next windowDays days. A send failure for one user is logged and
// skipped; it never aborts the rest of the run.
func run(ctx context.Context, db *sqliteRepo.DB, mailer *email.Service, windowDays int, logger *slog.Logger) error {
	// One reference date for the whole run, so a job crossing midnight
	// classifies every user's birthdays consistently.
	ref := time.Now()

	sent, skipped := 0, 0
	for offset := 0; ; offset += userPageSize {
		users, err := db.ListUsers(ctx, repository.ListOptions{Limit: userPageSize, Offset: offset})
		if err != nil {
			return err
		}
		if len(users) == 0 {
			break
		}

		for _, user := range users {
			entries, err := upcomingFor(ctx, db, user.ID, ref, windowDays)
			if err != nil {
				logger.Error("failed to compute upcoming birthdays",
					slog.String("user_id", user.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			if len(entries) == 0 {
				skipped++
				continue
			}

			if err := mailer.SendBirthdayReminder(ctx, user.Email, user.DisplayName, entries); err != nil {
				logger.Error("failed to send reminder",
					slog.String("user_id", user.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			sent++
		}

		if len(users) < userPageSize {
			break
		}
	}

	logger.Info("reminder run complete",
		slog.Int("sent", sent),
		slog.Int("skipped", skipped),
		slog.Int("window_days", windowDays),
	)
	return nil
}

func upcomingFor(ctx context.Context, birthdays repository.BirthdayRepository, ownerID string, ref time.Time, windowDays int) ([]recurrence.Entry, error) {
	tracked, err := birthdays.ListBirthdaysByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	entries := make([]recurrence.Entry, 0, len(tracked))
	for _, b := range tracked {
		next := recurrence.NextOccurrence(b.BirthDate, ref)
		if !recurrence.WithinWindow(next, ref, windowDays) {
			continue
		}
		entries = append(entries, recurrence.Entry{
			BirthdayID: b.ID,
			PersonName: b.PersonName,
			Next:       next,
			Kind:       recurrence.Classify(next, ref),
			AgeTurning: recurrence.AgeTurning(b.BirthDate, next),
		})
	}
	recurrence.Sort(entries)
	return entries, nil
}
