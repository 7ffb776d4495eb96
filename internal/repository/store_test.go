package repository

import (
	"context"
	"path/filepath"
	"testing"

	"weather-news-bot/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	store := NewStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Session(ctx, func(s *Session) error {
		first, err := s.Users.GetOrCreate(ctx, 1001, "Юрий")
		if err != nil {
			return err
		}
		second, err := s.Users.GetOrCreate(ctx, 1001, "Другое имя")
		if err != nil {
			return err
		}

		if first.ID != second.ID {
			t.Errorf("GetOrCreate() ids differ: %d vs %d", first.ID, second.ID)
		}
		if second.Name != "Юрий" {
			t.Errorf("GetOrCreate() name = %q, want original name", second.Name)
		}
		if first.SubscriptionSettings != model.Unsubscribed {
			t.Errorf("new user subscription = %q, want %q", first.SubscriptionSettings, model.Unsubscribed)
		}
		if first.RegisteredAt.IsZero() {
			t.Error("new user RegisteredAt is zero")
		}

		n, err := s.Users.Count(ctx)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("Count() = %d, want 1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
}

func TestSetSubscription(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Session(ctx, func(s *Session) error {
		user, err := s.Users.GetOrCreate(ctx, 42, "Анна")
		if err != nil {
			return err
		}
		if _, err := s.Logs.Create(ctx, user.ID, "/start"); err != nil {
			return err
		}

		updated, err := s.Users.SetSubscription(ctx, 42, model.Subscribed)
		if err != nil {
			return err
		}
		if updated == nil || !updated.IsSubscribed() {
			t.Fatalf("SetSubscription() = %+v, want subscribed user", updated)
		}

		if _, err := s.Users.SetSubscription(ctx, 42, model.Unsubscribed); err != nil {
			return err
		}

		reloaded, err := s.Users.FindByTelegramID(ctx, 42)
		if err != nil {
			return err
		}
		if reloaded.SubscriptionSettings != model.Unsubscribed {
			t.Errorf("subscription = %q, want %q", reloaded.SubscriptionSettings, model.Unsubscribed)
		}

		logs, err := s.Logs.ListByUser(ctx, user.ID, 10)
		if err != nil {
			return err
		}
		if len(logs) != 1 {
			t.Errorf("ListByUser() returned %d logs, want 1", len(logs))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
}

func TestSetSubscription_UnknownUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Session(ctx, func(s *Session) error {
		user, err := s.Users.SetSubscription(ctx, 777, model.Subscribed)
		if err != nil {
			return err
		}
		if user != nil {
			t.Errorf("SetSubscription() = %+v, want nil", user)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
}

func TestListSubscribed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Session(ctx, func(s *Session) error {
		for _, id := range []int64{1, 2, 3} {
			if _, err := s.Users.GetOrCreate(ctx, id, "user"); err != nil {
				return err
			}
		}
		for _, id := range []int64{1, 3} {
			if _, err := s.Users.SetSubscription(ctx, id, model.Subscribed); err != nil {
				return err
			}
		}

		users, err := s.Users.ListSubscribed(ctx)
		if err != nil {
			return err
		}
		if len(users) != 2 || users[0].TelegramID != 1 || users[1].TelegramID != 3 {
			t.Errorf("ListSubscribed() = %+v, want telegram ids 1 and 3", users)
		}

		n, err := s.Users.CountSubscribed(ctx)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("CountSubscribed() = %d, want 2", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
}

func TestListByUser_NewestFirstAndBounded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Session(ctx, func(s *Session) error {
		user, err := s.Users.GetOrCreate(ctx, 5, "Пётр")
		if err != nil {
			return err
		}
		other, err := s.Users.GetOrCreate(ctx, 6, "Иван")
		if err != nil {
			return err
		}
		for _, cmd := range []string{"/start", "/help", "/news", "/weather Москва"} {
			if _, err := s.Logs.Create(ctx, user.ID, cmd); err != nil {
				return err
			}
		}
		if _, err := s.Logs.Create(ctx, other.ID, "/events"); err != nil {
			return err
		}

		logs, err := s.Logs.ListByUser(ctx, user.ID, 3)
		if err != nil {
			return err
		}
		want := []string{"/weather Москва", "/news", "/help"}
		if len(logs) != len(want) {
			t.Fatalf("ListByUser() returned %d logs, want %d", len(logs), len(want))
		}
		for i, entry := range logs {
			if entry.Command != want[i] {
				t.Errorf("logs[%d].Command = %q, want %q", i, entry.Command, want[i])
			}
			if entry.UserID != user.ID {
				t.Errorf("logs[%d].UserID = %d, want %d", i, entry.UserID, user.ID)
			}
		}

		total, err := s.Logs.Count(ctx)
		if err != nil {
			return err
		}
		if total != 5 {
			t.Errorf("Count() = %d, want 5", total)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
}

func TestSqlitePath(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{name: "plain path", dsn: "bot.db", want: "bot.db"},
		{name: "sqlalchemy url", dsn: "sqlite:///bot.db", want: "bot.db"},
		{name: "absolute sqlalchemy url", dsn: "sqlite:////var/lib/bot.db", want: "/var/lib/bot.db"},
		{name: "short prefix", dsn: "sqlite://data/bot.db", want: "data/bot.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sqlitePath(tt.dsn); got != tt.want {
				t.Errorf("sqlitePath(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}

func TestTableNames(t *testing.T) {
	store := newTestStore(t)

	names, err := store.TableNames(context.Background())
	if err != nil {
		t.Fatalf("TableNames() error = %v", err)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"users", "logs"} {
		if !seen[want] {
			t.Errorf("TableNames() = %v, missing %q", names, want)
		}
	}
}
