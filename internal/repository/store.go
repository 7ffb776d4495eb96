package repository

import (
	"context"

	"gorm.io/gorm"
)

// Session groups the repositories bound to one database connection.
type Session struct {
	Users *UserRepository
	Logs  *LogRepository
}

// Store hands out short-lived sessions. Every command and every digest pass
// runs in its own session, and the connection goes back to the pool when fn returns.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Session runs fn on a dedicated connection.
func (s *Store) Session(ctx context.Context, fn func(*Session) error) error {
	return s.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return fn(&Session{
			Users: NewUserRepository(conn),
			Logs:  NewLogRepository(conn),
		})
	})
}

// TableNames lists tables that exist in the database.
func (s *Store) TableNames(ctx context.Context) ([]string, error) {
	return s.db.WithContext(ctx).Migrator().GetTables()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
