package repository

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type txKey struct{}

// GormStore implements Store on top of PostgreSQL through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an opened and migrated GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or the pooled handle.
func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *GormStore) Members() MemberRepository         { return gormMembers{s} }
func (s *GormStore) Votes() VoteRepository             { return gormVotes{s} }
func (s *GormStore) Counters() CounterRepository       { return gormCounters{s} }
func (s *GormStore) Evaluations() EvaluationRepository { return gormEvaluations{s} }
func (s *GormStore) Bookmarks() BookmarkRepository     { return gormBookmarks{s} }
func (s *GormStore) Reports() ReportRepository         { return gormReports{s} }
func (s *GormStore) Comments() CommentRepository       { return gormComments{s} }

// translate maps driver errors onto the repository sentinels.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Wrapf(ErrDuplicate, "%s: %s", op, pgErr.ConstraintName)
	}
	return errors.Wrap(err, op)
}

// create inserts the row only, never its belongs-to associations.
func create(db *gorm.DB, value any, op string) error {
	return translate(db.Omit(clause.Associations).Create(value).Error, op)
}

func exists(db *gorm.DB, model any, op string, query string, args ...any) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, op)
	}
	return count > 0, nil
}
