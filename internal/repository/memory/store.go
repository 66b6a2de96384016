// Package memory is an in-process repository.Store for tests and local runs.
//
// Transactions are serialised by a single lock and rolled back by restoring
// a snapshot. Reads made outside a transaction may observe the uncommitted
// state of a concurrent one.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository"
)

type txKey struct{}

type state struct {
	nextID      int
	members     map[int]models.Member
	votes       map[int]models.Vote
	evaluations map[int]models.VoteEvaluation
	bookmarks   map[int]models.VoteBookmark
	reports     map[int]models.VoteReport
	comments    map[int]models.Comment
}

func newState() state {
	return state{
		members:     map[int]models.Member{},
		votes:       map[int]models.Vote{},
		evaluations: map[int]models.VoteEvaluation{},
		bookmarks:   map[int]models.VoteBookmark{},
		reports:     map[int]models.VoteReport{},
		comments:    map[int]models.Comment{},
	}
}

func (s state) clone() state {
	c := state{
		nextID:      s.nextID,
		members:     make(map[int]models.Member, len(s.members)),
		votes:       make(map[int]models.Vote, len(s.votes)),
		evaluations: make(map[int]models.VoteEvaluation, len(s.evaluations)),
		bookmarks:   make(map[int]models.VoteBookmark, len(s.bookmarks)),
		reports:     make(map[int]models.VoteReport, len(s.reports)),
		comments:    make(map[int]models.Comment, len(s.comments)),
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.votes {
		c.votes[k] = v
	}
	for k, v := range s.evaluations {
		c.evaluations[k] = v
	}
	for k, v := range s.bookmarks {
		c.bookmarks[k] = v
	}
	for k, v := range s.reports {
		c.reports[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	return c
}

// Store implements repository.Store.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	committed := false
	defer func() {
		if !committed {
			s.mu.Lock()
			s.data = snapshot
			s.mu.Unlock()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) Members() repository.MemberRepository         { return members{s} }
func (s *Store) Votes() repository.VoteRepository             { return votes{s} }
func (s *Store) Counters() repository.CounterRepository       { return counters{s} }
func (s *Store) Evaluations() repository.EvaluationRepository { return evaluations{s} }
func (s *Store) Bookmarks() repository.BookmarkRepository     { return bookmarks{s} }
func (s *Store) Reports() repository.ReportRepository         { return reports{s} }
func (s *Store) Comments() repository.CommentRepository       { return comments{s} }

// with runs fn while holding the data lock.
func (s *Store) with(fn func(d *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (d *state) id() int {
	d.nextID++
	return d.nextID
}

func (d *state) deleteVote(id int) {
	delete(d.votes, id)
	for k, e := range d.evaluations {
		if e.VoteID == id {
			delete(d.evaluations, k)
		}
	}
	for k, b := range d.bookmarks {
		if b.VoteID == id {
			delete(d.bookmarks, k)
		}
	}
	for k, r := range d.reports {
		if r.VoteID == id {
			delete(d.reports, k)
		}
	}
	for k, c := range d.comments {
		if c.VoteID == id {
			delete(d.comments, k)
		}
	}
}

func (d *state) deleteMember(id int) {
	delete(d.members, id)
	for k, v := range d.votes {
		if v.MemberID == id {
			d.deleteVote(k)
		}
	}
	for k, e := range d.evaluations {
		if e.EvaluatorID == id {
			delete(d.evaluations, k)
		}
	}
	for k, b := range d.bookmarks {
		if b.BookmarkerID == id {
			delete(d.bookmarks, k)
		}
	}
	for k, r := range d.reports {
		if r.ReporterID == id {
			delete(d.reports, k)
		}
	}
	for k, c := range d.comments {
		if c.CommenterID == id {
			delete(d.comments, k)
		}
	}
}

type members struct{ s *Store }

func (r members) Create(ctx context.Context, member *models.Member) error {
	return r.s.with(func(d *state) error {
		for _, m := range d.members {
			if m.ProviderID == member.ProviderID || m.Nickname == member.Nickname {
				return repository.ErrDuplicate
			}
		}
		member.ID = d.id()
		member.CreatedAt = r.s.now()
		member.UpdatedAt = member.CreatedAt
		d.members[member.ID] = *member
		return nil
	})
}

func (r members) FindByID(ctx context.Context, id int) (models.Member, error) {
	var member models.Member
	err := r.s.with(func(d *state) error {
		m, ok := d.members[id]
		if !ok {
			return repository.ErrNotFound
		}
		member = m
		return nil
	})
	return member, err
}

func (r members) FindByProviderID(ctx context.Context, providerID string) (models.Member, error) {
	var member models.Member
	err := r.s.with(func(d *state) error {
		for _, m := range d.members {
			if m.ProviderID == providerID {
				member = m
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return member, err
}

func (r members) Delete(ctx context.Context, id int) error {
	return r.s.with(func(d *state) error {
		if _, ok := d.members[id]; !ok {
			return repository.ErrNotFound
		}
		d.deleteMember(id)
		return nil
	})
}

type votes struct{ s *Store }

func (r votes) Create(ctx context.Context, vote *models.Vote) error {
	return r.s.with(func(d *state) error {
		if _, ok := d.members[vote.MemberID]; !ok {
			return repository.ErrNotFound
		}
		vote.ID = d.id()
		vote.CreatedAt = r.s.now()
		vote.UpdatedAt = vote.CreatedAt
		stored := *vote
		stored.Member = models.Member{}
		d.votes[vote.ID] = stored
		return nil
	})
}

func (r votes) FindByID(ctx context.Context, id int) (models.Vote, error) {
	var vote models.Vote
	err := r.s.with(func(d *state) error {
		v, ok := d.votes[id]
		if !ok {
			return repository.ErrNotFound
		}
		v.Member = d.members[v.MemberID]
		vote = v
		return nil
	})
	return vote, err
}

// LockByID needs no row lock: transactions are already serialised.
func (r votes) LockByID(ctx context.Context, id int) (models.Vote, error) {
	return r.FindByID(ctx, id)
}

func (r votes) Exists(ctx context.Context, id int) (bool, error) {
	var found bool
	err := r.s.with(func(d *state) error {
		_, found = d.votes[id]
		return nil
	})
	return found, err
}

func (r votes) Delete(ctx context.Context, id int) error {
	return r.s.with(func(d *state) error {
		if _, ok := d.votes[id]; !ok {
			return repository.ErrNotFound
		}
		d.deleteVote(id)
		return nil
	})
}

func (r votes) List(ctx context.Context, filter repository.VoteFilter) ([]models.Vote, error) {
	var out []models.Vote
	err := r.s.with(func(d *state) error {
		for _, v := range d.votes {
			if filter.CursorID > 0 && v.ID >= filter.CursorID {
				continue
			}
			if !d.inScope(v, filter) {
				continue
			}
			v.Member = d.members[v.MemberID]
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (d *state) inScope(v models.Vote, filter repository.VoteFilter) bool {
	switch filter.Scope {
	case repository.ScopeOwnedBy:
		return v.MemberID == filter.MemberID
	case repository.ScopeEvaluatedBy:
		for _, e := range d.evaluations {
			if e.VoteID == v.ID && e.EvaluatorID == filter.MemberID {
				return true
			}
		}
		return false
	case repository.ScopeBookmarkedBy:
		for _, b := range d.bookmarks {
			if b.VoteID == v.ID && b.BookmarkerID == filter.MemberID {
				return true
			}
		}
		return false
	default:
		return true
	}
}

type counters struct{ s *Store }

func (r counters) Increase(ctx context.Context, voteID int, kind models.CounterKind, n int) error {
	return r.adjust(voteID, kind, n)
}

func (r counters) Decrease(ctx context.Context, voteID int, kind models.CounterKind, n int) error {
	return r.adjust(voteID, kind, -n)
}

func (r counters) adjust(voteID int, kind models.CounterKind, delta int) error {
	return r.s.with(func(d *state) error {
		v, ok := d.votes[voteID]
		if !ok {
			return repository.ErrNotFound
		}
		counter := v.Counter(kind)
		if counter == nil {
			return repository.ErrNotFound
		}
		if *counter+delta < 0 {
			return repository.ErrCounterUnderflow
		}
		*counter += delta
		d.votes[voteID] = v
		return nil
	})
}

type evaluations struct{ s *Store }

func (r evaluations) Create(ctx context.Context, evaluation *models.VoteEvaluation) error {
	return r.s.with(func(d *state) error {
		if _, ok := d.votes[evaluation.VoteID]; !ok {
			return repository.ErrNotFound
		}
		for _, e := range d.evaluations {
			if e.VoteID == evaluation.VoteID && e.EvaluatorID == evaluation.EvaluatorID {
				return repository.ErrDuplicate
			}
		}
		evaluation.ID = d.id()
		evaluation.CreatedAt = r.s.now()
		d.evaluations[evaluation.ID] = *evaluation
		return nil
	})
}

func (r evaluations) FindByEvaluatorAndVote(ctx context.Context, evaluatorID, voteID int) (models.VoteEvaluation, error) {
	var found models.VoteEvaluation
	err := r.s.with(func(d *state) error {
		for _, e := range d.evaluations {
			if e.EvaluatorID == evaluatorID && e.VoteID == voteID {
				found = e
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r evaluations) ExistsByType(ctx context.Context, evaluatorID, voteID int, t models.EvaluationType) (bool, error) {
	e, err := r.FindByEvaluatorAndVote(ctx, evaluatorID, voteID)
	if err == repository.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return e.Type == t, nil
}

func (r evaluations) DeleteByEvaluatorAndVote(ctx context.Context, evaluatorID, voteID int) error {
	return r.s.with(func(d *state) error {
		for k, e := range d.evaluations {
			if e.EvaluatorID == evaluatorID && e.VoteID == voteID {
				delete(d.evaluations, k)
			}
		}
		return nil
	})
}

func (r evaluations) FindAllByEvaluator(ctx context.Context, evaluatorID int) ([]models.VoteEvaluation, error) {
	var out []models.VoteEvaluation
	err := r.s.with(func(d *state) error {
		for _, e := range d.evaluations {
			if e.EvaluatorID == evaluatorID {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].VoteID < out[j].VoteID })
	return out, err
}

func (r evaluations) TypesByVotes(ctx context.Context, evaluatorID int, voteIDs []int) (map[int]models.EvaluationType, error) {
	types := make(map[int]models.EvaluationType, len(voteIDs))
	wanted := make(map[int]bool, len(voteIDs))
	for _, id := range voteIDs {
		wanted[id] = true
	}
	err := r.s.with(func(d *state) error {
		for _, e := range d.evaluations {
			if e.EvaluatorID == evaluatorID && wanted[e.VoteID] {
				types[e.VoteID] = e.Type
			}
		}
		return nil
	})
	return types, err
}

type bookmarks struct{ s *Store }

func (r bookmarks) Create(ctx context.Context, bookmark *models.VoteBookmark) error {
	return r.s.with(func(d *state) error {
		if _, ok := d.votes[bookmark.VoteID]; !ok {
			return repository.ErrNotFound
		}
		for _, b := range d.bookmarks {
			if b.VoteID == bookmark.VoteID && b.BookmarkerID == bookmark.BookmarkerID {
				return repository.ErrDuplicate
			}
		}
		bookmark.ID = d.id()
		bookmark.CreatedAt = r.s.now()
		d.bookmarks[bookmark.ID] = *bookmark
		return nil
	})
}

func (r bookmarks) Exists(ctx context.Context, voteID, bookmarkerID int) (bool, error) {
	var found bool
	err := r.s.with(func(d *state) error {
		for _, b := range d.bookmarks {
			if b.VoteID == voteID && b.BookmarkerID == bookmarkerID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r bookmarks) Delete(ctx context.Context, voteID, bookmarkerID int) error {
	return r.s.with(func(d *state) error {
		for k, b := range d.bookmarks {
			if b.VoteID == voteID && b.BookmarkerID == bookmarkerID {
				delete(d.bookmarks, k)
			}
		}
		return nil
	})
}

func (r bookmarks) BookmarkedAmong(ctx context.Context, bookmarkerID int, voteIDs []int) (map[int]bool, error) {
	marked := make(map[int]bool, len(voteIDs))
	wanted := make(map[int]bool, len(voteIDs))
	for _, id := range voteIDs {
		wanted[id] = true
	}
	err := r.s.with(func(d *state) error {
		for _, b := range d.bookmarks {
			if b.BookmarkerID == bookmarkerID && wanted[b.VoteID] {
				marked[b.VoteID] = true
			}
		}
		return nil
	})
	return marked, err
}

type reports struct{ s *Store }

func (r reports) Create(ctx context.Context, report *models.VoteReport) error {
	return r.s.with(func(d *state) error {
		if _, ok := d.votes[report.VoteID]; !ok {
			return repository.ErrNotFound
		}
		for _, existing := range d.reports {
			if existing.VoteID == report.VoteID && existing.ReporterID == report.ReporterID {
				return repository.ErrDuplicate
			}
		}
		report.ID = d.id()
		report.CreatedAt = r.s.now()
		d.reports[report.ID] = *report
		return nil
	})
}

func (r reports) Exists(ctx context.Context, voteID, reporterID int) (bool, error) {
	var found bool
	err := r.s.with(func(d *state) error {
		for _, existing := range d.reports {
			if existing.VoteID == voteID && existing.ReporterID == reporterID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

type comments struct{ s *Store }

func (r comments) Create(ctx context.Context, comment *models.Comment) error {
	return r.s.with(func(d *state) error {
		if _, ok := d.votes[comment.VoteID]; !ok {
			return repository.ErrNotFound
		}
		if _, ok := d.members[comment.CommenterID]; !ok {
			return repository.ErrNotFound
		}
		comment.ID = d.id()
		comment.CreatedAt = r.s.now()
		comment.UpdatedAt = comment.CreatedAt
		stored := *comment
		stored.Vote = models.Vote{}
		stored.Commenter = models.Member{}
		d.comments[comment.ID] = stored
		return nil
	})
}

func (r comments) ListByVote(ctx context.Context, voteID, cursorID, limit int) ([]models.Comment, error) {
	var out []models.Comment
	err := r.s.with(func(d *state) error {
		for _, c := range d.comments {
			if c.VoteID != voteID || (cursorID > 0 && c.ID <= cursorID) {
				continue
			}
			c.Commenter = d.members[c.CommenterID]
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r comments) FindAllByCommenter(ctx context.Context, commenterID int, t models.CommentType) ([]models.Comment, error) {
	var out []models.Comment
	err := r.s.with(func(d *state) error {
		for _, c := range d.comments {
			if c.CommenterID == commenterID && c.Type == t {
				out = append(out, c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// Health reports the store as always up.
func (s *Store) Health() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]string{
		"status":  "up",
		"driver":  "memory",
		"members": strconv.Itoa(len(s.data.members)),
		"votes":   strconv.Itoa(len(s.data.votes)),
	}
}
