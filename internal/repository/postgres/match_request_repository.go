package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/repository"
)

const matchRequestColumns = `id, offer_id, request_id, requester_id, offerer_id, initiator_id, message, status,
	requester_contact_mode, requester_contact_value, offerer_contact_mode, offerer_contact_value,
	notified, created_at, updated_at`

// matchRequestRow mirrors the match_requests table.
type matchRequestRow struct {
	ID                    int64          `db:"id"`
	OfferID               sql.NullInt64  `db:"offer_id"`
	RequestID             sql.NullInt64  `db:"request_id"`
	RequesterID           string         `db:"requester_id"`
	OffererID             string         `db:"offerer_id"`
	InitiatorID           string         `db:"initiator_id"`
	Message               sql.NullString `db:"message"`
	Status                string         `db:"status"`
	RequesterContactMode  sql.NullString `db:"requester_contact_mode"`
	RequesterContactValue sql.NullString `db:"requester_contact_value"`
	OffererContactMode    sql.NullString `db:"offerer_contact_mode"`
	OffererContactValue   sql.NullString `db:"offerer_contact_value"`
	Notified              bool           `db:"notified"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

func (row *matchRequestRow) toDomain() (*domain.MatchRequest, error) {
	status, err := domain.ParseStatus(row.Status)
	if err != nil {
		return nil, fmt.Errorf("match request %d: %w", row.ID, err)
	}

	mr := &domain.MatchRequest{
		ID:          row.ID,
		RequesterID: row.RequesterID,
		OffererID:   row.OffererID,
		InitiatorID: row.InitiatorID,
		Message:     row.Message.String,
		Status:      status,
		Contacts:    make(map[domain.Side]domain.Contact, 2),
		Notified:    row.Notified,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.OfferID.Valid {
		id := row.OfferID.Int64
		mr.OfferID = &id
	}
	if row.RequestID.Valid {
		id := row.RequestID.Int64
		mr.RequestID = &id
	}
	if c := (domain.Contact{Mode: row.RequesterContactMode.String, Value: row.RequesterContactValue.String}); !c.IsZero() {
		mr.Contacts[domain.SideRequester] = c
	}
	if c := (domain.Contact{Mode: row.OffererContactMode.String, Value: row.OffererContactValue.String}); !c.IsZero() {
		mr.Contacts[domain.SideOfferer] = c
	}
	return mr, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// contactColumns returns the column pair holding side's disclosed contact.
func contactColumns(side domain.Side) (mode, value string, err error) {
	switch side {
	case domain.SideRequester:
		return "requester_contact_mode", "requester_contact_value", nil
	case domain.SideOfferer:
		return "offerer_contact_mode", "offerer_contact_value", nil
	}
	return "", "", fmt.Errorf("unknown side %q", side)
}

type matchRequestRepository struct {
	db *sqlx.DB
}

func NewMatchRequestRepository(db *sqlx.DB) repository.MatchRequestRepository {
	return &matchRequestRepository{db: db}
}

func (r *matchRequestRepository) Insert(ctx context.Context, mr *domain.MatchRequest) error {
	requester := mr.ContactFor(domain.SideRequester)
	offerer := mr.ContactFor(domain.SideOfferer)

	query := `
		INSERT INTO match_requests (
			offer_id, request_id, requester_id, offerer_id, initiator_id, message, status,
			requester_contact_mode, requester_contact_value, offerer_contact_mode, offerer_contact_value,
			notified
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRowxContext(
		ctx, query,
		mr.OfferID, mr.RequestID, mr.RequesterID, mr.OffererID, mr.InitiatorID,
		nullString(mr.Message), mr.Status.String(),
		nullString(requester.Mode), nullString(requester.Value),
		nullString(offerer.Mode), nullString(offerer.Value),
		mr.Notified,
	).Scan(&mr.ID, &mr.CreatedAt, &mr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateMatchRequest
		}
		return err
	}
	return nil
}

func (r *matchRequestRepository) GetByID(ctx context.Context, id int64) (*domain.MatchRequest, error) {
	var row matchRequestRow
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests WHERE id = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchRequestNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *matchRequestRepository) FindByKeys(ctx context.Context, initiatorID string, offerID, requestID *int64) (*domain.MatchRequest, error) {
	conds := []string{"initiator_id = $1"}
	args := []interface{}{initiatorID}
	if offerID != nil {
		args = append(args, *offerID)
		conds = append(conds, fmt.Sprintf("offer_id = $%d", len(args)))
	}
	if requestID != nil {
		args = append(args, *requestID)
		conds = append(conds, fmt.Sprintf("request_id = $%d", len(args)))
	}

	var row matchRequestRow
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY id LIMIT 1`
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *matchRequestRepository) CountCreatedSince(ctx context.Context, initiatorID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM match_requests WHERE initiator_id = $1 AND created_at >= $2`
	if err := conn(ctx, r.db).GetContext(ctx, &count, query, initiatorID, since); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *matchRequestRepository) ListForProfile(ctx context.Context, profileID string, filter repository.MatchRequestFilter) ([]*domain.MatchRequest, error) {
	conds := []string{"(requester_id = $1 OR offerer_id = $1)"}
	args := []interface{}{profileID}
	if filter.InitiatedOnly {
		conds = append(conds, "initiator_id = $1")
	}
	if filter.ReceivedOnly {
		conds = append(conds, "initiator_id <> $1")
	}
	if len(filter.Statuses) > 0 {
		names := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			names[i] = s.String()
		}
		args = append(args, pq.Array(names))
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	var rows []matchRequestRow
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id DESC`
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	result := make([]*domain.MatchRequest, 0, len(rows))
	for i := range rows {
		mr, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, mr)
	}
	return result, nil
}

// ConditionalUpdateStatus is a compare-and-set on the status column, so only
// one of several concurrent transitions out of the same state succeeds.
func (r *matchRequestRepository) ConditionalUpdateStatus(
	ctx context.Context,
	id int64,
	expected, next domain.Status,
	side domain.Side,
	contact domain.Contact,
) (*domain.MatchRequest, error) {
	if !expected.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, expected, next)
	}

	set := []string{"status = $1", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{next.String(), id, expected.String()}
	if !contact.IsZero() {
		modeCol, valueCol, err := contactColumns(side)
		if err != nil {
			return nil, err
		}
		args = append(args, contact.Mode, contact.Value)
		set = append(set, modeCol+" = $4", valueCol+" = $5")
	}

	q := conn(ctx, r.db)
	var row matchRequestRow
	query := `UPDATE match_requests SET ` + strings.Join(set, ", ") +
		` WHERE id = $2 AND status = $3 RETURNING ` + matchRequestColumns
	err := q.GetContext(ctx, &row, query, args...)
	if err == nil {
		return row.toDomain()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM match_requests WHERE id = $1)`, id); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrMatchRequestNotFound
	}
	return nil, domain.ErrStatusConflict
}

func (r *matchRequestRepository) DeletePending(ctx context.Context, id int64, initiatorID string) (bool, error) {
	query := `DELETE FROM match_requests WHERE id = $1 AND initiator_id = $2 AND status = $3`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, initiatorID, domain.StatusPending.String())
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *matchRequestRepository) MarkNotified(ctx context.Context, id int64) error {
	query := `UPDATE match_requests SET notified = TRUE WHERE id = $1`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMatchRequestNotFound
	}
	return nil
}
