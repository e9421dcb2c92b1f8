package bookings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/binrota/internal/db"
)

const bookingColumns = `id,status,customer_name,email,phone,address_formatted,postcode,locality,bins,council_lookup,proposed_area,next_empty_date,proposed_clean_date,error_message,created_at,updated_at`

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) Create(ctx context.Context, b Booking) (int64, error) {
	bins, err := json.Marshal(b.Bins)
	if err != nil {
		return 0, fmt.Errorf("marshal bins: %w", err)
	}
	var id int64
	err = r.db.QueryRow(ctx, `
INSERT INTO bookings(status,customer_name,email,phone,address_formatted,postcode,locality,bins)
VALUES ('new',$1,$2,$3,$4,$5,$6,$7)
RETURNING id`,
		b.CustomerName, b.Email, b.Phone, b.AddressFormatted, b.Postcode, b.Locality, bins,
	).Scan(&id)
	return id, db.WrapNotFound(err)
}

// ClaimNext atomically moves the oldest 'new' booking to 'processing' and
// returns it, clearing any stale error message. The claim is a single
// conditional update with SKIP LOCKED, so concurrent workers never hold the
// same booking. Returns db.ErrNotFound when the queue is empty.
func (r *Repo) ClaimNext(ctx context.Context) (Booking, error) {
	row := r.db.QueryRow(ctx, `
UPDATE bookings SET status='processing', error_message=NULL, updated_at=now()
WHERE id = (
	SELECT id FROM bookings
	WHERE status='new'
	ORDER BY created_at ASC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING `+bookingColumns)
	return scanBooking(row)
}

// MarkApproved records a successful match: the council's next empty date,
// the first rota day covering the customer, and the rota area it matched.
func (r *Repo) MarkApproved(ctx context.Context, id int64, lookup []byte, rotaArea, nextEmpty, cleanDate string) error {
	return r.db.Exec(ctx, `
UPDATE bookings
SET status='approved_for_quote', council_lookup=$2, proposed_area=$3,
    next_empty_date=$4, proposed_clean_date=$5, error_message=NULL, updated_at=now()
WHERE id=$1`, id, jsonbOrNil(lookup), rotaArea, nextEmpty, cleanDate)
}

// MarkRejected records a reasoned "no coverage" outcome: dates were found
// but no rota day inside the scan window serves the customer's area.
func (r *Repo) MarkRejected(ctx context.Context, id int64, lookup []byte, area, nextEmpty, msg string) error {
	return r.db.Exec(ctx, `
UPDATE bookings
SET status='rejected', council_lookup=$2, proposed_area=$3,
    next_empty_date=$4, error_message=$5, updated_at=now()
WHERE id=$1`, id, jsonbOrNil(lookup), area, nextEmpty, msg)
}

// MarkFailed records an inability to answer: scraper error or unparseable
// calendar. lookup may be nil when the scrape itself failed.
func (r *Repo) MarkFailed(ctx context.Context, id int64, lookup []byte, area, msg string) error {
	return r.db.Exec(ctx, `
UPDATE bookings
SET status='failed', council_lookup=$2, proposed_area=$3, error_message=$4, updated_at=now()
WHERE id=$1`, id, jsonbOrNil(lookup), area, msg)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

// ListRecent returns the newest bookings first, for the ops dashboard and
// the CLI.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]Booking, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+bookingColumns+` FROM bookings
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row db.Row) (Booking, error) {
	var b Booking
	var bins []byte
	err := row.Scan(
		&b.ID, &b.Status, &b.CustomerName, &b.Email, &b.Phone,
		&b.AddressFormatted, &b.Postcode, &b.Locality, &bins,
		&b.CouncilLookup, &b.ProposedArea, &b.NextEmptyDate,
		&b.ProposedCleanDate, &b.ErrorMessage, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return Booking{}, db.WrapNotFound(err)
	}
	if len(bins) > 0 {
		if err := json.Unmarshal(bins, &b.Bins); err != nil {
			return Booking{}, fmt.Errorf("unmarshal bins for booking %d: %w", b.ID, err)
		}
	}
	return b, nil
}

// jsonbOrNil keeps a NULL council_lookup when there is nothing to record;
// pgx would otherwise reject an empty byte slice as jsonb.
func jsonbOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
