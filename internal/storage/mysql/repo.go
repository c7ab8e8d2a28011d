package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"ilanhub/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- listings ----

func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) (int64, error) {
	imgs, _ := json.Marshal(l.Images)
	var details []byte
	if d := l.Details(); d != nil {
		details, _ = json.Marshal(d)
	}
	res, err := r.db.ExecContext(ctx, upsertListingSQL,
		valID(l.ID),
		string(l.Kind),
		l.Title,
		l.City,
		valStr(l.District),
		valStr(l.Category),
		l.Status,
		l.Price,
		valStr(l.Currency),
		valF64(l.Lat),
		valF64(l.Lon),
		string(imgs),
		valJSON(details),
		valJSON(l.RawJSON),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		id = l.ID
	}
	return id, nil
}

func (r *Repo) DeleteListing(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, getListingSQL, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, err
}

func (r *Repo) ListListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, int64, error) {
	where, args := buildFilter(q)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageArgs := append(append([]any{}, args...), q.Size, q.Page*q.Size)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func buildFilter(q domain.ListingQuery) (string, []any) {
	var clauses []string
	var args []any
	if q.Kind != nil {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(*q.Kind))
	}
	if q.City != nil {
		clauses = append(clauses, "city = ?")
		args = append(args, *q.City)
	}
	if q.District != nil {
		clauses = append(clauses, "district = ?")
		args = append(args, *q.District)
	}
	if q.Category != nil {
		clauses = append(clauses, "category = ?")
		args = append(args, *q.Category)
	}
	if q.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *q.Status)
	}
	if q.MinPrice != nil {
		clauses = append(clauses, "price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		clauses = append(clauses, "price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface{ Scan(dest ...any) error }

func scanListing(row rowScanner) (domain.Listing, error) {
	var l domain.Listing
	var kind string
	var district, category, currency sql.NullString
	var lat, lon sql.NullFloat64
	var imagesJSON, detailsJSON, rawJSON []byte
	if err := row.Scan(
		&l.ID, &kind, &l.Title, &l.City, &district, &category, &l.Status,
		&l.Price, &currency, &lat, &lon, &imagesJSON, &detailsJSON, &rawJSON,
		&l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return domain.Listing{}, err
	}
	l.Kind = domain.Kind(kind)
	if district.Valid {
		l.District = district.String
	}
	if category.Valid {
		l.Category = category.String
	}
	if currency.Valid {
		l.Currency = currency.String
	}
	if lat.Valid {
		f := lat.Float64
		l.Lat = &f
	}
	if lon.Valid {
		f := lon.Float64
		l.Lon = &f
	}
	_ = json.Unmarshal(imagesJSON, &l.Images)
	if len(rawJSON) > 0 {
		l.RawJSON = append([]byte(nil), rawJSON...)
	}
	if len(detailsJSON) > 0 {
		switch l.Kind {
		case domain.KindRealEstate:
			l.RealEstate = &domain.RealEstateDetails{}
			_ = json.Unmarshal(detailsJSON, l.RealEstate)
		case domain.KindVehicle:
			l.Vehicle = &domain.VehicleDetails{}
			_ = json.Unmarshal(detailsJSON, l.Vehicle)
		case domain.KindLand:
			l.Land = &domain.LandDetails{}
			_ = json.Unmarshal(detailsJSON, l.Land)
		case domain.KindWorkplace:
			l.Workplace = &domain.WorkplaceDetails{}
			_ = json.Unmarshal(detailsJSON, l.Workplace)
		}
	}
	return l, nil
}

// ---- suggestions ----

func (r *Repo) SearchSuggestions(ctx context.Context, prefix string) ([]domain.SearchSuggestion, error) {
	rows, err := r.db.QueryContext(ctx, suggestionsSQL, prefix, prefix, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SearchSuggestion
	for rows.Next() {
		var s domain.SearchSuggestion
		var typ string
		if err := rows.Scan(&s.Text, &typ, &s.Count); err != nil {
			return nil, err
		}
		s.Type = domain.SuggestionType(typ)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ---- saved searches ----

func (r *Repo) InsertSavedSearch(ctx context.Context, s domain.SavedSearch) error {
	criteria, _ := json.Marshal(s.Criteria)
	_, err := r.db.ExecContext(ctx, insertSavedSearchSQL,
		s.ID, s.UserID, s.Name, string(criteria), s.NotificationEnabled, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *Repo) ListSavedSearches(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	rows, err := r.db.QueryContext(ctx, listSavedSearchesSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SavedSearch
	for rows.Next() {
		s, err := scanSavedSearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) GetSavedSearch(ctx context.Context, userID, id string) (domain.SavedSearch, error) {
	s, err := scanSavedSearch(r.db.QueryRowContext(ctx, getSavedSearchSQL, id, userID))
	if err == sql.ErrNoRows {
		return domain.SavedSearch{}, domain.ErrNotFound
	}
	return s, err
}

// UpdateSavedSearch writes the payload and reads the row back, so the
// caller always receives what is actually stored.
func (r *Repo) UpdateSavedSearch(ctx context.Context, s domain.SavedSearch) (domain.SavedSearch, error) {
	criteria, _ := json.Marshal(s.Criteria)
	_, err := r.db.ExecContext(ctx, updateSavedSearchSQL,
		s.Name, string(criteria), s.NotificationEnabled, s.UpdatedAt, s.ID, s.UserID)
	if err != nil {
		return domain.SavedSearch{}, err
	}
	return r.GetSavedSearch(ctx, s.UserID, s.ID)
}

func (r *Repo) DeleteSavedSearch(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, deleteSavedSearchSQL, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSavedSearch(row rowScanner) (domain.SavedSearch, error) {
	var s domain.SavedSearch
	var criteriaJSON []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &criteriaJSON, &s.NotificationEnabled, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.SavedSearch{}, err
	}
	_ = json.Unmarshal(criteriaJSON, &s.Criteria)
	return s, nil
}

// ---- favorites ----

func (r *Repo) AddFavorite(ctx context.Context, listingID int64, userID string) error {
	_, err := r.db.ExecContext(ctx, addFavoriteSQL, listingID, userID)
	return err
}

func (r *Repo) RemoveFavorite(ctx context.Context, listingID int64, userID string) error {
	_, err := r.db.ExecContext(ctx, removeFavoriteSQL, listingID, userID)
	return err
}

func (r *Repo) FavoriteCount(ctx context.Context, listingID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, favoriteCountSQL, listingID).Scan(&n)
	return n, err
}
