/*
Package sqlite provides the SQLite-backed implementation of training.Store.

PURPOSE:
  Persists the three entity tables and implements the atomic operations
  the domain depends on. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  requests:       TrainingRequest rows; nullable link to sessions
                  (created_session_id). Never deleted.
  sessions:       TrainingSession rows with the archived flag.
  registrations:  SessionRegistration rows; FK to sessions with
                  ON DELETE CASCADE.

ATOMIC OPERATIONS:
  ApproveRegistration:      capacity re-read + status write in one
                            transaction (the single enforcement point
                            for the capacity cap)
  CreateSessionFromRequest: session insert + conditional request update
                            in one transaction; a conditional miss rolls
                            the insert back, so no orphaned session is
                            ever committed
  DeleteSessionCascade:     archived re-check + cascading delete in one
                            transaction

CONCURRENCY:
  Uses sync.RWMutex for serialization on top of SQLite transactions.
  In production with PostgreSQL, row-level locking handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and foreign key
  enforcement:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/portal.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - training/store.go: Interface definition and error contract
  - training/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/lifeline/training-engine/catalog"
	"github.com/lifeline/training-engine/training"
)

const dateFormat = "2006-01-02"

// Store implements training.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dbPath, ":memory:") {
		// Each pooled connection would otherwise open its own private
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		major_service TEXT NOT NULL,
		session_date TEXT NOT NULL,
		session_end_date TEXT NOT NULL,
		start_time TEXT,
		end_time TEXT,
		venue TEXT NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 0,
		fee TEXT NOT NULL DEFAULT '0',
		requirements TEXT,
		instructor TEXT,
		instructor_bio TEXT,
		instructor_credentials TEXT,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_archived
		ON sessions(archived);
	CREATE INDEX IF NOT EXISTS idx_sessions_service
		ON sessions(major_service);
	CREATE INDEX IF NOT EXISTS idx_sessions_date
		ON sessions(session_date);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		service_type TEXT NOT NULL,
		training_program TEXT NOT NULL,
		training_type TEXT,
		urgency TEXT NOT NULL,
		preferred_start_date TEXT NOT NULL,
		preferred_end_date TEXT NOT NULL,
		preferred_start_time TEXT,
		preferred_end_time TEXT,
		duration_days INTEGER NOT NULL DEFAULT 1,
		participant_count INTEGER NOT NULL DEFAULT 1,
		organization_name TEXT,
		contact_person TEXT NOT NULL,
		contact_number TEXT NOT NULL,
		email TEXT NOT NULL,
		notification_prefs TEXT,
		location_preference TEXT,
		venue_requirements TEXT,
		equipment_needed TEXT,
		purpose TEXT,
		additional_requirements TEXT,
		valid_id_ref TEXT,
		participant_list_ref TEXT,
		additional_docs TEXT,
		admin_notes TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		reviewed_date TEXT,
		created_session_id TEXT REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON requests(status);
	CREATE INDEX IF NOT EXISTS idx_requests_session
		ON requests(created_session_id) WHERE created_session_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS registrations (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		registration_type TEXT NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL,
		rcy_status TEXT,
		organization_name TEXT,
		payment_mode TEXT,
		valid_id_ref TEXT,
		requirements_ref TEXT,
		payment_receipt_ref TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		registration_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_registrations_session
		ON registrations(session_id);
	-- Occupancy counts are the hot path for listings.
	CREATE INDEX IF NOT EXISTS idx_registrations_session_status
		ON registrations(session_id, status);
	CREATE INDEX IF NOT EXISTS idx_registrations_email
		ON registrations(email);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REQUESTS
// =============================================================================

const requestColumns = `id, service_type, training_program, training_type, urgency,
	preferred_start_date, preferred_end_date, preferred_start_time, preferred_end_time,
	duration_days, participant_count, organization_name, contact_person, contact_number,
	email, notification_prefs, location_preference, venue_requirements, equipment_needed,
	purpose, additional_requirements, valid_id_ref, participant_list_ref, additional_docs,
	admin_notes, status, created_at, reviewed_date, created_session_id`

// SaveRequest inserts a new request.
func (s *Store) SaveRequest(ctx context.Context, r *training.TrainingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefsJSON, _ := json.Marshal(r.NotificationPrefs)
	docsJSON, _ := json.Marshal(r.AdditionalDocs)

	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ServiceType, r.TrainingProgram, r.TrainingType, r.Urgency,
		r.PreferredStartDate.Format(dateFormat), r.PreferredEndDate.Format(dateFormat),
		r.PreferredStartTime, r.PreferredEndTime,
		r.DurationDays, r.ParticipantCount, r.OrganizationName, r.ContactPerson, r.ContactNumber,
		r.Email, string(prefsJSON), r.LocationPreference, r.VenueRequirements, r.EquipmentNeeded,
		r.Purpose, r.AdditionalRequirements, string(r.ValidID), string(r.ParticipantList), string(docsJSON),
		r.AdminNotes, r.Status, r.CreatedAt.Format(time.RFC3339),
		nullTime(r.ReviewedDate), nullSessionID(r.CreatedSessionID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// GetRequest retrieves a request by id.
func (s *Store) GetRequest(ctx context.Context, id training.RequestID) (*training.TrainingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests, err := s.queryRequests(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, &training.NotFoundError{Kind: "request", ID: string(id)}
	}
	return requests[0], nil
}

// ListRequests returns requests matching the filter, newest first.
func (s *Store) ListRequests(ctx context.Context, f training.RequestFilter) ([]*training.TrainingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + requestColumns + " FROM requests"
	var conds []string
	var args []any

	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		cond := "LOWER(contact_person) LIKE ? OR LOWER(training_program) LIKE ? OR LOWER(email) LIKE ?"
		args = append(args, needle, needle, needle)
		// training_program stores a catalog key; resolve display names
		// in Go so "first aid" finds first_aid_basic.
		if keys := programKeysMatching(f.Search); len(keys) > 0 {
			cond += " OR training_program IN (" + placeholders(len(keys)) + ")"
			for _, k := range keys {
				args = append(args, k)
			}
		}
		conds = append(conds, "("+cond+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return s.queryRequests(ctx, query, args...)
}

// programKeysMatching returns the catalog keys whose program display
// name contains the search text.
func programKeysMatching(search string) []string {
	needle := strings.ToLower(search)
	var keys []string
	for _, p := range catalog.Programs() {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// ReviewRequest records the decision, notes, and reviewed date.
// Permitted from pending only.
func (s *Store) ReviewRequest(ctx context.Context, id training.RequestID, decision training.RequestStatus, adminNotes string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, "SELECT status FROM requests WHERE id = ?", id).Scan(&status)
	if err == sql.ErrNoRows {
		return &training.NotFoundError{Kind: "request", ID: string(id)}
	}
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	if status != string(training.RequestPending) {
		return &training.InvalidStateError{Kind: "request", ID: string(id), Status: status, Op: "review"}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE requests SET status = ?, admin_notes = ?, reviewed_date = ? WHERE id = ? AND status = 'pending'",
		decision, adminNotes, at.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	return tx.Commit()
}

// CompleteElapsedRequests moves scheduled requests whose linked session
// ended before asOf to completed. Idempotent.
func (s *Store) CompleteElapsedRequests(ctx context.Context, asOf time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE requests SET status = 'completed'
		WHERE status = 'scheduled'
		  AND created_session_id IN (SELECT id FROM sessions WHERE session_end_date < ?)
	`, asOf.Format(dateFormat))
	if err != nil {
		return 0, fmt.Errorf("failed to complete elapsed requests: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]*training.TrainingRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*training.TrainingRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func scanRequest(rows *sql.Rows) (*training.TrainingRequest, error) {
	var (
		r                                     training.TrainingRequest
		startDate, endDate, createdAt         string
		trainingType, startTime, endTime      sql.NullString
		orgName, prefsJSON, location          sql.NullString
		venueReqs, equipment, purpose         sql.NullString
		additionalReqs, validID, participants sql.NullString
		docsJSON, adminNotes                  sql.NullString
		reviewedDate, createdSessionID        sql.NullString
	)

	err := rows.Scan(
		&r.ID, &r.ServiceType, &r.TrainingProgram, &trainingType, &r.Urgency,
		&startDate, &endDate, &startTime, &endTime,
		&r.DurationDays, &r.ParticipantCount, &orgName, &r.ContactPerson, &r.ContactNumber,
		&r.Email, &prefsJSON, &location, &venueReqs, &equipment,
		&purpose, &additionalReqs, &validID, &participants, &docsJSON,
		&adminNotes, &r.Status, &createdAt, &reviewedDate, &createdSessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}

	r.PreferredStartDate, _ = time.Parse(dateFormat, startDate)
	r.PreferredEndDate, _ = time.Parse(dateFormat, endDate)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.TrainingType = trainingType.String
	r.PreferredStartTime = startTime.String
	r.PreferredEndTime = endTime.String
	r.OrganizationName = orgName.String
	r.LocationPreference = location.String
	r.VenueRequirements = venueReqs.String
	r.EquipmentNeeded = equipment.String
	r.Purpose = purpose.String
	r.AdditionalRequirements = additionalReqs.String
	r.ValidID = training.DocumentRef(validID.String)
	r.ParticipantList = training.DocumentRef(participants.String)
	r.AdminNotes = adminNotes.String

	if prefsJSON.String != "" {
		json.Unmarshal([]byte(prefsJSON.String), &r.NotificationPrefs)
	}
	if docsJSON.String != "" {
		json.Unmarshal([]byte(docsJSON.String), &r.AdditionalDocs)
	}
	if reviewedDate.Valid {
		t, _ := time.Parse(time.RFC3339, reviewedDate.String)
		r.ReviewedDate = &t
	}
	if createdSessionID.Valid {
		sid := training.SessionID(createdSessionID.String)
		r.CreatedSessionID = &sid
	}

	return &r, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

const sessionColumns = `id, title, description, major_service, session_date, session_end_date,
	start_time, end_time, venue, capacity, fee, requirements, instructor, instructor_bio,
	instructor_credentials, archived, created_at, updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveSession inserts a new session.
func (s *Store) SaveSession(ctx context.Context, sess *training.TrainingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertSession(ctx, s.db, sess)
}

func insertSession(ctx context.Context, db execer, sess *training.TrainingSession) error {
	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		sess.ID, sess.Title, sess.Description, sess.MajorService,
		sess.SessionDate.Format(dateFormat), sess.SessionEndDate.Format(dateFormat),
		sess.StartTime, sess.EndTime, sess.Venue, sess.Capacity, sess.Fee.String(),
		sess.Requirements, sess.Instructor, sess.InstructorBio, sess.InstructorCredentials,
		sess.Archived, sess.CreatedAt.Format(time.RFC3339), sess.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id training.SessionID) (*training.TrainingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions, err := s.querySessions(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, &training.NotFoundError{Kind: "session", ID: string(id)}
	}
	return sessions[0], nil
}

// UpdateSession replaces all editable fields of an existing session.
func (s *Store) UpdateSession(ctx context.Context, sess *training.TrainingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE sessions SET
			title = ?, description = ?, major_service = ?, session_date = ?,
			session_end_date = ?, start_time = ?, end_time = ?, venue = ?,
			capacity = ?, fee = ?, requirements = ?, instructor = ?,
			instructor_bio = ?, instructor_credentials = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		sess.Title, sess.Description, sess.MajorService,
		sess.SessionDate.Format(dateFormat), sess.SessionEndDate.Format(dateFormat),
		sess.StartTime, sess.EndTime, sess.Venue,
		sess.Capacity, sess.Fee.String(), sess.Requirements, sess.Instructor,
		sess.InstructorBio, sess.InstructorCredentials, sess.UpdatedAt.Format(time.RFC3339),
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &training.NotFoundError{Kind: "session", ID: string(sess.ID)}
	}
	return nil
}

// SetSessionArchived toggles the archived flag. Idempotent.
func (s *Store) SetSessionArchived(ctx context.Context, id training.SessionID, archived bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET updated_at = CASE WHEN archived != ? THEN ? ELSE updated_at END,
		    archived = ?
		WHERE id = ?
	`, archived, at.Format(time.RFC3339), archived, id)
	if err != nil {
		return fmt.Errorf("failed to set archived flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &training.NotFoundError{Kind: "session", ID: string(id)}
	}
	return nil
}

// DeleteSessionCascade permanently deletes an archived session and its
// registrations. The archived precondition is re-checked inside the
// delete transaction.
func (s *Store) DeleteSessionCascade(ctx context.Context, id training.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var archived bool
	err = tx.QueryRowContext(ctx, "SELECT archived FROM sessions WHERE id = ?", id).Scan(&archived)
	if err == sql.ErrNoRows {
		return &training.NotFoundError{Kind: "session", ID: string(id)}
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !archived {
		return &training.InvalidStateError{Kind: "session", ID: string(id), Status: "active", Op: "permanently delete"}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM registrations WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete registrations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return tx.Commit()
}

// ListSessions returns sessions matching the filter, soonest first.
func (s *Store) ListSessions(ctx context.Context, f training.SessionFilter) ([]*training.TrainingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + sessionColumns + " FROM sessions"
	var conds []string
	var args []any

	switch f.Scope {
	case training.ScopeArchived:
		conds = append(conds, "archived = TRUE")
	case training.ScopeAll:
		// no scope condition
	default:
		conds = append(conds, "archived = FALSE")
	}
	if f.Service != "" {
		conds = append(conds, "major_service = ?")
		args = append(args, f.Service)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(venue) LIKE ? OR LOWER(instructor) LIKE ?)")
		args = append(args, needle, needle, needle)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY session_date ASC, id ASC"

	return s.querySessions(ctx, query, args...)
}

func (s *Store) querySessions(ctx context.Context, query string, args ...any) ([]*training.TrainingSession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*training.TrainingSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(rows *sql.Rows) (*training.TrainingSession, error) {
	var (
		sess                            training.TrainingSession
		sessionDate, endDate, fee       string
		createdAt, updatedAt            string
		description, startTime, endTime sql.NullString
		requirements, instructor        sql.NullString
		instructorBio, instructorCreds  sql.NullString
	)

	err := rows.Scan(
		&sess.ID, &sess.Title, &description, &sess.MajorService, &sessionDate, &endDate,
		&startTime, &endTime, &sess.Venue, &sess.Capacity, &fee, &requirements,
		&instructor, &instructorBio, &instructorCreds, &sess.Archived, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	sess.SessionDate, _ = time.Parse(dateFormat, sessionDate)
	sess.SessionEndDate, _ = time.Parse(dateFormat, endDate)
	sess.Fee, _ = decimal.NewFromString(fee)
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	sess.Description = description.String
	sess.StartTime = startTime.String
	sess.EndTime = endTime.String
	sess.Requirements = requirements.String
	sess.Instructor = instructor.String
	sess.InstructorBio = instructorBio.String
	sess.InstructorCredentials = instructorCreds.String

	return &sess, nil
}

// CountRegistrations returns one session's occupancy by status.
func (s *Store) CountRegistrations(ctx context.Context, id training.SessionID) (training.RegistrationCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts training.RegistrationCounts
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM registrations WHERE session_id = ? GROUP BY status", id)
	if err != nil {
		return counts, fmt.Errorf("failed to count registrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, err
		}
		switch training.RegistrationStatus(status) {
		case training.RegistrationApproved:
			counts.Approved = n
		case training.RegistrationPending:
			counts.Pending = n
		}
	}
	return counts, rows.Err()
}

// CountAllRegistrations returns occupancy for every session that has
// registrations (the listing read path).
func (s *Store) CountAllRegistrations(ctx context.Context) (map[training.SessionID]training.RegistrationCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id, status, COUNT(*) FROM registrations GROUP BY session_id, status")
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	defer rows.Close()

	out := make(map[training.SessionID]training.RegistrationCounts)
	for rows.Next() {
		var sessionID training.SessionID
		var status string
		var n int
		if err := rows.Scan(&sessionID, &status, &n); err != nil {
			return nil, err
		}
		counts := out[sessionID]
		switch training.RegistrationStatus(status) {
		case training.RegistrationApproved:
			counts.Approved = n
		case training.RegistrationPending:
			counts.Pending = n
		}
		out[sessionID] = counts
	}
	return out, rows.Err()
}

// =============================================================================
// SCHEDULER BRIDGE
// =============================================================================

// CreateSessionFromRequest inserts the session and flips the request to
// scheduled in one transaction. The conditional update expresses
// "schedule only an approved, unlinked request"; zero rows affected
// rolls the session insert back, so no orphan is ever committed.
func (s *Store) CreateSessionFromRequest(ctx context.Context, requestID training.RequestID, sess *training.TrainingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertSession(ctx, tx, sess); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE requests SET status = 'scheduled', created_session_id = ?
		WHERE id = ? AND status = 'approved' AND created_session_id IS NULL
	`, sess.ID, requestID)
	if err != nil {
		return fmt.Errorf("failed to link request: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Classify the refusal before rollback discards the insert.
		var status string
		var linked sql.NullString
		err := tx.QueryRowContext(ctx,
			"SELECT status, created_session_id FROM requests WHERE id = ?", requestID).
			Scan(&status, &linked)
		if err == sql.ErrNoRows {
			return &training.NotFoundError{Kind: "request", ID: string(requestID)}
		}
		if err != nil {
			return fmt.Errorf("failed to read request: %w", err)
		}
		if linked.Valid {
			return &training.AlreadyScheduledError{
				RequestID: requestID,
				SessionID: training.SessionID(linked.String),
			}
		}
		return &training.InvalidStateError{Kind: "request", ID: string(requestID), Status: status, Op: "schedule"}
	}

	return tx.Commit()
}

// =============================================================================
// REGISTRATIONS
// =============================================================================

const registrationColumns = `id, session_id, registration_type, full_name, email, age,
	location, rcy_status, organization_name, payment_mode, valid_id_ref, requirements_ref,
	payment_receipt_ref, status, registration_date`

// SaveRegistration inserts a new registration.
func (s *Store) SaveRegistration(ctx context.Context, r *training.SessionRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.SessionID, r.Type, r.FullName, r.Email, r.Age,
		r.Location, r.RCYStatus, r.OrganizationName, r.PaymentMode,
		string(r.ValidID), string(r.Requirements), string(r.PaymentReceipt),
		r.Status, r.RegistrationDate.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return &training.NotFoundError{Kind: "session", ID: string(r.SessionID)}
		}
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	return nil
}

// GetRegistration retrieves a registration by id.
func (s *Store) GetRegistration(ctx context.Context, id training.RegistrationID) (*training.SessionRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	regs, err := s.queryRegistrations(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, &training.NotFoundError{Kind: "registration", ID: string(id)}
	}
	return regs[0], nil
}

// ApproveRegistration re-reads the owning session's capacity and
// approved count in the same transaction as the status write. This is
// the single enforcement point for the capacity cap.
func (s *Store) ApproveRegistration(ctx context.Context, id training.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	var sessionID training.SessionID
	err = tx.QueryRowContext(ctx,
		"SELECT status, session_id FROM registrations WHERE id = ?", id).
		Scan(&status, &sessionID)
	if err == sql.ErrNoRows {
		return &training.NotFoundError{Kind: "registration", ID: string(id)}
	}
	if err != nil {
		return fmt.Errorf("failed to read registration: %w", err)
	}
	if status != string(training.RegistrationPending) {
		return &training.InvalidStateError{Kind: "registration", ID: string(id), Status: status, Op: "approve"}
	}

	var capacity int
	if err := tx.QueryRowContext(ctx,
		"SELECT capacity FROM sessions WHERE id = ?", sessionID).Scan(&capacity); err != nil {
		return fmt.Errorf("failed to read session capacity: %w", err)
	}

	// Capacity zero means unlimited.
	if capacity > 0 {
		var approved int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM registrations WHERE session_id = ? AND status = 'approved'",
			sessionID).Scan(&approved)
		if err != nil {
			return fmt.Errorf("failed to count approved registrations: %w", err)
		}
		if approved >= capacity {
			return &training.CapacityExceededError{SessionID: sessionID, Capacity: capacity, Approved: approved}
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE registrations SET status = 'approved' WHERE id = ? AND status = 'pending'", id); err != nil {
		return fmt.Errorf("failed to approve registration: %w", err)
	}
	return tx.Commit()
}

// RejectRegistration moves a pending registration to rejected.
func (s *Store) RejectRegistration(ctx context.Context, id training.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, "SELECT status FROM registrations WHERE id = ?", id).Scan(&status)
	if err == sql.ErrNoRows {
		return &training.NotFoundError{Kind: "registration", ID: string(id)}
	}
	if err != nil {
		return fmt.Errorf("failed to read registration: %w", err)
	}
	if status != string(training.RegistrationPending) {
		return &training.InvalidStateError{Kind: "registration", ID: string(id), Status: status, Op: "reject"}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE registrations SET status = 'rejected' WHERE id = ? AND status = 'pending'", id); err != nil {
		return fmt.Errorf("failed to reject registration: %w", err)
	}
	return tx.Commit()
}

// DeleteRegistration hard-deletes a registration from any status.
func (s *Store) DeleteRegistration(ctx context.Context, id training.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM registrations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &training.NotFoundError{Kind: "registration", ID: string(id)}
	}
	return nil
}

// ListRegistrationsBySession returns a session's registrations, oldest first.
func (s *Store) ListRegistrationsBySession(ctx context.Context, id training.SessionID) ([]*training.SessionRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRegistrations(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE session_id = ? ORDER BY registration_date ASC, id ASC", id)
}

// ListRegistrationsByEmail returns a registrant's registrations, oldest first.
func (s *Store) ListRegistrationsByEmail(ctx context.Context, email string) ([]*training.SessionRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRegistrations(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE LOWER(email) = LOWER(?) ORDER BY registration_date ASC, id ASC", email)
}

func (s *Store) queryRegistrations(ctx context.Context, query string, args ...any) ([]*training.SessionRegistration, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	var regs []*training.SessionRegistration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

func scanRegistration(rows *sql.Rows) (*training.SessionRegistration, error) {
	var (
		r                              training.SessionRegistration
		registrationDate               string
		rcyStatus, orgName, payMode    sql.NullString
		validID, requirements, receipt sql.NullString
	)

	err := rows.Scan(
		&r.ID, &r.SessionID, &r.Type, &r.FullName, &r.Email, &r.Age,
		&r.Location, &rcyStatus, &orgName, &payMode, &validID, &requirements,
		&receipt, &r.Status, &registrationDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}

	r.RegistrationDate, _ = time.Parse(time.RFC3339, registrationDate)
	r.RCYStatus = rcyStatus.String
	r.OrganizationName = orgName.String
	r.PaymentMode = payMode.String
	r.ValidID = training.DocumentRef(validID.String)
	r.Requirements = training.DocumentRef(requirements.String)
	r.PaymentReceipt = training.DocumentRef(receipt.String)

	return &r, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"registrations", "requests", "sessions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func nullSessionID(id *training.SessionID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*id), Valid: true}
}
