package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jobagent/internal/domain"
	"jobagent/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	stateMu sync.Mutex // Serializes conversation state writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		work_experience_json TEXT NOT NULL,
		education_json TEXT NOT NULL,
		skills_json TEXT NOT NULL,
		desired_position TEXT NOT NULL,
		locations_json TEXT NOT NULL,
		current_location TEXT NOT NULL,
		resume_url TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		job_title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL,
		job_url TEXT NOT NULL,
		job_description TEXT NOT NULL,
		salary TEXT,
		detailed_description TEXT,
		requirements_json TEXT NOT NULL,
		responsibilities_json TEXT NOT NULL,
		skills_json TEXT NOT NULL,
		cover_letter TEXT NOT NULL,
		cover_letter_status TEXT NOT NULL,
		letter_history_json TEXT NOT NULL,
		status TEXT NOT NULL,
		applied_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id);

	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		application_id TEXT NOT NULL,
		name TEXT NOT NULL,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		connection_degree TEXT NOT NULL,
		profile_url TEXT NOT NULL,
		description TEXT,
		outreach_type TEXT NOT NULL,
		message_text TEXT NOT NULL,
		thread_url TEXT,
		status TEXT NOT NULL,
		sent_at INTEGER NOT NULL,
		last_checked_at INTEGER,
		response_text TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_contacts_application ON contacts(application_id);

	CREATE TABLE IF NOT EXISTS conversation_state (
		user_id TEXT PRIMARY KEY,
		stage TEXT NOT NULL,
		profile_draft_json TEXT NOT NULL,
		selected_jobs_json TEXT NOT NULL,
		letter_drafts_json TEXT NOT NULL,
		approved_letters_json TEXT NOT NULL,
		pending_people_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conversation_messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata_json TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_user ON conversation_messages(user_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// execRetry runs a write statement, retrying with exponential backoff when
// SQLite reports a busy/locked conflict. WAL mode makes these rare but they
// still show up when the LLM and webhook paths write concurrently.
func (s *SQLiteStore) execRetry(ctx context.Context, query string, args ...interface{}) error {
	const maxRetries = 3
	delay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		_, err = s.db.ExecContext(ctx, query, args...)
		if err == nil || !shared.IsSQLiteConflictError(err) {
			return err
		}
		if i < maxRetries-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}

func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json column: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

// GetProfile retrieves a candidate profile by user id.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, full_name, email, phone, work_experience_json, education_json,
		       skills_json, desired_position, locations_json, current_location,
		       resume_url, created_at, updated_at
		FROM profiles WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var p domain.Profile
	var workJSON, eduJSON, skillsJSON, locJSON string
	var resumeURL sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Phone, &workJSON, &eduJSON,
		&skillsJSON, &p.DesiredPosition, &locJSON, &p.CurrentLocation,
		&resumeURL, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile row: %w", err)
	}

	if err := unmarshalJSON(workJSON, &p.WorkExperience); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(eduJSON, &p.Education); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(skillsJSON, &p.Skills); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(locJSON, &p.Locations); err != nil {
		return nil, err
	}

	p.ResumeURL = resumeURL.String
	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)

	return &p, nil
}

// UpsertProfile creates or updates a profile record.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	workJSON, err := marshalJSON(profile.WorkExperience)
	if err != nil {
		return err
	}
	eduJSON, err := marshalJSON(profile.Education)
	if err != nil {
		return err
	}
	skillsJSON, err := marshalJSON(profile.Skills)
	if err != nil {
		return err
	}
	locJSON, err := marshalJSON(profile.Locations)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO profiles (id, full_name, email, phone, work_experience_json,
		education_json, skills_json, desired_position, locations_json,
		current_location, resume_url, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		full_name = excluded.full_name,
		email = excluded.email,
		phone = excluded.phone,
		work_experience_json = excluded.work_experience_json,
		education_json = excluded.education_json,
		skills_json = excluded.skills_json,
		desired_position = excluded.desired_position,
		locations_json = excluded.locations_json,
		current_location = excluded.current_location,
		resume_url = excluded.resume_url,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		profile.ID, profile.Name, profile.Email, profile.Phone, workJSON,
		eduJSON, skillsJSON, profile.DesiredPosition, locJSON,
		profile.CurrentLocation, nullableString(profile.ResumeURL),
		profile.CreatedAt.Unix(), profile.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// DeleteProfile removes a profile.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

const applicationColumns = `id, user_id, job_title, company, location, job_url,
	job_description, salary, detailed_description, requirements_json,
	responsibilities_json, skills_json, cover_letter, cover_letter_status,
	letter_history_json, status, applied_at, created_at, updated_at`

func (s *SQLiteStore) scanApplication(row interface{ Scan(...interface{}) error }) (*domain.JobApplication, error) {
	var a domain.JobApplication
	var salary, detail, reqJSON, respJSON, skillsJSON, historyJSON sql.NullString
	var appliedAt sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&a.ID, &a.UserID, &a.JobTitle, &a.Company, &a.Location, &a.JobURL,
		&a.JobDescription, &salary, &detail, &reqJSON,
		&respJSON, &skillsJSON, &a.CoverLetter, &a.CoverLetterStatus,
		&historyJSON, &a.Status, &appliedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Salary = salary.String
	a.DetailedDescription = detail.String
	if err := unmarshalJSON(reqJSON.String, &a.Requirements); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(respJSON.String, &a.Responsibilities); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(skillsJSON.String, &a.Skills); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(historyJSON.String, &a.LetterHistory); err != nil {
		return nil, err
	}
	if appliedAt.Valid {
		t := time.Unix(appliedAt.Int64, 0)
		a.AppliedAt = &t
	}
	a.CreatedAt = time.Unix(createdAt, 0)
	a.UpdatedAt = time.Unix(updatedAt, 0)

	return &a, nil
}

// GetApplication retrieves a job application with its contacts rehydrated.
func (s *SQLiteStore) GetApplication(ctx context.Context, id string) (*domain.JobApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

	app, err := s.scanApplication(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan application row: %w", err)
	}

	contacts, err := s.ListContactsByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		app.NetworkingContacts = append(app.NetworkingContacts, *c)
	}

	return app, nil
}

// ListApplicationsByUser returns a user's applications in creation order.
func (s *SQLiteStore) ListApplicationsByUser(ctx context.Context, userID string) ([]*domain.JobApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = ? ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var apps []*domain.JobApplication
	for rows.Next() {
		app, err := s.scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

// UpsertApplication creates or updates an application record. Embedded
// contacts are persisted separately via UpsertContact.
func (s *SQLiteStore) UpsertApplication(ctx context.Context, app *domain.JobApplication) error {
	reqJSON, err := marshalJSON(app.Requirements)
	if err != nil {
		return err
	}
	respJSON, err := marshalJSON(app.Responsibilities)
	if err != nil {
		return err
	}
	skillsJSON, err := marshalJSON(app.Skills)
	if err != nil {
		return err
	}
	historyJSON, err := marshalJSON(app.LetterHistory)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO applications (id, user_id, job_title, company, location, job_url,
		job_description, salary, detailed_description, requirements_json,
		responsibilities_json, skills_json, cover_letter, cover_letter_status,
		letter_history_json, status, applied_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		job_title = excluded.job_title,
		company = excluded.company,
		location = excluded.location,
		job_url = excluded.job_url,
		job_description = excluded.job_description,
		salary = excluded.salary,
		detailed_description = excluded.detailed_description,
		requirements_json = excluded.requirements_json,
		responsibilities_json = excluded.responsibilities_json,
		skills_json = excluded.skills_json,
		cover_letter = excluded.cover_letter,
		cover_letter_status = excluded.cover_letter_status,
		letter_history_json = excluded.letter_history_json,
		status = excluded.status,
		applied_at = excluded.applied_at,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		app.ID, app.UserID, app.JobTitle, app.Company, app.Location, app.JobURL,
		app.JobDescription, nullableString(app.Salary), nullableString(app.DetailedDescription), reqJSON,
		respJSON, skillsJSON, app.CoverLetter, string(app.CoverLetterStatus),
		historyJSON, string(app.Status), nullableTime(app.AppliedAt),
		app.CreatedAt.Unix(), app.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert application: %w", err)
	}
	return nil
}

// DeleteApplication removes an application.
func (s *SQLiteStore) DeleteApplication(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return nil
}

const contactColumns = `id, application_id, name, title, company, connection_degree,
	profile_url, description, outreach_type, message_text, thread_url, status,
	sent_at, last_checked_at, response_text`

func (s *SQLiteStore) scanContact(row interface{ Scan(...interface{}) error }) (*domain.NetworkingContact, error) {
	var c domain.NetworkingContact
	var description, threadURL, responseText sql.NullString
	var sentAt int64
	var lastCheckedAt sql.NullInt64

	err := row.Scan(
		&c.ID, &c.ApplicationID, &c.Name, &c.Title, &c.Company, &c.ConnectionDegree,
		&c.ProfileURL, &description, &c.OutreachType, &c.MessageText, &threadURL, &c.Status,
		&sentAt, &lastCheckedAt, &responseText,
	)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	c.ThreadURL = threadURL.String
	c.ResponseText = responseText.String
	c.SentAt = time.Unix(sentAt, 0)
	if lastCheckedAt.Valid {
		t := time.Unix(lastCheckedAt.Int64, 0)
		c.LastCheckedAt = &t
	}

	return &c, nil
}

// GetContact retrieves a networking contact by id.
func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*domain.NetworkingContact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`

	contact, err := s.scanContact(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contact %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan contact row: %w", err)
	}
	return contact, nil
}

// ListContactsByApplication returns contacts for an application in saved order.
func (s *SQLiteStore) ListContactsByApplication(ctx context.Context, applicationID string) ([]*domain.NetworkingContact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE application_id = ? ORDER BY sent_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.NetworkingContact
	for rows.Next() {
		contact, err := s.scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// UpsertContact creates or updates a contact record.
func (s *SQLiteStore) UpsertContact(ctx context.Context, contact *domain.NetworkingContact) error {
	query := `
	INSERT INTO contacts (id, application_id, name, title, company, connection_degree,
		profile_url, description, outreach_type, message_text, thread_url, status,
		sent_at, last_checked_at, response_text)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		last_checked_at = excluded.last_checked_at,
		response_text = excluded.response_text`

	_, err := s.db.ExecContext(ctx, query,
		contact.ID, contact.ApplicationID, contact.Name, contact.Title, contact.Company,
		string(contact.ConnectionDegree), contact.ProfileURL, nullableString(contact.Description),
		string(contact.OutreachType), contact.MessageText, nullableString(contact.ThreadURL),
		string(contact.Status), contact.SentAt.Unix(), nullableTime(contact.LastCheckedAt),
		nullableString(contact.ResponseText),
	)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	return nil
}

// GetConversationState retrieves conversation state, or (nil, nil) if absent.
func (s *SQLiteStore) GetConversationState(ctx context.Context, userID string) (*domain.ConversationState, error) {
	query := `
		SELECT user_id, stage, profile_draft_json, selected_jobs_json,
		       letter_drafts_json, approved_letters_json, pending_people_json, updated_at
		FROM conversation_state WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var st domain.ConversationState
	var stage, draftJSON, selectedJSON, lettersJSON, approvedJSON, peopleJSON string
	var updatedAt int64

	err := row.Scan(&st.UserID, &stage, &draftJSON, &selectedJSON, &lettersJSON, &approvedJSON, &peopleJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation state row: %w", err)
	}

	// The stage is returned exactly as stored; the conversation service
	// decides what to do with values it does not recognize.
	st.Stage = domain.Stage(stage)

	if err := unmarshalJSON(draftJSON, &st.ProfileDraft); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(selectedJSON, &st.SelectedJobs); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(lettersJSON, &st.LetterDrafts); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(approvedJSON, &st.ApprovedLetters); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(peopleJSON, &st.PendingPeople); err != nil {
		return nil, err
	}
	st.LastUpdated = time.Unix(updatedAt, 0)

	return &st, nil
}

// UpsertConversationState creates or updates conversation state.
func (s *SQLiteStore) UpsertConversationState(ctx context.Context, state *domain.ConversationState) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	draftJSON, err := marshalJSON(state.ProfileDraft)
	if err != nil {
		return err
	}
	selectedJSON, err := marshalJSON(state.SelectedJobs)
	if err != nil {
		return err
	}
	lettersJSON, err := marshalJSON(state.LetterDrafts)
	if err != nil {
		return err
	}
	approvedJSON, err := marshalJSON(state.ApprovedLetters)
	if err != nil {
		return err
	}
	peopleJSON, err := marshalJSON(state.PendingPeople)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO conversation_state (user_id, stage, profile_draft_json,
		selected_jobs_json, letter_drafts_json, approved_letters_json,
		pending_people_json, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		stage = excluded.stage,
		profile_draft_json = excluded.profile_draft_json,
		selected_jobs_json = excluded.selected_jobs_json,
		letter_drafts_json = excluded.letter_drafts_json,
		approved_letters_json = excluded.approved_letters_json,
		pending_people_json = excluded.pending_people_json,
		updated_at = excluded.updated_at`

	err = s.execRetry(ctx, query,
		state.UserID, string(state.Stage), draftJSON,
		selectedJSON, lettersJSON, approvedJSON, peopleJSON, state.LastUpdated.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert conversation state: %w", err)
	}
	return nil
}

// DeleteConversationState removes conversation state.
func (s *SQLiteStore) DeleteConversationState(ctx context.Context, userID string) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_state WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete conversation state: %w", err)
	}
	return nil
}

// AppendMessage stores one immutable conversation message.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *domain.ConversationMessage) error {
	var metaJSON interface{}
	if msg.Metadata != nil {
		encoded, err := marshalJSON(msg.Metadata)
		if err != nil {
			return err
		}
		metaJSON = encoded
	}

	query := `
	INSERT INTO conversation_messages (id, user_id, role, content, metadata_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	err := s.execRetry(ctx, query,
		msg.ID, msg.UserID, string(msg.Role), msg.Content, metaJSON, msg.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages returns a user's messages in chronological order. The rowid
// tiebreak keeps same-second user/assistant pairs ordered.
func (s *SQLiteStore) ListMessages(ctx context.Context, userID string) ([]*domain.ConversationMessage, error) {
	query := `
		SELECT id, user_id, role, content, metadata_json, created_at
		FROM conversation_messages WHERE user_id = ?
		ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.ConversationMessage
	for rows.Next() {
		var m domain.ConversationMessage
		var metaJSON sql.NullString
		var createdAt int64

		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &metaJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		if metaJSON.Valid {
			var meta domain.TurnMetadata
			if err := unmarshalJSON(metaJSON.String, &meta); err != nil {
				return nil, err
			}
			m.Metadata = &meta
		}
		m.Timestamp = time.Unix(createdAt, 0)
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// ClearMessages deletes all messages for a user.
func (s *SQLiteStore) ClearMessages(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}
