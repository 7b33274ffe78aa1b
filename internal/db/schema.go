package db

// schemaSQL is idempotent; Migrate may run on every start.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS practice_sessions (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	question         TEXT NOT NULL DEFAULT '',
	duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS feedback_records (
	id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	session_id        UUID NOT NULL REFERENCES practice_sessions(id) ON DELETE CASCADE,
	overall_score     INTEGER NOT NULL CHECK (overall_score BETWEEN 0 AND 100),
	clarity_score     INTEGER NOT NULL CHECK (clarity_score BETWEEN 0 AND 100),
	structure_score   INTEGER NOT NULL CHECK (structure_score BETWEEN 0 AND 100),
	pace_score        INTEGER NOT NULL CHECK (pace_score BETWEEN 0 AND 100),
	content_score     INTEGER NOT NULL CHECK (content_score BETWEEN 0 AND 100),
	filler_word_count INTEGER NOT NULL CHECK (filler_word_count >= 0),
	feedback_text     TEXT NOT NULL,
	strengths         JSONB NOT NULL DEFAULT '[]',
	improvements      JSONB NOT NULL DEFAULT '[]',
	metrics           JSONB,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_feedback_records_created_at ON feedback_records (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_feedback_records_session_id ON feedback_records (session_id);
`
