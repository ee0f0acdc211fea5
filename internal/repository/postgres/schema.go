package postgres

// schema is applied at startup. Statement-level triggers fan out change
// notifications to the per-collection LISTEN channels; payloads are empty
// because listeners always re-query the full ordered list.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL UNIQUE,
	coffee_count INTEGER NOT NULL DEFAULT 0,
	badge        TEXT NOT NULL DEFAULT 'New',
	last_scan    TIMESTAMPTZ,
	is_external  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS activity (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	user_name    TEXT NOT NULL,
	action       TEXT NOT NULL,
	coffee_count INTEGER NOT NULL,
	ts           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS activity_ts_idx ON activity (ts DESC);

CREATE OR REPLACE FUNCTION kava_notify() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify(TG_ARGV[0], '');
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS users_notify ON users;
CREATE TRIGGER users_notify
	AFTER INSERT OR UPDATE ON users
	FOR EACH STATEMENT EXECUTE FUNCTION kava_notify('kava_users');

DROP TRIGGER IF EXISTS activity_notify ON activity;
CREATE TRIGGER activity_notify
	AFTER INSERT ON activity
	FOR EACH STATEMENT EXECUTE FUNCTION kava_notify('kava_activity');
`
