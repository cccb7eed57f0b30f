package db

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create users table",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				salt TEXT NOT NULL,
				real_name TEXT DEFAULT '',
				location TEXT DEFAULT '',
				last_login DATETIME,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				login_count INTEGER DEFAULT 0,
				access_level INTEGER DEFAULT 1
			)
		`,
	},
	{
		name: "create messages table",
		sql: `
			CREATE TABLE IF NOT EXISTS messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				from_user TEXT NOT NULL,
				to_user TEXT DEFAULT 'ALL',
				subject TEXT NOT NULL,
				body TEXT NOT NULL,
				posted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				message_area TEXT DEFAULT 'General'
			);
			CREATE INDEX IF NOT EXISTS idx_messages_area ON messages(message_area, id);
		`,
	},
	{
		name: "create login log table",
		sql: `
			CREATE TABLE IF NOT EXISTS login_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT,
				ip_address TEXT,
				success BOOLEAN,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_login_log_time ON login_log(timestamp);
		`,
	},
}
