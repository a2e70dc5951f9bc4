package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	order_id TEXT PRIMARY KEY,
	run TEXT NOT NULL,
	symbol TEXT NOT NULL,
	size REAL NOT NULL,
	price REAL NOT NULL,
	fee REAL NOT NULL,
	pnl REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL,
	buying_power REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS summaries (
	run TEXT NOT NULL,
	metric TEXT NOT NULL,
	value REAL NOT NULL,
	PRIMARY KEY (run, metric)
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run);
CREATE INDEX IF NOT EXISTS idx_equity_run_time ON equity(run, time);
`
