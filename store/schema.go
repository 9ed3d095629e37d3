package store

// schemaSQL is the base DDL for the mirror.
const schemaSQL = `
-- Documents the session has seen
CREATE TABLE IF NOT EXISTS documents (
    doc_id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Page texts in their last flushed state
CREATE TABLE IF NOT EXISTS pages (
    doc_id TEXT NOT NULL REFERENCES documents(doc_id) ON DELETE CASCADE,
    num INTEGER NOT NULL,
    image_ref TEXT NOT NULL DEFAULT '',
    text TEXT,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (doc_id, num)
);

CREATE INDEX IF NOT EXISTS idx_pages_doc ON pages(doc_id);
`
