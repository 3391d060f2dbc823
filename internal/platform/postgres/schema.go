package postgres

// Schema holds the DDL for all engine tables. Applied by deployment tooling
// and by integration tests against throwaway containers.
const Schema = `
CREATE TABLE IF NOT EXISTS domains (
    id                       UUID PRIMARY KEY,
    domain_name              TEXT NOT NULL UNIQUE,
    status                   TEXT NOT NULL,
    quality_tier             TEXT NOT NULL,
    best_confidence_score    NUMERIC(3,2) NOT NULL,
    high_confidence_count    INT NOT NULL DEFAULT 0,
    low_confidence_count     INT NOT NULL DEFAULT 0,
    total_results_count      INT NOT NULL DEFAULT 0,
    blacklist_reason         TEXT,
    blacklisted_by           TEXT,
    blacklisted_at           TIMESTAMPTZ,
    no_funds_year            INT,
    failure_reason           TEXT,
    failure_count            INT NOT NULL DEFAULT 0,
    notes                    TEXT,
    first_seen_at            TIMESTAMPTZ NOT NULL,
    last_seen_at             TIMESTAMPTZ NOT NULL,
    version                  BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_domains_quality_tier ON domains (quality_tier, best_confidence_score DESC);
CREATE INDEX IF NOT EXISTS idx_domains_status ON domains (status, last_seen_at DESC);

CREATE TABLE IF NOT EXISTS judgments (
    id                UUID PRIMARY KEY,
    session_id        UUID NOT NULL,
    domain_name       TEXT NOT NULL,
    url               TEXT NOT NULL,
    title             TEXT NOT NULL DEFAULT '',
    description       TEXT NOT NULL DEFAULT '',
    confidence_score  NUMERIC(3,2) NOT NULL,
    tld_score         NUMERIC(3,2) NOT NULL,
    keyword_score     NUMERIC(3,2) NOT NULL,
    geo_score         NUMERIC(3,2) NOT NULL,
    org_type_score    NUMERIC(3,2) NOT NULL,
    high_confidence   BOOLEAN NOT NULL,
    candidate_created BOOLEAN NOT NULL DEFAULT FALSE,
    candidate_id      UUID,
    judged_at         TIMESTAMPTZ NOT NULL,
    UNIQUE (session_id, domain_name)
);

CREATE TABLE IF NOT EXISTS candidates (
    id                       UUID PRIMARY KEY,
    session_id               UUID NOT NULL,
    domain_name              TEXT NOT NULL,
    url                      TEXT NOT NULL,
    title                    TEXT NOT NULL,
    confidence_score         NUMERIC(3,2) NOT NULL,
    status                   TEXT NOT NULL,
    organization_name_guess  TEXT,
    program_name_guess       TEXT,
    quality_tier_at_creation TEXT NOT NULL,
    created_at               TIMESTAMPTZ NOT NULL,
    UNIQUE (session_id, domain_name)
);

CREATE INDEX IF NOT EXISTS idx_candidates_session ON candidates (session_id, confidence_score DESC);
CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates (status, confidence_score DESC);
`
