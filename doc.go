// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package db-sync-sheets copies PostgreSQL tables to a Google Sheets spreadsheet, one worksheet per table.

db-sync-sheets is intended to be run from a cron job (or a scheduler like a Kubernetes CronJob) to keep a
read-only spreadsheet mirror of a database up to date. Every run replaces the contents of each worksheet
with the current contents of the table:

  - tables are discovered from information_schema, filtered by the included/excluded schemas, the excluded
    table prefixes and an optional explicit selection
  - each table is fetched in full (optionally paged through a server side cursor) and normalised to
    spreadsheet-safe values (exact decimals, JSON text for arrays and objects)
  - the worksheet is created or cleared and the header and rows are written from A1
  - transient spreadsheet and database failures are retried (3 attempts, exponential backoff) and a table
    that still fails is logged and skipped

Configuration is from the environment (optionally a .env file) and an optional YAML file:

  - DB_SYNC_DATABASE_URL, GOOGLE_SPREADSHEET_ID (required)
  - DB_SYNC_INCLUDED_SCHEMAS, DB_SYNC_EXCLUDED_SCHEMAS, DB_SYNC_EXCLUDED_TABLE_PREFIXES
  - DB_SYNC_SHEET_PREFIX, DB_SYNC_BATCH_SIZE, DB_SYNC_LOG_LEVEL, DB_SYNC_LOG_FORMAT
  - DB_SYNC_VALUE_INPUT_OPTION, DB_SYNC_WRITE_BATCH_ROWS, DB_SYNC_ABORT_ON_EXHAUSTED
  - GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS_BASE64 (service account)
*/
package dbsync
