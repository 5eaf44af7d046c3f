// Package ingest turns an uploaded tabular file into a typed, query-ready
// dataset backed by a durable CSV snapshot.
//
// This package is the heart of the service, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Pipeline
//
// Each upload runs through a single linear pipeline:
//
//  1. Parsing: the file format is selected by suffix (.csv or .xlsx) and the
//     raw bytes are decoded into columns of nullable text cells. Missing-value
//     sentinels ("NA", "N/A", "missing") become nulls here.
//  2. Escaping: text columns have embedded quote characters doubled so values
//     can later sit inside quoted CSV fields.
//  3. Inferring: column types are decided at column level. Columns whose name
//     contains "date" are parsed as timestamps (unparseable cells become
//     null); remaining text columns are coerced to numbers only if every
//     value parses (all-or-nothing); natively typed columns are untouched.
//  4. Writing: the typed table is serialized to a fully-quoted UTF-8 CSV
//     snapshot at a fresh UUID-named path for downstream SQL engines.
//
// A failure in any stage aborts the whole run: the caller gets no table, no
// columns, and no snapshot path, only a [PipelineError] naming the stage and
// cause. Per-cell parse failures during inference are not errors; they
// degrade to nulls.
//
// # Service
//
// [Service] wraps the pipeline with a concurrency limiter, a file-size guard,
// and an explicit dataset registry so callers can list, preview, and download
// past ingests without any process-global state.
package ingest
