// Package ingest turns inbound webhook deliveries into typed answer clips.
//
// A delivery carries one completed section of a respondent's interview:
// contact details, session identity variables, the raw answers, and the
// form's question definitions. Ingestion validates the payload, resolves a
// display title per question, pairs questions with their video answers in
// form order, and streams each answer's media into the object store under
// the tenant's responses prefix.
package ingest
