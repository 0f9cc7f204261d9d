/*
Package types defines the data model shared by the analysis client.

# Requests and Responses

AnalysisRequest:
  - Query text plus the advanced flag
  - Endpoint selects /analyze or /advanced_analyze

AnalysisResponse:
  - Result, optional JSON-encoded chart, or an application error

# Results

AnalysisResult is a tagged union decided when decoding:
  - Text: a scalar rendered as prose
  - Mapping: ordered keys with unique names
  - Sequence: items, optionally {name, value} records

# History

HistoryEntry:
  - One recorded query and its result
  - Position within the fetched page

# Errors

Error carries an ErrorKind (validation, transport, application, render,
history) and, for HTTP failures, the status and response body.
*/
package types
