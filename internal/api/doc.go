/*
Package api is the HTTP client for the analysis server.

# Endpoints

  - POST /analyze            form body "<field>=<query>"
  - POST /advanced_analyze   same body, LLM-backed analysis
  - GET  /history            ?page=&per_page=, newest first

# Errors

Every failure is a *types.Error:
  - TransportError: network failure, timeout, non-2xx status (body kept)
  - ApplicationError: 2xx reply carrying an "error" field
  - HistoryFetchError: any failure while loading /history

Each request carries an X-Request-ID header and is logged at debug level.
*/
package api
