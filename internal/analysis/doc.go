/*
Package analysis implements the controller behind the query form.

Submit validates the query, bumps the staleness token, shows the loading
state and schedules exactly one request to /analyze or /advanced_analyze.
When the request settles on the event loop the controller compares the
token it captured with the current one; anything older is dropped. A
success renders the result and reloads the history, a failure shows the
error and leaves the history alone. A timeout fails the submission and
bumps the token so a late reply cannot overwrite the error.

States: Idle → Loading → Success | Failed, and any state accepts a new
submission.
*/
package analysis
