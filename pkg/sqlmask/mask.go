package sqlmask

import "regexp"

var (
	dsnPasswordRegex  = regexp.MustCompile(`(:)([^:@/]+)(@)`)
	stmtPasswordRegex = regexp.MustCompile(`(?i)(PASSWORD\s+')(?:[^']|'')*(')`)
)

// MaskDSN hides the password portion of a connection string for logging.
func MaskDSN(dsn string) string {
	return dsnPasswordRegex.ReplaceAllString(dsn, ":***@")
}

// MaskStatement redacts the PASSWORD literal of a credential-registration
// statement. Statements embed the recovered secret, so they must never be
// logged raw.
func MaskStatement(sql string) string {
	return stmtPasswordRegex.ReplaceAllString(sql, "${1}***${2}")
}
