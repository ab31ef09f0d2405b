package discord

import "strconv"

// parseSnowflakeInt returns the raw numeric value of a snowflake ID.
func parseSnowflakeInt(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
