// Package logging provides the leveled, printf-style logger used across the
// media editor.
//
// Levels are DEBUG, INFO, WARN and ERROR, plus Fatal which exits. The level
// comes from DEBUG (any truthy value selects debug) or LOG_LEVEL, and the
// CLI may override it with SetLevel.
package logging
