// Package config loads the alarm-clock settings from YAML, applies ALARM_*
// environment overrides and validates them.
//
// Every field has a default, so a device can boot without a settings file as
// long as at least one authorized token is provided.
package config
