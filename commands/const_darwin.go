package commands

const (
	_etc = "/usr/local/etc/com.github.uhppoted"

	DEFAULT_CONFIG = _etc + "/db-sync/db-sync.yaml"
	DEFAULT_ENV    = _etc + "/db-sync/.env"

	DEFAULT_CREDENTIALS = _etc + "/db-sync/.google/credentials.json"
)
