package commands

const (
	_etc = `C:\ProgramData\uhppoted`

	DEFAULT_CONFIG = _etc + `\db-sync\db-sync.yaml`
	DEFAULT_ENV    = _etc + `\db-sync\.env`

	DEFAULT_CREDENTIALS = _etc + `\db-sync\.google\credentials.json`
)
