package config

// Environment variables read by FromEnv.
const (
	EnvTemp      = "RUNNER_TEMP"
	EnvToolCache = "RUNNER_TOOL_CACHE"
	EnvConfig    = "INPUT_CONFIG"
	EnvDebug     = "RUNNER_DEBUG"
)

// Lua schema field names and globals
const (
	luaGlobalSteamCMD = "steamcmd"
	luaFieldBaseURL   = "base_url"
	luaFieldDeps      = "dependencies"
	luaFieldSHA256    = "sha256"
	luaFieldSigURL    = "signature_url"
	luaFieldKeyring   = "keyring"
	luaFieldProgress  = "progress"
)
