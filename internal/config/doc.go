// Package config loads run settings.
//
// Settings come from two places. The runner environment supplies the
// directories (RUNNER_TEMP, RUNNER_TOOL_CACHE) and is read by FromEnv. An
// optional Lua file, named by INPUT_CONFIG or --config, can override the
// download mirror, the Linux dependency list and the archive verification:
//
//	steamcmd = {
//	  base_url = "https://mirror.example.com/steamcmd",
//	  dependencies = {
//	    "lib32gcc-s1",
//	    platform.is_debian_family and "lib32stdc++6" or nil,
//	  },
//	  sha256 = "<hex digest>",
//	  progress = false,
//	}
//
// The file runs in a sandboxed VM with no os, io or module loading, and a
// read-only platform table describing the target platform.
package config
