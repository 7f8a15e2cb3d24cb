package config

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestSandboxLuaVM(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr string
	}{
		{name: "string library", code: `x = string.upper("hello")`},
		{name: "table library", code: `t = {1, 2}; table.insert(t, 3)`},
		{name: "math library", code: `x = math.floor(3.7)`},
		{name: "basic functions", code: `for k, v in pairs({a = tostring(1)}) do end`},

		{name: "os", code: `os.execute("ls")`, wantErr: "attempt to index"},
		{name: "io", code: `io.open("/etc/passwd")`, wantErr: "attempt to index"},
		{name: "debug", code: `debug.getinfo(1)`, wantErr: "attempt to index"},
		{name: "require", code: `require("socket")`, wantErr: "attempt to call"},
		{name: "dofile", code: `dofile("/tmp/x.lua")`, wantErr: "attempt to call"},
		{name: "loadfile", code: `loadfile("/tmp/x.lua")`, wantErr: "attempt to call"},
		{name: "load", code: `load("return 1")`, wantErr: "attempt to call"},
		{name: "loadstring", code: `loadstring("return 1")`, wantErr: "attempt to call"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newSandboxedVM()
			defer L.Close()

			err := L.DoString(tt.code)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("DoString(%q) error = %v", tt.code, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("DoString(%q) error = %v, want substring %q", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestNewSandboxedVM(t *testing.T) {
	L := newSandboxedVM()
	defer L.Close()

	if v := L.GetGlobal("os"); v.Type() != lua.LTNil {
		t.Errorf("os = %v, want nil", v.Type())
	}
	if v := L.GetGlobal("string"); v.Type() != lua.LTTable {
		t.Errorf("string = %v, want table", v.Type())
	}
}
