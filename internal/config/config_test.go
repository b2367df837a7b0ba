package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func boolPtr(v bool) *bool { return &v }

func stringsPtr(values ...string) *[]string {
	copied := append([]string{}, values...)
	return &copied
}

func TestMergePrecedence(t *testing.T) {
	base := Defaults()

	fileCfg := Config{Gap: boolPtr(false), Extra: stringsPtr("@author file")}
	envCfg := Config{Extra: stringsPtr("@author env", "@since 1.0")}
	flagCfg := Config{Gap: boolPtr(true)}

	merged := Merge(base, fileCfg, envCfg, flagCfg)
	if !merged.Gap {
		t.Fatal("expected Gap true from flag layer")
	}
	if !reflect.DeepEqual(merged.Extra, []string{"@author env", "@since 1.0"}) {
		t.Fatalf("unexpected extra: %v", merged.Extra)
	}
}

func TestMergeEmptyListClears(t *testing.T) {
	base := Snapshot{Gap: true, Extra: []string{"@author base"}}
	merged := Merge(base, Config{Extra: stringsPtr()})
	if merged.Extra == nil || len(merged.Extra) != 0 {
		t.Fatalf("expected cleared extra, got %#v", merged.Extra)
	}
	if len(base.Extra) != 1 {
		t.Fatal("Merge must not modify the base snapshot")
	}
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		EnvGap:   "no",
		EnvExtra: `@author Jane Doe, ACME\n@license MIT`,
	}
	cfg, err := FromEnv(func(key string) string { return env[key] })
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.Gap == nil || *cfg.Gap {
		t.Fatalf("expected Gap false, got %+v", cfg.Gap)
	}
	want := []string{"@author Jane Doe, ACME", "@license MIT"}
	if cfg.Extra == nil || !reflect.DeepEqual(*cfg.Extra, want) {
		t.Fatalf("unexpected extra: %v", cfg.Extra)
	}
}

func TestFromEnvInvalidBool(t *testing.T) {
	_, err := FromEnv(func(key string) string {
		if key == EnvGap {
			return "maybe"
		}
		return ""
	})
	if err == nil {
		t.Fatal("expected error for invalid DOCBLOCKER_GAP")
	}
}

func TestFromEnvNilGetenv(t *testing.T) {
	cfg, err := FromEnv(nil)
	if err != nil {
		t.Fatalf("FromEnv(nil) error: %v", err)
	}
	if cfg.Gap != nil || cfg.Extra != nil {
		t.Fatalf("expected empty layer, got %+v", cfg)
	}
}

func TestLoadConfigFormats(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		".yaml": "gap: false\nextra:\n  - \"@author Jane\"\n  - \"\"\n  - \"@license MIT\"\n",
		".toml": "[php-docblocker]\ngap = \"off\"\nextra = [\"@author Jane\", \"\", \"@license MIT\"]\n",
		".json": "{\n  \"docblocker\": {\"gap\": false},\n  \"extra\": [\"@author Jane\", \"\", \"@license MIT\"]\n}\n",
	}
	want := []string{"@author Jane", "", "@license MIT"}

	for ext, content := range cases {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "config"+ext)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Gap == nil || *cfg.Gap {
				t.Fatalf("%s gap mismatch: %+v", ext, cfg.Gap)
			}
			if cfg.Extra == nil || !reflect.DeepEqual(*cfg.Extra, want) {
				t.Fatalf("%s extra mismatch: %v", ext, cfg.Extra)
			}
		})
	}
}

func TestLoadSingleStringExtra(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("extra: \"@author Jane\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Extra == nil || !reflect.DeepEqual(*cfg.Extra, []string{"@author Jane"}) {
		t.Fatalf("unexpected extra: %v", cfg.Extra)
	}
	if cfg.Gap != nil {
		t.Fatal("gap should stay unset")
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("unknown: value\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte("gap=true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for .ini config")
	}
}

func TestFindOrder(t *testing.T) {
	repoRoot := filepath.Join(t.TempDir(), "repo")
	if err := os.MkdirAll(filepath.Join(repoRoot, "sub", "dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	repoConfig := filepath.Join(repoRoot, ".docblocker.yaml")
	if err := os.WriteFile(repoConfig, []byte("gap: true\n"), 0o644); err != nil {
		t.Fatalf("write repo config: %v", err)
	}
	path, where, err := Find(filepath.Join(repoRoot, "sub", "dir"), "", "", "")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if path != repoConfig || where != OriginCwdUp {
		t.Fatalf("unexpected result: path=%s where=%s", path, where)
	}

	explicit := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(explicit, []byte("gap = false\n"), 0o644); err != nil {
		t.Fatalf("write explicit: %v", err)
	}
	path, where, err = Find(repoRoot, explicit, "", "")
	if err != nil {
		t.Fatalf("Find explicit failed: %v", err)
	}
	if path != explicit || where != OriginExplicit {
		t.Fatalf("expected explicit config, got path=%s where=%s", path, where)
	}

	xdgHome := t.TempDir()
	if err := os.MkdirAll(filepath.Join(xdgHome, "docblocker"), 0o755); err != nil {
		t.Fatalf("mkdir xdg: %v", err)
	}
	xdgPath := filepath.Join(xdgHome, "docblocker", "config.json")
	if err := os.WriteFile(xdgPath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write xdg: %v", err)
	}
	path, where, err = Find(t.TempDir(), "", xdgHome, t.TempDir())
	if err != nil {
		t.Fatalf("Find xdg failed: %v", err)
	}
	if path != xdgPath || where != OriginXDG {
		t.Fatalf("expected xdg config, got path=%s where=%s", path, where)
	}

	homeDir := t.TempDir()
	homePath := filepath.Join(homeDir, ".docblocker.toml")
	if err := os.WriteFile(homePath, []byte("gap = true\n"), 0o644); err != nil {
		t.Fatalf("write home: %v", err)
	}
	path, where, err = Find(t.TempDir(), "", t.TempDir(), homeDir)
	if err != nil {
		t.Fatalf("Find home failed: %v", err)
	}
	if path != homePath || where != OriginHome {
		t.Fatalf("expected home config, got path=%s where=%s", path, where)
	}
}

func TestFindExplicitDirectory(t *testing.T) {
	if _, _, err := Find(".", t.TempDir(), "", ""); err == nil {
		t.Fatal("expected error when explicit path is a directory")
	}
}

func TestLayeredReadsFileOnEveryCall(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".docblocker.yaml")
	if err := os.WriteFile(path, []byte("gap: false\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	src := Layered{StartDir: dir, XDGHome: t.TempDir(), Home: t.TempDir(), Getenv: func(string) string { return "" }}

	first, err := src.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if first.Gap {
		t.Fatal("expected gap false from file")
	}

	if err := os.WriteFile(path, []byte("gap: true\nextra: [\"@since 2.0\"]\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	second, err := src.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if !second.Gap || !reflect.DeepEqual(second.Extra, []string{"@since 2.0"}) {
		t.Fatalf("edited settings not picked up: %+v", second)
	}
}

func TestLayeredOverridesWin(t *testing.T) {
	env := map[string]string{EnvGap: "false"}
	src := Layered{
		StartDir:  t.TempDir(),
		XDGHome:   t.TempDir(),
		Home:      t.TempDir(),
		Getenv:    func(k string) string { return env[k] },
		Overrides: Config{Gap: boolPtr(true)},
	}
	snap, err := src.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if !snap.Gap {
		t.Fatal("override layer should win over environment")
	}
}

func TestValidateRejectsCommentClose(t *testing.T) {
	if err := Validate(Snapshot{Extra: []string{"@see foo */"}}); err == nil {
		t.Fatal("expected error for */ in extra line")
	}
	if err := Validate(Snapshot{Extra: []string{"a\nb"}}); err == nil {
		t.Fatal("expected error for embedded newline")
	}
	if err := Validate(Snapshot{Extra: []string{"@author Jane", ""}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseBoolVariants(t *testing.T) {
	for _, tc := range []string{"1", "true", "TRUE", "yes", "On"} {
		got, err := ParseBool(tc, "flag")
		if err != nil || !got {
			t.Fatalf("ParseBool(%q) = %v, %v; want true", tc, got, err)
		}
	}
	for _, tc := range []string{"0", "false", "FALSE", "no", "OFF"} {
		got, err := ParseBool(tc, "flag")
		if err != nil || got {
			t.Fatalf("ParseBool(%q) = %v, %v; want false", tc, got, err)
		}
	}
	if _, err := ParseBool("maybe", "flag"); err == nil {
		t.Fatal("ParseBool should reject unknown values")
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a  \r\n\nb\\nc\n\n")
	want := []string{"a", "", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitLines = %q, want %q", got, want)
	}
}

func TestWithOverrides(t *testing.T) {
	base := Static(Snapshot{Gap: true, Extra: []string{"@author base"}})
	got, err := WithOverrides(base, Config{Gap: boolPtr(false)}).Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.Gap || !reflect.DeepEqual(got.Extra, []string{"@author base"}) {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if _, err := WithOverrides(base, Config{Extra: stringsPtr("bad */")}).Snapshot(); err == nil {
		t.Fatal("overrides must be validated")
	}
}
