package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate_MissingRequiredKeys(t *testing.T) {
	var c Config
	c.Defaults()
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation failure for empty config")
	}
}

func TestValidate_Complete(t *testing.T) {
	var c Config
	c.LLM.APIKey = "sk-test"
	c.Mongo.URI = "mongodb://localhost:27017"
	c.Defaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	var c Config
	c.Defaults()
	if c.ListenAddr != ":8000" || c.LLM.Model != "gpt-4" || c.Mongo.Database != "recipio" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Timeouts.Extract != time.Minute {
		t.Fatalf("expected extract timeout default, got %v", c.Timeouts.Extract)
	}
}

func TestMergeFile_FlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "llm:\n  model: from-file\n  key: file-key\nmongo:\n  uri: mongodb://file:27017\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var c Config
	c.LLM.Model = "from-flag"
	if err := c.MergeFile(path); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if c.LLM.Model != "from-flag" {
		t.Fatalf("flag value must win over file, got %q", c.LLM.Model)
	}
	if c.LLM.APIKey != "file-key" || c.Mongo.URI != "mongodb://file:27017" {
		t.Fatalf("file values must fill unset fields, got %+v", c)
	}
}

func TestMergeFile_Missing(t *testing.T) {
	var c Config
	if err := c.MergeFile(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
