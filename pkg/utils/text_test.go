package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("ẞeisho ļight", 6); got != "ẞeisho..." {
		t.Errorf("multibyte truncate: got %q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  In the\n\tbeginning  "); got != "In the beginning" {
		t.Errorf("got %q", got)
	}
	if got := CollapseSpace(" \n "); got != "" {
		t.Errorf("blank input: got %q", got)
	}
}
