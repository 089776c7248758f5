package main

import (
	"strings"
	"testing"

	"github.com/fbkclanna/reqcheck/internal/pip"
	"github.com/fbkclanna/reqcheck/internal/project"
	"github.com/fbkclanna/reqcheck/internal/testutil"
)

func TestStaleInstalls(t *testing.T) {
	site := testutil.CreateSitePackages(t,
		testutil.DistInfo{Name: "requests", Version: "2.30.0"},
		testutil.DistInfo{Name: "urllib3", Version: "2.0.0"},
	)
	dir := testutil.CreateProject(t, map[string]string{
		"requirements.txt": "requests==2.31.0\nurllib3==2.0.0\nsix==1.16.0\n",
	})

	ctx, err := project.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx.Config.SitePackages = site

	stale, err := staleInstalls(ctx, pip.Config{}.WithDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 2 {
		t.Fatalf("stale = %v, want 2 entries", stale)
	}
	if !strings.Contains(stale[0], "requests: locked 2.31.0, installed 2.30.0") {
		t.Errorf("stale[0] = %q", stale[0])
	}
	if !strings.Contains(stale[1], "six==1.16.0 is not installed") {
		t.Errorf("stale[1] = %q", stale[1])
	}
}

func TestStaleInstalls_clean(t *testing.T) {
	site := testutil.CreateSitePackages(t,
		testutil.DistInfo{Name: "requests", Version: "2.31.0"},
	)
	dir := testutil.CreateProject(t, map[string]string{
		"requirements.txt": "requests==2.31.0\n",
	})

	ctx, err := project.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx.Config.SitePackages = site

	stale, err := staleInstalls(ctx, pip.Config{}.WithDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 0 {
		t.Errorf("stale = %v, want none", stale)
	}
}
