package driver

import "testing"

func TestResolveFolders_DefaultFlagWins(t *testing.T) {
	got := ResolveFolders("/home/conor", []string{"cpp", "docs"}, []string{"explicit"}, true, "/home/conor/cpp")
	want := []string{"cpp", "docs"}

	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveFolders_ExplicitFoldersBeatCwd(t *testing.T) {
	got := ResolveFolders("/home/conor", []string{"cpp"}, []string{"cam", "docs"}, false, "/home/conor/cpp")
	if len(got) != 2 || got[0] != "cam" || got[1] != "docs" {
		t.Fatalf("got %v", got)
	}
}

func TestResolveFolders_DerivesFromCwdUnderBaseL(t *testing.T) {
	got := ResolveFolders("/home/conor", []string{"cpp"}, nil, false, "/home/conor/cam/sub")
	if len(got) != 1 || got[0] != "cam/sub" {
		t.Fatalf("got %v, want [cam/sub]", got)
	}
}

func TestResolveFolders_CwdOutsideBaseLFallsBackToDefaults(t *testing.T) {
	got := ResolveFolders("/home/conor", []string{"cpp", "docs"}, nil, false, "/var/tmp")
	if len(got) != 2 || got[0] != "cpp" || got[1] != "docs" {
		t.Fatalf("got %v, want defaults", got)
	}
}

func TestResolveFolders_CwdEqualsBaseLFallsBackToDefaults(t *testing.T) {
	got := ResolveFolders("/home/conor", []string{"cpp"}, nil, false, "/home/conor")
	if len(got) != 1 || got[0] != "cpp" {
		t.Fatalf("got %v, want defaults", got)
	}
}

func TestJoinRoot(t *testing.T) {
	cases := []struct {
		root, folder, want string
	}{
		{"/home/conor/", "cpp", "/home/conor/cpp"},
		{"/home/conor", "cpp", "/home/conor/cpp"},
		{"onedrive:", "cpp", "onedrive:cpp"},
		{"", "cpp", "cpp"},
	}

	for _, c := range cases {
		if got := joinRoot(c.root, c.folder); got != c.want {
			t.Errorf("joinRoot(%q, %q) = %q, want %q", c.root, c.folder, got, c.want)
		}
	}
}
